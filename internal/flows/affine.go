package flows

import "github.com/born-ml/nfcde/internal/tensor"

func identityParamSize(int) int { return 0 }

// Identity leaves points unchanged. It takes no parameters.
type Identity struct{}

// NewIdentity is the identity Factory. params must be nil.
func NewIdentity(params *tensor.Tensor, _ int) (Bijector, error) {
	if err := checkParams("identity", params, 0); err != nil {
		return nil, err
	}
	return Identity{}, nil
}

// Name returns "identity".
func (Identity) Name() string { return "identity" }

// Forward returns y.
func (Identity) Forward(y *tensor.Tensor) *tensor.Tensor { return y }

// ForwardLogDetJacobian returns zeros of shape [N].
func (Identity) ForwardLogDetJacobian(y *tensor.Tensor) *tensor.Tensor {
	return tensor.Zeros(tensor.Shape{rowsOf(y)}, y.Backend())
}

// Inverse returns z.
func (Identity) Inverse(z *tensor.Tensor) *tensor.Tensor { return z }

func affineParamSize(dims int) int { return 2 * dims }

// Affine is the element-wise map F(y) = exp(a)⊙y + b.
//
// Parameters per example: a (dims), b (dims). The log-determinant is Σa and
// does not depend on y.
type Affine struct {
	logScale *tensor.Tensor // a, [N, dims]
	shift    *tensor.Tensor // b, [N, dims]
}

// NewAffine is the affine Factory.
func NewAffine(params *tensor.Tensor, dims int) (Bijector, error) {
	if err := checkParams("affine", params, affineParamSize(dims)); err != nil {
		return nil, err
	}
	return &Affine{
		logScale: params.Narrow(-1, 0, dims),
		shift:    params.Narrow(-1, dims, dims),
	}, nil
}

// Name returns "affine".
func (f *Affine) Name() string { return "affine" }

// Forward computes exp(a)⊙y + b.
func (f *Affine) Forward(y *tensor.Tensor) *tensor.Tensor {
	return y.Mul(f.logScale.Exp()).Add(f.shift)
}

// ForwardLogDetJacobian returns Σa per example.
func (f *Affine) ForwardLogDetJacobian(_ *tensor.Tensor) *tensor.Tensor {
	return f.logScale.SumDim(-1, false)
}

// Inverse computes (z - b)⊙exp(-a).
func (f *Affine) Inverse(z *tensor.Tensor) *tensor.Tensor {
	return z.Sub(f.shift).Mul(f.logScale.Neg().Exp())
}
