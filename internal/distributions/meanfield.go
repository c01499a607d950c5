package distributions

import (
	"fmt"
	"math"

	"github.com/born-ml/nfcde/internal/flows"
	"github.com/born-ml/nfcde/internal/tensor"
)

// SoftplusInverseOne is log(expm1(1)). Softplus maps it to 1, so a raw scale
// of zero yields a scale of about one.
var SoftplusInverseOne = math.Log(math.Expm1(1))

// MinScale is added to every learned mean-field scale.
const MinScale = 1e-5

// MeanFieldLayer builds independent per-dimension Gaussians.
//
// The first Dims parameters are the means. With UniformScale every scale is
// 1 and any further parameters are ignored; otherwise the next Dims raw values
// map to 1e-5 + softplus(log(expm1(1)) + raw).
type MeanFieldLayer struct {
	Dims         int
	UniformScale bool
}

// ParamSize returns Dims with a uniform scale, 2·Dims otherwise.
func (l MeanFieldLayer) ParamSize() int {
	if l.UniformScale {
		return l.Dims
	}
	return 2 * l.Dims
}

// Normal builds the diagonal normal for params [N, P].
func (l MeanFieldLayer) Normal(params *tensor.Tensor) (*Normal, error) {
	shape := params.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("mean field: params %v: %w", shape, ErrShapeMismatch)
	}

	got := shape[1]
	if got != l.ParamSize() && !(l.UniformScale && got == 2*l.Dims) {
		return nil, &flows.ParamSizeMismatchError{Where: "mean field", Want: l.ParamSize(), Got: got}
	}

	loc := params.Narrow(-1, 0, l.Dims)
	if l.UniformScale {
		return NewNormal(loc, tensor.Ones(tensor.Shape{1, l.Dims}, params.Backend()))
	}
	scale := params.Narrow(-1, l.Dims, l.Dims).AddScalar(SoftplusInverseOne).Softplus().AddScalar(MinScale)
	return NewNormal(loc, scale)
}

// Distribution implements Layer.
func (l MeanFieldLayer) Distribution(params *tensor.Tensor) (Distribution, error) {
	n, err := l.Normal(params)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ToTensor returns the mean of d.
func (l MeanFieldLayer) ToTensor(d Distribution) (*tensor.Tensor, error) {
	m, ok := d.(Moments)
	if !ok {
		return nil, fmt.Errorf("mean field: %T has no mean", d)
	}
	return m.Mean(), nil
}
