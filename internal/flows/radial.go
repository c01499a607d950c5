package flows

import (
	"math"

	"github.com/born-ml/nfcde/internal/tensor"
)

// radialEps keeps the radius differentiable at y = γ.
const radialEps = 1e-12

func radialParamSize(dims int) int { return dims + 2 }

// Radial is the radial flow F(y) = y + β̂·h(α̂, r)·(y - γ).
//
// Parameters per example: α (1), β (1), γ (dims). With
//
//	α̂ = softplus(α),  β̂ = -α̂ + softplus(β),  r = ‖y - γ‖,  h = 1/(α̂ + r)
//
// β̂ ≥ -α̂ keeps F invertible, and
//
//	log|det ∂F/∂y| = (dims-1)·log(1 + β̂h) + log(1 + β̂h - β̂h²r)
type Radial struct {
	alpha *tensor.Tensor // α̂, [N, 1]
	beta  *tensor.Tensor // β̂, [N, 1]
	gamma *tensor.Tensor // γ, [N, dims]
	dims  int
}

// NewRadial is the radial Factory.
func NewRadial(params *tensor.Tensor, dims int) (Bijector, error) {
	if err := checkParams("radial", params, radialParamSize(dims)); err != nil {
		return nil, err
	}

	alpha := params.Narrow(-1, 0, 1).Softplus()
	beta := params.Narrow(-1, 1, 1).Softplus().Sub(alpha)

	return &Radial{
		alpha: alpha,
		beta:  beta,
		gamma: params.Narrow(-1, 2, dims),
		dims:  dims,
	}, nil
}

// Name returns "radial".
func (f *Radial) Name() string { return "radial" }

// Forward computes y + β̂h·(y - γ).
func (f *Radial) Forward(y *tensor.Tensor) *tensor.Tensor {
	diff := y.Sub(f.gamma)
	bh := f.beta.Div(f.alpha.Add(radius(diff)))
	return y.Add(diff.Mul(bh))
}

// ForwardLogDetJacobian computes (dims-1)·log(1 + β̂h) + log(1 + β̂h - β̂h²r).
func (f *Radial) ForwardLogDetJacobian(y *tensor.Tensor) *tensor.Tensor {
	r := radius(y.Sub(f.gamma))
	denom := f.alpha.Add(r)
	bh := f.beta.Div(denom)

	last := bh.Sub(bh.Mul(r).Div(denom)).AddScalar(1).Log()
	if f.dims == 1 {
		return squeeze(last)
	}
	rest := bh.AddScalar(1).Log().MulScalar(float64(f.dims - 1))
	return squeeze(rest.Add(last))
}

// radius returns sqrt(Σ diff² + eps) per row as a [N, 1] column.
func radius(diff *tensor.Tensor) *tensor.Tensor {
	return diff.Square().SumDim(-1, true).AddScalar(radialEps).Sqrt()
}

// Inverse maps z back to output space in closed form.
//
// F scales y - γ by (1 + β̂/(α̂ + r)), so s = ‖z - γ‖ satisfies
// r² + (α̂ + β̂ - s)·r - α̂s = 0, whose non-negative root is r.
func (f *Radial) Inverse(z *tensor.Tensor) *tensor.Tensor {
	rows, dims := broadcastRows(z, f.gamma)
	zRows := rowsOf(z)
	pRows := rowsOf(f.gamma)
	zData, gData := z.Data(), f.gamma.Data()
	aData, bData := f.alpha.Data(), f.beta.Data()

	out := make([]float64, rows*dims)
	for i := range rows {
		zi := row(zData, zRows, dims, i)
		gi := row(gData, pRows, dims, i)
		alpha := row(aData, pRows, 1, i)[0]
		beta := row(bData, pRows, 1, i)[0]

		s := 0.0
		for d := range dims {
			s += (zi[d] - gi[d]) * (zi[d] - gi[d])
		}
		s = math.Sqrt(s)

		p := alpha + beta - s
		r := 0.5 * (-p + math.Sqrt(p*p+4*alpha*s))
		scale := 1 + beta/(alpha+r)
		for d := range dims {
			out[i*dims+d] = gi[d] + (zi[d]-gi[d])/scale
		}
	}

	y, _ := tensor.FromSlice(out, tensor.Shape{rows, dims}, z.Backend())
	return y
}
