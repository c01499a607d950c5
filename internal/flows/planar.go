package flows

import (
	"math"

	"github.com/born-ml/nfcde/internal/tensor"
)

// planarEps guards the ‖w‖² division when w is all zeros.
const planarEps = 1e-8

func planarParamSize(dims int) int { return 2*dims + 1 }

// Planar is the planar flow F(y) = y + û·tanh(wᵀy + b).
//
// Parameters per example: u (dims), w (dims), b (1). The raw u is replaced by
//
//	û = u + (m(wᵀu) - wᵀu)·w/‖w‖²,  m(x) = -1 + softplus(x)
//
// which guarantees wᵀû ≥ -1, so F is invertible and
//
//	log|det ∂F/∂y| = log(1 + ûᵀψ),  ψ = (1 - tanh²(wᵀy + b))·w
type Planar struct {
	uHat *tensor.Tensor // [N, dims]
	w    *tensor.Tensor // [N, dims]
	b    *tensor.Tensor // [N, 1]
	wu   *tensor.Tensor // wᵀû, [N, 1]
}

// NewPlanar is the planar Factory.
func NewPlanar(params *tensor.Tensor, dims int) (Bijector, error) {
	if err := checkParams("planar", params, planarParamSize(dims)); err != nil {
		return nil, err
	}

	u := params.Narrow(-1, 0, dims)
	w := params.Narrow(-1, dims, dims)
	b := params.Narrow(-1, 2*dims, 1)

	wu := dot(w, u)
	m := wu.Softplus().AddScalar(-1)
	norm := w.Square().SumDim(-1, true).AddScalar(planarEps)
	uHat := u.Add(w.Mul(m.Sub(wu).Div(norm)))

	return &Planar{
		uHat: uHat,
		w:    w,
		b:    b,
		wu:   dot(w, uHat),
	}, nil
}

// Name returns "planar".
func (f *Planar) Name() string { return "planar" }

// Forward computes y + û·tanh(wᵀy + b).
func (f *Planar) Forward(y *tensor.Tensor) *tensor.Tensor {
	return y.Add(f.uHat.Mul(f.preActivation(y).Tanh()))
}

// ForwardLogDetJacobian computes log(1 + (1 - tanh²)·wᵀû).
func (f *Planar) ForwardLogDetJacobian(y *tensor.Tensor) *tensor.Tensor {
	h := f.preActivation(y).Tanh()
	slope := h.Square().Neg().AddScalar(1)
	return squeeze(slope.Mul(f.wu).AddScalar(1).Log())
}

func (f *Planar) preActivation(y *tensor.Tensor) *tensor.Tensor {
	return dot(y, f.w).Add(f.b)
}

// Inverse solves F(y) = z per example.
//
// Writing α = wᵀy, the equation projects onto wᵀz = α + wᵀû·tanh(α + b), which
// is monotone in α and has its root within |wᵀû| of wᵀz; bisection finds it
// and y = z - û·tanh(α + b).
func (f *Planar) Inverse(z *tensor.Tensor) *tensor.Tensor {
	rows, dims := broadcastRows(z, f.w)
	zRows := rowsOf(z)
	pRows := rowsOf(f.w)
	zData, wData, uData := z.Data(), f.w.Data(), f.uHat.Data()
	bData, cData := f.b.Data(), f.wu.Data()

	out := make([]float64, rows*dims)
	for i := range rows {
		zi := row(zData, zRows, dims, i)
		wi := row(wData, pRows, dims, i)
		ui := row(uData, pRows, dims, i)
		b := row(bData, pRows, 1, i)[0]
		c := row(cData, pRows, 1, i)[0]

		target := 0.0
		for d := range dims {
			target += wi[d] * zi[d]
		}
		alpha := bisect(func(a float64) float64 {
			return a + c*math.Tanh(a+b) - target
		}, target-math.Abs(c)-1, target+math.Abs(c)+1)

		h := math.Tanh(alpha + b)
		for d := range dims {
			out[i*dims+d] = zi[d] - ui[d]*h
		}
	}

	y, _ := tensor.FromSlice(out, tensor.Shape{rows, dims}, z.Backend())
	return y
}

// bisect finds the root of the non-decreasing function fn in [lo, hi].
func bisect(fn func(float64) float64, lo, hi float64) float64 {
	for range 200 {
		mid := 0.5 * (lo + hi)
		if mid == lo || mid == hi {
			break
		}
		if fn(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// broadcastRows returns the batch size obtained by broadcasting the rows of
// points against the rows of params, and the event size of points.
func broadcastRows(points, params *tensor.Tensor) (rows, dims int) {
	rows = max(rowsOf(points), rowsOf(params))
	return rows, points.Shape()[1]
}
