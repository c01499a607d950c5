package distributions

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/nfcde/internal/tensor"
)

var halfLog2Pi = 0.5 * math.Log(2*math.Pi)

// Normal is a batch of multivariate normals with diagonal covariance.
//
// loc and scale are [N, dims] or [1, dims]; a single row broadcasts over the
// batch. The components of each event are independent.
type Normal struct {
	loc   *tensor.Tensor
	scale *tensor.Tensor
	batch int
	dims  int
}

// NewNormal creates a diagonal normal from loc and scale of matching event size.
func NewNormal(loc, scale *tensor.Tensor) (*Normal, error) {
	ls, ss := loc.Shape(), scale.Shape()
	if len(ls) != 2 || len(ss) != 2 || ls[1] != ss[1] {
		return nil, fmt.Errorf("%w: loc %v, scale %v", ErrShapeMismatch, ls, ss)
	}
	if ls[0] != ss[0] && ls[0] != 1 && ss[0] != 1 {
		return nil, fmt.Errorf("%w: loc %v, scale %v", ErrShapeMismatch, ls, ss)
	}
	return &Normal{
		loc:   loc,
		scale: scale,
		batch: max(ls[0], ss[0]),
		dims:  ls[1],
	}, nil
}

// StandardNormal returns a single N(0, I) over dims components.
func StandardNormal(dims int, backend tensor.Backend) *Normal {
	return &Normal{
		loc:   tensor.Zeros(tensor.Shape{1, dims}, backend),
		scale: tensor.Ones(tensor.Shape{1, dims}, backend),
		batch: 1,
		dims:  dims,
	}
}

// LogProb returns Σ_d log N(y_d; μ_d, σ_d²) per batch member.
func (n *Normal) LogProb(y *tensor.Tensor) (*tensor.Tensor, error) {
	y, err := checkPoints(y, n.batch, n.dims, n.Backend())
	if err != nil {
		return nil, err
	}
	z := y.Sub(n.loc).Div(n.scale)
	lp := z.Square().MulScalar(-0.5).Sub(n.scale.Log()).AddScalar(-halfLog2Pi)
	return expandRows(lp.SumDim(-1, false), n.batch), nil
}

// Prob returns exp(LogProb(y)).
func (n *Normal) Prob(y *tensor.Tensor) (*tensor.Tensor, error) {
	lp, err := n.LogProb(y)
	if err != nil {
		return nil, err
	}
	return lp.Exp(), nil
}

// Sample draws μ + σ⊙ε with ε ~ N(0, I). The result is differentiable with
// respect to loc and scale.
func (n *Normal) Sample(rng *rand.Rand) (*tensor.Tensor, error) {
	return n.sampleRows(rng, n.batch), nil
}

func (n *Normal) sampleRows(rng *rand.Rand, rows int) *tensor.Tensor {
	eps := tensor.Randn(tensor.Shape{rows, n.dims}, rng, n.Backend())
	return eps.Mul(n.scale).Add(n.loc)
}

// Mean returns loc broadcast to [N, dims].
func (n *Normal) Mean() *tensor.Tensor {
	return expandRows(n.loc, n.batch)
}

// Stddev returns scale broadcast to [N, dims].
func (n *Normal) Stddev() *tensor.Tensor {
	return expandRows(n.scale, n.batch)
}

// BatchShape returns [N].
func (n *Normal) BatchShape() tensor.Shape {
	return tensor.Shape{n.batch}
}

// EventShape returns [dims].
func (n *Normal) EventShape() tensor.Shape {
	return tensor.Shape{n.dims}
}

// Backend returns the backend of loc.
func (n *Normal) Backend() tensor.Backend {
	return n.loc.Backend()
}

// KLDivergence computes KL(q‖p) between diagonal normals in closed form,
// summed over the event, shape [N]:
//
//	Σ log(σp/σq) + (σq² + (μq - μp)²)/(2σp²) - 1/2
func KLDivergence(q, p *Normal) (*tensor.Tensor, error) {
	if q.dims != p.dims {
		return nil, fmt.Errorf("%w: kl between %d and %d components", ErrShapeMismatch, q.dims, p.dims)
	}
	if q.batch != p.batch && q.batch != 1 && p.batch != 1 {
		return nil, fmt.Errorf("%w: kl between batches %d and %d", ErrShapeMismatch, q.batch, p.batch)
	}

	varP := p.scale.Square()
	ratio := q.scale.Square().Add(q.loc.Sub(p.loc).Square()).Div(varP).MulScalar(0.5)
	kl := p.scale.Log().Sub(q.scale.Log()).Add(ratio).AddScalar(-0.5)
	return expandRows(kl.SumDim(-1, false), max(q.batch, p.batch)), nil
}
