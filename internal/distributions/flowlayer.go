package distributions

import (
	"fmt"
	"slices"

	"github.com/born-ml/nfcde/internal/flows"
	"github.com/born-ml/nfcde/internal/tensor"
)

// baseScaleFactor damps the raw trainable base scale before the softplus.
const baseScaleFactor = 0.05

// FlowLayer builds normalizing-flow distributions from network parameters.
//
// Parameter layout per example, for a trainable base:
//
//	[ loc (dims) | raw scale (dims) | flow params in reversed flow order ]
//
// Without a trainable base the leading 2·dims block is absent and the base
// is N(0, I).
type FlowLayer struct {
	registry      *flows.Registry
	flows         []string
	dims          int
	trainableBase bool
	paramSize     int
}

// NewFlowLayer validates the flow names against reg and precomputes the
// parameter size. A nil reg selects flows.DefaultRegistry().
func NewFlowLayer(reg *flows.Registry, names []string, dims int, trainableBase bool) (*FlowLayer, error) {
	if reg == nil {
		reg = flows.DefaultRegistry()
	}
	if dims < 1 {
		return nil, fmt.Errorf("flow layer: dims must be positive, got %d", dims)
	}
	size, err := flows.TotalParamSize(reg, names, dims, trainableBase)
	if err != nil {
		return nil, fmt.Errorf("flow layer: %w", err)
	}
	return &FlowLayer{
		registry:      reg,
		flows:         slices.Clone(names),
		dims:          dims,
		trainableBase: trainableBase,
		paramSize:     size,
	}, nil
}

// ParamSize returns Σ flow sizes plus 2·dims for a trainable base.
func (l *FlowLayer) ParamSize() int {
	return l.paramSize
}

// Flows returns the flow names in user order.
func (l *FlowLayer) Flows() []string {
	return slices.Clone(l.flows)
}

// Dims returns the event size.
func (l *FlowLayer) Dims() int {
	return l.dims
}

// TrainableBase reports whether the base is parametrized by the network.
func (l *FlowLayer) TrainableBase() bool {
	return l.trainableBase
}

// Distribution splits params [N, ParamSize()] into the base and the chain.
func (l *FlowLayer) Distribution(params *tensor.Tensor) (Distribution, error) {
	t, err := l.Transformed(params)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Transformed is Distribution with the concrete result type.
func (l *FlowLayer) Transformed(params *tensor.Tensor) (*Transformed, error) {
	shape := params.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("flow layer: params %v: %w", shape, ErrShapeMismatch)
	}
	if shape[1] != l.paramSize {
		return nil, &flows.ParamSizeMismatchError{Where: "flow layer", Want: l.paramSize, Got: shape[1]}
	}
	batch := shape[0]

	var (
		base *Normal
		err  error
	)
	rest := shape[1]
	offset := 0
	if l.trainableBase {
		loc := params.Narrow(-1, 0, l.dims)
		scale := params.Narrow(-1, l.dims, l.dims).MulScalar(baseScaleFactor).Softplus()
		if base, err = NewNormal(loc, scale); err != nil {
			return nil, err
		}
		offset = 2 * l.dims
		rest -= offset
	} else {
		base = StandardNormal(l.dims, params.Backend())
	}

	var flowParams *tensor.Tensor
	if rest > 0 {
		flowParams = params.Narrow(-1, offset, rest)
	}
	chain, err := flows.BuildChain(l.registry, flowParams, l.flows, l.dims)
	if err != nil {
		return nil, err
	}
	return NewTransformed(base, chain, batch)
}

// ToTensor returns the log-density of d at the probe point [1, ..., 1],
// shape [N]. It is differentiable and needs no inverse.
func (l *FlowLayer) ToTensor(d Distribution) (*tensor.Tensor, error) {
	probe := tensor.Ones(tensor.Shape{1, l.dims}, d.Backend())
	return d.LogProb(probe)
}
