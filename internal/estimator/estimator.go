// Package estimator implements conditional density estimators: a dense
// network maps each input to the parameters of a normalizing-flow
// distribution over the output, and training minimizes the negative
// log-likelihood of the targets.
//
// Two variants share one type:
//   - New: maximum likelihood with a deterministic network
//   - NewBayesian: variational network whose loss adds the weighted
//     KL(posterior‖prior) of every layer
package estimator

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/nfcde/internal/autodiff"
	"github.com/born-ml/nfcde/internal/backend/cpu"
	"github.com/born-ml/nfcde/internal/distributions"
	"github.com/born-ml/nfcde/internal/nn"
	"github.com/born-ml/nfcde/internal/optim"
	"github.com/born-ml/nfcde/internal/tensor"
)

// Kind distinguishes the estimator variants.
type Kind int

const (
	// MaximumLikelihood uses deterministic dense layers.
	MaximumLikelihood Kind = iota
	// Bayesian uses variational dense layers.
	Bayesian
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case MaximumLikelihood:
		return "maximum-likelihood"
	case Bayesian:
		return "bayesian"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Estimator is a conditional density estimator.
//
// It owns the network layers, the distribution layer, the optimizer and the
// random source. Fit mutates the weights; Forward, Loss and Evaluate do not.
type Estimator struct {
	cfg       Config
	kind      Kind
	backend   *autodiff.AutodiffBackend
	net       *nn.Sequential
	layer     *distributions.FlowLayer
	yNoise    *nn.GaussianNoise
	optimizer *optim.Adam
	rng       *rand.Rand
}

// New creates a maximum-likelihood estimator.
func New(cfg Config) (*Estimator, error) {
	cfg.Bayesian = false
	return build(cfg, MaximumLikelihood)
}

// NewBayesian creates a Bayesian estimator.
func NewBayesian(cfg Config) (*Estimator, error) {
	cfg.Bayesian = true
	return build(cfg, Bayesian)
}

// FromConfig creates the variant selected by cfg.Bayesian.
func FromConfig(cfg Config) (*Estimator, error) {
	if cfg.Bayesian {
		return NewBayesian(cfg)
	}
	return New(cfg)
}

func build(cfg Config, kind Kind) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	layer, err := distributions.NewFlowLayer(nil, cfg.FlowTypes, cfg.Dims, cfg.TrainableBaseDist)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	backend := autodiff.New(cpu.New())

	netCfg := NetworkConfig{
		InputDims:   cfg.InputDims,
		HiddenSizes: cfg.HiddenSizes,
		Activation:  cfg.Activation,
		OutputSize:  layer.ParamSize(),
		XNoiseStd:   cfg.XNoiseStd,
	}
	if kind == Bayesian {
		netCfg.Variational = &VariationalOptions{
			Posterior: nn.PosteriorConfig{InitStddev: 0.05},
			Prior:     nn.PriorConfig{Trainable: cfg.TrainablePrior},
			KLWeight:  cfg.KLWeightScale,
			KLExact:   cfg.KLUseExact,
		}
	}
	layers, err := BuildDenseLayers(netCfg, rng, backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if got := outputWidth(layers); got != layer.ParamSize() {
		return nil, fmt.Errorf("estimator: network output %d for distribution parameters %d: %w",
			got, layer.ParamSize(), ErrParamSizeMismatch)
	}

	net := nn.NewSequential(layers...)
	e := &Estimator{
		cfg:       cfg,
		kind:      kind,
		backend:   backend,
		net:       net,
		layer:     layer,
		optimizer: optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: cfg.LearningRate}),
		rng:       rng,
	}
	if cfg.YNoiseStd > 0 {
		e.yNoise = nn.NewGaussianNoise(cfg.YNoiseStd, rng)
	}
	return e, nil
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Kind returns the estimator variant.
func (e *Estimator) Kind() Kind {
	return e.kind
}

// Layers returns the network layers in order, excluding the distribution layer.
func (e *Estimator) Layers() []nn.Module {
	return e.net.Modules()
}

// DistributionLayer returns the layer that turns network outputs into
// distributions.
func (e *Estimator) DistributionLayer() *distributions.FlowLayer {
	return e.layer
}

// Parameters returns every trainable parameter.
func (e *Estimator) Parameters() []*nn.Parameter {
	return e.net.Parameters()
}

// NumParameters returns the number of trainable scalars.
func (e *Estimator) NumParameters() int {
	return nn.CountParameters(e.net.Parameters())
}

// Forward maps inputs x [N, InputDims] to a batch of N output distributions.
func (e *Estimator) Forward(x *tensor.Tensor, mode nn.Mode) (distributions.Distribution, error) {
	if err := checkInputs(x, e.cfg.InputDims); err != nil {
		return nil, err
	}
	params := e.net.Forward(x.WithBackend(e.backend), mode)
	return e.layer.Distribution(params)
}

// Loss returns the mean negative log-likelihood of y under dist as a scalar.
// In ModeTrain the targets are perturbed with N(0, YNoiseStd²) noise first;
// in ModeInfer the loss is deterministic.
func (e *Estimator) Loss(y *tensor.Tensor, dist distributions.Distribution, mode nn.Mode) (*tensor.Tensor, error) {
	y = y.WithBackend(dist.Backend())
	if e.yNoise != nil {
		y = e.yNoise.Forward(y, mode)
	}
	lp, err := dist.LogProb(y)
	if err != nil {
		return nil, fmt.Errorf("loss: %w", err)
	}
	return lp.Mean().Neg(), nil
}

// KL returns the weighted KL term of the most recent Forward call, or nil
// for a maximum-likelihood estimator.
func (e *Estimator) KL() *tensor.Tensor {
	return e.net.KL()
}

// objective runs the network on x and returns the loss of y plus the KL term.
func (e *Estimator) objective(x, y *tensor.Tensor, mode nn.Mode) (*tensor.Tensor, error) {
	if err := checkInputs(x, e.cfg.InputDims); err != nil {
		return nil, err
	}
	if err := checkTargets(x, y, e.cfg.Dims); err != nil {
		return nil, err
	}
	dist, err := e.Forward(x, mode)
	if err != nil {
		return nil, err
	}
	loss, err := e.Loss(y, dist, mode)
	if err != nil {
		return nil, err
	}
	if kl := e.net.KL(); kl != nil {
		loss = loss.Add(kl)
	}
	return loss, nil
}

func checkInputs(x *tensor.Tensor, inputDims int) error {
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != inputDims {
		return fmt.Errorf("%w: inputs %v, want [N, %d]", ErrShapeMismatch, shape, inputDims)
	}
	return nil
}

func checkTargets(x, y *tensor.Tensor, dims int) error {
	shape := y.Shape()
	if len(shape) != 2 || shape[1] != dims {
		return fmt.Errorf("%w: targets %v, want [N, %d]", ErrShapeMismatch, shape, dims)
	}
	if rows := x.Shape()[0]; shape[0] != rows {
		return fmt.Errorf("%w: %d targets for %d inputs", ErrShapeMismatch, shape[0], rows)
	}
	return nil
}
