package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/nfcde/internal/distributions"
	"github.com/born-ml/nfcde/internal/tensor"
)

// PosteriorConfig configures the mean-field Gaussian posterior over weights.
type PosteriorConfig struct {
	// InitStddev is the stddev of the normal initializer for both the
	// posterior means and raw scales (default: 0.05).
	InitStddev float64
}

// PriorConfig configures the unit-scale Gaussian prior over weights.
type PriorConfig struct {
	// Trainable makes the prior mean a trainable parameter (empirical Bayes).
	// The prior mean starts at zero either way.
	Trainable bool
}

// VariationalConfig holds the configuration of a DenseVariational layer.
type VariationalConfig struct {
	InFeatures  int
	OutFeatures int
	Activation  string
	Posterior   PosteriorConfig
	Prior       PriorConfig
	// KLWeight scales the KL term returned by KL().
	KLWeight float64
	// KLExact selects the closed-form KL; otherwise a one-sample
	// Monte-Carlo estimate log q(w) - log p(w) is used.
	KLExact bool
}

// DenseVariational is a dense layer whose weights are random variables.
//
// Kernel [in, out] and bias [out] are flattened into one vector of
// in·out + out weights. The posterior over that vector is a mean-field
// Gaussian with learned means and scales
//
//	σ = 1e-5 + softplus(log(expm1(1)) + ρ)
//
// and the prior is N(μp, I) with μp zero or trainable. Every Forward call
// draws one reparametrized sample w = μ + σ⊙ε and records KL(q‖p) for that
// call, scaled by KLWeight. The estimator adds KL() to the negative
// log-likelihood.
type DenseVariational struct {
	cfg        VariationalConfig
	size       int
	posterior  *Parameter // [1, 2·size]: means then raw scales
	priorLoc   *Parameter // [1, size]
	activation *Activation
	rng        *rand.Rand
	kl         *tensor.Tensor
}

// NewDenseVariational creates a variational dense layer.
//
// A zero Posterior.InitStddev selects the default.
func NewDenseVariational(cfg VariationalConfig, rng *rand.Rand, backend tensor.Backend) (*DenseVariational, error) {
	if cfg.InFeatures < 1 || cfg.OutFeatures < 1 {
		return nil, fmt.Errorf("dense variational: invalid size %d -> %d", cfg.InFeatures, cfg.OutFeatures)
	}
	if cfg.KLWeight < 0 {
		return nil, fmt.Errorf("dense variational: negative KL weight %g", cfg.KLWeight)
	}
	if cfg.Posterior.InitStddev == 0 {
		cfg.Posterior.InitStddev = 0.05
	}
	act, err := NewActivation(cfg.Activation)
	if err != nil {
		return nil, err
	}

	size := cfg.InFeatures*cfg.OutFeatures + cfg.OutFeatures
	return &DenseVariational{
		cfg:        cfg,
		size:       size,
		posterior:  NewParameter("posterior", Normal(tensor.Shape{1, 2 * size}, cfg.Posterior.InitStddev, rng, backend)),
		priorLoc:   NewParameter("prior_loc", Zeros(tensor.Shape{1, size}, backend)),
		activation: act,
		rng:        rng,
	}, nil
}

// Forward samples weights from the posterior and computes act(x @ W + b).
// A fresh sample is drawn on every call regardless of mode.
func (d *DenseVariational) Forward(input *tensor.Tensor, mode Mode) *tensor.Tensor {
	checkFeatures("DenseVariational", input, d.cfg.InFeatures)

	q := d.Posterior()
	w, err := q.Sample(d.rng)
	if err != nil {
		panic(err)
	}
	d.kl = d.divergence(q, w).MulScalar(d.cfg.KLWeight)

	kernel, bias := d.split(w)
	output := input.MatMul(kernel).Add(bias)
	return d.activation.Forward(output, mode)
}

// divergence returns the unweighted KL(q‖p) as a scalar.
func (d *DenseVariational) divergence(q *distributions.Normal, w *tensor.Tensor) *tensor.Tensor {
	p := d.Prior()
	if d.cfg.KLExact {
		kl, err := distributions.KLDivergence(q, p)
		if err != nil {
			panic(err)
		}
		return kl.Sum()
	}

	logQ, err := q.LogProb(w)
	if err != nil {
		panic(err)
	}
	logP, err := p.LogProb(w)
	if err != nil {
		panic(err)
	}
	return logQ.Sub(logP).Sum()
}

// split reshapes a flat weight sample [1, size] into kernel [in, out] and
// bias [1, out].
func (d *DenseVariational) split(w *tensor.Tensor) (kernel, bias *tensor.Tensor) {
	in, out := d.cfg.InFeatures, d.cfg.OutFeatures
	kernel = w.Narrow(-1, 0, in*out).Reshape(in, out)
	bias = w.Narrow(-1, in*out, out)
	return kernel, bias
}

// Posterior returns the current weight posterior q(w).
func (d *DenseVariational) Posterior() *distributions.Normal {
	q, err := distributions.MeanFieldLayer{Dims: d.size}.Normal(d.posterior.Tensor())
	if err != nil {
		panic(err)
	}
	return q
}

// Prior returns the weight prior p(w).
func (d *DenseVariational) Prior() *distributions.Normal {
	p, err := distributions.MeanFieldLayer{Dims: d.size, UniformScale: true}.Normal(d.priorLoc.Tensor())
	if err != nil {
		panic(err)
	}
	return p
}

// KL returns KLWeight·KL(q‖p) from the most recent Forward call.
func (d *DenseVariational) KL() *tensor.Tensor {
	return d.kl
}

// Parameters returns the posterior parameters, plus the prior mean when the
// prior is trainable.
func (d *DenseVariational) Parameters() []*Parameter {
	if d.cfg.Prior.Trainable {
		return []*Parameter{d.posterior, d.priorLoc}
	}
	return []*Parameter{d.posterior}
}

// Config returns the layer configuration with defaults filled in.
func (d *DenseVariational) Config() VariationalConfig {
	return d.cfg
}

// InFeatures returns the number of input features.
func (d *DenseVariational) InFeatures() int {
	return d.cfg.InFeatures
}

// OutFeatures returns the number of output features.
func (d *DenseVariational) OutFeatures() int {
	return d.cfg.OutFeatures
}

// PosteriorMean returns the posterior mean of the kernel and bias.
func (d *DenseVariational) PosteriorMean() (kernel, bias *tensor.Tensor) {
	return d.split(d.Posterior().Mean())
}

// PosteriorScale returns the posterior stddev of the kernel and bias.
func (d *DenseVariational) PosteriorScale() (kernel, bias *tensor.Tensor) {
	return d.split(d.Posterior().Stddev())
}
