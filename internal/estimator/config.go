package estimator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/born-ml/nfcde/internal/flows"
	"github.com/born-ml/nfcde/internal/nn"
	"gopkg.in/yaml.v3"
)

// Config holds the hyperparameters of an estimator.
//
// The Bayesian fields are read only by NewBayesian.
type Config struct {
	// InputDims is the number of input features.
	InputDims int `yaml:"input_dims"`
	// Dims is the dimensionality of the output distribution.
	Dims int `yaml:"dims"`
	// FlowTypes lists the flows applied to base samples, in order. An empty
	// list makes the output distribution the base distribution itself.
	FlowTypes []string `yaml:"flow_types"`
	// HiddenSizes lists the hidden layer widths. nil is invalid; an empty
	// list connects the input directly to the output layer.
	HiddenSizes []int `yaml:"hidden_sizes"`
	// TrainableBaseDist lets the network parametrize the base normal.
	TrainableBaseDist bool `yaml:"trainable_base_dist"`
	// Activation names the hidden layer activation.
	Activation string `yaml:"activation"`
	// XNoiseStd is the stddev of the training-time input noise.
	XNoiseStd float64 `yaml:"x_noise_std"`
	// YNoiseStd is the stddev of the training-time target noise.
	YNoiseStd float64 `yaml:"y_noise_std"`
	// LearningRate is the Adam step size.
	LearningRate float64 `yaml:"learning_rate"`
	// Seed seeds weight initialization, noise and shuffling.
	Seed int64 `yaml:"seed"`

	// Bayesian selects the variational network when the config is loaded
	// from a file.
	Bayesian bool `yaml:"bayesian"`
	// KLWeightScale scales KL(posterior‖prior) in the loss. At most 1.
	KLWeightScale float64 `yaml:"kl_weight_scale"`
	// KLUseExact selects the closed-form KL over a one-sample estimate.
	KLUseExact bool `yaml:"kl_use_exact"`
	// TrainablePrior learns the prior mean (empirical Bayes).
	TrainablePrior bool `yaml:"trainable_prior"`
}

// DefaultConfig returns the maximum-likelihood defaults for dims outputs.
func DefaultConfig(dims int) Config {
	return Config{
		InputDims:         1,
		Dims:              dims,
		FlowTypes:         []string{"radial", "radial"},
		HiddenSizes:       []int{16, 16},
		TrainableBaseDist: true,
		Activation:        "tanh",
		LearningRate:      2e-2,
		Seed:              1,
	}
}

// DefaultBayesianConfig returns the Bayesian defaults for dims outputs.
func DefaultBayesianConfig(dims int) Config {
	cfg := DefaultConfig(dims)
	cfg.HiddenSizes = []int{10}
	cfg.Bayesian = true
	cfg.KLWeightScale = 1
	return cfg
}

// Validate checks every hyperparameter before any layer is built.
// Failures wrap ErrInvalidConfig, and also ErrUnknownFlow or
// ErrUnknownActivation where those apply.
func (c Config) Validate() error {
	if c.InputDims < 1 {
		return invalid("input_dims must be positive, got %d", c.InputDims)
	}
	if c.Dims < 1 {
		return invalid("dims must be positive, got %d", c.Dims)
	}
	if c.HiddenSizes == nil {
		return invalid("hidden_sizes must be a list")
	}
	for i, size := range c.HiddenSizes {
		if size < 1 {
			return invalid("hidden_sizes[%d] must be positive, got %d", i, size)
		}
	}
	if !(c.XNoiseStd >= 0) || math.IsInf(c.XNoiseStd, 0) {
		return invalid("x_noise_std must be a non-negative number, got %g", c.XNoiseStd)
	}
	if !(c.YNoiseStd >= 0) || math.IsInf(c.YNoiseStd, 0) {
		return invalid("y_noise_std must be a non-negative number, got %g", c.YNoiseStd)
	}
	if !(c.LearningRate > 0) {
		return invalid("learning_rate must be positive, got %g", c.LearningRate)
	}
	if !(c.KLWeightScale >= 0 && c.KLWeightScale <= 1) {
		return invalid("kl_weight_scale must be in [0, 1], got %g", c.KLWeightScale)
	}
	if _, err := nn.NewActivation(c.Activation); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	size, err := flows.TotalParamSize(flows.DefaultRegistry(), c.FlowTypes, c.Dims, c.TrainableBaseDist)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if size == 0 {
		return invalid("flows %v with a fixed base have no parameters to learn", c.FlowTypes)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// LoadConfig reads a YAML config file and validates it.
//
// Missing keys keep the defaults of DefaultConfig, or DefaultBayesianConfig
// when the file sets bayesian: true. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates a YAML config.
func ParseConfig(data []byte) (Config, error) {
	var probe struct {
		Bayesian bool `yaml:"bayesian"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig(1)
	if probe.Bayesian {
		cfg = DefaultBayesianConfig(1)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteYAML encodes the config as YAML.
func (c Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return enc.Close()
}
