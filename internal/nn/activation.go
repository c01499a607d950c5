package nn

import (
	"errors"
	"fmt"
	"sort"

	"github.com/born-ml/nfcde/internal/tensor"
)

// ErrUnknownActivation is returned for an activation name that is not supported.
var ErrUnknownActivation = errors.New("nn: unknown activation")

var activations = map[string]func(*tensor.Tensor) *tensor.Tensor{
	"linear":   func(x *tensor.Tensor) *tensor.Tensor { return x },
	"tanh":     (*tensor.Tensor).Tanh,
	"relu":     (*tensor.Tensor).ReLU,
	"sigmoid":  (*tensor.Tensor).Sigmoid,
	"softplus": (*tensor.Tensor).Softplus,
}

// Activation is a parameter-free element-wise module selected by name.
//
// Supported names: linear, tanh, relu, sigmoid, softplus.
//
// Example:
//
//	act, err := nn.NewActivation("tanh")
//	output := act.Forward(input, nn.ModeInfer)
type Activation struct {
	name string
	fn   func(*tensor.Tensor) *tensor.Tensor
}

// NewActivation returns the activation called name.
func NewActivation(name string) (*Activation, error) {
	fn, ok := activations[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %v)", ErrUnknownActivation, name, ActivationNames())
	}
	return &Activation{name: name, fn: fn}, nil
}

// ActivationNames returns the supported activation names in sorted order.
func ActivationNames() []string {
	names := make([]string, 0, len(activations))
	for name := range activations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the activation name.
func (a *Activation) Name() string {
	return a.name
}

// Forward applies the activation element-wise. Mode is ignored.
func (a *Activation) Forward(input *tensor.Tensor, _ Mode) *tensor.Tensor {
	return a.fn(input)
}

// Parameters returns nil (activations have no trainable parameters).
func (a *Activation) Parameters() []*Parameter {
	return nil
}
