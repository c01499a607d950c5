package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/nfcde/internal/tensor"
)

// Dense implements a fully connected layer followed by an activation.
//
// Performs the transformation: y = act(x @ W + b)
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias row with shape [1, out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	layer, err := nn.NewDense(1, 16, "tanh", rng, backend)
//	output := layer.Forward(input, nn.ModeInfer) // shape: [N, 16]
type Dense struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter
	bias        *Parameter
	activation  *Activation
}

// NewDense creates a new Dense layer with the named activation.
func NewDense(inFeatures, outFeatures int, activation string, rng *rand.Rand, backend tensor.Backend) (*Dense, error) {
	if inFeatures < 1 || outFeatures < 1 {
		return nil, fmt.Errorf("dense: invalid size %d -> %d", inFeatures, outFeatures)
	}
	act, err := NewActivation(activation)
	if err != nil {
		return nil, err
	}

	weight := Xavier(inFeatures, outFeatures, tensor.Shape{inFeatures, outFeatures}, rng, backend)
	bias := Zeros(tensor.Shape{1, outFeatures}, backend)

	return &Dense{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("dense.weight", weight),
		bias:        NewParameter("dense.bias", bias),
		activation:  act,
	}, nil
}

// MustDense is like NewDense but panics on error.
func MustDense(inFeatures, outFeatures int, activation string, rng *rand.Rand, backend tensor.Backend) *Dense {
	d, err := NewDense(inFeatures, outFeatures, activation, rng, backend)
	if err != nil {
		panic(err)
	}
	return d
}

// Forward computes act(x @ W + b).
func (d *Dense) Forward(input *tensor.Tensor, mode Mode) *tensor.Tensor {
	checkFeatures("Dense", input, d.inFeatures)
	output := input.MatMul(d.weight.Tensor()).Add(d.bias.Tensor())
	return d.activation.Forward(output, mode)
}

// Parameters returns [weight, bias].
func (d *Dense) Parameters() []*Parameter {
	return []*Parameter{d.weight, d.bias}
}

// Weight returns the weight parameter.
func (d *Dense) Weight() *Parameter {
	return d.weight
}

// Bias returns the bias parameter.
func (d *Dense) Bias() *Parameter {
	return d.bias
}

// InFeatures returns the number of input features.
func (d *Dense) InFeatures() int {
	return d.inFeatures
}

// OutFeatures returns the number of output features.
func (d *Dense) OutFeatures() int {
	return d.outFeatures
}

// Activation returns the activation name.
func (d *Dense) Activation() string {
	return d.activation.Name()
}

func checkFeatures(layer string, input *tensor.Tensor, want int) {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("%s.Forward: expected 2D input [batch, features], got shape %v", layer, shape))
	}
	if shape[1] != want {
		panic(fmt.Sprintf("%s.Forward: expected input with %d features, got %d", layer, want, shape[1]))
	}
}
