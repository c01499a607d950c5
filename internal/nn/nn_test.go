package nn_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/nfcde/internal/autodiff"
	"github.com/born-ml/nfcde/internal/backend/cpu"
	"github.com/born-ml/nfcde/internal/nn"
	"github.com/born-ml/nfcde/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParameter tests Parameter creation and methods.
func TestParameter(t *testing.T) {
	backend := cpu.New()
	data, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	param := nn.NewParameter("test_param", data)
	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Nil(t, param.Grad())
	assert.Equal(t, 3, param.NumElements())

	grad := tensor.Ones(tensor.Shape{3}, backend)
	param.SetGrad(grad)
	assert.Same(t, grad, param.Grad())

	param.ZeroGrad()
	assert.Nil(t, param.Grad())
}

// TestMode tests the Mode helpers.
func TestMode(t *testing.T) {
	var zero nn.Mode
	assert.Equal(t, nn.ModeInfer, zero)
	assert.True(t, nn.ModeTrain.Training())
	assert.False(t, nn.ModeInfer.Training())
	assert.Equal(t, "train", nn.ModeTrain.String())
}

// TestActivation tests named activations.
func TestActivation(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]float64{-1, 0, 2}, tensor.Shape{1, 3}, backend)
	require.NoError(t, err)

	tests := []struct {
		name string
		want []float64
	}{
		{"linear", []float64{-1, 0, 2}},
		{"relu", []float64{0, 0, 2}},
		{"tanh", []float64{math.Tanh(-1), 0, math.Tanh(2)}},
		{"sigmoid", []float64{1 / (1 + math.E), 0.5, 1 / (1 + math.Exp(-2))}},
		{"softplus", []float64{math.Log1p(math.Exp(-1)), math.Log(2), math.Log1p(math.Exp(2))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := nn.NewActivation(tt.name)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, act.Forward(x, nn.ModeInfer).Data(), 1e-12)
			assert.Empty(t, act.Parameters())
		})
	}

	_, err = nn.NewActivation("swish")
	assert.True(t, errors.Is(err, nn.ErrUnknownActivation))
}

// TestDense tests the dense layer output shape and computation.
func TestDense(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	layer, err := nn.NewDense(3, 2, "linear", rng, backend)
	require.NoError(t, err)
	assert.Equal(t, 3, layer.InFeatures())
	assert.Equal(t, 2, layer.OutFeatures())
	require.Len(t, layer.Parameters(), 2)

	copy(layer.Weight().Tensor().Data(), []float64{1, 0, 0, 1, 1, 1})
	copy(layer.Bias().Tensor().Data(), []float64{0.5, -0.5})

	x, err := tensor.FromRows([][]float64{{1, 2, 3}, {0, 0, 0}}, backend)
	require.NoError(t, err)
	y := layer.Forward(x, nn.ModeInfer)

	assert.Equal(t, tensor.Shape{2, 2}, y.Shape())
	assert.InDeltaSlice(t, []float64{4.5, 4.5, 0.5, -0.5}, y.Data(), 1e-12)

	assert.Panics(t, func() {
		layer.Forward(tensor.Ones(tensor.Shape{2, 4}, backend), nn.ModeInfer)
	})

	_, err = nn.NewDense(3, 2, "gelu", rng, backend)
	assert.ErrorIs(t, err, nn.ErrUnknownActivation)
}

// TestGaussianNoise tests that noise is applied only in training mode.
func TestGaussianNoise(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewGaussianNoise(1.0, rand.New(rand.NewSource(3)))
	x := tensor.Zeros(tensor.Shape{4, 2}, backend)

	assert.Same(t, x, layer.Forward(x, nn.ModeInfer))

	a := layer.Forward(x, nn.ModeTrain)
	b := layer.Forward(x, nn.ModeTrain)
	assert.NotEqual(t, a.Data(), b.Data())
	assert.Equal(t, make([]float64, 8), x.Data(), "input must not be mutated")
	assert.Empty(t, layer.Parameters())
}

// TestSequential tests chaining and parameter collection.
func TestSequential(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(4))

	model := nn.NewSequential(
		nn.NewGaussianNoise(0.5, rng),
		nn.MustDense(2, 4, "tanh", rng, backend),
	)
	model.Add(nn.MustDense(4, 3, "linear", rng, backend))

	assert.Equal(t, 3, model.Len())
	assert.Len(t, model.Parameters(), 4)
	assert.Equal(t, 2*4+4+4*3+3, nn.CountParameters(model.Parameters()))
	assert.Nil(t, model.KL(), "deterministic layers have no KL term")

	y := model.Forward(tensor.Ones(tensor.Shape{5, 2}, backend), nn.ModeInfer)
	assert.Equal(t, tensor.Shape{5, 3}, y.Shape())
}

func newVariational(t *testing.T, exact, trainablePrior bool, seed int64) *nn.DenseVariational {
	t.Helper()
	layer, err := nn.NewDenseVariational(nn.VariationalConfig{
		InFeatures:  2,
		OutFeatures: 3,
		Activation:  "linear",
		Prior:       nn.PriorConfig{Trainable: trainablePrior},
		KLWeight:    1,
		KLExact:     exact,
	}, rand.New(rand.NewSource(seed)), cpu.New())
	require.NoError(t, err)
	return layer
}

// TestDenseVariational_Sampling tests that each call draws fresh weights.
func TestDenseVariational_Sampling(t *testing.T) {
	layer := newVariational(t, true, false, 5)
	x := tensor.Ones(tensor.Shape{4, 2}, cpu.New())

	assert.Nil(t, layer.KL())
	a := layer.Forward(x, nn.ModeInfer)
	b := layer.Forward(x, nn.ModeInfer)

	assert.Equal(t, tensor.Shape{4, 3}, a.Shape())
	assert.NotEqual(t, a.Data(), b.Data())
	require.NotNil(t, layer.KL())
	assert.Equal(t, tensor.Shape{}, layer.KL().Shape())
}

// TestDenseVariational_Parameters tests that the prior mean is trainable only on request.
func TestDenseVariational_Parameters(t *testing.T) {
	fixed := newVariational(t, true, false, 1)
	require.Len(t, fixed.Parameters(), 1)
	// Kernel 2x3 plus bias 3, each with a mean and a raw scale.
	assert.Equal(t, 2*(2*3+3), nn.CountParameters(fixed.Parameters()))

	trainable := newVariational(t, true, true, 1)
	require.Len(t, trainable.Parameters(), 2)
	assert.Equal(t, 3*(2*3+3), nn.CountParameters(trainable.Parameters()))
	assert.Equal(t, 0.05, fixed.Config().Posterior.InitStddev)

	kernel, bias := fixed.PosteriorScale()
	assert.Equal(t, tensor.Shape{2, 3}, kernel.Shape())
	assert.Equal(t, tensor.Shape{1, 3}, bias.Shape())
	for _, s := range kernel.Data() {
		assert.InDelta(t, 1, s, 0.1)
	}
}

// TestDenseVariational_ExactKL tests the closed-form KL against a direct computation.
func TestDenseVariational_ExactKL(t *testing.T) {
	layer := newVariational(t, true, false, 6)
	layer.Forward(tensor.Ones(tensor.Shape{1, 2}, cpu.New()), nn.ModeInfer)

	kernelLoc, biasLoc := layer.PosteriorMean()
	kernelScale, biasScale := layer.PosteriorScale()

	want := 0.0
	for _, pair := range [][2]*tensor.Tensor{{kernelLoc, kernelScale}, {biasLoc, biasScale}} {
		for i, mu := range pair[0].Data() {
			s := pair[1].Data()[i]
			want += -math.Log(s) + (s*s+mu*mu)/2 - 0.5
		}
	}

	assert.InDelta(t, want, layer.KL().Item(), 1e-9)
}

// TestDenseVariational_MonteCarloKL tests that the MC estimate agrees with the
// exact KL in expectation.
func TestDenseVariational_MonteCarloKL(t *testing.T) {
	exact := newVariational(t, true, false, 7)
	mc := newVariational(t, false, false, 7)
	x := tensor.Ones(tensor.Shape{1, 2}, cpu.New())

	exact.Forward(x, nn.ModeInfer)
	want := exact.KL().Item()

	const draws = 4000
	sum := 0.0
	for range draws {
		mc.Forward(x, nn.ModeInfer)
		sum += mc.KL().Item()
	}

	// Per-weight MC variance is about 1 at init, 9 weights in total.
	assert.InDelta(t, want, sum/draws, 0.25)
}

// TestDenseVariational_Gradients tests that gradients reach every posterior parameter.
func TestDenseVariational_Gradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	layer, err := nn.NewDenseVariational(nn.VariationalConfig{
		InFeatures:  2,
		OutFeatures: 2,
		Activation:  "tanh",
		Prior:       nn.PriorConfig{Trainable: true},
		KLWeight:    0.5,
	}, rand.New(rand.NewSource(8)), backend)
	require.NoError(t, err)

	backend.Tape().StartRecording()
	x := tensor.Ones(tensor.Shape{3, 2}, backend)
	loss := layer.Forward(x, nn.ModeTrain).Sum().Add(layer.KL())
	grads := autodiff.Backward(loss, backend)

	for _, p := range layer.Parameters() {
		assert.Contains(t, grads, p.Tensor().Raw(), p.Name())
	}
}
