package optim_test

import (
	"testing"

	"github.com/born-ml/nfcde/internal/autodiff"
	"github.com/born-ml/nfcde/internal/backend/cpu"
	"github.com/born-ml/nfcde/internal/nn"
	"github.com/born-ml/nfcde/internal/optim"
	"github.com/born-ml/nfcde/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scalarParam(t *testing.T, value float64, backend tensor.Backend) *nn.Parameter {
	t.Helper()
	x, err := tensor.FromSlice([]float64{value}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	return nn.NewParameter("x", x)
}

func gradOf(param *nn.Parameter, value float64) map[*tensor.RawTensor]*tensor.RawTensor {
	grad := tensor.MustRaw(tensor.Shape{1})
	grad.Data()[0] = value
	return map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): grad}
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	param := scalarParam(t, 2.0, cpu.New())
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})

	optimizer.Step(gradOf(param, 1.0))

	assert.InDelta(t, 1.9, param.Tensor().Item(), 1e-12)
	require.NotNil(t, param.Grad())
	optimizer.ZeroGrad()
	assert.Nil(t, param.Grad())
}

// TestSGD_Momentum tests that velocity accumulates across steps.
func TestSGD_Momentum(t *testing.T) {
	param := scalarParam(t, 0, cpu.New())
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	optimizer.Step(gradOf(param, 1.0)) // v = 1,   x = -0.1
	optimizer.Step(gradOf(param, 1.0)) // v = 1.9, x = -0.29

	assert.InDelta(t, -0.29, param.Tensor().Item(), 1e-12)
}

// TestAdam_FirstStep tests that the first bias-corrected step moves by about lr.
func TestAdam_FirstStep(t *testing.T) {
	param := scalarParam(t, 1.0, cpu.New())
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.02})

	optimizer.Step(gradOf(param, 5.0))

	assert.InDelta(t, 0.98, param.Tensor().Item(), 1e-6)
	assert.Equal(t, 0.02, optimizer.GetLR())
	assert.Equal(t, 1, optimizer.StepCount())
}

// TestAdam_SkipsMissingGradients tests that parameters outside the graph are untouched.
func TestAdam_SkipsMissingGradients(t *testing.T) {
	used := scalarParam(t, 1.0, cpu.New())
	unused := scalarParam(t, 3.0, cpu.New())
	optimizer := optim.NewAdam([]*nn.Parameter{used, unused}, optim.AdamConfig{})

	optimizer.Step(gradOf(used, 1.0))

	assert.Equal(t, 3.0, unused.Tensor().Item())
	assert.Less(t, used.Tensor().Item(), 1.0)
}

// TestAdam_Minimize tests convergence on (x - 3)² through the autodiff tape.
func TestAdam_Minimize(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	param := scalarParam(t, 0, backend)
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.1})

	tape.StartRecording()
	for range 500 {
		loss := param.Tensor().AddScalar(-3).Square().Sum()
		optimizer.Step(autodiff.Backward(loss, backend))
		optimizer.ZeroGrad()
		tape.Clear()
	}
	tape.StopRecording()

	assert.InDelta(t, 3.0, param.Tensor().Item(), 1e-2)
}
