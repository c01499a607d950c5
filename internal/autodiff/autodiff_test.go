package autodiff_test

import (
	"testing"

	"github.com/born-ml/nfcde/internal/autodiff"
	"github.com/born-ml/nfcde/internal/backend/cpu"
	"github.com/born-ml/nfcde/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAutodiffBackend_Name tests the Name method.
func TestAutodiffBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	assert.Equal(t, "Autodiff(CPU)", backend.Name())
}

// TestTape_Recording tests tape recording on/off.
func TestTape_Recording(t *testing.T) {
	tape := autodiff.New(cpu.New()).Tape()

	assert.False(t, tape.IsRecording(), "tape should not record initially")
	tape.StartRecording()
	assert.True(t, tape.IsRecording())
	tape.StopRecording()
	assert.False(t, tape.IsRecording())
}

// TestTape_Clear tests that Clear drops ops but keeps the recording state.
func TestTape_Clear(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()

	a := tensor.Ones(tensor.Shape{2}, backend)
	b := tensor.Ones(tensor.Shape{2}, backend)
	a.Add(b)
	require.Equal(t, 1, tape.NumOps())

	tape.Clear()
	assert.Equal(t, 0, tape.NumOps())
	assert.True(t, tape.IsRecording())
}

// TestTape_NotRecording tests that ops are not recorded while stopped.
func TestTape_NotRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())

	a := tensor.Ones(tensor.Shape{2}, backend)
	a.Mul(a).Exp()

	assert.Equal(t, 0, backend.Tape().NumOps())
}

// TestBackward_Square tests d(Σx²)/dx = 2x.
func TestBackward_Square(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, err := tensor.FromSlice([]float64{1, -2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	y := x.Mul(x).Sum()

	grads := autodiff.Backward(y, backend)
	require.Contains(t, grads, x.Raw())
	assert.InDeltaSlice(t, []float64{2, -4, 6}, grads[x.Raw()].Data(), 1e-12)
}

// TestBackward_SharedInput tests gradient accumulation when an input is reused.
func TestBackward_SharedInput(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// y = x*3 + exp(x), dy/dx = 3 + exp(x)
	x, err := tensor.FromSlice([]float64{0.5}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	y := x.MulScalar(3).Add(x.Exp()).Sum()

	grads := autodiff.Backward(y, backend)
	assert.InDelta(t, 3+1.6487212707001282, grads[x.Raw()].Data()[0], 1e-12)
}

// TestBackward_Linear tests gradients through a matmul with broadcast bias.
func TestBackward_Linear(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, err := tensor.FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}}, backend)
	require.NoError(t, err)
	w, err := tensor.FromRows([][]float64{{0.1}, {0.2}}, backend)
	require.NoError(t, err)
	bias := tensor.Zeros(tensor.Shape{1, 1}, backend)

	loss := x.MatMul(w).Add(bias).Sum()
	grads := autodiff.Backward(loss, backend)

	// dL/dw = column sums of x, dL/db = number of rows.
	assert.InDeltaSlice(t, []float64{9, 12}, grads[w.Raw()].Data(), 1e-12)
	assert.InDeltaSlice(t, []float64{3}, grads[bias.Raw()].Data(), 1e-12)
}

// TestBackward_DoesNotRecordGradients tests that the backward pass leaves the tape untouched.
func TestBackward_DoesNotRecordGradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	tape.StartRecording()

	x := tensor.Full(tensor.Shape{4}, 2, backend)
	y := x.Tanh().Mul(x).Sum()
	before := tape.NumOps()

	autodiff.Backward(y, backend)

	assert.Equal(t, before, tape.NumOps())
	assert.True(t, tape.IsRecording())
}

// TestBackward_PanicsOnEmptyTape tests the guard against a forgotten StartRecording.
func TestBackward_PanicsOnEmptyTape(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.Ones(tensor.Shape{1}, backend)

	assert.Panics(t, func() {
		autodiff.Backward(x.Sum(), backend)
	})
}
