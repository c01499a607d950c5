package autodiff

import (
	"fmt"

	"github.com/born-ml/nfcde/internal/tensor"
)

// Backward computes gradients of t using the backend's tape.
//
// The output gradient is seeded with ones, so for a scalar loss the returned
// map holds dLoss/dX for every recorded tensor X. Gradient arithmetic runs on
// the wrapped backend and is never recorded.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	x := tensor.Ones(tensor.Shape{2}, backend)
//	y := x.Mul(x).Sum() // y = Σx²
//	gradients := autodiff.Backward(y, backend)
//	grad := gradients[x.Raw()] // 2x
func Backward(t *tensor.Tensor, backend *AutodiffBackend) map[*tensor.RawTensor]*tensor.RawTensor {
	if backend.tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	outputGrad, err := tensor.NewRaw(t.Shape())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}
	data := outputGrad.Data()
	for i := range data {
		data[i] = 1
	}

	return backend.tape.Backward(t.Raw(), outputGrad, backend.inner)
}
