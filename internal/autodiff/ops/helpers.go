package ops

import "github.com/born-ml/nfcde/internal/tensor"

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	result := tensor.MustRaw(targetShape)
	out := result.Data()

	gradStrides := gradShape.ComputeStrides()
	targetStrides := tensor.BroadcastStrides(targetShape, gradShape)
	for i, g := range grad.Data() {
		out[tensor.BroadcastIndex(i, gradStrides, targetStrides)] += g
	}

	return result
}

// broadcastTo expands t to targetShape by repeating along broadcast dimensions.
func broadcastTo(t *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	if t.Shape().Equal(targetShape) {
		return t
	}

	result := tensor.MustRaw(targetShape)
	out := result.Data()
	src := t.Data()

	targetStrides := targetShape.ComputeStrides()
	srcStrides := tensor.BroadcastStrides(t.Shape(), targetShape)
	for i := range out {
		out[i] = src[tensor.BroadcastIndex(i, targetStrides, srcStrides)]
	}

	return result
}

// elementwise computes fn(grad[i], a[i], b[i]) for same-shaped tensors.
// Used for derivatives that are cheaper to express per element than as a
// chain of backend calls.
func elementwise(grad, a, b *tensor.RawTensor, fn func(g, x, y float64) float64) *tensor.RawTensor {
	result := tensor.MustRaw(grad.Shape())
	out := result.Data()
	gd, ad, bd := grad.Data(), a.Data(), b.Data()
	for i := range out {
		out[i] = fn(gd[i], ad[i], bd[i])
	}
	return result
}
