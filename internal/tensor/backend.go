package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations and never
// modify their inputs.
//
// Implementations:
//   - cpu.CPUBackend: pure Go forward numerics
//   - autodiff.AutodiffBackend: decorator that records every op on a tape
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul multiplies 2-D matrices: (M, K) @ (K, N) → (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Scalar operations (element-wise with scalar).
	AddScalar(x *RawTensor, scalar float64) *RawTensor
	MulScalar(x *RawTensor, scalar float64) *RawTensor

	// Math operations (element-wise).
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor
	// Softplus computes log(1 + exp(x)).
	Softplus(x *RawTensor) *RawTensor

	// Sum reduces all elements to a scalar.
	Sum(x *RawTensor) *RawTensor
	// SumDim reduces along one dimension.
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Reshape returns a tensor with the same data and a new shape.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	// Transpose swaps the two axes of a 2-D tensor.
	Transpose(x *RawTensor) *RawTensor
	// Narrow slices [start, start+length) along dim.
	Narrow(x *RawTensor, dim, start, length int) *RawTensor
	// Cat concatenates tensors along dim.
	Cat(tensors []*RawTensor, dim int) *RawTensor

	// Name returns a human-readable backend name.
	Name() string
}
