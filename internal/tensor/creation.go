package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros(Shape{3, 4}, backend)
func Zeros(shape Shape, b Backend) *Tensor {
	return New(MustRaw(shape), b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return Full(shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(Shape{3, 3}, 3.14, backend)
func Full(shape Shape, value float64, b Backend) *Tensor {
	t := Zeros(shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, 1) using rng.
//
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
func Randn(shape Shape, rng *rand.Rand, b Backend) *Tensor {
	t := Zeros(shape, b)
	data := t.Data()
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return t
}

// Rand creates a tensor with values uniformly distributed in [0, 1).
func Rand(shape Shape, rng *rand.Rand, b Backend) *Tensor {
	t := Zeros(shape, b)
	data := t.Data()
	for i := range data {
		data[i] = rng.Float64()
	}
	return t
}

// Linspace creates a column tensor [n, 1] of n evenly spaced values
// from start to stop (inclusive).
//
// Example:
//
//	x := tensor.Linspace(-1, 1, 10, backend) // Shape: [10, 1]
func Linspace(start, stop float64, n int, b Backend) *Tensor {
	if n < 1 {
		panic(fmt.Sprintf("linspace: n must be positive, got %d", n))
	}

	t := Zeros(Shape{n, 1}, b)
	data := t.Data()
	if n == 1 {
		data[0] = start
		return t
	}

	step := (stop - start) / float64(n-1)
	for i := range data {
		data[i] = start + float64(i)*step
	}
	data[n-1] = stop
	return t
}
