// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for float64 tensors.
//
// The package exposes:
//   - Tensor: dense row-major tensor bound to a Backend
//   - RawTensor: backend-level storage behind a Tensor
//   - Backend: interface for compute implementations
//   - Shape: tensor dimensions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Linspace(-1, 1, 10, backend) // Shape: [10, 1]
//	y := x.MulScalar(2).AddScalar(1)
package tensor

import (
	"math/rand"

	"github.com/born-ml/nfcde/internal/tensor"
)

// Tensor is a dense float64 tensor.
type Tensor = tensor.Tensor

// RawTensor is the storage behind a Tensor.
type RawTensor = tensor.RawTensor

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Backend implements the operations on RawTensors.
type Backend = tensor.Backend

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, b Backend) *Tensor {
	return tensor.Zeros(shape, b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return tensor.Ones(shape, b)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, b Backend) *Tensor {
	return tensor.Full(shape, value, b)
}

// Randn creates a tensor of standard normal draws from rng.
func Randn(shape Shape, rng *rand.Rand, b Backend) *Tensor {
	return tensor.Randn(shape, rng, b)
}

// Linspace returns n evenly spaced values from start to stop as a [n, 1] tensor.
func Linspace(start, stop float64, n int, b Backend) *Tensor {
	return tensor.Linspace(start, stop, n, b)
}

// FromSlice creates a tensor of the given shape over a copy of data.
func FromSlice(data []float64, shape Shape, b Backend) (*Tensor, error) {
	return tensor.FromSlice(data, shape, b)
}

// FromRows creates a [len(rows), len(rows[0])] tensor.
func FromRows(rows [][]float64, b Backend) (*Tensor, error) {
	return tensor.FromRows(rows, b)
}
