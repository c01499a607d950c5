// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Element-wise operations run as plain loops, split across goroutines for
// large tensors. Matrix multiplication uses gonum.
//
// Example:
//
//	import (
//	    "github.com/born-ml/nfcde/backend/cpu"
//	    "github.com/born-ml/nfcde/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros(tensor.Shape{2, 3}, backend)
//	}
package cpu

import (
	internalcpu "github.com/born-ml/nfcde/internal/backend/cpu"
	"github.com/born-ml/nfcde/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
func New() *Backend {
	return internalcpu.New()
}
