// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package flows provides the public API for normalizing-flow bijectors.
//
// A flow family is registered under a name together with its parameter
// count per dimensionality. The built-in families are identity, affine,
// planar and radial. Custom families can be added to a Registry:
//
//	reg := flows.DefaultRegistry()
//	err := reg.Register(flows.Spec{
//	    Name:      "shift",
//	    ParamSize: func(dims int) int { return dims },
//	    Factory:   newShift,
//	})
package flows

import (
	"github.com/born-ml/nfcde/internal/flows"
	"github.com/born-ml/nfcde/tensor"
)

// Bijector is an invertible transform with a computable log-determinant Jacobian.
type Bijector = flows.Bijector

// Inverter is implemented by bijectors that can map base-space points back.
type Inverter = flows.Inverter

// Factory builds a bijector from its parameter slice.
type Factory = flows.Factory

// Spec describes a flow family.
type Spec = flows.Spec

// Registry maps flow names to their Specs.
type Registry = flows.Registry

// Chain composes bijectors.
type Chain = flows.Chain

// UnknownFlowError reports an unregistered flow name.
type UnknownFlowError = flows.UnknownFlowError

// ParamSizeMismatchError reports the expected and actual parameter counts.
type ParamSizeMismatchError = flows.ParamSizeMismatchError

// Errors.
var (
	ErrUnknownFlow       = flows.ErrUnknownFlow
	ErrDuplicateFlow     = flows.ErrDuplicateFlow
	ErrInvalidSpec       = flows.ErrInvalidSpec
	ErrParamSizeMismatch = flows.ErrParamSizeMismatch
	ErrNotInvertible     = flows.ErrNotInvertible
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return flows.NewRegistry()
}

// DefaultRegistry returns a registry holding the built-in flows.
func DefaultRegistry() *Registry {
	return flows.DefaultRegistry()
}

// TotalParamSize returns the parameter count of names in dims dimensions,
// plus 2·dims for a trainable base.
func TotalParamSize(reg *Registry, names []string, dims int, trainableBase bool) (int, error) {
	return flows.TotalParamSize(reg, names, dims, trainableBase)
}

// BuildChain slices params [N, P] into the bijectors named by names.
func BuildChain(reg *Registry, params *tensor.Tensor, names []string, dims int) (*Chain, error) {
	return flows.BuildChain(reg, params, names, dims)
}
