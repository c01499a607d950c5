// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package distributions provides the public API for the output
// distributions of a density estimator.
//
// Example:
//
//	layer, err := distributions.NewFlowLayer(nil, []string{"radial", "radial"}, 1, true)
//	dist, err := layer.Distribution(params) // params: [N, layer.ParamSize()]
//	lp, err := dist.LogProb(y)              // lp: [N]
package distributions

import (
	"github.com/born-ml/nfcde/flows"
	"github.com/born-ml/nfcde/internal/distributions"
	"github.com/born-ml/nfcde/tensor"
)

// Distribution is a batch of densities over points in R^dims.
type Distribution = distributions.Distribution

// Sampler is implemented by distributions that can draw samples.
type Sampler = distributions.Sampler

// Moments is implemented by distributions with closed-form moments.
type Moments = distributions.Moments

// Layer turns network outputs into distributions.
type Layer = distributions.Layer

// Normal is a batch of diagonal Gaussians.
type Normal = distributions.Normal

// Transformed is a base normal pushed through a chain of flows.
type Transformed = distributions.Transformed

// MeanFieldLayer builds independent per-dimension Gaussians.
type MeanFieldLayer = distributions.MeanFieldLayer

// FlowLayer builds flow-transformed distributions.
type FlowLayer = distributions.FlowLayer

// ErrShapeMismatch indicates incompatible point or parameter shapes.
var ErrShapeMismatch = distributions.ErrShapeMismatch

// NewNormal creates a diagonal normal from loc and scale [N, dims].
func NewNormal(loc, scale *tensor.Tensor) (*Normal, error) {
	return distributions.NewNormal(loc, scale)
}

// StandardNormal returns N(0, I) in dims dimensions.
func StandardNormal(dims int, backend tensor.Backend) *Normal {
	return distributions.StandardNormal(dims, backend)
}

// KLDivergence returns KL(q‖p) per batch element.
func KLDivergence(q, p *Normal) (*tensor.Tensor, error) {
	return distributions.KLDivergence(q, p)
}

// NewFlowLayer creates a flow distribution layer. A nil registry selects
// flows.DefaultRegistry.
func NewFlowLayer(reg *flows.Registry, names []string, dims int, trainableBase bool) (*FlowLayer, error) {
	return distributions.NewFlowLayer(reg, names, dims, trainableBase)
}
