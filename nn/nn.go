// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for the network layers used by the
// estimators.
package nn

import (
	"github.com/born-ml/nfcde/internal/nn"
)

// Mode selects training or inference behavior.
type Mode = nn.Mode

// Modes.
const (
	ModeInfer = nn.ModeInfer
	ModeTrain = nn.ModeTrain
)

// Module is a network layer.
type Module = nn.Module

// Regularizer is a module that contributes a KL term to the loss.
type Regularizer = nn.Regularizer

// Parameter is a trainable tensor.
type Parameter = nn.Parameter

// Dense is a fully connected layer.
type Dense = nn.Dense

// DenseVariational is a fully connected layer with a Gaussian posterior
// over its weights.
type DenseVariational = nn.DenseVariational

// GaussianNoise adds N(0, stddev²) noise in training mode.
type GaussianNoise = nn.GaussianNoise

// Sequential chains modules.
type Sequential = nn.Sequential

// VariationalConfig configures a DenseVariational layer.
type VariationalConfig = nn.VariationalConfig

// PosteriorConfig configures the weight posterior.
type PosteriorConfig = nn.PosteriorConfig

// PriorConfig configures the weight prior.
type PriorConfig = nn.PriorConfig

// ErrUnknownActivation is returned for an unsupported activation name.
var ErrUnknownActivation = nn.ErrUnknownActivation

// ActivationNames returns the supported activation names.
func ActivationNames() []string {
	return nn.ActivationNames()
}

// CountParameters returns the number of scalars in params.
func CountParameters(params []*Parameter) int {
	return nn.CountParameters(params)
}
