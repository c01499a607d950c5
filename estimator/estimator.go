// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package estimator provides the public API for conditional density
// estimation with normalizing flows.
//
// Example:
//
//	cfg := estimator.DefaultConfig(1)
//	e, err := estimator.New(cfg)
//	history, err := e.Fit(x, y, estimator.DefaultFitOptions(300))
//	dist, err := e.Forward(xTest, nn.ModeInfer)
//	lp, err := dist.LogProb(yTest)
package estimator

import (
	"math/rand"

	"github.com/born-ml/nfcde/internal/estimator"
	"github.com/born-ml/nfcde/nn"
	"github.com/born-ml/nfcde/tensor"
)

// Estimator is a conditional density estimator.
type Estimator = estimator.Estimator

// Config holds the hyperparameters of an estimator.
type Config = estimator.Config

// Kind distinguishes the estimator variants.
type Kind = estimator.Kind

// Variants.
const (
	MaximumLikelihood = estimator.MaximumLikelihood
	Bayesian          = estimator.Bayesian
)

// FitOptions controls a training run.
type FitOptions = estimator.FitOptions

// History records the mean training loss of every epoch.
type History = estimator.History

// NetworkConfig describes the dense network that produces distribution parameters.
type NetworkConfig = estimator.NetworkConfig

// VariationalOptions configures the layers of a Bayesian network.
type VariationalOptions = estimator.VariationalOptions

// BuildDenseLayers returns the layers of a network described by cfg:
// optional input noise, the hidden layers and a linear output layer.
func BuildDenseLayers(cfg NetworkConfig, rng *rand.Rand, backend tensor.Backend) ([]nn.Module, error) {
	return estimator.BuildDenseLayers(cfg, rng, backend)
}

// Errors.
var (
	ErrInvalidConfig     = estimator.ErrInvalidConfig
	ErrUnknownFlow       = estimator.ErrUnknownFlow
	ErrParamSizeMismatch = estimator.ErrParamSizeMismatch
	ErrNotInvertible     = estimator.ErrNotInvertible
	ErrShapeMismatch     = estimator.ErrShapeMismatch
	ErrUnknownActivation = estimator.ErrUnknownActivation
)

// New creates a maximum-likelihood estimator.
func New(cfg Config) (*Estimator, error) {
	return estimator.New(cfg)
}

// NewBayesian creates a Bayesian estimator.
func NewBayesian(cfg Config) (*Estimator, error) {
	return estimator.NewBayesian(cfg)
}

// FromConfig creates the variant selected by cfg.Bayesian.
func FromConfig(cfg Config) (*Estimator, error) {
	return estimator.FromConfig(cfg)
}

// Load rebuilds an estimator from a checkpoint written by Estimator.Save.
func Load(path string) (*Estimator, error) {
	return estimator.Load(path)
}

// DefaultConfig returns the maximum-likelihood defaults for dims outputs.
func DefaultConfig(dims int) Config {
	return estimator.DefaultConfig(dims)
}

// DefaultBayesianConfig returns the Bayesian defaults for dims outputs.
func DefaultBayesianConfig(dims int) Config {
	return estimator.DefaultBayesianConfig(dims)
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	return estimator.LoadConfig(path)
}

// ParseConfig decodes and validates a YAML config.
func ParseConfig(data []byte) (Config, error) {
	return estimator.ParseConfig(data)
}

// DefaultFitOptions returns shuffled training for the given number of epochs.
func DefaultFitOptions(epochs int) FitOptions {
	return estimator.DefaultFitOptions(epochs)
}
