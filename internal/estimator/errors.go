package estimator

import (
	"errors"

	"github.com/born-ml/nfcde/internal/distributions"
	"github.com/born-ml/nfcde/internal/flows"
	"github.com/born-ml/nfcde/internal/nn"
)

// ErrInvalidConfig indicates a hyperparameter that fails a precondition.
var ErrInvalidConfig = errors.New("estimator: invalid config")

// Errors from the packages the estimator is built on, re-exported so callers
// need a single import.
var (
	ErrUnknownFlow       = flows.ErrUnknownFlow
	ErrParamSizeMismatch = flows.ErrParamSizeMismatch
	ErrNotInvertible     = flows.ErrNotInvertible
	ErrShapeMismatch     = distributions.ErrShapeMismatch
	ErrUnknownActivation = nn.ErrUnknownActivation
)
