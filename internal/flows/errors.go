package flows

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFlow indicates a flow name that is not in the registry.
	ErrUnknownFlow = errors.New("flows: unknown flow")
	// ErrDuplicateFlow indicates a second registration under the same name.
	ErrDuplicateFlow = errors.New("flows: flow already registered")
	// ErrInvalidSpec indicates a Spec with an empty name or nil functions.
	ErrInvalidSpec = errors.New("flows: invalid flow spec")
	// ErrParamSizeMismatch indicates a parameter tensor whose trailing
	// dimension differs from the total parameter size of the flows.
	ErrParamSizeMismatch = errors.New("flows: parameter size mismatch")
	// ErrNotInvertible indicates a chain containing a bijector without an inverse.
	ErrNotInvertible = errors.New("flows: bijector is not invertible")
)

// UnknownFlowError reports the requested name and the registered ones.
// It matches ErrUnknownFlow with errors.Is.
type UnknownFlowError struct {
	Name  string
	Known []string
}

func (e *UnknownFlowError) Error() string {
	return fmt.Sprintf("flows: unknown flow %q (registered: %v)", e.Name, e.Known)
}

func (e *UnknownFlowError) Unwrap() error {
	return ErrUnknownFlow
}

// ParamSizeMismatchError reports the expected and actual parameter counts.
// It matches ErrParamSizeMismatch with errors.Is.
type ParamSizeMismatchError struct {
	// Where names the component that detected the mismatch.
	Where string
	Want  int
	Got   int
}

func (e *ParamSizeMismatchError) Error() string {
	return fmt.Sprintf("flows: %s: parameter size mismatch: want %d, got %d", e.Where, e.Want, e.Got)
}

func (e *ParamSizeMismatchError) Unwrap() error {
	return ErrParamSizeMismatch
}
