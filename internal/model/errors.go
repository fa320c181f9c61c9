package model

import (
	"errors"
	"fmt"
)

var (
	// ErrParameterValidation is returned for out-of-domain inputs, before any work starts.
	ErrParameterValidation = errors.New("invalid parameters")
	// ErrGridAlignment is returned when a maturity or payment time is not a whole
	// number of simulation steps, or falls outside the simulated horizon.
	ErrGridAlignment = errors.New("not aligned to simulation grid")
	// ErrNumericalDegeneracy is returned when a computation hits a value it cannot
	// take a logarithm of or divide by.
	ErrNumericalDegeneracy = errors.New("numerical degeneracy")
	// ErrUnknownModel is returned for an unrecognized model identifier.
	ErrUnknownModel = errors.New("unknown model")
)

// Invalidf builds an ErrParameterValidation error with a formatted reason.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParameterValidation, fmt.Sprintf(format, args...))
}

// DegeneracyError reports a non-positive simulated price on a specific path.
type DegeneracyError struct {
	Path     int
	Maturity float64
	Price    float64
}

func (e *DegeneracyError) Error() string {
	return fmt.Sprintf("%s: non-positive price %g on path %d at maturity %g",
		ErrNumericalDegeneracy, e.Price, e.Path, e.Maturity)
}

func (e *DegeneracyError) Unwrap() error { return ErrNumericalDegeneracy }
