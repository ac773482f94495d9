package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter reports a numeric argument that is non-finite, outside its
	// declared range, or supplied in the wrong number.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrParameterCount reports a constructor called with the wrong number of
	// positional parameters. It also matches ErrInvalidParameter.
	ErrParameterCount = fmt.Errorf("%w: wrong parameter count", ErrInvalidParameter)

	// ErrNonTerminating reports a rejection sampler or branching simulation that
	// exceeded its Limits.
	ErrNonTerminating = errors.New("simulation did not terminate within limits")

	// ErrShapeMismatch reports coordinates whose shape does not match the
	// dimensionality of the process.
	ErrShapeMismatch = errors.New("coordinate shape mismatch")
)
