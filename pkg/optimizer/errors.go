package optimizer

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMalformedInstructionStream is returned when a stream cannot be
	// divided into elements, e.g. a DRAW with no preceding MOVE.
	ErrMalformedInstructionStream = errors.New("malformed instruction stream")

	// ErrSolverFailure is returned by the TSP strategy when the solver gives
	// no usable tour. Callers are expected to fall back to a heuristic.
	ErrSolverFailure = errors.New("solver failure")
)

// MalformedStreamError points at the offending instruction.
type MalformedStreamError struct {
	Index  int
	Reason string
}

func (e *MalformedStreamError) Error() string {
	return fmt.Sprintf("%v: instruction %d: %s", ErrMalformedInstructionStream, e.Index, e.Reason)
}

func (e *MalformedStreamError) Unwrap() error {
	return ErrMalformedInstructionStream
}
