package engine

import "errors"

var (
	// ErrInvalidInput indicates negative, NaN or infinite lengths, non-positive
	// quantities, or a checkpoint that does not belong to the problem.
	ErrInvalidInput = errors.New("engine: invalid input")
	// ErrSearchTooLarge indicates rods^pieces exceeds the configured limit.
	ErrSearchTooLarge = errors.New("engine: search space too large")
	// ErrNoFeasibleSolution indicates no assignment keeps every remainder
	// non-negative. Optimize itself reports this as a nil solution; the error
	// form is for callers that must fail.
	ErrNoFeasibleSolution = errors.New("engine: no feasible assignment")
)
