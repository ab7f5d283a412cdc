package solver

import "fmt"

// NoBoundStateError reports a bracketing search that reached the energy
// ceiling without finding a sign change of the boundary value.
type NoBoundStateError struct {
	Subband int
	Ceiling float64 // J
}

func (e *NoBoundStateError) Error() string {
	return fmt.Sprintf("no bound state found for subband %d below %g J", e.Subband, e.Ceiling)
}

// NewtonDivergenceError reports a Newton-Raphson refinement that hit a zero
// or non-finite derivative, or failed to settle within the iteration cap.
type NewtonDivergenceError struct {
	Subband int
	Energy  float64 // J, last trial energy
	Reason  string
}

func (e *NewtonDivergenceError) Error() string {
	return fmt.Sprintf("newton refinement diverged for subband %d near %g J: %s", e.Subband, e.Energy, e.Reason)
}

// ConvergenceError reports a self-consistency loop that exhausted its
// iteration budget.
type ConvergenceError struct {
	Iterations int
	LastDelta  float64 // meV, last ground-state energy change
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("self-consistency not reached after %d iterations (last ground-state change %g meV)", e.Iterations, e.LastDelta)
}
