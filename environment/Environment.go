// Package environment outlines the interfaces and structs needed to implement
// concrete environments
package environment

import (
	ts "github.com/samuelfneumann/ur5reach/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes should be ended
type Ender interface {
	// End determines whether the episode should end at the argument
	// TimeStep. If so, End marks the TimeStep as the last in the
	// episode and returns true.
	End(*ts.TimeStep) bool
}

// Task implements the reward scheme for taking actions in some environment
type Task interface {
	Starter
	Ender
	AtGoal(state mat.Matrix) bool
}

// Environment implements a simualted environment, which includes a Task to
// complete
type Environment interface {
	Task
	Reset() (ts.TimeStep, error) // Resets between episodes
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
