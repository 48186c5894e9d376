// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"

	"github.com/samuelfneumann/ur5reach/experiment/tracker"
	ts "github.com/samuelfneumann/ur5reach/timestep"
	"gonum.org/v1/gonum/mat"
)

// Experiment outlines structs that can run experiments. Experiments
// send each environment TimeStep to their Trackers, which cache the data
// they are interested in until Save() is called. The Run() method will
// run all episodes until the maximum timestep limit is reached or the
// context is done. The RunEpisode() method will run a single episode.
type Experiment interface {
	Run(ctx context.Context) error

	// RunEpisode returns whether the step budget has been used up
	RunEpisode(ctx context.Context) (bool, error)

	// Save all tracked data to disk
	Save() error

	// Register adds a new tracker.Tracker to the (possibly already
	// running) experiment.
	Register(t tracker.Tracker)
}

// ContextEnvironment is an environment whose blocking operations can be
// cancelled. Experiments use these methods when an environment provides
// them.
type ContextEnvironment interface {
	ResetContext(ctx context.Context) (ts.TimeStep, error)
	StepContext(ctx context.Context, action *mat.VecDense) (ts.TimeStep,
		bool, error)
}
