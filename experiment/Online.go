package experiment

import (
	"context"
	"fmt"

	"github.com/samuelfneumann/ur5reach/agent"
	env "github.com/samuelfneumann/ur5reach/environment"
	"github.com/samuelfneumann/ur5reach/experiment/checkpointer"
	"github.com/samuelfneumann/ur5reach/experiment/tracker"
	ts "github.com/samuelfneumann/ur5reach/timestep"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var _ Experiment = (*Online)(nil)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps     uint
	currentSteps uint
	episodes     int
	trackers     []tracker.Tracker
	checkpoints  []checkpointer.Checkpointer
	logger       *zap.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter
// is a slice of tracker.Tracker which determine what data is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	logger *zap.Logger, t ...tracker.Tracker) *Online {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Online{
		Environment: e,
		Agent:       a,
		maxSteps:    steps,
		trackers:    t,
		logger:      logger.Named("experiment"),
	}
}

// Register registers a tracker.Tracker with the Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// AddCheckpointer registers a checkpointer.Checkpointer, which sees
// every timestep after the Trackers have tracked it
func (o *Online) AddCheckpointer(c checkpointer.Checkpointer) {
	o.checkpoints = append(o.checkpoints, c)
}

// RunEpisode runs a single episode of the experiment
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step, err := o.reset(ctx)
	if err != nil {
		return true, fmt.Errorf("runEpisode: %w", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return true, fmt.Errorf("runEpisode: %w", err)
	}
	o.track(step)

	var episodeReturn float64
	for !step.Last() && o.currentSteps < o.maxSteps {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		o.currentSteps++

		// Select action, step in environment
		action := o.Agent.SelectAction(step)
		step, _, err = o.step(ctx, action)
		if err != nil {
			return true, fmt.Errorf("runEpisode: %w", err)
		}
		episodeReturn += step.Reward

		o.track(step)
		if err := o.checkpoint(step); err != nil {
			return true, fmt.Errorf("runEpisode: %w", err)
		}

		// Observe the timestep and step the agent
		if err := o.Agent.Observe(action, step); err != nil {
			return true, fmt.Errorf("runEpisode: %w", err)
		}
		if err := o.Agent.Step(); err != nil {
			return true, fmt.Errorf("runEpisode: %w", err)
		}
	}
	o.Agent.EndEpisode()
	o.episodes++

	o.logger.Info("Episode finished",
		zap.Int("episode", o.episodes),
		zap.Int("steps", step.Number),
		zap.Float64("return", episodeReturn),
		zap.Stringer("end", step.EndType))

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run(ctx context.Context) error {
	for {
		ended, err := o.RunEpisode(ctx)
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
	}
}

// Episodes returns the number of episodes run so far
func (o *Online) Episodes() int {
	return o.episodes
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return err
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}

func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpoints {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}

func (o *Online) reset(ctx context.Context) (ts.TimeStep, error) {
	if c, ok := o.Environment.(ContextEnvironment); ok {
		return c.ResetContext(ctx)
	}
	return o.Environment.Reset()
}

func (o *Online) step(ctx context.Context, action *mat.VecDense) (
	ts.TimeStep, bool, error) {
	if c, ok := o.Environment.(ContextEnvironment); ok {
		return c.StepContext(ctx, action)
	}
	return o.Environment.Step(action)
}
