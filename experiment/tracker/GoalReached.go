package tracker

import (
	"fmt"

	ts "github.com/samuelfneumann/ur5reach/timestep"
)

// GoalReached tracks the number of steps in each episode on which the
// agent was credited for being inside the goal region
type GoalReached struct {
	current  int
	episodes []float64
	filename string
}

// NewGoalReached returns a new GoalReached tracker which will save its
// data at the specified location filename
func NewGoalReached(filename string) *GoalReached {
	return &GoalReached{filename: filename}
}

// Track counts the timestep if it reached the goal
func (g *GoalReached) Track(t ts.TimeStep) {
	if t.First() {
		g.current = 0
	}
	if t.Reached {
		g.current++
	}
	if t.Last() {
		g.episodes = append(g.episodes, float64(g.current))
		g.current = 0
	}
}

// Data returns the number of goal steps of each finished episode
func (g *GoalReached) Data() []float64 {
	return g.episodes
}

// Save saves the data tracked by the GoalReached Tracker to disk.
func (g *GoalReached) Save() error {
	if err := save(g.filename, g.episodes); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
