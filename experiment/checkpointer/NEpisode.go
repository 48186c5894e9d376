package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/ur5reach/timestep"
)

// nEpisode implements checkpointing every N finished episodes
type nEpisode struct {
	interval int
	episodes int
	source   Source

	// filename returns the name of the file to save the next checkpoint
	// in. Use Enumerated to number checkpoints consecutively or
	// Timestamped to stamp them with the current time.
	filename func() string
}

// NewNEpisode returns a checkpointer that saves the data of source
// every n finished episodes. An episode is finished when the
// checkpointer sees its last timestep.
func NewNEpisode(n int, source Source, filename func() string) (
	Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNEpisode: interval must be positive, "+
			"got %v", n)
	}
	return &nEpisode{
		interval: n,
		source:   source,
		filename: filename,
	}, nil
}

// Checkpoint saves the source data if t finishes the n-th episode
// since the last checkpoint
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	n.episodes++
	if n.episodes%n.interval != 0 {
		return nil
	}

	if err := write(n.filename(), n.source.Data()); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}
