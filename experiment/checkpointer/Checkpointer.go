// Package checkpointer periodically saves experiment data while an
// experiment is running
package checkpointer

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/ur5reach/timestep"
)

// Source is an object whose data can be checkpointed, such as a
// tracker.Tracker
type Source interface {
	Data() []float64
}

// Checkpointer checkpoints/saves data based on timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}

// write gob-encodes data to filename
func write(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create checkpoint file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("could not encode checkpoint: %w", err)
	}
	return nil
}
