// Package tracker implements Trackers, which track and save data in an
// experiment
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/ur5reach/timestep"
	"gonum.org/v1/gonum/stat"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
	Data() []float64
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %w", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %w", err)
	}

	return data, nil
}

// Summary summarizes the data of a Tracker
type Summary struct {
	Episodes int
	Mean     float64
	Std      float64
	Last     float64
}

// Summarize returns a Summary of the data tracked by t
func Summarize(t Tracker) Summary {
	data := t.Data()
	if len(data) == 0 {
		return Summary{}
	}

	s := Summary{Episodes: len(data), Last: data[len(data)-1]}
	if len(data) == 1 {
		s.Mean = data[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(data, nil)
	return s
}

// save gob-encodes data to filename
func save(filename string, data []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("could not encode data: %w", err)
	}
	return nil
}
