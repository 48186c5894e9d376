// Package explore implements agents that explore an environment
// without learning, useful for exercising environments and as a
// performance baseline
package explore

import (
	"fmt"

	"github.com/samuelfneumann/ur5reach/agent"
	"github.com/samuelfneumann/ur5reach/environment"
	ts "github.com/samuelfneumann/ur5reach/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

var _ agent.Agent = (*Gaussian)(nil)

// Gaussian selects actions from a fixed, zero-mean Gaussian with
// independent dimensions. In evaluation mode it always selects the
// mean action. Gaussian never learns; its Learner methods do nothing.
type Gaussian struct {
	dist       *distmv.Normal
	actionDims int
	eval       bool
}

// NewGaussian returns a new Gaussian agent for the argument
// environment whose actions have standard deviation std in every
// dimension
func NewGaussian(env environment.Environment, std float64,
	seed uint64) (*Gaussian, error) {
	if std <= 0 {
		return nil, fmt.Errorf("newGaussian: standard deviation must be "+
			"positive, got %v", std)
	}
	actionDims := env.ActionSpec().Shape.Len()

	mean := make([]float64, actionDims)
	variance := make([]float64, actionDims)
	for i := range variance {
		variance[i] = std * std
	}
	cov := mat.NewDiagDense(actionDims, variance)

	dist, ok := distmv.NewNormal(mean, cov, rand.NewSource(seed))
	if !ok {
		return nil, fmt.Errorf("newGaussian: covariance matrix not " +
			"positive definite")
	}

	return &Gaussian{dist: dist, actionDims: actionDims}, nil
}

// SelectAction selects an action for the argument timestep
func (g *Gaussian) SelectAction(_ ts.TimeStep) *mat.VecDense {
	if g.eval {
		return mat.NewVecDense(g.actionDims, nil)
	}
	return mat.NewVecDense(g.actionDims, g.dist.Rand(nil))
}

// Eval sets the agent to evaluation mode
func (g *Gaussian) Eval() { g.eval = true }

// Train sets the agent to training mode
func (g *Gaussian) Train() { g.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (g *Gaussian) IsEval() bool { return g.eval }

func (g *Gaussian) Step() error                           { return nil }
func (g *Gaussian) Observe(mat.Vector, ts.TimeStep) error { return nil }
func (g *Gaussian) ObserveFirst(ts.TimeStep) error        { return nil }
func (g *Gaussian) EndEpisode()                           {}
