package explore

import (
	"fmt"

	"github.com/samuelfneumann/ur5reach/agent"
	"github.com/samuelfneumann/ur5reach/environment"
)

var _ agent.Config = GaussianConfig{}

// GaussianConfig configures a Gaussian agent
type GaussianConfig struct {
	Std  float64 `mapstructure:"std" json:"std"`
	Eval bool    `mapstructure:"eval" json:"eval"`
}

// CreateAgent creates a Gaussian agent acting in env
func (c GaussianConfig) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createAgent: %w", err)
	}

	g, err := NewGaussian(env, c.Std, seed)
	if err != nil {
		return nil, fmt.Errorf("createAgent: %w", err)
	}
	if c.Eval {
		g.Eval()
	}
	return g, nil
}

// Validate checks that the standard deviation is positive
func (c GaussianConfig) Validate() error {
	if c.Std <= 0 {
		return fmt.Errorf("standard deviation must be positive, got %v",
			c.Std)
	}
	return nil
}
