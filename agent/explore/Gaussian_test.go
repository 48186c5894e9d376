package explore

import (
	"context"
	"testing"

	"github.com/samuelfneumann/ur5reach/environment/ur5"
	"github.com/samuelfneumann/ur5reach/environment/ur5/kinematic"
	ts "github.com/samuelfneumann/ur5reach/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func newEnv(t *testing.T) *ur5.UR5 {
	t.Helper()
	cfg := ur5.DefaultConfig()
	arm, err := kinematic.NewArm(ur5.Names(""), cfg.InitJoints)
	require.NoError(t, err)
	env, err := ur5.New(context.Background(), cfg, arm, arm, arm)
	require.NoError(t, err)
	return env
}

func TestNewGaussian(t *testing.T) {
	env := newEnv(t)

	_, err := NewGaussian(env, 0, 1)
	assert.Error(t, err)

	g, err := NewGaussian(env, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, ur5.ActionDims, g.SelectAction(ts.TimeStep{}).Len())
}

func TestGaussianStatistics(t *testing.T) {
	g, err := NewGaussian(newEnv(t), 2, 11)
	require.NoError(t, err)

	samples := make([]float64, 5000)
	for i := range samples {
		samples[i] = g.SelectAction(ts.TimeStep{}).AtVec(0)
	}
	mean, std := stat.MeanStdDev(samples, nil)
	assert.InDelta(t, 0, mean, 0.15)
	assert.InDelta(t, 2, std, 0.15)
}

func TestGaussianEval(t *testing.T) {
	g, err := NewGaussian(newEnv(t), 1, 1)
	require.NoError(t, err)

	g.Eval()
	assert.True(t, g.IsEval())
	assert.Equal(t, make([]float64, ur5.ActionDims),
		g.SelectAction(ts.TimeStep{}).RawVector().Data)

	g.Train()
	assert.False(t, g.IsEval())
}

func TestGaussianConfig(t *testing.T) {
	env := newEnv(t)

	assert.Error(t, GaussianConfig{}.Validate())
	_, err := GaussianConfig{Std: -1}.CreateAgent(env, 1)
	assert.Error(t, err)

	a, err := GaussianConfig{Std: 0.5, Eval: true}.CreateAgent(env, 3)
	require.NoError(t, err)
	assert.True(t, a.IsEval())
	assert.IsType(t, &Gaussian{}, a)
}
