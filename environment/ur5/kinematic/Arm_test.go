package kinematic

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/samuelfneumann/ur5reach/environment/ur5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestArm(t *testing.T, opts ...Option) *Arm {
	t.Helper()
	a, err := NewArm(ur5.Names(""), ur5.Home, opts...)
	require.NoError(t, err)
	return a
}

func assertVec(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5)
	assert.InDelta(t, want.Y, got.Y, 1e-5)
	assert.InDelta(t, want.Z, got.Z, 1e-5)
}

func TestForwardKinematicsAtHome(t *testing.T) {
	a := newTestArm(t)
	ctx := context.Background()

	tests := map[string]r3.Vec{
		ur5.ShoulderLink:    {Z: 0.68916},
		ur5.ForearmLink:     {Z: 1.11416},
		ur5.Wrist1Link:      {Z: 1.50641},
		ur5.EndEffectorLink: {Y: -0.19145, Z: 1.60106},
	}
	for link, want := range tests {
		pose, err := a.Lookup(ctx, link, ur5.WorldFrame)
		require.NoError(t, err, link)
		assertVec(t, want, pose.Position)
	}

	pose, err := a.Lookup(ctx, ur5.Wrist1Link, ur5.ShoulderLink)
	require.NoError(t, err)
	assert.InDelta(t, 0.81725, r3.Norm(pose.Position), 1e-5)

	pose, err = a.Lookup(ctx, ur5.WorldFrame, ur5.WorldFrame)
	require.NoError(t, err)
	assert.Equal(t, ur5.Pose{}, pose)
}

func TestBaseOffset(t *testing.T) {
	a := newTestArm(t, WithBase(r3.Vec{X: 1, Y: 2, Z: 0}))
	ctx := context.Background()

	pose, err := a.Lookup(ctx, ur5.EndEffectorLink, ur5.WorldFrame)
	require.NoError(t, err)
	assertVec(t, r3.Vec{X: 1, Y: 2 - 0.19145, Z: 1.00106}, pose.Position)

	// Link-relative lookups do not depend on where the base is
	pose, err = a.Lookup(ctx, ur5.Wrist1Link, ur5.ShoulderLink)
	require.NoError(t, err)
	assert.InDelta(t, 0.81725, r3.Norm(pose.Position), 1e-5)
}

func TestFoldedElbowIsCollision(t *testing.T) {
	a := newTestArm(t)
	folded := ur5.Home
	folded[2] = math.Pi

	err := a.Execute(context.Background(), ur5.Names(""),
		[]ur5.Waypoint{{Positions: folded}})
	require.NoError(t, err)
	assert.Equal(t, folded, a.Joints())

	pose, err := a.Lookup(context.Background(), ur5.Wrist1Link,
		ur5.ShoulderLink)
	require.NoError(t, err)
	assert.Less(t, r3.Norm(pose.Position), ur5.CollisionThreshold)
}

func TestLookupUnknownFrame(t *testing.T) {
	a := newTestArm(t)
	_, err := a.Lookup(context.Background(), "gripper_link", ur5.WorldFrame)
	assert.ErrorIs(t, err, ur5.ErrFrameNotReady)
}

func TestWarmup(t *testing.T) {
	a := newTestArm(t, WithWarmup(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := a.Lookup(ctx, ur5.EndEffectorLink, ur5.WorldFrame)
		assert.ErrorIs(t, err, ur5.ErrFrameNotReady)
	}
	_, err := a.Lookup(ctx, ur5.EndEffectorLink, ur5.WorldFrame)
	assert.NoError(t, err)
	assert.Equal(t, 3, a.Lookups())
}

func TestExecuteValidation(t *testing.T) {
	a := newTestArm(t)
	ctx := context.Background()
	point := []ur5.Waypoint{{Positions: ur5.Home}}

	assert.Error(t, a.Execute(ctx, ur5.Names("")[:5], point))
	assert.Error(t, a.Execute(ctx, ur5.Names("other_"), point))
	assert.Error(t, a.Execute(ctx, ur5.Names(""), nil))
	assert.Error(t, a.Execute(ctx, ur5.Names(""), []ur5.Waypoint{
		{TimeFromStart: time.Second},
		{TimeFromStart: time.Millisecond},
	}))
}

func TestExecuteOneAtATime(t *testing.T) {
	a := newTestArm(t, WithTimeScale(1))
	ctx := context.Background()
	slow := []ur5.Waypoint{{Positions: ur5.Home, TimeFromStart: 500 * time.Millisecond}}

	done := make(chan error)
	go func() {
		done <- a.Execute(ctx, ur5.Names(""), slow)
	}()

	// Give the first trajectory time to start
	time.Sleep(50 * time.Millisecond)

	err := a.Execute(ctx, ur5.Names(""), []ur5.Waypoint{{Positions: ur5.Home}})
	assert.ErrorIs(t, err, ErrBusy)
	assert.NoError(t, <-done)
}

func TestExecuteCancelled(t *testing.T) {
	a := newTestArm(t, WithTimeScale(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Execute(ctx, ur5.Names(""), []ur5.Waypoint{
		{Positions: ur5.JointConfiguration{1}, TimeFromStart: time.Hour},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ur5.Home, a.Joints())
}

func TestReplaceMarker(t *testing.T) {
	a := newTestArm(t)
	ctx := context.Background()
	first := ur5.Pose{Position: r3.Vec{X: 1}}
	second := ur5.Pose{Position: r3.Vec{X: 2}}

	require.NoError(t, a.Replace(ctx, "reel", first))
	require.NoError(t, a.Replace(ctx, "reel", second))

	got, ok := a.Marker("reel")
	require.True(t, ok)
	assert.Equal(t, second, got)
	_, ok = a.Marker("missing")
	assert.False(t, ok)
}

// TestEnvironment drives a UR5 environment with the kinematic arm
func TestEnvironment(t *testing.T) {
	cfg := ur5.DefaultConfig()
	cfg.Seed = 3
	cfg.JointPrefix = "ur5_"
	cfg.PoseRetryInitial = time.Millisecond

	arm, err := NewArm(ur5.Names(cfg.JointPrefix), cfg.InitJoints,
		WithWarmup(3))
	require.NoError(t, err)

	env, err := ur5.New(context.Background(), cfg, arm, arm, arm)
	require.NoError(t, err)

	step, err := env.Reset()
	require.NoError(t, err)
	assert.True(t, step.First())

	marker, ok := arm.Marker(ur5.DefaultMarkerID)
	require.True(t, ok)
	assert.Equal(t, env.State().Goal.Position, marker.Position)

	action := mat.NewVecDense(ur5.ActionDims, []float64{2.2, 0, -1.57, 0, 0})
	step, done, err := env.Step(action)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, env.State().Joints, arm.Joints())
	assert.Less(t, step.Reward, 0.0)

	// Folding the elbow onto the shoulder ends the episode
	fold := mat.NewVecDense(ur5.ActionDims, []float64{0, 0, 36 + 1.57, 0, 0})
	step, done, err = env.Step(fold)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, ur5.CollisionReward, step.Reward)

	_, err = env.Reset()
	require.NoError(t, err)
	assert.Equal(t, ur5.Home, arm.Joints())
}
