// Package ur5 implements a reaching environment for a 6-joint UR5 arm.
// The agent moves the arm's end effector towards a randomized goal in
// 3D space by commanding joint displacements.
//
// The environment does not simulate the arm itself. It commands the arm
// through a TrajectoryExecutor, observes it through a PoseProvider, and
// places the goal marker through a WorldTargetManager, all of which are
// supplied by the surrounding platform.
package ur5

import (
	"context"
	"fmt"

	"github.com/samuelfneumann/ur5reach/environment"
	ts "github.com/samuelfneumann/ur5reach/timestep"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ObservationDims is the length of observations: the forearm and end
// effector displacements from the goal and the end effector distance,
// normalized together to unit length, followed by the in-goal flag.
const ObservationDims int = 8

var _ environment.Environment = (*UR5)(nil)

// UR5 implements the UR5 reaching environment.
//
// Actions are 5-dimensional, continuous vectors of joint displacements
// for every joint but wrist_3. Each action is scaled by ActionScale
// and added to the current joint configuration, which is then sent to
// the arm as a single waypoint. Joint limits are not enforced, so
// commands outside the arm's range are passed through unchanged.
//
// Observations are 8-dimensional:
//
//	[0:3] forearm position - goal position
//	[3:6] end effector position - goal position
//	[6]   distance(end effector, goal)
//	[7]   1 if the end effector is dwelling in the goal, else 0
//
// The first 7 features are divided by their joint Euclidean norm.
//
// Rewards and termination are determined by the Reach task.
//
// UR5 is not safe for concurrent use. Step and Reset block until the
// arm finishes moving and all poses are resolved.
type UR5 struct {
	*Reach
	cfg    Config
	names  []string
	home   []Waypoint
	logger *zap.Logger

	exec  TrajectoryExecutor
	poses PoseProvider
	world WorldTargetManager

	state    EpisodeState
	lastStep ts.TimeStep
}

// New returns a new UR5 environment. New blocks until the trajectory
// executor is ready, and fails if it does not become ready within
// cfg.ReadyTimeout. The arm is not moved until the first call to Reset.
func New(ctx context.Context, cfg Config, exec TrajectoryExecutor,
	poses PoseProvider, world WorldTargetManager, opts ...Option) (*UR5,
	error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("newUR5: invalid config: %w", err)
	}
	if exec == nil || poses == nil || world == nil {
		return nil, fmt.Errorf("newUR5: trajectory executor, pose " +
			"provider, and world target manager are required")
	}

	defaults := DefaultConfig()
	if cfg.PoseRetryInitial <= 0 {
		cfg.PoseRetryInitial = defaults.PoseRetryInitial
	}
	if cfg.PoseRetryMax <= 0 {
		cfg.PoseRetryMax = defaults.PoseRetryMax
	}

	u := &UR5{
		cfg:    cfg,
		names:  Names(cfg.JointPrefix),
		logger: zap.NewNop(),
		exec:   exec,
		poses:  poses,
		world:  world,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.Reach == nil {
		u.Reach = NewReach(cfg.BaseGoal.Position, cfg.GoalBounds, cfg.Seed,
			cfg.EpisodeCutoff)
	}

	readyCtx := ctx
	if cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		readyCtx, cancel = context.WithTimeout(ctx, cfg.ReadyTimeout)
		defer cancel()
	}
	u.logger.Info("Waiting for trajectory executor",
		zap.Duration("timeout", cfg.ReadyTimeout))
	if err := exec.WaitReady(readyCtx); err != nil {
		return nil, fmt.Errorf("newUR5: %w: %v", ErrExecutorNotReady, err)
	}

	u.state = EpisodeState{
		Joints: cfg.InitJoints,
		Goal:   cfg.BaseGoal,
	}
	u.home = []Waypoint{{
		Positions:     cfg.Home,
		TimeFromStart: cfg.WaypointDuration,
	}}

	return u, nil
}

// Step takes one environmental step given some action
func (u *UR5) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	return u.StepContext(context.Background(), action)
}

// StepContext takes one environmental step given some action. The
// returned TimeStep is the last in the episode if the arm collided with
// itself or the task's step limit was reached, in which case the
// returned bool is true.
func (u *UR5) StepContext(ctx context.Context, action *mat.VecDense) (
	ts.TimeStep, bool, error) {
	if action == nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w: nil action",
			ErrActionDims)
	}
	next, err := u.state.Joints.Advance(action)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %w", err)
	}

	points := []Waypoint{{
		Positions:     next,
		TimeFromStart: u.cfg.WaypointDuration,
	}}
	if err := u.exec.Execute(ctx, u.names, points); err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not execute "+
			"trajectory: %w", err)
	}
	u.state.Joints = next

	ee, err := u.awaitPose(ctx, EndEffectorLink, WorldFrame)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not get end "+
			"effector pose: %w", err)
	}
	wrist, err := u.awaitPose(ctx, Wrist1Link, ShoulderLink)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not get "+
			"collision pose: %w", err)
	}

	wasSolved := u.state.Solved
	outcome := u.Evaluate(&u.state, ee.Position, wrist.Position, action)
	if u.state.Solved && !wasSolved {
		u.logger.Info("Goal solved",
			zap.Int("step", u.lastStep.Number+1),
			zap.Int("dwell", u.state.Counter))
	}

	obs, err := u.observe(ctx)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not get next "+
			"state observation: %w", err)
	}

	t := ts.New(ts.Mid, outcome.Reward, u.cfg.Discount, obs,
		u.lastStep.Number+1)
	t.Reached = outcome.Reached
	if outcome.Terminal {
		u.logger.Info("Collision, ending episode",
			zap.Int("step", t.Number),
			zap.Float64("wrist_shoulder_distance", r3.Norm(wrist.Position)))
		t.SetEnd(ts.TerminalStateReached)
	} else {
		u.End(&t)
	}
	u.lastStep = t

	return t, t.Last(), nil
}

// Reset resets the environment to begin a new episode
func (u *UR5) Reset() (ts.TimeStep, error) {
	return u.ResetContext(context.Background())
}

// ResetContext returns the arm to its home configuration, samples a new
// goal, moves the goal marker, and returns the first TimeStep of the
// new episode.
func (u *UR5) ResetContext(ctx context.Context) (ts.TimeStep, error) {
	u.state.Counter = 0
	u.state.Solved = false

	if err := u.exec.Execute(ctx, u.names, u.home); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not move arm "+
			"home: %w", err)
	}
	u.state.Joints = u.cfg.Home

	u.state.Goal = Pose{
		Position:    u.SampleGoal(),
		Orientation: u.cfg.BaseGoal.Orientation,
	}
	marker := Pose{
		Position:    u.state.Goal.Position,
		Orientation: MarkerOrientation,
	}
	if err := u.world.Replace(ctx, u.cfg.MarkerID, marker); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not place goal "+
			"marker: %w", err)
	}
	u.logger.Debug("New goal",
		zap.Float64("x", u.state.Goal.Position.X),
		zap.Float64("y", u.state.Goal.Position.Y),
		zap.Float64("z", u.state.Goal.Position.Z))

	obs, err := u.observe(ctx)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not get starting "+
			"state observation: %w", err)
	}
	firstStep := ts.New(ts.First, 0, u.cfg.Discount, obs, 0)
	u.lastStep = firstStep

	return firstStep, nil
}

// observe returns a state observation
func (u *UR5) observe(ctx context.Context) (*mat.VecDense, error) {
	goal := u.state.Goal.Position

	forearm, err := u.awaitPose(ctx, ForearmLink, WorldFrame)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	ee, err := u.awaitPose(ctx, EndEffectorLink, WorldFrame)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	toForearm := r3.Sub(forearm.Position, goal)
	toEE := r3.Sub(ee.Position, goal)

	obs := []float64{
		toForearm.X, toForearm.Y, toForearm.Z,
		toEE.X, toEE.Y, toEE.Z,
		r3.Norm(toEE),
		0,
	}

	features := obs[:ObservationDims-1]
	if norm := floats.Norm(features, 2); norm > 0 {
		floats.Scale(1/norm, features)
	}
	if u.state.Counter > 0 {
		obs[ObservationDims-1] = 1
	}

	return mat.NewVecDense(ObservationDims, obs), nil
}

// State returns a copy of the current episode state
func (u *UR5) State() EpisodeState {
	return u.state
}

// JointNames returns the joint names sent with every trajectory
func (u *UR5) JointNames() []string {
	names := make([]string, len(u.names))
	copy(names, u.names)
	return names
}

// CurrentTimeStep returns the current time step
func (u *UR5) CurrentTimeStep() ts.TimeStep {
	return u.lastStep
}

// ActionSpec returns the action specification of the environment.
// Actions are unbounded since joint limits are not enforced.
func (u *UR5) ActionSpec() environment.Spec {
	return environment.NewUnboundedSpec(ActionDims, environment.Action)
}

// ObservationSpec returns the observation specification of the
// environment
func (u *UR5) ObservationSpec() environment.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	low := mat.NewVecDense(ObservationDims, nil)
	high := mat.NewVecDense(ObservationDims, nil)
	for i := 0; i < ObservationDims; i++ {
		low.SetVec(i, -1)
		high.SetVec(i, 1)
	}
	low.SetVec(ObservationDims-1, 0)

	return environment.NewSpec(shape, environment.Observation, low, high,
		environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (u *UR5) DiscountSpec() environment.Spec {
	bounds := mat.NewVecDense(1, []float64{u.cfg.Discount})

	return environment.NewSpec(mat.NewVecDense(1, nil), environment.Discount,
		bounds, bounds, environment.Continuous)
}

// String converts the environment to a string representation
func (u *UR5) String() string {
	str := "UR5  |  joints: %.3f  |  goal: %.3f  |  dwell: %v  |  solved: %v"
	return fmt.Sprintf(str, u.state.Joints, u.state.Goal.Position,
		u.state.Counter, u.state.Solved)
}
