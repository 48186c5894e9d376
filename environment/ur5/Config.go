package ur5

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// Frame and link names looked up through the PoseProvider
const (
	WorldFrame      = "world"
	ShoulderLink    = "shoulder_link"
	ForearmLink     = "forearm_link"
	Wrist1Link      = "wrist_1_link"
	EndEffectorLink = "ee_link"
)

// DefaultMarkerID is the name of the goal marker in the simulated world
const DefaultMarkerID = "reel_1_0"

var (
	// DefaultGoal is the goal around which new goals are sampled
	DefaultGoal = Pose{
		Position:    r3.Vec{X: -0.5, Y: -0.5, Z: 1.5},
		Orientation: r3.Vec{X: -1.57, Y: 1.57, Z: 0},
	}

	// DefaultGoalBounds are the half-widths of the interval each goal
	// coordinate is sampled from. The z bound is intentionally wider.
	DefaultGoalBounds = r3.Vec{X: 0.1, Y: 0.1, Z: 0.2}

	// MarkerOrientation is the roll-pitch-yaw at which goal markers are
	// spawned
	MarkerOrientation = r3.Vec{X: 1.571, Y: 0, Z: 0}
)

// Config configures a UR5 environment
type Config struct {
	// InitJoints is the joint configuration the arm is assumed to be
	// in when the environment is constructed
	InitJoints JointConfiguration

	// Home is the configuration the arm returns to on every Reset
	Home JointConfiguration

	// BaseGoal is the goal that Reset perturbs to create new goals
	BaseGoal   Pose
	GoalBounds r3.Vec

	// JointPrefix is a deployment-specific namespace prepended to every
	// joint name
	JointPrefix string
	MarkerID    string

	Seed          uint64
	Discount      float64
	EpisodeCutoff int // Zero means episodes only end at collisions

	// WaypointDuration is the time from start of each commanded waypoint
	WaypointDuration time.Duration

	// ReadyTimeout bounds how long New waits for the trajectory
	// executor. Zero waits forever.
	ReadyTimeout time.Duration

	// PoseTimeout bounds how long a single pose lookup is retried.
	// Zero retries until the frames appear, which can hang forever if a
	// frame is never published.
	PoseTimeout      time.Duration
	PoseRetryInitial time.Duration
	PoseRetryMax     time.Duration
}

// DefaultConfig returns the default environment configuration
func DefaultConfig() Config {
	return Config{
		InitJoints:       Home,
		Home:             Home,
		BaseGoal:         DefaultGoal,
		GoalBounds:       DefaultGoalBounds,
		MarkerID:         DefaultMarkerID,
		Discount:         0.99,
		WaypointDuration: 10 * time.Millisecond,
		PoseTimeout:      10 * time.Second,
		PoseRetryInitial: 5 * time.Millisecond,
		PoseRetryMax:     500 * time.Millisecond,
	}
}

// Validate checks the configuration for sane values
func (c Config) Validate() error {
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("discount must be in [0, 1], got %v", c.Discount)
	}
	if c.GoalBounds.X < 0 || c.GoalBounds.Y < 0 || c.GoalBounds.Z < 0 {
		return fmt.Errorf("goal bounds must be non-negative, got %v",
			c.GoalBounds)
	}
	if c.EpisodeCutoff < 0 {
		return fmt.Errorf("episode cutoff must be non-negative, got %v",
			c.EpisodeCutoff)
	}
	if c.MarkerID == "" {
		return fmt.Errorf("marker id must not be empty")
	}
	if c.WaypointDuration < 0 || c.ReadyTimeout < 0 || c.PoseTimeout < 0 {
		return fmt.Errorf("durations must be non-negative")
	}
	return nil
}

// Option configures optional UR5 behaviour
type Option func(*UR5)

// WithLogger sets the logger used by the environment
func WithLogger(logger *zap.Logger) Option {
	return func(u *UR5) {
		if logger == nil {
			logger = zap.NewNop()
		}
		u.logger = logger.Named("ur5")
	}
}

// WithTask replaces the default Reach task. The task must not be
// shared with another environment.
func WithTask(task *Reach) Option {
	return func(u *UR5) {
		u.Reach = task
	}
}
