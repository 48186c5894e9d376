package ur5

import (
	"context"
	"errors"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrFrameNotReady is returned by a PoseProvider when either the
	// target or reference frame has not yet been published, or no
	// transform between them is available yet
	ErrFrameNotReady = errors.New("frame not ready")

	// ErrPoseTimeout is returned when a pose could not be resolved
	// within the configured pose timeout
	ErrPoseTimeout = errors.New("pose lookup timed out")

	// ErrExecutorNotReady is returned when the trajectory executor does
	// not become ready during construction
	ErrExecutorNotReady = errors.New("trajectory executor not ready")

	// ErrActionDims is returned when an action does not have exactly
	// ActionDims components
	ErrActionDims = errors.New("invalid action dimensions")
)

// Pose is a 3D position and roll-pitch-yaw orientation. Poses returned
// by a PoseProvider are only valid at the instant they were looked up.
type Pose struct {
	Position    r3.Vec
	Orientation r3.Vec // roll, pitch, yaw
}

// Waypoint is a single point of a joint trajectory
type Waypoint struct {
	Positions     JointConfiguration
	Velocities    JointConfiguration
	TimeFromStart time.Duration
}

// TrajectoryExecutor moves the arm through joint-space waypoints. At
// most one trajectory may be executing on an arm at any time.
type TrajectoryExecutor interface {
	// WaitReady blocks until the executor can accept trajectories
	WaitReady(ctx context.Context) error

	// Execute sends the waypoints for the named joints and blocks
	// until the motion completes or fails
	Execute(ctx context.Context, joints []string, points []Waypoint) error
}

// PoseProvider resolves the pose of a named link relative to a
// reference frame at the current time
type PoseProvider interface {
	// Lookup returns the pose of target relative to reference. If the
	// frame graph is not yet populated, Lookup returns an error
	// wrapping ErrFrameNotReady.
	Lookup(ctx context.Context, target, reference string) (Pose, error)
}

// WorldTargetManager manages the goal marker in the simulated world
type WorldTargetManager interface {
	// Replace deletes the marker with the argument ID if it exists and
	// spawns a new one at pose
	Replace(ctx context.Context, markerID string, pose Pose) error
}
