// Package kinematic implements an in-process stand-in for the platform
// that a ur5.UR5 environment drives. A single Arm acts as the
// trajectory executor, pose provider, and world target manager for one
// simulated UR5, moving instantly (or in scaled real time) to each
// commanded waypoint and computing link poses with the arm's
// Denavit-Hartenberg forward kinematics. No dynamics or collisions are
// simulated.
package kinematic

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/samuelfneumann/ur5reach/environment/ur5"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrBusy is returned by Execute when another trajectory is still
// executing on the arm
var ErrBusy = errors.New("trajectory already executing")

// UR5 Denavit-Hartenberg parameters, in metres and radians
var (
	dhD     = [ur5.NumJoints]float64{0.089159, 0, 0, 0.10915, 0.09465, 0.0823}
	dhA     = [ur5.NumJoints]float64{0, -0.425, -0.39225, 0, 0, 0}
	dhAlpha = [ur5.NumJoints]float64{math.Pi / 2, 0, 0, math.Pi / 2,
		-math.Pi / 2, 0}
)

// linkFrames maps each published link to the number of joint
// transforms between the arm base and the link's frame
var linkFrames = map[string]int{
	"base_link":         0,
	ur5.ShoulderLink:    1,
	"upper_arm_link":    1,
	ur5.ForearmLink:     2,
	ur5.Wrist1Link:      3,
	"wrist_2_link":      4,
	"wrist_3_link":      5,
	ur5.EndEffectorLink: 6,
}

// Arm is a kinematic UR5 together with the world it stands in. Arm is
// safe for concurrent use, but executes at most one trajectory at a
// time.
type Arm struct {
	names     []string
	base      r3.Vec
	warmup    int
	timeScale float64

	executing sync.Mutex

	mu      sync.Mutex
	joints  ur5.JointConfiguration
	markers map[string]ur5.Pose
	lookups int
}

// Option configures an Arm
type Option func(*Arm)

// WithBase places the arm's base at the argument world position
func WithBase(base r3.Vec) Option {
	return func(a *Arm) {
		a.base = base
	}
}

// WithWarmup makes the first n pose lookups fail with
// ur5.ErrFrameNotReady, as if the frame graph were still being
// populated
func WithWarmup(n int) Option {
	return func(a *Arm) {
		a.warmup = n
	}
}

// WithTimeScale makes Execute sleep for the duration of each trajectory
// multiplied by scale. By default trajectories complete instantly.
func WithTimeScale(scale float64) Option {
	return func(a *Arm) {
		a.timeScale = scale
	}
}

// DefaultBase is the default world position of the arm base
var DefaultBase = r3.Vec{X: 0, Y: 0, Z: 0.6}

// NewArm returns a new Arm whose joints are named by names, starting
// in the argument configuration
func NewArm(names []string, start ur5.JointConfiguration,
	opts ...Option) (*Arm, error) {
	if len(names) != ur5.NumJoints {
		return nil, fmt.Errorf("newArm: invalid number of joint names "+
			"\n\thave(%v) \n\twant(%v)", len(names), ur5.NumJoints)
	}

	a := &Arm{
		names:   append([]string(nil), names...),
		base:    DefaultBase,
		joints:  start,
		markers: make(map[string]ur5.Pose),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// WaitReady implements ur5.TrajectoryExecutor. The arm is always ready.
func (a *Arm) WaitReady(ctx context.Context) error {
	return ctx.Err()
}

// Execute implements ur5.TrajectoryExecutor
func (a *Arm) Execute(ctx context.Context, joints []string,
	points []ur5.Waypoint) error {
	if !a.executing.TryLock() {
		return fmt.Errorf("execute: %w", ErrBusy)
	}
	defer a.executing.Unlock()

	if len(joints) != len(a.names) {
		return fmt.Errorf("execute: invalid number of joints \n\thave(%v) "+
			"\n\twant(%v)", len(joints), len(a.names))
	}
	for i := range joints {
		if joints[i] != a.names[i] {
			return fmt.Errorf("execute: unknown joint %q at index %v",
				joints[i], i)
		}
	}
	if len(points) == 0 {
		return fmt.Errorf("execute: empty trajectory")
	}

	var elapsed time.Duration
	for i, p := range points {
		if p.TimeFromStart < elapsed {
			return fmt.Errorf("execute: waypoint %v goes back in time", i)
		}
		if a.timeScale > 0 {
			wait := time.Duration(float64(p.TimeFromStart-elapsed) *
				a.timeScale)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("execute: %w", ctx.Err())
			case <-timer.C:
			}
		}
		elapsed = p.TimeFromStart

		a.mu.Lock()
		a.joints = p.Positions
		a.mu.Unlock()
	}
	return nil
}

// Lookup implements ur5.PoseProvider
func (a *Arm) Lookup(ctx context.Context, target,
	reference string) (ur5.Pose, error) {
	if err := ctx.Err(); err != nil {
		return ur5.Pose{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.lookups++
	if a.warmup > 0 {
		a.warmup--
		return ur5.Pose{}, fmt.Errorf("lookup: %w: frame graph not "+
			"populated", ur5.ErrFrameNotReady)
	}

	targetTf, err := a.transform(target)
	if err != nil {
		return ur5.Pose{}, fmt.Errorf("lookup: %w", err)
	}
	refTf, err := a.transform(reference)
	if err != nil {
		return ur5.Pose{}, fmt.Errorf("lookup: %w", err)
	}

	var inv, rel mat.Dense
	if err := inv.Inverse(refTf); err != nil {
		return ur5.Pose{}, fmt.Errorf("lookup: singular transform for %v: "+
			"%v", reference, err)
	}
	rel.Mul(&inv, targetTf)

	return poseOf(&rel), nil
}

// Replace implements ur5.WorldTargetManager
func (a *Arm) Replace(ctx context.Context, markerID string,
	pose ur5.Pose) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.markers, markerID)
	a.markers[markerID] = pose
	return nil
}

// Marker returns the pose of the marker with the argument ID
func (a *Arm) Marker(markerID string) (ur5.Pose, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.markers[markerID]
	return p, ok
}

// Joints returns the current joint configuration of the arm
func (a *Arm) Joints() ur5.JointConfiguration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.joints
}

// Lookups returns the number of pose lookups served so far
func (a *Arm) Lookups() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lookups
}

// transform returns the homogeneous transform from the world frame to
// the argument frame. The caller must hold a.mu.
func (a *Arm) transform(frame string) (*mat.Dense, error) {
	tf := translation(r3.Vec{})
	if frame == ur5.WorldFrame {
		return tf, nil
	}

	n, ok := linkFrames[frame]
	if !ok {
		return nil, fmt.Errorf("%w: unknown frame %q", ur5.ErrFrameNotReady,
			frame)
	}

	tf = translation(a.base)
	for i := 0; i < n; i++ {
		var next mat.Dense
		next.Mul(tf, dh(a.joints[i], dhD[i], dhA[i], dhAlpha[i]))
		tf = &next
	}
	return tf, nil
}
