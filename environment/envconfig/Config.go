// Package envconfig provides configuration structs for configuring
// the UR5 environment with default parameters. Environment
// configurations in this package are JSON and YAML serializable.
package envconfig

import (
	"fmt"
	"time"

	"github.com/samuelfneumann/ur5reach/environment/ur5"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config implements a configuration of the UR5 environment
type Config struct {
	Seed          uint64  `mapstructure:"seed" json:"seed" yaml:"seed"`
	Discount      float64 `mapstructure:"discount" json:"discount" yaml:"discount"`
	EpisodeCutoff int     `mapstructure:"episode_cutoff" json:"episode_cutoff" yaml:"episode_cutoff"`

	// JointPrefix namespaces the joint names of a particular deployment
	JointPrefix string `mapstructure:"joint_prefix" json:"joint_prefix" yaml:"joint_prefix"`
	MarkerID    string `mapstructure:"marker_id" json:"marker_id" yaml:"marker_id"`

	InitJoints []float64 `mapstructure:"init_joints" json:"init_joints" yaml:"init_joints"`
	HomeJoints []float64 `mapstructure:"home_joints" json:"home_joints" yaml:"home_joints"`

	// Goal holds x, y, z and optionally roll, pitch, yaw
	Goal       []float64 `mapstructure:"goal" json:"goal" yaml:"goal"`
	GoalBounds []float64 `mapstructure:"goal_bounds" json:"goal_bounds" yaml:"goal_bounds"`

	WaypointDuration time.Duration `mapstructure:"waypoint_duration" json:"waypoint_duration" yaml:"waypoint_duration"`
	ReadyTimeout     time.Duration `mapstructure:"ready_timeout" json:"ready_timeout" yaml:"ready_timeout"`
	PoseTimeout      time.Duration `mapstructure:"pose_timeout" json:"pose_timeout" yaml:"pose_timeout"`
	PoseRetryInitial time.Duration `mapstructure:"pose_retry_initial" json:"pose_retry_initial" yaml:"pose_retry_initial"`
	PoseRetryMax     time.Duration `mapstructure:"pose_retry_max" json:"pose_retry_max" yaml:"pose_retry_max"`
}

// Default returns the default environment configuration
func Default() Config {
	d := ur5.DefaultConfig()
	goal := d.BaseGoal

	return Config{
		Seed:          d.Seed,
		Discount:      d.Discount,
		EpisodeCutoff: 500,
		MarkerID:      d.MarkerID,
		InitJoints:    append([]float64(nil), d.InitJoints[:]...),
		HomeJoints:    append([]float64(nil), d.Home[:]...),
		Goal: []float64{
			goal.Position.X, goal.Position.Y, goal.Position.Z,
			goal.Orientation.X, goal.Orientation.Y, goal.Orientation.Z,
		},
		GoalBounds: []float64{
			d.GoalBounds.X, d.GoalBounds.Y, d.GoalBounds.Z,
		},
		WaypointDuration: d.WaypointDuration,
		ReadyTimeout:     d.ReadyTimeout,
		PoseTimeout:      d.PoseTimeout,
		PoseRetryInitial: d.PoseRetryInitial,
		PoseRetryMax:     d.PoseRetryMax,
	}
}

// UR5 converts the Config into the configuration of a UR5 environment
func (c Config) UR5() (ur5.Config, error) {
	init, err := ur5.NewJointConfiguration(c.InitJoints)
	if err != nil {
		return ur5.Config{}, fmt.Errorf("init_joints: %w", err)
	}
	home, err := ur5.NewJointConfiguration(c.HomeJoints)
	if err != nil {
		return ur5.Config{}, fmt.Errorf("home_joints: %w", err)
	}

	var goal ur5.Pose
	switch len(c.Goal) {
	case 6:
		goal.Orientation = r3.Vec{X: c.Goal[3], Y: c.Goal[4], Z: c.Goal[5]}
		fallthrough
	case 3:
		goal.Position = r3.Vec{X: c.Goal[0], Y: c.Goal[1], Z: c.Goal[2]}
	default:
		return ur5.Config{}, fmt.Errorf("goal must have 3 or 6 elements, "+
			"got %v", len(c.Goal))
	}

	if len(c.GoalBounds) != 3 {
		return ur5.Config{}, fmt.Errorf("goal_bounds must have 3 elements, "+
			"got %v", len(c.GoalBounds))
	}
	bounds := r3.Vec{X: c.GoalBounds[0], Y: c.GoalBounds[1],
		Z: c.GoalBounds[2]}

	cfg := ur5.Config{
		InitJoints:       init,
		Home:             home,
		BaseGoal:         goal,
		GoalBounds:       bounds,
		JointPrefix:      c.JointPrefix,
		MarkerID:         c.MarkerID,
		Seed:             c.Seed,
		Discount:         c.Discount,
		EpisodeCutoff:    c.EpisodeCutoff,
		WaypointDuration: c.WaypointDuration,
		ReadyTimeout:     c.ReadyTimeout,
		PoseTimeout:      c.PoseTimeout,
		PoseRetryInitial: c.PoseRetryInitial,
		PoseRetryMax:     c.PoseRetryMax,
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration for required fields and sane values
func (c Config) Validate() error {
	_, err := c.UR5()
	return err
}
