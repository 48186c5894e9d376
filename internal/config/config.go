// Package config loads the application configuration: logging, the UR5
// environment, and the experiments run against it.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samuelfneumann/ur5reach/environment/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override configuration
// keys, e.g. UR5REACH_EXPERIMENT_STEPS.
const EnvPrefix = "UR5REACH"

// Config is the top-level application configuration.
type Config struct {
	Logger      LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Environment envconfig.Config `mapstructure:"environment" yaml:"environment"`
	Experiment  ExperimentConfig `mapstructure:"experiment" yaml:"experiment"`
}

// LoggerConfig configures the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`

	// LogFile, if set, receives JSON logs rotated by size
	LogFile    string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ExperimentConfig configures the experiments run by the CLI.
type ExperimentConfig struct {
	// Steps is the step budget of each run
	Steps uint `mapstructure:"steps" yaml:"steps"`

	// Runs is the number of independent runs, each seeded with
	// environment.seed plus its index
	Runs int `mapstructure:"runs" yaml:"runs"`

	// Concurrency bounds the number of runs in flight. Zero runs all of
	// them at once.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	// Std is the standard deviation of the Gaussian exploration policy
	Std    float64 `mapstructure:"std" yaml:"std"`
	OutDir string  `mapstructure:"out_dir" yaml:"out_dir"`

	// CheckpointEvery saves the returns tracked so far every this many
	// finished episodes. Zero disables checkpointing.
	CheckpointEvery int `mapstructure:"checkpoint_every" yaml:"checkpoint_every"`

	// Warmup is the number of pose lookups the simulated arm rejects
	// before publishing its frames
	Warmup int `mapstructure:"warmup" yaml:"warmup"`
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ur5reach")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Environment --
	env := envconfig.Default()
	v.SetDefault("environment.seed", env.Seed)
	v.SetDefault("environment.discount", env.Discount)
	v.SetDefault("environment.episode_cutoff", env.EpisodeCutoff)
	v.SetDefault("environment.joint_prefix", env.JointPrefix)
	v.SetDefault("environment.marker_id", env.MarkerID)
	v.SetDefault("environment.init_joints", env.InitJoints)
	v.SetDefault("environment.home_joints", env.HomeJoints)
	v.SetDefault("environment.goal", env.Goal)
	v.SetDefault("environment.goal_bounds", env.GoalBounds)
	v.SetDefault("environment.waypoint_duration", env.WaypointDuration)
	v.SetDefault("environment.ready_timeout", env.ReadyTimeout)
	v.SetDefault("environment.pose_timeout", env.PoseTimeout)
	v.SetDefault("environment.pose_retry_initial", env.PoseRetryInitial)
	v.SetDefault("environment.pose_retry_max", env.PoseRetryMax)

	// -- Experiment --
	v.SetDefault("experiment.steps", 5000)
	v.SetDefault("experiment.runs", 1)
	v.SetDefault("experiment.concurrency", 0)
	v.SetDefault("experiment.std", 1.0)
	v.SetDefault("experiment.out_dir", "results")
	v.SetDefault("experiment.checkpoint_every", 0)
	v.SetDefault("experiment.warmup", 0)
}

// Load reads the configuration into v from the given file, or from
// ./config.yaml when file is empty, applying defaults and environment
// variable overrides. A missing default config file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration can drive an experiment.
func (c *Config) Validate() error {
	if c.Experiment.Steps == 0 {
		return fmt.Errorf("experiment.steps must be a positive integer")
	}
	if c.Experiment.Runs <= 0 {
		return fmt.Errorf("experiment.runs must be a positive integer")
	}
	if c.Experiment.Concurrency < 0 {
		return fmt.Errorf("experiment.concurrency must not be negative")
	}
	if c.Experiment.Std <= 0 {
		return fmt.Errorf("experiment.std must be positive")
	}
	if c.Experiment.CheckpointEvery < 0 {
		return fmt.Errorf("experiment.checkpoint_every must not be negative")
	}
	if c.Experiment.Warmup < 0 {
		return fmt.Errorf("experiment.warmup must not be negative")
	}
	if err := c.Environment.Validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}
