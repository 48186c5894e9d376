package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/samuelfneumann/ur5reach/agent/explore"
	"github.com/samuelfneumann/ur5reach/environment/ur5"
	"github.com/samuelfneumann/ur5reach/environment/ur5/kinematic"
	"github.com/samuelfneumann/ur5reach/experiment"
	"github.com/samuelfneumann/ur5reach/experiment/checkpointer"
	"github.com/samuelfneumann/ur5reach/experiment/tracker"
	"github.com/samuelfneumann/ur5reach/internal/config"
	"github.com/samuelfneumann/ur5reach/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunResult summarizes one completed run
type RunResult struct {
	ID       uuid.UUID
	Seed     uint64
	Episodes int
	Return   tracker.Summary
	Length   tracker.Summary
	Reached  tracker.Summary
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run Gaussian exploration on the simulated UR5 arm",
		Long: "Run runs independent experiments on the kinematic UR5 " +
			"arm, saving per-episode returns, lengths and goal counts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := runExperiment(cmd.Context(), appConfig,
				observability.GetLogger())
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(),
					"%v seed=%v episodes=%v return=%.3f±%.3f reached=%.2f\n",
					r.ID, r.Seed, r.Episodes, r.Return.Mean, r.Return.Std,
					r.Reached.Mean)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Uint("steps", 0, "step budget of each run")
	f.Int("runs", 0, "number of independent runs")
	f.Int("concurrency", 0, "maximum number of runs in flight")
	f.Float64("std", 0, "standard deviation of exploration noise")
	f.String("out-dir", "", "directory to save tracked data to")
	f.Int("warmup", 0, "pose lookups rejected before frames appear")
	f.Int("checkpoint", 0, "save returns every this many episodes")
	f.Uint64("seed", 0, "seed of the first run")
	f.Int("cutoff", 0, "episode step limit, 0 for none")
	return cmd
}

// runExperiment runs cfg.Experiment.Runs independent experiments
// concurrently. The first failing run cancels the others.
func runExperiment(ctx context.Context, cfg *config.Config,
	logger *zap.Logger) ([]RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(cfg.Experiment.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("runExperiment: could not create output "+
			"directory: %w", err)
	}

	results := make([]RunResult, cfg.Experiment.Runs)
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Experiment.Concurrency > 0 {
		g.SetLimit(cfg.Experiment.Concurrency)
	}

	for i := range results {
		i := i
		seed := cfg.Environment.Seed + uint64(i)
		g.Go(func() error {
			r, err := runOnce(ctx, cfg, seed, logger)
			if err != nil {
				return fmt.Errorf("run %v: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runOnce runs a single experiment with the given seed
func runOnce(ctx context.Context, cfg *config.Config, seed uint64,
	logger *zap.Logger) (RunResult, error) {
	id := uuid.New()
	logger = logger.With(zap.Stringer("run", id), zap.Uint64("seed", seed))

	envCfg, err := cfg.Environment.UR5()
	if err != nil {
		return RunResult{}, err
	}
	envCfg.Seed = seed

	arm, err := kinematic.NewArm(ur5.Names(envCfg.JointPrefix),
		envCfg.InitJoints, kinematic.WithWarmup(cfg.Experiment.Warmup))
	if err != nil {
		return RunResult{}, err
	}

	env, err := ur5.New(ctx, envCfg, arm, arm, arm, ur5.WithLogger(logger))
	if err != nil {
		return RunResult{}, err
	}

	agentCfg := explore.GaussianConfig{Std: cfg.Experiment.Std}
	agent, err := agentCfg.CreateAgent(env, seed)
	if err != nil {
		return RunResult{}, err
	}

	prefix := filepath.Join(cfg.Experiment.OutDir, id.String())
	ret := tracker.NewReturn(prefix + "_return.bin")
	length := tracker.NewEpisodeLength(prefix + "_length.bin")
	reached := tracker.NewGoalReached(prefix + "_reached.bin")

	e := experiment.NewOnline(env, agent, cfg.Experiment.Steps, logger, ret,
		length, reached)
	if n := cfg.Experiment.CheckpointEvery; n > 0 {
		c, err := checkpointer.NewNEpisode(n, ret,
			checkpointer.Enumerated(0, prefix+"_return_ckpt", ".bin"))
		if err != nil {
			return RunResult{}, err
		}
		e.AddCheckpointer(c)
	}

	if err := e.Run(ctx); err != nil {
		return RunResult{}, err
	}
	if err := e.Save(); err != nil {
		return RunResult{}, err
	}

	r := RunResult{
		ID:       id,
		Seed:     seed,
		Episodes: e.Episodes(),
		Return:   tracker.Summarize(ret),
		Length:   tracker.Summarize(length),
		Reached:  tracker.Summarize(reached),
	}
	logger.Info("Run finished",
		zap.Int("episodes", r.Episodes),
		zap.Float64("meanReturn", r.Return.Mean),
		zap.Float64("meanReached", r.Reached.Mean),
	)
	return r, nil
}
