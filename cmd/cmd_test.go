package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/samuelfneumann/ur5reach/environment/ur5"
	"github.com/samuelfneumann/ur5reach/experiment/tracker"
	"github.com/samuelfneumann/ur5reach/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(viper.New(), "")
	require.NoError(t, err)

	cfg.Experiment.Steps = 30
	cfg.Experiment.Runs = 3
	cfg.Experiment.Concurrency = 2
	cfg.Experiment.OutDir = t.TempDir()
	cfg.Environment.EpisodeCutoff = 10
	cfg.Environment.WaypointDuration = 0
	return cfg
}

func TestRunExperiment(t *testing.T) {
	cfg := testConfig(t)
	cfg.Environment.Seed = 7
	cfg.Experiment.Warmup = 2

	results, err := runExperiment(context.Background(), cfg,
		zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, results, 3)

	ids := make(map[uuid.UUID]bool)
	for i, r := range results {
		assert.Equal(t, uint64(7+i), r.Seed)
		assert.GreaterOrEqual(t, r.Episodes, 3)
		assert.LessOrEqual(t, r.Return.Episodes, r.Episodes)
		assert.Equal(t, r.Return.Episodes, r.Length.Episodes)
		assert.LessOrEqual(t, r.Length.Mean, 10.0)
		ids[r.ID] = true

		data, err := tracker.LoadData(filepath.Join(cfg.Experiment.OutDir,
			r.ID.String()+"_return.bin"))
		require.NoError(t, err)
		assert.Len(t, data, r.Return.Episodes)
	}
	assert.Len(t, ids, 3)

	files, err := os.ReadDir(cfg.Experiment.OutDir)
	require.NoError(t, err)
	assert.Len(t, files, 9)
}

func TestRunExperimentCheckpoints(t *testing.T) {
	cfg := testConfig(t)
	cfg.Experiment.Runs = 1
	cfg.Experiment.CheckpointEvery = 1

	results, err := runExperiment(context.Background(), cfg,
		zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, results, 1)

	ckpt := filepath.Join(cfg.Experiment.OutDir,
		results[0].ID.String()+"_return_ckpt_0001.bin")
	data, err := tracker.LoadData(ckpt)
	require.NoError(t, err)
	assert.Len(t, data, 1)
}

func TestRunExperimentCancelled(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runExperiment(ctx, cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ur5.ErrExecutorNotReady)
}

func TestRootCommand(t *testing.T) {
	out := t.TempDir()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logger:
  level: error
environment:
  episode_cutoff: 5
  waypoint_duration: 0s
experiment:
  runs: 2
`), 0o600))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"run", "--config", path, "--steps", "12",
		"--out-dir", out})
	t.Cleanup(resetRoot)

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Equal(t, 2*3, countFiles(t, out))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	for _, l := range lines {
		assert.Contains(t, l, "episodes=")
	}
	assert.Equal(t, uint(12), appConfig.Experiment.Steps)
	assert.Equal(t, 5, appConfig.Environment.EpisodeCutoff)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(resetRoot)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, Version+"\n", buf.String())
}

func TestEnvFile(t *testing.T) {
	const key = "UR5REACH_ENVIRONMENT_EPISODE_CUTOFF"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=4\n"), 0o600))

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"version", "--env-file", path})
	t.Cleanup(resetRoot)

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 4, appConfig.Environment.EpisodeCutoff)
}

func resetRoot() {
	rootCmd.SetArgs(nil)
	cfgFile = ""
	envFile = ".env"
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(files)
}
