// Package cmd implements the ur5reach command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/samuelfneumann/ur5reach/internal/config"
	"github.com/samuelfneumann/ur5reach/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile   string
	envFile   string
	appConfig *config.Config
)

// flagKeys maps command line flags to the configuration keys they
// override
var flagKeys = map[string]string{
	"steps":       "experiment.steps",
	"runs":        "experiment.runs",
	"concurrency": "experiment.concurrency",
	"std":         "experiment.std",
	"out-dir":     "experiment.out_dir",
	"warmup":      "experiment.warmup",
	"checkpoint":  "experiment.checkpoint_every",
	"seed":        "environment.seed",
	"cutoff":      "environment.episode_cutoff",
	"log-level":   "logger.level",
}

var rootCmd = &cobra.Command{
	Use:     "ur5reach",
	Short:   "Run reaching experiments on a UR5 arm",
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Variables already set in the environment take precedence
		if err := godotenv.Load(envFile); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not load env file: %w", err)
		}

		v := viper.New()
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return err
		}

		cfg, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg

		observability.InitializeLogger(cfg.Logger)
		observability.GetLogger().Debug("Starting ur5reach",
			zap.String("version", Version))
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		observability.Sync()
	},
	SilenceUsage: true,
}

// Execute runs the root command, exiting the process on failure. An
// interrupt cancels any experiments in progress.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"file of UR5REACH_ environment variables to load")
	rootCmd.PersistentFlags().String("log-level", "", "log level")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd(), newVersionCmd())
}

// bindFlags binds every flag of flags that overrides a configuration
// key. Flags the user did not set keep the configured value.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("could not bind flag %q: %w", name, err)
		}
	}
	return nil
}
