package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aleister1102/pagewatch/internal/logger"
	"github.com/aleister1102/pagewatch/internal/runner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errChecksFailed = errors.New("one or more checks failed")

var runCmd = &cobra.Command{
	Use:   "run <config.yaml[,config2.yaml,...]>",
	Short: "Check every monitor of the given configs",
	Long: `Check every monitor of one or more monitor configs.

Configs are processed in order. For each one the stored state is loaded,
every monitor is checked, and the updated state and the run's history rows
are written back. When GITHUB_OUTPUT is set the results are also written as
step outputs.

Exit codes:
  0 - All checks completed (changes or not)
  1 - At least one monitor or config failed

Example:
  pagewatch run monitors/shop.yaml,monitors/blog.yaml
  pagewatch run --state-backend sqlite --chrome-path /usr/bin/chromium shop.yaml`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	appConfig, err := loadAppConfig(appFlags)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	zLogger, err := logger.NewWithRunID(appConfig.LogConfig, runID)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := runner.NewRunnerBuilder(zLogger).
		WithAppConfig(appConfig).
		WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()).
		Build()
	if err != nil {
		return err
	}

	zLogger.Info().Str("version", version).Msg("Starting run")
	output := r.Run(ctx, strings.Join(args, ","))

	if err := runner.WriteGitHubOutput(output); err != nil {
		zLogger.Error().Err(err).Msg("Failed to write GitHub outputs")
		return err
	}

	zLogger.Info().
		Bool("changed", output.Changed).
		Int("changes", len(output.Changes)).
		Int("errors", output.ErrorCount).
		Msg("Run finished")

	if output.ErrorCount > 0 {
		return errChecksFailed
	}
	return nil
}
