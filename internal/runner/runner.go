package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/monitor"
	"github.com/rs/zerolog"
)

// GitHubActionsEnv is set to "true" by GitHub Actions runners.
const GitHubActionsEnv = "GITHUB_ACTIONS"

// Runner checks every monitor of one or more configuration files and keeps
// their state and history.
type Runner struct {
	checker  *monitor.Checker
	storage  config.StorageConfig
	reporter *Reporter
	errOut   io.Writer
	errFmt   *checkerrors.ConsoleFormatter
	now      func() time.Time
	logger   zerolog.Logger
}

// SplitConfigPaths splits a comma-separated list of config paths, trimming
// whitespace and dropping empty entries.
func SplitConfigPaths(input string) []string {
	var paths []string
	for _, p := range strings.Split(input, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Run processes each configuration in order. A configuration that cannot be
// loaded or stored contributes a single error result; the others still run.
func (r *Runner) Run(ctx context.Context, pathsInput string) models.RunOutput {
	paths := SplitConfigPaths(pathsInput)
	r.logger.Info().Int("configs", len(paths)).Msg("Processing configs")

	configResults := make([]models.ConfigResult, 0, len(paths))
	for _, path := range paths {
		name := config.ConfigName(path)
		r.reporter.ConfigHeader(name)

		result, err := r.runConfig(ctx, path, name)
		if err != nil {
			result = r.fatalResult(name, err)
		}
		configResults = append(configResults, result)
	}

	output := aggregate(configResults)
	r.reporter.Summary(configResults)
	return output
}

func (r *Runner) runConfig(ctx context.Context, path, name string) (models.ConfigResult, error) {
	logger := r.logger.With().Str("config", name).Logger()

	logger.Info().Str("path", path).Msg("Loading config")
	file, err := config.LoadMonitorsFile(path)
	if err != nil {
		return models.ConfigResult{}, err
	}
	paths := file.ResolveOutputPaths(name, r.storage)

	store, err := datastore.NewStateStore(paths.StateBackend, paths.StatePath, r.logger)
	if err != nil {
		return models.ConfigResult{}, err
	}
	defer store.Close()

	logger.Info().Str("path", store.Path()).Msg("Loading state")
	state, err := store.Load(ctx)
	if err != nil {
		return models.ConfigResult{}, err
	}

	history, err := r.historyWriter(paths)
	if err != nil {
		return models.ConfigResult{}, err
	}

	logger.Info().Int("monitors", len(file.Monitors)).Msg("Checking monitors")
	results := make([]models.CheckResult, 0, len(file.Monitors))
	for _, m := range file.Monitors {
		r.reporter.MonitorHeader(m)
		result := r.checker.CheckMonitor(ctx, m, file.Defaults, state.Lookup)
		state = monitor.ApplyResult(state, result, r.now())
		results = append(results, result)
		r.reporter.MonitorResult(result)
	}

	logger.Info().Str("path", store.Path()).Msg("Saving state")
	if err := store.Save(ctx, state); err != nil {
		return models.ConfigResult{}, err
	}

	logger.Info().Str("path", paths.CSVPath).Msg("Appending history")
	if err := history.Append(ctx, results); err != nil {
		return models.ConfigResult{}, err
	}

	return summarize(name, results), nil
}

func (r *Runner) historyWriter(paths config.OutputPaths) (datastore.HistoryWriter, error) {
	csvWriter, err := datastore.NewCSVHistoryWriter(paths.CSVPath, paths.CSVColumns, r.logger)
	if err != nil {
		return nil, err
	}
	writers := datastore.MultiHistoryWriter{csvWriter}

	if paths.ParquetPath != "" {
		writers = append(writers, datastore.NewParquetHistoryWriter(
			paths.ParquetPath,
			datastore.ParquetWriterConfig{CompressionType: r.storage.ParquetCompression},
			r.logger,
		))
	}
	return writers, nil
}

func (r *Runner) fatalResult(name string, err error) models.ConfigResult {
	r.logger.Error().Err(err).Str("config", name).Msg("Config failed")
	fmt.Fprintf(r.errOut, "\n[%s] Fatal error:\n%s\n", name, r.errFmt.Format(err))

	if os.Getenv(GitHubActionsEnv) == "true" {
		r.reporter.Println(checkerrors.FormatGitHubActions(err))
	}

	result := monitor.ErrorResult(models.CheckResult{
		ID:        name,
		Name:      name,
		Timestamp: models.FormatTimestamp(r.now()),
	}, err)

	return models.ConfigResult{
		ConfigName: name,
		Changes:    []models.CheckResult{},
		Errors:     []models.CheckResult{result},
	}
}

func summarize(name string, results []models.CheckResult) models.ConfigResult {
	cr := models.ConfigResult{
		ConfigName: name,
		Changes:    []models.CheckResult{},
		Errors:     []models.CheckResult{},
	}
	for _, result := range results {
		switch result.Status {
		case models.StatusChanged:
			cr.Changed = true
			cr.Changes = append(cr.Changes, result)
		case models.StatusError:
			cr.Errors = append(cr.Errors, result)
		}
	}
	return cr
}

func aggregate(configResults []models.ConfigResult) models.RunOutput {
	output := models.RunOutput{
		Changes: []models.CheckResult{},
		Results: make(map[string]models.ConfigResult, len(configResults)),
		Errors:  []models.CheckResult{},
	}
	for _, cr := range configResults {
		output.Changed = output.Changed || cr.Changed
		output.Changes = append(output.Changes, cr.Changes...)
		output.Errors = append(output.Errors, cr.Errors...)
		output.ErrorCount += len(cr.Errors)
		output.Results[cr.ConfigName] = cr
	}
	return output
}
