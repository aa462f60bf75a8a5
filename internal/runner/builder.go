package runner

import (
	"io"
	"os"
	"time"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/differ"
	"github.com/aleister1102/pagewatch/internal/extractor"
	"github.com/aleister1102/pagewatch/internal/fetcher"
	"github.com/aleister1102/pagewatch/internal/httpclient"
	"github.com/aleister1102/pagewatch/internal/matcher"
	"github.com/aleister1102/pagewatch/internal/monitor"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// RunnerBuilder assembles a Runner and its check pipeline from an AppConfig.
type RunnerBuilder struct {
	appConfig   *config.AppConfig
	out         io.Writer
	errOut      io.Writer
	useColors   bool
	renderer    fetcher.Renderer
	rendererSet bool
	sleep       fetcher.SleepFunc
	now         func() time.Time
	logger      zerolog.Logger
}

// NewRunnerBuilder creates a builder writing the report to stdout.
func NewRunnerBuilder(logger zerolog.Logger) *RunnerBuilder {
	return &RunnerBuilder{
		appConfig: config.NewDefaultAppConfig(),
		out:       os.Stdout,
		errOut:    os.Stderr,
		useColors: !color.NoColor,
		now:       time.Now,
		logger:    logger,
	}
}

// WithAppConfig sets the application configuration.
func (b *RunnerBuilder) WithAppConfig(cfg *config.AppConfig) *RunnerBuilder {
	b.appConfig = cfg
	return b
}

// WithOutput sets where the report and fatal error details are written.
func (b *RunnerBuilder) WithOutput(out, errOut io.Writer) *RunnerBuilder {
	b.out = out
	b.errOut = errOut
	return b
}

// WithColors enables or disables coloured report output.
func (b *RunnerBuilder) WithColors(enabled bool) *RunnerBuilder {
	b.useColors = enabled
	return b
}

// WithRenderer overrides the headless renderer. A nil renderer disables
// dynamic fetching.
func (b *RunnerBuilder) WithRenderer(r fetcher.Renderer) *RunnerBuilder {
	b.renderer = r
	b.rendererSet = true
	return b
}

// WithRetrySleep replaces the wait between fetch attempts.
func (b *RunnerBuilder) WithRetrySleep(sleep fetcher.SleepFunc) *RunnerBuilder {
	b.sleep = sleep
	return b
}

// WithClock replaces the time source.
func (b *RunnerBuilder) WithClock(now func() time.Time) *RunnerBuilder {
	b.now = now
	return b
}

// Build creates the Runner.
func (b *RunnerBuilder) Build() (*Runner, error) {
	if b.appConfig == nil {
		return nil, common.NewValidationError("appConfig", nil, "app config cannot be nil")
	}

	client, err := httpclient.NewHTTPClientBuilder(b.logger).
		WithConfig(httpClientConfig(b.appConfig.HTTP)).
		Build()
	if err != nil {
		return nil, common.WrapError(err, "failed to create HTTP client")
	}

	renderer := b.renderer
	if !b.rendererSet {
		browser := b.appConfig.Browser
		renderer = fetcher.NewRodRenderer(fetcher.RodRendererConfig{
			Bin:       browser.Bin,
			NoSandbox: browser.NoSandbox,
			Headless:  browser.Headless,
		}, b.logger)
	}

	retry := fetcher.NewRetryExecutor(b.logger)
	if b.sleep != nil {
		retry.WithSleep(b.sleep)
	}

	pageFetcher := fetcher.NewFetcher(
		fetcher.NewStaticFetcher(client, b.logger),
		fetcher.NewDynamicFetcher(renderer, b.logger),
		retry,
		b.logger,
	)

	checker := monitor.NewChecker(
		pageFetcher,
		extractor.NewExtractor(b.logger),
		matcher.NewMatcher(b.logger),
		differ.NewLineSetDiff(differ.NewPatchBuilder(differ.DefaultPatchConfig())),
		b.logger,
	).WithClock(b.now)

	return &Runner{
		checker:  checker,
		storage:  b.appConfig.Storage,
		reporter: NewReporter(b.out, b.useColors),
		errOut:   b.errOut,
		errFmt:   checkerrors.NewConsoleFormatter(b.useColors),
		now:      b.now,
		logger:   b.logger.With().Str("component", "Runner").Logger(),
	}, nil
}

// httpClientConfig maps the app's HTTP settings onto the client config. The
// client itself has no overall timeout; each attempt carries its own deadline.
func httpClientConfig(cfg config.HTTPConfig) httpclient.HTTPClientConfig {
	c := httpclient.DefaultHTTPClientConfig()
	c.Timeout = 0
	c.Proxy = cfg.Proxy
	c.InsecureSkipVerify = cfg.InsecureSkipVerify
	c.MaxContentSize = cfg.MaxContentSizeMB * 1024 * 1024
	c.EnableHTTP2 = cfg.EnableHTTP2
	c.FollowRedirects = cfg.FollowRedirects
	if cfg.MaxRedirects > 0 {
		c.MaxRedirects = cfg.MaxRedirects
	}
	return c
}
