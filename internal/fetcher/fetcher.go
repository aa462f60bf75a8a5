package fetcher

import (
	"context"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

const (
	// DefaultUserAgent is sent when no defaults.user_agent is configured.
	DefaultUserAgent = "PageWatch/1.0"
	// DefaultTimeoutMillis bounds one attempt when neither the monitor nor
	// the defaults set a timeout.
	DefaultTimeoutMillis = 30000
	// DefaultRetries applies when neither the monitor nor the defaults set
	// a retry count.
	DefaultRetries = 3
)

// Fetcher retrieves monitor pages with retry, using either the static or
// the dynamic strategy.
type Fetcher struct {
	static  *StaticFetcher
	dynamic *DynamicFetcher
	retry   *RetryExecutor
	logger  zerolog.Logger
}

// NewFetcher wires the two strategies and the retry executor together.
func NewFetcher(static *StaticFetcher, dynamic *DynamicFetcher, retry *RetryExecutor, logger zerolog.Logger) *Fetcher {
	if dynamic == nil {
		dynamic = NewDynamicFetcher(nil, logger)
	}
	return &Fetcher{
		static:  static,
		dynamic: dynamic,
		retry:   retry,
		logger:  logger.With().Str("component", "Fetcher").Logger(),
	}
}

// ResolveOptions computes the effective fetch settings of a monitor.
// Monitor values win over defaults, which win over built-in constants.
func ResolveOptions(m models.Monitor, defaults models.Defaults) Options {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = defaults.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeoutMillis
	}

	retries := DefaultRetries
	if m.Retries != nil {
		retries = *m.Retries
	} else if defaults.Retries != nil {
		retries = *defaults.Retries
	}

	userAgent := defaults.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return Options{
		Timeout:   time.Duration(timeout) * time.Millisecond,
		UserAgent: userAgent,
		WaitFor:   inferWaitFor(m),
		Retries:   retries,
	}
}

// inferWaitFor returns the explicit wait_for, or the value of the first CSS
// selector that has one.
func inferWaitFor(m models.Monitor) string {
	if m.WaitFor != "" {
		return m.WaitFor
	}
	for _, sel := range m.Selectors {
		if sel.Type == models.SelectorTypeCSS && sel.Value != "" {
			return sel.Value
		}
	}
	return ""
}

// DynamicAvailable reports whether a rendering engine can be used.
func (f *Fetcher) DynamicAvailable() bool {
	return f.dynamic != nil && f.dynamic.Available()
}

// FetchStatic fetches m.URL over plain HTTP with retry.
func (f *Fetcher) FetchStatic(ctx context.Context, m models.Monitor, defaults models.Defaults) (*models.FetchResult, error) {
	opts := ResolveOptions(m, defaults)
	var result *models.FetchResult
	err := f.retry.Do(ctx, m.URL, opts.Retries, func(ctx context.Context, attempt, maxAttempts int) error {
		res, err := f.static.Fetch(ctx, m.URL, opts, attempt, maxAttempts)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchDynamic renders m.URL in a browser with retry. An unavailable engine
// fails on the first attempt.
func (f *Fetcher) FetchDynamic(ctx context.Context, m models.Monitor, defaults models.Defaults) (*models.FetchResult, error) {
	opts := ResolveOptions(m, defaults)
	var result *models.FetchResult
	err := f.retry.Do(ctx, m.URL, opts.Retries, func(ctx context.Context, attempt, maxAttempts int) error {
		res, err := f.dynamic.Fetch(ctx, m.URL, opts, attempt, maxAttempts)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchPage fetches using the strategy named by the monitor's mode. Auto
// resolves to static here; the auto fallback lives in the checker, which
// needs the extraction result to decide.
func (f *Fetcher) FetchPage(ctx context.Context, m models.Monitor, defaults models.Defaults) (*models.FetchResult, error) {
	if m.EffectiveMode() == models.FetchModeDynamic {
		f.logger.Debug().Str("monitor_id", m.ID).Msg("Using dynamic fetch")
		return f.FetchDynamic(ctx, m, defaults)
	}
	f.logger.Debug().Str("monitor_id", m.ID).Msg("Using static fetch")
	return f.FetchStatic(ctx, m, defaults)
}
