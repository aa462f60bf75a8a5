package fetcher

import (
	"context"
	"errors"
	"time"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

// Failure classes a Renderer reports. Render wraps the underlying cause
// with one of these so the dynamic fetcher can map it to an error code.
var (
	ErrEngineUnavailable = errors.New("rendering engine not available")
	ErrNavigationTimeout = errors.New("navigation timed out")
	ErrNoDocument        = errors.New("navigation produced no document response")
	ErrWaitForTimeout    = errors.New("wait-for selector timed out")
)

// RenderOptions control a single render.
type RenderOptions struct {
	Timeout   time.Duration
	UserAgent string
	WaitFor   string
}

// Renderer loads a page in a real browser engine and returns its
// post-script DOM.
type Renderer interface {
	// Available reports whether an engine can be launched at all.
	Available() bool
	Render(ctx context.Context, url string, opts RenderOptions) (*models.FetchResult, error)
}

// DynamicFetcher fetches pages through a Renderer.
type DynamicFetcher struct {
	renderer Renderer
	logger   zerolog.Logger
}

// NewDynamicFetcher creates a dynamic fetcher. A nil renderer is treated as
// an engine that is never available.
func NewDynamicFetcher(renderer Renderer, logger zerolog.Logger) *DynamicFetcher {
	return &DynamicFetcher{
		renderer: renderer,
		logger:   logger.With().Str("component", "DynamicFetcher").Logger(),
	}
}

// Available reports whether dynamic fetching can be attempted.
func (d *DynamicFetcher) Available() bool {
	return d.renderer != nil && d.renderer.Available()
}

// Fetch renders url once and maps renderer failures to fetch errors.
func (d *DynamicFetcher) Fetch(ctx context.Context, url string, opts Options, attempt, maxAttempts int) (*models.FetchResult, error) {
	if !d.Available() {
		return nil, checkerrors.NewFetchEngineNotAvailable(nil)
	}

	result, err := d.renderer.Render(ctx, url, RenderOptions{
		Timeout:   opts.Timeout,
		UserAgent: opts.UserAgent,
		WaitFor:   opts.WaitFor,
	})
	if err != nil {
		return nil, d.classify(err, url, opts, attempt, maxAttempts)
	}

	d.logger.Debug().
		Str("url", url).
		Int("status", result.StatusCode).
		Int("bytes", len(result.HTML)).
		Msg("Dynamic fetch completed")
	return result, nil
}

func (d *DynamicFetcher) classify(err error, url string, opts Options, attempt, maxAttempts int) error {
	switch {
	case errors.Is(err, ErrEngineUnavailable):
		return checkerrors.NewFetchEngineNotAvailable(err)
	case errors.Is(err, ErrWaitForTimeout):
		return checkerrors.NewFetchWaitForSelectorTimeout(url, opts.WaitFor, opts.TimeoutMillis())
	case errors.Is(err, ErrNoDocument):
		return checkerrors.NewFetchPageLoadFailed(url, err)
	case errors.Is(err, ErrNavigationTimeout), isTimeout(err):
		return checkerrors.NewFetchTimeout(url, opts.TimeoutMillis(), attempt, maxAttempts)
	default:
		return checkerrors.NewFetchNetwork(url, err, attempt, maxAttempts)
	}
}
