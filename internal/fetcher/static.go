package fetcher

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/httpclient"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

// StaticFetcher retrieves raw server HTML with a plain HTTP GET.
type StaticFetcher struct {
	client *httpclient.HTTPClient
	logger zerolog.Logger
}

// NewStaticFetcher creates a static fetcher on top of client.
func NewStaticFetcher(client *httpclient.HTTPClient, logger zerolog.Logger) *StaticFetcher {
	return &StaticFetcher{
		client: client,
		logger: logger.With().Str("component", "StaticFetcher").Logger(),
	}
}

// Fetch performs a single GET bounded by opts.Timeout.
func (s *StaticFetcher) Fetch(ctx context.Context, url string, opts Options, attempt, maxAttempts int) (*models.FetchResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	resp, err := s.client.Do(&httpclient.HTTPRequest{
		URL:     url,
		Headers: map[string]string{"User-Agent": opts.UserAgent},
		Context: attemptCtx,
	})
	if err != nil {
		if isTimeout(err) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, checkerrors.NewFetchTimeout(url, opts.TimeoutMillis(), attempt, maxAttempts)
		}
		return nil, checkerrors.NewFetchNetwork(url, err, attempt, maxAttempts)
	}

	if !resp.IsSuccess() {
		return nil, checkerrors.NewFetchHTTP(url, resp.StatusCode, resp.StatusText)
	}

	s.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(resp.Body)).
		Bool("truncated", resp.Truncated).
		Msg("Static fetch completed")

	return &models.FetchResult{
		HTML:       string(resp.Body),
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Options are the resolved per-monitor fetch settings.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	WaitFor   string
	Retries   int
}

// TimeoutMillis returns the timeout in the unit monitors are configured in.
func (o Options) TimeoutMillis() int {
	return int(o.Timeout / time.Millisecond)
}
