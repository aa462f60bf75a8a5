package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// ChromePathEnv names the environment variable consulted for a browser
// binary when none is configured.
const ChromePathEnv = "PAGEWATCH_CHROME_PATH"

// RodRendererConfig configures the headless browser launcher.
type RodRendererConfig struct {
	Bin       string
	NoSandbox bool
	Headless  bool
}

// RodRenderer renders pages with a headless Chromium driven by rod. Each
// render launches its own browser so no state leaks between monitors.
type RodRenderer struct {
	config RodRendererConfig
	logger zerolog.Logger

	probe     sync.Once
	binPath   string
	available bool
}

// NewRodRenderer creates a renderer. The browser binary is resolved lazily
// on the first call to Available or Render.
func NewRodRenderer(cfg RodRendererConfig, logger zerolog.Logger) *RodRenderer {
	return &RodRenderer{
		config: cfg,
		logger: logger.With().Str("component", "RodRenderer").Logger(),
	}
}

// Available reports whether a browser binary could be found. The result is
// cached for the life of the renderer.
func (r *RodRenderer) Available() bool {
	r.probe.Do(func() {
		r.binPath, r.available = r.resolveBinary()
		if r.available {
			r.logger.Debug().Str("bin", r.binPath).Msg("Browser binary resolved")
		} else {
			r.logger.Debug().Msg("No browser binary found, dynamic fetching disabled")
		}
	})
	return r.available
}

func (r *RodRenderer) resolveBinary() (string, bool) {
	for _, candidate := range []string{r.config.Bin, os.Getenv(ChromePathEnv)} {
		if candidate == "" {
			continue
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		r.logger.Warn().Str("bin", candidate).Msg("Configured browser binary does not exist")
	}
	return launcher.LookPath()
}

// Render navigates to url, waits for DOMContentLoaded and optionally for
// opts.WaitFor, then returns the serialized DOM.
func (r *RodRenderer) Render(ctx context.Context, url string, opts RenderOptions) (*models.FetchResult, error) {
	if !r.Available() {
		return nil, ErrEngineUnavailable
	}

	l := launcher.New().
		Context(ctx).
		Bin(r.binPath).
		Headless(r.config.Headless).
		NoSandbox(r.config.NoSandbox).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Debug().Err(err).Msg("Failed to close browser")
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	document, err := r.navigate(ctx, page, url, opts)
	if err != nil {
		return nil, err
	}

	if opts.WaitFor != "" {
		if err := r.waitFor(ctx, page, opts); err != nil {
			return nil, err
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %w", err)
	}

	headers := make(map[string]string, len(document.Headers))
	for key, value := range document.Headers {
		headers[key] = value.String()
	}

	return &models.FetchResult{
		HTML:       html,
		StatusCode: document.Status,
		Headers:    headers,
	}, nil
}

// navigate loads url within opts.Timeout and returns the main document response.
func (r *RodRenderer) navigate(ctx context.Context, page *rod.Page, url string, opts RenderOptions) (*proto.NetworkResponse, error) {
	navCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	navPage := page.Context(navCtx)

	var document *proto.NetworkResponse
	waitDocument := navPage.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			document = e.Response
			return true
		}
		return false
	})
	waitDOM := navPage.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	if err := navPage.Navigate(url); err != nil {
		if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrNavigationTimeout, err)
		}
		return nil, err
	}
	waitDocument()
	waitDOM()

	if errors.Is(navCtx.Err(), context.DeadlineExceeded) {
		return nil, ErrNavigationTimeout
	}
	if document == nil {
		return nil, ErrNoDocument
	}
	return document, nil
}

// waitFor blocks until opts.WaitFor matches. It gets its own timeout window,
// separate from navigation.
func (r *RodRenderer) waitFor(ctx context.Context, page *rod.Page, opts RenderOptions) error {
	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if _, err := page.Context(waitCtx).Element(opts.WaitFor); err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrWaitForTimeout, err)
		}
		return fmt.Errorf("failed waiting for %q: %w", opts.WaitFor, err)
	}
	return nil
}
