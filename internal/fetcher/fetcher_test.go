package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/httpclient"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	available bool
	calls     int
	result    *models.FetchResult
	err       error
	lastOpts  RenderOptions
}

func (f *fakeRenderer) Available() bool { return f.available }

func (f *fakeRenderer) Render(_ context.Context, _ string, opts RenderOptions) (*models.FetchResult, error) {
	f.calls++
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type recordedSleeps struct {
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestFetcher(t *testing.T, renderer Renderer) (*Fetcher, *recordedSleeps) {
	t.Helper()
	logger := zerolog.Nop()

	client, err := httpclient.NewHTTPClientBuilder(logger).WithTimeout(0).Build()
	require.NoError(t, err)

	sleeps := &recordedSleeps{}
	retry := NewRetryExecutor(logger).WithSleep(sleeps.sleep)

	var dynamic *DynamicFetcher
	if renderer != nil {
		dynamic = NewDynamicFetcher(renderer, logger)
	}
	return NewFetcher(NewStaticFetcher(client, logger), dynamic, retry, logger), sleeps
}

func testMonitor(url string, retries int) models.Monitor {
	return models.Monitor{
		ID:        "m1",
		Name:      "Monitor",
		URL:       url,
		Retries:   models.IntPtr(retries),
		Selectors: []models.Selector{{Name: "price", Type: models.SelectorTypeCSS, Value: ".price"}},
	}
}

func TestFetchStatic_Success(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("X-Test", "yes")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	f, sleeps := newTestFetcher(t, nil)
	result, err := f.FetchStatic(context.Background(), testMonitor(server.URL, 0), models.Defaults{UserAgent: "Custom/2.0"})

	require.NoError(t, err)
	assert.Equal(t, 200, result.StatusCode)
	assert.Contains(t, result.HTML, "ok")
	assert.Equal(t, "yes", result.Headers["x-test"])
	assert.Equal(t, "Custom/2.0", userAgent)
	assert.Empty(t, sleeps.delays)
}

func TestFetchStatic_HTTPErrorIsRetriedAndAnnotated(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f, sleeps := newTestFetcher(t, nil)
	_, err := f.FetchStatic(context.Background(), testMonitor(server.URL, 2), models.Defaults{})

	require.Error(t, err)
	ce, ok := checkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, checkerrors.CodeFetchHTTP, ce.Code)
	assert.Equal(t, 404, ce.Context["httpStatus"])
	assert.Equal(t, 3, ce.Context["attempt"])
	assert.Equal(t, 3, ce.Context["maxAttempts"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.delays)
}

func TestFetchStatic_SucceedsAfterRetry(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("second time lucky"))
	}))
	defer server.Close()

	f, sleeps := newTestFetcher(t, nil)
	result, err := f.FetchStatic(context.Background(), testMonitor(server.URL, 3), models.Defaults{})

	require.NoError(t, err)
	assert.Equal(t, "second time lucky", result.HTML)
	assert.Equal(t, []time.Duration{time.Second}, sleeps.delays)
}

func TestFetchStatic_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	f, _ := newTestFetcher(t, nil)
	_, err := f.FetchStatic(context.Background(), testMonitor(url, 1), models.Defaults{})

	ce, ok := checkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, checkerrors.CodeFetchNetwork, ce.Code)
	assert.Equal(t, checkerrors.StageFetch, ce.Stage)
	assert.Contains(t, ce.Message, "(attempt 2/2)")
}

func TestFetchStatic_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	m := testMonitor(server.URL, 0)
	m.Timeout = 50

	f, _ := newTestFetcher(t, nil)
	_, err := f.FetchStatic(context.Background(), m, models.Defaults{})

	ce, ok := checkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, checkerrors.CodeFetchTimeout, ce.Code)
	assert.Equal(t, 50, ce.Context["timeout"])
	assert.Contains(t, ce.Message, "50ms")
}

func TestFetchDynamic_EngineUnavailableIsNotRetried(t *testing.T) {
	renderer := &fakeRenderer{available: false}
	f, sleeps := newTestFetcher(t, renderer)

	_, err := f.FetchDynamic(context.Background(), testMonitor("https://example.com", 3), models.Defaults{})

	assert.True(t, checkerrors.HasCode(err, checkerrors.CodeFetchEngineNotAvailable))
	assert.Equal(t, 0, renderer.calls)
	assert.Empty(t, sleeps.delays)
}

func TestFetchDynamic_NilRenderer(t *testing.T) {
	f, _ := newTestFetcher(t, nil)

	assert.False(t, f.DynamicAvailable())
	_, err := f.FetchDynamic(context.Background(), testMonitor("https://example.com", 0), models.Defaults{})
	assert.True(t, checkerrors.HasCode(err, checkerrors.CodeFetchEngineNotAvailable))
}

func TestFetchDynamic_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code checkerrors.Code
	}{
		{"launch failure", ErrEngineUnavailable, checkerrors.CodeFetchEngineNotAvailable},
		{"wait for timeout", ErrWaitForTimeout, checkerrors.CodeFetchWaitForSelectorTimeout},
		{"no document", ErrNoDocument, checkerrors.CodeFetchPageLoadFailed},
		{"navigation timeout", ErrNavigationTimeout, checkerrors.CodeFetchTimeout},
		{"context deadline", context.DeadlineExceeded, checkerrors.CodeFetchTimeout},
		{"other", errors.New("net::ERR_NAME_NOT_RESOLVED"), checkerrors.CodeFetchNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &fakeRenderer{available: true, err: tt.err}
			f, _ := newTestFetcher(t, renderer)

			_, err := f.FetchDynamic(context.Background(), testMonitor("https://example.com", 0), models.Defaults{})

			ce, ok := checkerrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, ce.Code)
		})
	}
}

func TestFetchDynamic_PassesResolvedOptions(t *testing.T) {
	renderer := &fakeRenderer{
		available: true,
		result:    &models.FetchResult{HTML: "<p>rendered</p>", StatusCode: 200},
	}
	f, _ := newTestFetcher(t, renderer)

	m := testMonitor("https://example.com", 0)
	m.Timeout = 1500
	result, err := f.FetchDynamic(context.Background(), m, models.Defaults{UserAgent: "UA/1"})

	require.NoError(t, err)
	assert.Equal(t, "<p>rendered</p>", result.HTML)
	assert.Equal(t, RenderOptions{Timeout: 1500 * time.Millisecond, UserAgent: "UA/1", WaitFor: ".price"}, renderer.lastOpts)
}

func TestFetchPage_DispatchesOnMode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("static"))
	}))
	defer server.Close()

	renderer := &fakeRenderer{available: true, result: &models.FetchResult{HTML: "dynamic", StatusCode: 200}}
	f, _ := newTestFetcher(t, renderer)

	m := testMonitor(server.URL, 0)
	for mode, want := range map[models.FetchMode]string{
		models.FetchModeStatic:  "static",
		models.FetchModeDynamic: "dynamic",
		"":                      "static",
	} {
		m.Mode = mode
		result, err := f.FetchPage(context.Background(), m, models.Defaults{})
		require.NoError(t, err)
		assert.Equal(t, want, result.HTML, "mode %q", mode)
	}
}

func TestResolveOptions(t *testing.T) {
	base := models.Monitor{
		Selectors: []models.Selector{
			{Name: "h", Type: models.SelectorTypeHash},
			{Name: "x", Type: models.SelectorTypeXPath, Value: "//h1"},
			{Name: "c", Type: models.SelectorTypeCSS, Value: "#main"},
		},
	}

	t.Run("built-in defaults", func(t *testing.T) {
		opts := ResolveOptions(base, models.Defaults{})
		assert.Equal(t, 30*time.Second, opts.Timeout)
		assert.Equal(t, DefaultRetries, opts.Retries)
		assert.Equal(t, DefaultUserAgent, opts.UserAgent)
		assert.Equal(t, "#main", opts.WaitFor)
	})

	t.Run("defaults section", func(t *testing.T) {
		opts := ResolveOptions(base, models.Defaults{Timeout: 5000, Retries: models.IntPtr(1), UserAgent: "UA"})
		assert.Equal(t, 5*time.Second, opts.Timeout)
		assert.Equal(t, 1, opts.Retries)
		assert.Equal(t, "UA", opts.UserAgent)
	})

	t.Run("monitor overrides", func(t *testing.T) {
		m := base
		m.Timeout = 100
		m.Retries = models.IntPtr(0)
		m.WaitFor = ".ready"
		opts := ResolveOptions(m, models.Defaults{Timeout: 5000, Retries: models.IntPtr(1)})
		assert.Equal(t, 100*time.Millisecond, opts.Timeout)
		assert.Equal(t, 0, opts.Retries)
		assert.Equal(t, ".ready", opts.WaitFor)
		assert.Equal(t, 100, opts.TimeoutMillis())
	})

	t.Run("no css selector", func(t *testing.T) {
		m := models.Monitor{Selectors: []models.Selector{{Name: "h", Type: models.SelectorTypeHash}}}
		assert.Empty(t, ResolveOptions(m, models.Defaults{}).WaitFor)
	})
}

func TestRetryExecutor_CalculateDelay(t *testing.T) {
	r := NewRetryExecutor(zerolog.Nop())
	assert.Equal(t, time.Second, r.CalculateDelay(1))
	assert.Equal(t, 2*time.Second, r.CalculateDelay(2))
	assert.Equal(t, 4*time.Second, r.CalculateDelay(3))
	assert.Equal(t, 8*time.Second, r.CalculateDelay(4))
}

func TestRetryExecutor_StopsWhenContextCancelled(t *testing.T) {
	r := NewRetryExecutor(zerolog.Nop()).WithSleep(func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	})

	calls := 0
	err := r.Do(context.Background(), "https://example.com", 5, func(ctx context.Context, attempt, maxAttempts int) error {
		calls++
		return checkerrors.NewFetchNetwork("https://example.com", errors.New("boom"), attempt, maxAttempts)
	})

	assert.Equal(t, 1, calls)
	ce, ok := checkerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, 1, ce.Context["attempt"])
	assert.Equal(t, 6, ce.Context["maxAttempts"])
}

func TestRetryExecutor_NegativeRetriesRunOnce(t *testing.T) {
	r := NewRetryExecutor(zerolog.Nop()).WithSleep(func(context.Context, time.Duration) error { return nil })

	calls := 0
	_ = r.Do(context.Background(), "u", -1, func(context.Context, int, int) error {
		calls++
		return errors.New("fail")
	})
	assert.Equal(t, 1, calls)
}

func TestRodRenderer_UnavailableWithMissingBinary(t *testing.T) {
	t.Setenv(ChromePathEnv, "")
	r := NewRodRenderer(RodRendererConfig{Bin: "/nonexistent/chrome", Headless: true}, zerolog.Nop())

	// The configured path is skipped; availability then depends on the host.
	if r.Available() {
		assert.NotEqual(t, "/nonexistent/chrome", r.binPath)
		return
	}
	_, err := r.Render(context.Background(), "https://example.com", RenderOptions{Timeout: time.Second})
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}
