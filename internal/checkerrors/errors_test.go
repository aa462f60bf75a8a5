package checkerrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_UnwrapAndAs(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("checking monitor: %w", NewFetchNetwork("https://example.com", cause, 1, 4))

	ce, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CodeFetchNetwork, ce.Code)
	assert.Equal(t, StageFetch, ce.Stage)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeFetchNetwork))
	assert.False(t, HasCode(err, CodeFetchTimeout))
}

func TestError_Terminal(t *testing.T) {
	assert.True(t, IsTerminal(NewFetchEngineNotAvailable(nil)))
	assert.False(t, IsTerminal(NewFetchTimeout("https://example.com", 1000, 1, 1)))
	assert.False(t, IsTerminal(errors.New("plain")))
}

func TestConstructors_Messages(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		code    Code
		stage   Stage
		message string
	}{
		{"network", NewFetchNetwork("https://a.test", nil, 2, 4), CodeFetchNetwork, StageFetch, "Network error (attempt 2/4): https://a.test"},
		{"timeout", NewFetchTimeout("https://a.test", 5000, 1, 2), CodeFetchTimeout, StageFetch, "Request timed out after 5000ms (attempt 1/2): https://a.test"},
		{"http", NewFetchHTTP("https://a.test", 404, ""), CodeFetchHTTP, StageFetch, "HTTP 404 (Not Found): https://a.test"},
		{"page load", NewFetchPageLoadFailed("https://a.test", nil), CodeFetchPageLoadFailed, StageFetch, "Failed to load page: https://a.test"},
		{"wait for", NewFetchWaitForSelectorTimeout("https://a.test", ".price", 3000), CodeFetchWaitForSelectorTimeout, StageFetch, "Timeout waiting for selector '.price' on https://a.test"},
		{"value missing", NewExtractSelectorValueMissing("price", "css"), CodeExtractSelectorValueMissing, StageExtract, "CSS selector requires a 'value' field"},
		{"invalid regex", NewMatchInvalidPattern("[unclosed", nil), CodeMatchInvalidPattern, StageMatch, "Invalid regex pattern: '[unclosed'"},
		{"unknown type", NewMatchUnknownType("fuzzy"), CodeMatchUnknownType, StageMatch, "Unknown match type: 'fuzzy'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.stage, tt.err.Stage)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.NotEmpty(t, tt.err.Suggestion)
		})
	}
}

func TestNewFetchHTTP_Suggestions(t *testing.T) {
	assert.Contains(t, NewFetchHTTP("u", 429, "").Suggestion, "Rate limited")
	assert.Equal(t, "HTTP 418 error. Check if URL is accessible in browser.", NewFetchHTTP("u", 418, "").Suggestion)
	assert.Equal(t, 503, NewFetchHTTP("u", 503, "").Context["httpStatus"])
}

func TestNewExtractSelectorValueMissing_XPathExample(t *testing.T) {
	err := NewExtractSelectorValueMissing("title", "xpath")
	assert.Equal(t, "XPATH selector requires a 'value' field", err.Message)
	assert.Contains(t, err.Suggestion, `//div[@class=\"my-class\"]`)
}

func TestNewStorageStateWrite_PermissionSuggestion(t *testing.T) {
	err := NewStorageStateWrite("/root/state.json", fmt.Errorf("open: %w", fs.ErrPermission))
	assert.Contains(t, err.Suggestion, "Permission denied")
}

func TestWithAttempts(t *testing.T) {
	t.Run("rebuilds network message", func(t *testing.T) {
		err := WithAttempts(NewFetchNetwork("https://a.test", nil, 3, 4), 4, 4)
		ce, ok := As(err)
		require.True(t, ok)
		assert.Equal(t, "Network error (attempt 4/4): https://a.test", ce.Message)
		assert.Equal(t, 4, ce.Context["attempt"])
		assert.Equal(t, 4, ce.Context["maxAttempts"])
	})

	t.Run("keeps http message and adds context", func(t *testing.T) {
		original := NewFetchHTTP("https://a.test", 500, "")
		err := WithAttempts(original, 2, 2)
		ce, ok := As(err)
		require.True(t, ok)
		assert.Equal(t, original.Message, ce.Message)
		assert.Equal(t, 2, ce.Context["attempt"])
		assert.Equal(t, 500, ce.Context["httpStatus"])
		_, mutated := original.Context["attempt"]
		assert.False(t, mutated)
	})

	t.Run("leaves foreign errors alone", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Same(t, plain, WithAttempts(plain, 1, 1))
	})
}

func TestFormatConsole(t *testing.T) {
	err := NewFetchHTTP("https://a.test", 404, "Not Found")
	err.Cause = errors.New("upstream")

	out := FormatConsole(err)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "[E203] HTTP 404 (Not Found): https://a.test", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Stage: fetch", lines[2])
	assert.Equal(t, "Context:", lines[3])
	assert.Contains(t, out, "  httpStatus: 404")
	assert.Contains(t, out, "How to fix: Page not found.")
	assert.True(t, strings.HasSuffix(out, "Caused by: upstream"))
}

func TestFormatConsole_PlainError(t *testing.T) {
	assert.Equal(t, "boom", FormatConsole(errors.New("boom")))
}

func TestFormatGitHubActions(t *testing.T) {
	out := FormatGitHubActions(NewMatchUnknownType("fuzzy"))
	assert.True(t, strings.HasPrefix(out, "::error title=E402 - MATCH Error::Unknown match type: 'fuzzy'"))
	assert.Contains(t, out, "%0AContext: matchType=fuzzy")
	assert.Contains(t, out, "%0AHow to fix: Valid match types")
	assert.NotContains(t, out, "\n")

	assert.Equal(t, "::error::line1%0Aline2", FormatGitHubActions(errors.New("line1\nline2")))
}

func TestError_MarshalJSON(t *testing.T) {
	err := NewConfigYAMLParse("monitors.yaml", errors.New("bad indent"))
	data, mErr := json.Marshal(err)
	require.NoError(t, mErr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "E102", decoded["code"])
	assert.Equal(t, "config", decoded["stage"])
	assert.Equal(t, "bad indent", decoded["cause"])
	assert.NotEmpty(t, decoded["timestamp"])
}
