package runner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRunOutput() models.RunOutput {
	change := models.CheckResult{
		ID:               "shop",
		Name:             "Shop",
		URL:              "https://shop.example.com",
		Status:           models.StatusChanged,
		ChangedSelectors: []string{"price"},
		SelectorResults: []models.SelectorResult{
			{Name: "price", Status: models.StatusChanged, Hash: "h", Content: "$399",
				MatchedValue: models.StringPtr("399"), PreviousMatchedValue: models.StringPtr("449")},
		},
	}
	failure := models.CheckResult{
		ID:           "docs",
		Status:       models.StatusError,
		Error:        "HTTP 503",
		ErrorDetails: &models.ErrorDetails{Code: "E203", Stage: "fetch", Message: "HTTP 503"},
	}
	plain := models.CheckResult{ID: "other", Status: models.StatusError, Error: "boom"}

	return aggregate([]models.ConfigResult{
		{ConfigName: "shop", Changed: true, Changes: []models.CheckResult{change}, Errors: []models.CheckResult{}},
		{ConfigName: "docs", Changes: []models.CheckResult{}, Errors: []models.CheckResult{failure, plain}},
	})
}

func parseOutputs(t *testing.T, content string) map[string]string {
	t.Helper()
	outputs := map[string]string{}
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		key, value, ok := strings.Cut(line, "=")
		require.True(t, ok, line)
		outputs[key] = value
	}
	return outputs
}

func TestFormatGitHubOutput(t *testing.T) {
	content, err := FormatGitHubOutput(sampleRunOutput())
	require.NoError(t, err)

	outputs := parseOutputs(t, content)
	assert.Equal(t, "true", outputs["changed"])
	assert.Equal(t, "2", outputs["error_count"])

	assert.JSONEq(t, `[{
		"id": "shop", "name": "Shop", "url": "https://shop.example.com",
		"changedSelectors": ["price"],
		"selectorResults": [{"name": "price", "status": "changed", "matchedValue": "399", "previousMatchedValue": "449"}]
	}]`, outputs["changes"])

	assert.JSONEq(t, `[{"code": "E203", "stage": "fetch", "message": "HTTP 503", "suggestion": ""}]`, outputs["errors"])

	var results map[string]models.ConfigResult
	require.NoError(t, json.Unmarshal([]byte(outputs["results"]), &results))
	assert.Len(t, results, 2)
	assert.Len(t, results["docs"].Errors, 2)
}

func TestFormatGitHubOutput_EmptyRun(t *testing.T) {
	content, err := FormatGitHubOutput(aggregate(nil))
	require.NoError(t, err)

	assert.Equal(t, "changed=false\nchanges=[]\nresults={}\nerror_count=0\nerrors=[]\n", content)
}

func TestWriteGitHubOutput(t *testing.T) {
	t.Run("appends to the output file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "github_output")
		require.NoError(t, os.WriteFile(path, []byte("previous=1\n"), 0644))
		t.Setenv(GitHubOutputEnv, path)

		require.NoError(t, WriteGitHubOutput(sampleRunOutput()))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "previous=1\nchanged=true\n"))
	})

	t.Run("no-op outside actions", func(t *testing.T) {
		t.Setenv(GitHubOutputEnv, "")
		assert.NoError(t, WriteGitHubOutput(sampleRunOutput()))
	})
}
