package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCmd runs the root command with args and returns captured stdout.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunValidate_ValidConfigs(t *testing.T) {
	shop := writeFile(t, "shop.yaml", `
monitors:
  - id: shop
    name: Shop
    url: https://shop.example.com
    selectors:
      - {name: price, type: css, value: ".price"}
      - {name: page, type: hash}
`)
	blog := writeFile(t, "blog.yaml", `
monitors:
  - {id: blog, name: Blog, url: "https://blog.example.com", selectors: [{name: title, type: xpath, value: "//h1"}]}
`)

	output, err := executeCmd(t, "validate", "-c", shop+","+blog)
	require.NoError(t, err)

	assert.Contains(t, output, "Config is valid: "+shop+"\n  Monitors:  1\n  Selectors: 2\n")
	assert.Contains(t, output, "Config is valid: "+blog+"\n  Monitors:  1\n  Selectors: 1\n")
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
monitors:
  - {id: x, name: "", url: "https://x.example.com", selectors: [{name: p, type: hash}]}
`)

	_, err := executeCmd(t, "validate", "-c", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'monitors[0].name': rule 'required'")
}

func TestRunValidate_ReportsEveryInvalidConfig(t *testing.T) {
	good := writeFile(t, "good.yaml", `
monitors:
  - {id: x, name: X, url: "https://x.example.com", selectors: [{name: p, type: hash}]}
`)
	bad := writeFile(t, "bad.yaml", "monitors: [")

	output, err := executeCmd(t, "validate", "-c", "/nonexistent/a.yaml,"+bad+","+good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config /nonexistent/a.yaml: Config file not found")
	assert.Contains(t, err.Error(), "invalid config "+bad+": Failed to parse YAML")
	assert.Contains(t, output, "Config is valid: "+good)
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "-c", "/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config file not found")
}

func TestVersionCmd(t *testing.T) {
	output, err := executeCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "pagewatch dev")
}

func TestLoadAppConfig_FlagOverrides(t *testing.T) {
	cfg, err := loadAppConfig(AppFlags{
		LogLevel:     "debug",
		ChromePath:   "/usr/bin/chromium",
		NoSandbox:    true,
		StateBackend: "sqlite",
		DataDir:      "/tmp/pagewatch",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	assert.Equal(t, "/usr/bin/chromium", cfg.Browser.Bin)
	assert.True(t, cfg.Browser.NoSandbox)
	assert.Equal(t, "sqlite", cfg.Storage.StateBackend)
	assert.Equal(t, "/tmp/pagewatch", cfg.Storage.DataDir)

	_, err = loadAppConfig(AppFlags{StateBackend: "redis"})
	assert.Error(t, err)
}
