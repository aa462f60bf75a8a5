package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/logger"
	"gopkg.in/yaml.v3"
)

// BrowserConfig configures the headless browser used for dynamic fetches.
type BrowserConfig struct {
	Bin       string `json:"bin,omitempty" yaml:"bin,omitempty"`
	NoSandbox bool   `json:"no_sandbox,omitempty" yaml:"no_sandbox,omitempty"`
	Headless  bool   `json:"headless" yaml:"headless"`
}

// HTTPConfig configures the static fetch client.
type HTTPConfig struct {
	Proxy              string `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	MaxContentSizeMB   int    `json:"max_content_size_mb,omitempty" yaml:"max_content_size_mb,omitempty" validate:"gte=0"`
	EnableHTTP2        bool   `json:"enable_http2" yaml:"enable_http2"`
	FollowRedirects    bool   `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int    `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"gte=0"`
}

// StorageConfig selects where state and history are kept when a monitor
// config does not say otherwise.
type StorageConfig struct {
	DataDir            string `json:"data_dir,omitempty" yaml:"data_dir,omitempty" validate:"required"`
	StateBackend       string `json:"state_backend,omitempty" yaml:"state_backend,omitempty" validate:"omitempty,statebackend"`
	ParquetCompression string `json:"parquet_compression,omitempty" yaml:"parquet_compression,omitempty" validate:"omitempty,oneof=zstd gzip snappy"`
}

// AppConfig is the application-level configuration: everything that is not
// part of a monitor config file.
type AppConfig struct {
	LogConfig logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	Browser   BrowserConfig        `json:"browser,omitempty" yaml:"browser,omitempty"`
	HTTP      HTTPConfig           `json:"http,omitempty" yaml:"http,omitempty"`
	Storage   StorageConfig        `json:"storage,omitempty" yaml:"storage,omitempty"`
}

// NewDefaultAppConfig creates an AppConfig with default values.
func NewDefaultAppConfig() *AppConfig {
	return &AppConfig{
		LogConfig: logger.NewDefaultFileLogConfig(),
		Browser: BrowserConfig{
			Headless: DefaultBrowserHeadless,
		},
		HTTP: HTTPConfig{
			MaxContentSizeMB: DefaultMaxContentSizeMB,
			EnableHTTP2:      true,
			FollowRedirects:  true,
			MaxRedirects:     DefaultMaxRedirects,
		},
		Storage: StorageConfig{
			DataDir:            DefaultDataDir,
			StateBackend:       DefaultStateBackend,
			ParquetCompression: DefaultParquetCompression,
		},
	}
}

// LoadAppConfig reads an application config file over the defaults. A
// sibling "<name>.local.<ext>" file, when present, is merged on top of it;
// only non-zero values of the override take effect. An empty path yields the
// defaults.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := NewDefaultAppConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, fmt.Sprintf("failed to read app config %s", path))
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, common.WrapError(err, fmt.Sprintf("failed to parse app config %s", path))
	}

	localPath := LocalOverridePath(path)
	localData, err := os.ReadFile(localPath)
	switch {
	case err == nil:
		var override AppConfig
		if err := yaml.Unmarshal(localData, &override); err != nil {
			return nil, common.WrapError(err, fmt.Sprintf("failed to parse app config override %s", localPath))
		}
		if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
			return nil, common.WrapError(err, "failed to merge app config override")
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, common.WrapError(err, fmt.Sprintf("failed to read app config override %s", localPath))
	}

	if err := ValidateAppConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LocalOverridePath returns the override file path for an application config.
func LocalOverridePath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + LocalOverrideSuffix + ext
}
