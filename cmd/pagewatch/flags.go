package main

import (
	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/spf13/cobra"
)

// AppFlags are the persistent flags that override the application config.
type AppFlags struct {
	AppConfigFile string
	LogLevel      string
	LogFormat     string
	LogFile       string
	ChromePath    string
	NoSandbox     bool
	StateBackend  string
	DataDir       string
}

var appFlags AppFlags

func registerAppFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&appFlags.AppConfigFile, "app-config", "", "path to the application config file (logging, browser, storage)")
	flags.StringVar(&appFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&appFlags.LogFormat, "log-format", "", "log format: console, text, json")
	flags.StringVar(&appFlags.LogFile, "log-file", "", "also write logs to this file (rotated)")
	flags.StringVar(&appFlags.ChromePath, "chrome-path", "", "path to a Chrome/Chromium binary for dynamic mode")
	flags.BoolVar(&appFlags.NoSandbox, "no-sandbox", false, "launch the browser without its sandbox (needed in some containers)")
	flags.StringVar(&appFlags.StateBackend, "state-backend", "", "state backend when a config sets none: json or sqlite")
	flags.StringVar(&appFlags.DataDir, "data-dir", "", "directory for derived state and history files")
}

// loadAppConfig loads the application config and applies flag overrides.
func loadAppConfig(flags AppFlags) (*config.AppConfig, error) {
	cfg, err := config.LoadAppConfig(flags.AppConfigFile)
	if err != nil {
		return nil, err
	}

	if flags.LogLevel != "" {
		cfg.LogConfig.LogLevel = flags.LogLevel
	}
	if flags.LogFormat != "" {
		cfg.LogConfig.LogFormat = flags.LogFormat
	}
	if flags.LogFile != "" {
		cfg.LogConfig.LogFile = flags.LogFile
	}
	if flags.ChromePath != "" {
		cfg.Browser.Bin = flags.ChromePath
	}
	if flags.NoSandbox {
		cfg.Browser.NoSandbox = true
	}
	if flags.StateBackend != "" {
		cfg.Storage.StateBackend = flags.StateBackend
	}
	if flags.DataDir != "" {
		cfg.Storage.DataDir = flags.DataDir
	}

	if err := config.ValidateAppConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
