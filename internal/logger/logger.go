package logger

import (
	"github.com/rs/zerolog"
)

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// Config returns the effective configuration the logger was built with
func (l *Logger) Config() LoggerConfig {
	return l.config
}

// New creates a logger from application log settings
func New(cfg FileLogConfig) (zerolog.Logger, error) {
	logger, err := NewLoggerBuilder().WithConfig(cfg).Build()
	if err != nil {
		return zerolog.Logger{}, err
	}
	return *logger.GetZerolog(), nil
}

// NewWithRunID creates a logger whose events and log file are tagged with runID
func NewWithRunID(cfg FileLogConfig, runID string) (zerolog.Logger, error) {
	logger, err := NewLoggerBuilder().
		WithRunID(runID).
		WithConfig(cfg).
		Build()
	if err != nil {
		return zerolog.Logger{}, err
	}
	return *logger.GetZerolog(), nil
}
