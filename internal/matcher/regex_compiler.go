package matcher

import (
	"regexp"
	"sync"

	"github.com/rs/zerolog"
)

// RegexCompiler compiles patterns once and reuses them across checks.
type RegexCompiler struct {
	mu     sync.RWMutex
	cache  map[string]*regexp.Regexp
	logger zerolog.Logger
}

// NewRegexCompiler creates a new regex compiler
func NewRegexCompiler(logger zerolog.Logger) *RegexCompiler {
	return &RegexCompiler{
		cache:  make(map[string]*regexp.Regexp),
		logger: logger.With().Str("component", "RegexCompiler").Logger(),
	}
}

// Compile returns the compiled pattern, compiling it on first use.
func (rc *RegexCompiler) Compile(pattern string) (*regexp.Regexp, error) {
	rc.mu.RLock()
	re, ok := rc.cache[pattern]
	rc.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		rc.logger.Debug().Str("pattern", pattern).Err(err).Msg("Failed to compile pattern")
		return nil, err
	}

	rc.mu.Lock()
	rc.cache[pattern] = re
	rc.mu.Unlock()
	return re, nil
}
