// Package matcher pulls values out of extracted content.
package matcher

import (
	"strings"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/rs/zerolog"
)

// Matcher applies a MatchSpec to extracted content.
type Matcher struct {
	compiler *RegexCompiler
	logger   zerolog.Logger
}

// NewMatcher creates a new matcher
func NewMatcher(logger zerolog.Logger) *Matcher {
	return &Matcher{
		compiler: NewRegexCompiler(logger),
		logger:   logger.With().Str("component", "Matcher").Logger(),
	}
}

// Match runs spec against content.
//
// regex: value is the first match and captures are its groups 1..N.
// exact: value is the content itself when it equals the pattern.
// contains: value is the pattern, not the located substring.
func (m *Matcher) Match(content string, spec models.MatchSpec) (models.MatchResult, error) {
	switch spec.Type {
	case models.MatchTypeRegex:
		return m.matchRegex(content, spec.Pattern)
	case models.MatchTypeExact:
		if content != spec.Pattern {
			return models.MatchResult{Matched: false}, nil
		}
		return models.MatchResult{Matched: true, Value: models.StringPtr(content)}, nil
	case models.MatchTypeContains:
		if !strings.Contains(content, spec.Pattern) {
			return models.MatchResult{Matched: false}, nil
		}
		return models.MatchResult{Matched: true, Value: models.StringPtr(spec.Pattern)}, nil
	default:
		return models.MatchResult{}, checkerrors.NewMatchUnknownType(string(spec.Type))
	}
}

func (m *Matcher) matchRegex(content, pattern string) (models.MatchResult, error) {
	re, err := m.compiler.Compile(pattern)
	if err != nil {
		return models.MatchResult{}, checkerrors.NewMatchInvalidPattern(pattern, err)
	}

	groups := re.FindStringSubmatch(content)
	if groups == nil {
		return models.MatchResult{Matched: false}, nil
	}

	return models.MatchResult{
		Matched:  true,
		Value:    models.StringPtr(groups[0]),
		Captures: groups[1:],
	}, nil
}
