// Package extractor pulls text out of fetched pages using css, xpath or
// whole-body hash selectors.
package extractor

import (
	"strings"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/rs/zerolog"
)

// Extractor runs selectors against parsed pages.
type Extractor struct {
	logger zerolog.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(logger zerolog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With().Str("component", "Extractor").Logger(),
	}
}

// Extract parses markup and runs a single selector against it.
func (e *Extractor) Extract(markup string, selector models.Selector) (models.ExtractResult, error) {
	return e.ExtractFrom(ParsePage(markup), selector)
}

// ExtractFrom runs a selector against an already parsed page.
func (e *Extractor) ExtractFrom(page *Page, selector models.Selector) (models.ExtractResult, error) {
	var (
		result models.ExtractResult
		err    error
	)

	switch selector.Type {
	case models.SelectorTypeCSS, models.SelectorTypeXPath:
		if selector.Value == "" {
			return models.ExtractResult{}, checkerrors.NewExtractSelectorValueMissing(selector.Name, string(selector.Type))
		}
		if selector.Type == models.SelectorTypeCSS {
			result, err = extractCSS(page, selector)
		} else {
			result, err = extractXPath(page, selector)
		}
	case models.SelectorTypeHash:
		result = extractHash(page)
	default:
		return models.ExtractResult{}, common.NewError("unknown selector type: %s", selector.Type)
	}

	if err != nil {
		return models.ExtractResult{}, err
	}

	e.logger.Debug().
		Str("selector", selector.Name).
		Str("type", string(selector.Type)).
		Int("elements", len(result.Elements)).
		Msg("Extracted selector content")

	return result, nil
}

// IsEmpty reports whether an extraction produced only whitespace.
func IsEmpty(result models.ExtractResult) bool {
	return strings.TrimSpace(result.Content) == ""
}
