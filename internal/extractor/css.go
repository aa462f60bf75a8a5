package extractor

import (
	"strings"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// extractCSS joins the trimmed, non-empty text of every matching element.
func extractCSS(page *Page, selector models.Selector) (models.ExtractResult, error) {
	matcher, err := cascadia.Compile(selector.Value)
	if err != nil {
		return models.ExtractResult{}, checkerrors.NewExtractInvalidSelector(selector.Name, string(selector.Type), selector.Value, err)
	}

	elements := []string{}
	page.doc.FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			elements = append(elements, text)
		}
	})

	return models.ExtractResult{Content: strings.Join(elements, "\n"), Elements: elements}, nil
}
