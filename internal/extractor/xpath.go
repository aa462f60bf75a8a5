package extractor

import (
	"math"
	"strconv"
	"strings"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
)

// extractXPath evaluates the expression and normalises every result shape
// (node-set, string, number, boolean) into a list of text values.
func extractXPath(page *Page, selector models.Selector) (models.ExtractResult, error) {
	expr, err := xpath.Compile(selector.Value)
	if err != nil {
		return models.ExtractResult{}, checkerrors.NewExtractInvalidSelector(selector.Name, string(selector.Type), selector.Value, err)
	}

	elements := []string{}
	switch v := expr.Evaluate(htmlquery.CreateXPathNavigator(page.root())).(type) {
	case *xpath.NodeIterator:
		for v.MoveNext() {
			if text := strings.TrimSpace(v.Current().Value()); text != "" {
				elements = append(elements, text)
			}
		}
	case string:
		elements = append(elements, strings.TrimSpace(v))
	case float64:
		elements = append(elements, formatNumber(v))
	case bool:
		elements = append(elements, strconv.FormatBool(v))
	}

	return models.ExtractResult{Content: strings.Join(elements, "\n"), Elements: elements}, nil
}

// formatNumber renders XPath numbers the way browsers stringify them.
func formatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
