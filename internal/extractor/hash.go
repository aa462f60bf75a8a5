package extractor

import (
	"strings"

	"github.com/aleister1102/pagewatch/internal/fingerprint"
	"github.com/aleister1102/pagewatch/internal/models"
)

// extractHash fingerprints the visible body text. The returned content is
// the digest itself; the normalised text is kept as the single element.
func extractHash(page *Page) models.ExtractResult {
	body := page.doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()

	normalized := strings.Join(strings.Fields(body.Text()), " ")

	return models.ExtractResult{
		Content:  fingerprint.Hash(normalized),
		Elements: []string{normalized},
	}
}
