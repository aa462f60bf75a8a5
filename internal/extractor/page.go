package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is a parsed HTML document shared by every selector of a check.
// Extractors never mutate it.
type Page struct {
	doc *goquery.Document
}

// ParsePage parses markup tolerantly. The HTML5 parser recovers from
// malformed input, so an error only surfaces for reader failures; in that
// case an empty document is returned.
func ParsePage(markup string) *Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		doc = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return &Page{doc: doc}
}

// root returns the document node used by the XPath navigator.
func (p *Page) root() *html.Node {
	if len(p.doc.Nodes) == 0 {
		return &html.Node{Type: html.DocumentNode}
	}
	return p.doc.Nodes[0]
}
