// Package fingerprint computes the content digests used for change detection.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// CombinedSeparator joins the per-selector segments of a combined fingerprint.
const CombinedSeparator = "\n---\n"

// Hash returns the lowercase hex sha256 digest of content.
func Hash(content string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}

// Segment is one named piece of a combined fingerprint.
type Segment struct {
	Name    string
	Content string
}

// Combined hashes the "name:content" segments in the given order.
func Combined(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.Name + ":" + s.Content
	}
	return Hash(strings.Join(parts, CombinedSeparator))
}
