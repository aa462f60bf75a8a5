package differ

import (
	"fmt"
	"strings"

	"github.com/aleister1102/pagewatch/internal/models"
)

// LineSetDiff compares two values as sets of lines.
//
// It is deliberately order-insensitive: reordering identical lines yields no
// added or removed entries and duplicate lines collapse. Blank lines are never
// reported.
type LineSetDiff struct {
	patch *PatchBuilder
}

// NewLineSetDiff creates a differ. A nil patch builder disables patch text.
func NewLineSetDiff(patch *PatchBuilder) *LineSetDiff {
	return &LineSetDiff{patch: patch}
}

// Diff returns nil when previous and current are identical.
func (d *LineSetDiff) Diff(previous, current string) *models.DiffResult {
	if previous == current {
		return nil
	}

	prevLines := strings.Split(previous, "\n")
	currLines := strings.Split(current, "\n")

	added := difference(currLines, toSet(prevLines))
	removed := difference(prevLines, toSet(currLines))

	result := &models.DiffResult{
		Added:   added,
		Removed: removed,
		Summary: fmt.Sprintf("+%d lines, -%d lines", len(added), len(removed)),
	}
	if d.patch != nil {
		result.Patch = d.patch.Build(previous, current)
	}
	return result
}

// Diff is a convenience wrapper using a differ without patch text.
func Diff(previous, current string) *models.DiffResult {
	return NewLineSetDiff(nil).Diff(previous, current)
}

func toSet(lines []string) map[string]struct{} {
	set := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		set[l] = struct{}{}
	}
	return set
}

// difference returns the non-blank lines of from that are absent in exclude,
// de-duplicated in first-seen order.
func difference(from []string, exclude map[string]struct{}) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, l := range from {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if _, ok := exclude[l]; ok {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
