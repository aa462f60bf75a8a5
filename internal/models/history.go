package models

// HistoryRow is one flattened selector result as written to history sinks.
type HistoryRow struct {
	Timestamp    string
	ID           string
	Name         string
	URL          string
	Selector     string
	Status       string
	Hash         string
	MatchedValue string
	DiffSummary  string
	Added        []string
	Removed      []string
}

// HistoryColumns is the default column order of tabular history output.
var HistoryColumns = []string{
	"timestamp",
	"id",
	"name",
	"url",
	"selector",
	"status",
	"hash",
	"matched_value",
	"diff_summary",
}

// Column returns the value of a named history column.
func (r HistoryRow) Column(name string) (string, bool) {
	switch name {
	case "timestamp":
		return r.Timestamp, true
	case "id":
		return r.ID, true
	case "name":
		return r.Name, true
	case "url":
		return r.URL, true
	case "selector":
		return r.Selector, true
	case "status":
		return r.Status, true
	case "hash":
		return r.Hash, true
	case "matched_value":
		return r.MatchedValue, true
	case "diff_summary":
		return r.DiffSummary, true
	default:
		return "", false
	}
}

// FlattenResults turns check results into history rows, one per selector.
// Errored checks carry no selector results and produce no rows.
func FlattenResults(results []CheckResult) []HistoryRow {
	var rows []HistoryRow
	for _, r := range results {
		for _, sr := range r.SelectorResults {
			row := HistoryRow{
				Timestamp:    r.Timestamp,
				ID:           r.ID,
				Name:         r.Name,
				URL:          r.URL,
				Selector:     sr.Name,
				Status:       string(sr.Status),
				Hash:         sr.Hash,
				MatchedValue: StringOrEmpty(sr.MatchedValue),
			}
			if sr.Diff != nil {
				row.DiffSummary = sr.Diff.Summary
				row.Added = sr.Diff.Added
				row.Removed = sr.Diff.Removed
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// IsHistoryColumn reports whether name is a known history column.
func IsHistoryColumn(name string) bool {
	_, ok := HistoryRow{}.Column(name)
	return ok
}
