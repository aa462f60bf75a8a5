package models

// CheckStatus is the outcome of one monitor check.
type CheckStatus string

const (
	StatusChanged   CheckStatus = "changed"
	StatusUnchanged CheckStatus = "unchanged"
	StatusError     CheckStatus = "error"
)

// FetchResult is what either fetch strategy returns.
type FetchResult struct {
	HTML       string            `json:"html"`
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
}

// ExtractResult is the output of a selector extraction.
type ExtractResult struct {
	Content  string   `json:"content"`
	Elements []string `json:"elements"`
}

// MatchResult is the output of a match.
type MatchResult struct {
	Matched  bool     `json:"matched"`
	Value    *string  `json:"value,omitempty"`
	Captures []string `json:"captures,omitempty"`
}

// DiffResult is a line-set difference between two values.
type DiffResult struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Summary string   `json:"summary"`
	Patch   string   `json:"patch,omitempty"`
}

// SelectorResult is the per-selector part of a check.
type SelectorResult struct {
	Name                 string      `json:"name"`
	Status               CheckStatus `json:"status"`
	Hash                 string      `json:"hash"`
	PreviousHash         *string     `json:"previousHash,omitempty"`
	Content              string      `json:"content"`
	MatchedValue         *string     `json:"matchedValue,omitempty"`
	PreviousMatchedValue *string     `json:"previousMatchedValue,omitempty"`
	Diff                 *DiffResult `json:"diff,omitempty"`
}

// ErrorDetails is the structured error payload carried by an errored check.
type ErrorDetails struct {
	Code       string         `json:"code"`
	Stage      string         `json:"stage"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion"`
	Context    map[string]any `json:"context,omitempty"`
}

// CheckResult is the outcome of checking one monitor.
type CheckResult struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	URL              string           `json:"url"`
	Timestamp        string           `json:"timestamp"`
	Status           CheckStatus      `json:"status"`
	CurrentHash      string           `json:"currentHash"`
	PreviousHash     *string          `json:"previousHash,omitempty"`
	SelectorResults  []SelectorResult `json:"selectorResults,omitempty"`
	ChangedSelectors []string         `json:"changedSelectors,omitempty"`
	Error            string           `json:"error,omitempty"`
	ErrorDetails     *ErrorDetails    `json:"errorDetails,omitempty"`
}

// ConfigResult aggregates the checks of one configuration file.
type ConfigResult struct {
	ConfigName string        `json:"configName"`
	Changed    bool          `json:"changed"`
	Changes    []CheckResult `json:"changes"`
	Errors     []CheckResult `json:"errors"`
}

// RunOutput aggregates every configuration processed in one invocation.
type RunOutput struct {
	Changed    bool                    `json:"changed"`
	Changes    []CheckResult           `json:"changes"`
	Results    map[string]ConfigResult `json:"results"`
	ErrorCount int                     `json:"errorCount"`
	Errors     []CheckResult           `json:"errors"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// StringOrEmpty dereferences s, returning "" for nil.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
