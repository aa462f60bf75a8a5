package models

// FetchMode selects how a monitor's page is retrieved.
type FetchMode string

const (
	// FetchModeAuto fetches statically and falls back to the renderer when the
	// first selector comes back empty.
	FetchModeAuto    FetchMode = "auto"
	FetchModeStatic  FetchMode = "static"
	FetchModeDynamic FetchMode = "dynamic"
)

// IsExplicit reports whether the mode pins a single fetch strategy.
func (m FetchMode) IsExplicit() bool {
	return m == FetchModeStatic || m == FetchModeDynamic
}

// SelectorType is the extraction strategy of a selector.
type SelectorType string

const (
	SelectorTypeCSS   SelectorType = "css"
	SelectorTypeXPath SelectorType = "xpath"
	SelectorTypeHash  SelectorType = "hash"
)

// MatchType is the matching strategy applied to extracted content.
type MatchType string

const (
	MatchTypeRegex    MatchType = "regex"
	MatchTypeExact    MatchType = "exact"
	MatchTypeContains MatchType = "contains"
)

// MatchSpec describes an optional match applied after extraction.
type MatchSpec struct {
	Type     MatchType `json:"type" yaml:"type" validate:"required,matchtype"`
	Pattern  string    `json:"pattern" yaml:"pattern" validate:"required"`
	Expected string    `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// Selector is a named extraction rule.
type Selector struct {
	Name  string       `json:"name" yaml:"name" validate:"required"`
	Type  SelectorType `json:"type" yaml:"type" validate:"required,selectortype"`
	Value string       `json:"value,omitempty" yaml:"value,omitempty"`
	Match *MatchSpec   `json:"match,omitempty" yaml:"match,omitempty" validate:"omitempty"`
}

// Monitor is one configured unit of change detection.
// Timeout is expressed in milliseconds. Retries is a pointer so that an
// explicit zero can be told apart from "not configured".
type Monitor struct {
	ID        string     `json:"id" yaml:"id" validate:"required"`
	Name      string     `json:"name" yaml:"name" validate:"required"`
	URL       string     `json:"url" yaml:"url" validate:"required,url"`
	Mode      FetchMode  `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,fetchmode"`
	WaitFor   string     `json:"wait_for,omitempty" yaml:"wait_for,omitempty"`
	Selectors []Selector `json:"selectors" yaml:"selectors" validate:"required,min=1,dive"`
	Timeout   int        `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"omitempty,gt=0"`
	Retries   *int       `json:"retries,omitempty" yaml:"retries,omitempty" validate:"omitempty,gte=0"`
}

// EffectiveMode returns the monitor's mode, treating an empty mode as auto.
func (m Monitor) EffectiveMode() FetchMode {
	if m.Mode == "" {
		return FetchModeAuto
	}
	return m.Mode
}

// Defaults are the run-wide fallbacks for per-monitor fetch settings.
type Defaults struct {
	Timeout   int    `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"omitempty,gt=0"`
	Retries   *int   `json:"retries,omitempty" yaml:"retries,omitempty" validate:"omitempty,gte=0"`
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
