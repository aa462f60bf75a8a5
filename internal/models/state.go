package models

// SelectorState is the persisted fingerprint of one selector.
type SelectorState struct {
	Hash         string  `json:"hash"`
	MatchedValue *string `json:"matchedValue,omitempty"`
}

// MonitorState is the persisted snapshot of one monitor.
type MonitorState struct {
	Hash         string                   `json:"hash"`
	MatchedValue *string                  `json:"matchedValue,omitempty"`
	LastChecked  string                   `json:"lastChecked"`
	LastChanged  string                   `json:"lastChanged,omitempty"`
	Selectors    map[string]SelectorState `json:"selectors,omitempty"`
}

// State is the full persisted state of one configuration.
type State struct {
	Monitors map[string]MonitorState `json:"monitors"`
	LastRun  string                  `json:"lastRun"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{Monitors: make(map[string]MonitorState)}
}

// Lookup returns the stored state of a monitor, if any.
func (s *State) Lookup(id string) (MonitorState, bool) {
	if s == nil || s.Monitors == nil {
		return MonitorState{}, false
	}
	ms, ok := s.Monitors[id]
	return ms, ok
}

// StateLookup reads a monitor's prior state without exposing the store.
type StateLookup func(id string) (MonitorState, bool)
