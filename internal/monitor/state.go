package monitor

import (
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
)

// StateUpdate is the partial monitor state a successful check proposes.
type StateUpdate struct {
	Hash        string
	LastChecked string
	LastChanged string
	Selectors   map[string]models.SelectorState
}

// BuildStateUpdate derives the update for a check result. It returns false
// for errored results, which must not touch stored state. lastChanged moves
// to the check's timestamp on change and is carried forward otherwise.
func BuildStateUpdate(result models.CheckResult, prior models.MonitorState) (StateUpdate, bool) {
	if result.Status == models.StatusError {
		return StateUpdate{}, false
	}

	selectors := make(map[string]models.SelectorState, len(result.SelectorResults))
	for _, sr := range result.SelectorResults {
		selectors[sr.Name] = models.SelectorState{
			Hash:         sr.Hash,
			MatchedValue: sr.MatchedValue,
		}
	}

	lastChanged := prior.LastChanged
	if result.Status == models.StatusChanged {
		lastChanged = result.Timestamp
	}

	return StateUpdate{
		Hash:        result.CurrentHash,
		LastChecked: result.Timestamp,
		LastChanged: lastChanged,
		Selectors:   selectors,
	}, true
}

// MergeMonitorState returns a new state with update merged over the stored
// entry of id. Fields the update does not carry keep their stored values.
// state itself is never modified.
func MergeMonitorState(state *models.State, id string, update StateUpdate, now time.Time) *models.State {
	monitors := make(map[string]models.MonitorState)
	if state != nil {
		for k, v := range state.Monitors {
			monitors[k] = v
		}
	}

	merged := monitors[id]
	merged.Hash = update.Hash
	merged.LastChecked = update.LastChecked
	merged.LastChanged = update.LastChanged
	merged.Selectors = make(map[string]models.SelectorState, len(update.Selectors))
	for name, sel := range update.Selectors {
		merged.Selectors[name] = sel
	}
	monitors[id] = merged

	return &models.State{
		Monitors: monitors,
		LastRun:  models.FormatTimestamp(now),
	}
}

// ApplyResult merges a successful result into state and returns the new
// state. Errored results return state unchanged.
func ApplyResult(state *models.State, result models.CheckResult, now time.Time) *models.State {
	prior, _ := state.Lookup(result.ID)
	update, ok := BuildStateUpdate(result, prior)
	if !ok {
		return state
	}
	return MergeMonitorState(state, result.ID, update, now)
}
