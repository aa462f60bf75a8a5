package monitor

import (
	"testing"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *models.State {
	return &models.State{
		Monitors: map[string]models.MonitorState{
			"shop": {
				Hash:         "old-hash",
				MatchedValue: models.StringPtr("legacy"),
				LastChecked:  "2024-01-01T00:00:00.000Z",
				LastChanged:  "2023-12-01T00:00:00.000Z",
				Selectors: map[string]models.SelectorState{
					"price": {Hash: "p1", MatchedValue: models.StringPtr("449")},
				},
			},
			"other": {Hash: "untouched", LastChecked: "2024-01-01T00:00:00.000Z"},
		},
		LastRun: "2024-01-01T00:00:00.000Z",
	}
}

func TestBuildStateUpdate(t *testing.T) {
	prior := models.MonitorState{LastChanged: "2023-12-01T00:00:00.000Z"}
	base := models.CheckResult{
		ID:          "shop",
		Timestamp:   "2024-03-01T12:00:00.000Z",
		CurrentHash: "new-hash",
		SelectorResults: []models.SelectorResult{
			{Name: "price", Hash: "p2", MatchedValue: models.StringPtr("399")},
			{Name: "body", Hash: "b1"},
		},
	}

	t.Run("unchanged carries lastChanged forward", func(t *testing.T) {
		r := base
		r.Status = models.StatusUnchanged
		update, ok := BuildStateUpdate(r, prior)
		require.True(t, ok)
		assert.Equal(t, "2023-12-01T00:00:00.000Z", update.LastChanged)
		assert.Equal(t, "2024-03-01T12:00:00.000Z", update.LastChecked)
		assert.Equal(t, "new-hash", update.Hash)
		assert.Equal(t, map[string]models.SelectorState{
			"price": {Hash: "p2", MatchedValue: models.StringPtr("399")},
			"body":  {Hash: "b1"},
		}, update.Selectors)
	})

	t.Run("changed stamps lastChanged", func(t *testing.T) {
		r := base
		r.Status = models.StatusChanged
		update, ok := BuildStateUpdate(r, prior)
		require.True(t, ok)
		assert.Equal(t, "2024-03-01T12:00:00.000Z", update.LastChanged)
	})

	t.Run("error produces no update", func(t *testing.T) {
		r := base
		r.Status = models.StatusError
		_, ok := BuildStateUpdate(r, prior)
		assert.False(t, ok)
	})
}

func TestMergeMonitorState_DoesNotMutateInput(t *testing.T) {
	state := sampleState()
	snapshot := sampleState()

	update := StateUpdate{
		Hash:        "new-hash",
		LastChecked: "2024-03-01T12:00:00.000Z",
		LastChanged: "2024-03-01T12:00:00.000Z",
		Selectors:   map[string]models.SelectorState{"price": {Hash: "p2", MatchedValue: models.StringPtr("399")}},
	}
	now := time.Date(2024, 3, 1, 12, 0, 1, 0, time.UTC)

	merged := MergeMonitorState(state, "shop", update, now)

	if diff := cmp.Diff(snapshot, state); diff != "" {
		t.Fatalf("input state mutated (-want +got):\n%s", diff)
	}

	shop := merged.Monitors["shop"]
	assert.Equal(t, "new-hash", shop.Hash)
	assert.Equal(t, "legacy", models.StringOrEmpty(shop.MatchedValue), "fields absent from the update are kept")
	assert.Equal(t, "399", models.StringOrEmpty(shop.Selectors["price"].MatchedValue))
	assert.Equal(t, "2024-03-01T12:00:01.000Z", merged.LastRun)
	assert.Equal(t, state.Monitors["other"], merged.Monitors["other"])

	update.Selectors["price"] = models.SelectorState{Hash: "tampered"}
	assert.Equal(t, "p2", merged.Monitors["shop"].Selectors["price"].Hash, "merged state must not alias the update")
}

func TestMergeMonitorState_NewMonitor(t *testing.T) {
	merged := MergeMonitorState(nil, "fresh", StateUpdate{Hash: "h", LastChecked: "t"}, time.Unix(0, 0))

	require.Contains(t, merged.Monitors, "fresh")
	assert.Equal(t, "h", merged.Monitors["fresh"].Hash)
	assert.Empty(t, merged.Monitors["fresh"].LastChanged)
	assert.Equal(t, "1970-01-01T00:00:00.000Z", merged.LastRun)
}
