package datastore

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

// JSONStateStore keeps state in a single indented JSON file.
type JSONStateStore struct {
	path   string
	logger zerolog.Logger
}

// NewJSONStateStore creates a store backed by the file at path. The file is
// not touched until Load or Save is called.
func NewJSONStateStore(path string, logger zerolog.Logger) *JSONStateStore {
	return &JSONStateStore{
		path:   path,
		logger: logger.With().Str("component", "JSONStateStore").Str("path", path).Logger(),
	}
}

func (s *JSONStateStore) Path() string { return s.path }

func (s *JSONStateStore) Close() error { return nil }

// Load reads the state file. A missing file yields an empty state.
func (s *JSONStateStore) Load(_ context.Context) (*models.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if common.IsNotExist(err) {
			s.logger.Debug().Msg("No state file yet, starting empty")
			return models.NewState(), nil
		}
		return nil, checkerrors.NewStorageStateRead(s.path, err)
	}

	state := models.NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, checkerrors.NewStorageStateParse(s.path, err)
	}
	if state.Monitors == nil {
		state.Monitors = make(map[string]models.MonitorState)
	}

	s.logger.Debug().Int("monitors", len(state.Monitors)).Msg("State loaded")
	return state, nil
}

// Save writes state through a temporary file and renames it into place.
func (s *JSONStateStore) Save(_ context.Context, state *models.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return checkerrors.NewStorageStateWrite(s.path, err)
	}

	if err := common.WriteFileAtomic(s.path, data, 0644); err != nil {
		return checkerrors.NewStorageStateWrite(s.path, err)
	}

	s.logger.Debug().Int("monitors", len(state.Monitors)).Msg("State saved")
	return nil
}
