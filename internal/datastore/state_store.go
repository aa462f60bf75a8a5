package datastore

import (
	"context"
	"fmt"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

// State store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// StateStore persists the state of one configuration between runs.
type StateStore interface {
	// Load returns the stored state, or an empty state when nothing has
	// been stored yet.
	Load(ctx context.Context) (*models.State, error)
	Save(ctx context.Context, state *models.State) error
	Path() string
	Close() error
}

// NewStateStore opens the store for backend at path.
func NewStateStore(backend, path string, logger zerolog.Logger) (StateStore, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONStateStore(path, logger), nil
	case BackendSQLite:
		return NewSQLiteStateStore(path, logger)
	default:
		return nil, fmt.Errorf("unknown state backend: %s", backend)
	}
}
