package datastore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS monitor_states (
	monitor_id     TEXT PRIMARY KEY,
	hash           TEXT NOT NULL,
	matched_value  TEXT,
	last_checked   TEXT NOT NULL,
	last_changed   TEXT,
	selectors_json TEXT NOT NULL DEFAULT '{}'
);
CREATE TABLE IF NOT EXISTS run_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStateStore keeps state in a SQLite database, one row per monitor.
type SQLiteStateStore struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// NewSQLiteStateStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStateStore(path string, logger zerolog.Logger) (*SQLiteStateStore, error) {
	logger = logger.With().Str("component", "SQLiteStateStore").Str("path", path).Logger()

	if err := common.EnsureParentDir(path); err != nil {
		return nil, checkerrors.NewStorageStateRead(path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, checkerrors.NewStorageStateRead(path, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		logger.Error().Err(err).Msg("Failed to initialize state schema")
		return nil, checkerrors.NewStorageStateRead(path, err)
	}

	logger.Debug().Msg("State database ready")
	return &SQLiteStateStore{db: db, path: path, logger: logger}, nil
}

func (s *SQLiteStateStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads every monitor row and the last run timestamp.
func (s *SQLiteStateStore) Load(ctx context.Context) (*models.State, error) {
	state := models.NewState()

	rows, err := s.db.QueryContext(ctx,
		`SELECT monitor_id, hash, matched_value, last_checked, last_changed, selectors_json FROM monitor_states`)
	if err != nil {
		return nil, checkerrors.NewStorageStateRead(s.path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, hash, lastChecked, selectorsJSON string
			matchedValue, lastChanged            sql.NullString
		)
		if err := rows.Scan(&id, &hash, &matchedValue, &lastChecked, &lastChanged, &selectorsJSON); err != nil {
			return nil, checkerrors.NewStorageStateRead(s.path, err)
		}

		ms := models.MonitorState{
			Hash:        hash,
			LastChecked: lastChecked,
			LastChanged: lastChanged.String,
		}
		if matchedValue.Valid {
			ms.MatchedValue = models.StringPtr(matchedValue.String)
		}
		if err := json.Unmarshal([]byte(selectorsJSON), &ms.Selectors); err != nil {
			return nil, checkerrors.NewStorageStateParse(s.path, err)
		}
		state.Monitors[id] = ms
	}
	if err := rows.Err(); err != nil {
		return nil, checkerrors.NewStorageStateRead(s.path, err)
	}

	var lastRun string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM run_meta WHERE key = 'last_run'`).Scan(&lastRun)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, checkerrors.NewStorageStateRead(s.path, err)
	default:
		state.LastRun = lastRun
	}

	s.logger.Debug().Int("monitors", len(state.Monitors)).Msg("State loaded")
	return state, nil
}

// Save replaces the stored state in a single transaction.
func (s *SQLiteStateStore) Save(ctx context.Context, state *models.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return checkerrors.NewStorageStateWrite(s.path, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monitor_states`); err != nil {
		return checkerrors.NewStorageStateWrite(s.path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO monitor_states
		(monitor_id, hash, matched_value, last_checked, last_changed, selectors_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return checkerrors.NewStorageStateWrite(s.path, err)
	}
	defer stmt.Close()

	for id, ms := range state.Monitors {
		selectors := ms.Selectors
		if selectors == nil {
			selectors = map[string]models.SelectorState{}
		}
		selectorsJSON, err := json.Marshal(selectors)
		if err != nil {
			return checkerrors.NewStorageStateWrite(s.path, err)
		}

		if _, err := stmt.ExecContext(ctx,
			id,
			ms.Hash,
			nullString(ms.MatchedValue),
			ms.LastChecked,
			sql.NullString{String: ms.LastChanged, Valid: ms.LastChanged != ""},
			string(selectorsJSON),
		); err != nil {
			s.logger.Error().Err(err).Str("monitor_id", id).Msg("Failed to write monitor state")
			return checkerrors.NewStorageStateWrite(s.path, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run_meta (key, value) VALUES ('last_run', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, state.LastRun); err != nil {
		return checkerrors.NewStorageStateWrite(s.path, err)
	}

	if err := tx.Commit(); err != nil {
		return checkerrors.NewStorageStateWrite(s.path, err)
	}

	s.logger.Debug().Int("monitors", len(state.Monitors)).Msg("State saved")
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
