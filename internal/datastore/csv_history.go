package datastore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

// CSVHistoryWriter appends one row per selector result to a CSV file. The
// header is written only when the file is created.
type CSVHistoryWriter struct {
	path    string
	columns []string
	logger  zerolog.Logger
}

// NewCSVHistoryWriter creates a writer for path. An empty column list means
// the default columns; unknown column names are rejected.
func NewCSVHistoryWriter(path string, columns []string, logger zerolog.Logger) (*CSVHistoryWriter, error) {
	if len(columns) == 0 {
		columns = models.HistoryColumns
	}

	var problems []string
	for _, c := range columns {
		if !models.IsHistoryColumn(c) {
			problems = append(problems, fmt.Sprintf("Validation failed for 'output.csv.columns': unknown column '%s'", c))
		}
	}
	if len(problems) > 0 {
		return nil, checkerrors.NewConfigValidation(path, problems)
	}

	return &CSVHistoryWriter{
		path:    path,
		columns: columns,
		logger:  logger.With().Str("component", "CSVHistoryWriter").Str("path", path).Logger(),
	}, nil
}

// Append writes the rows of results. Errored results contribute no rows.
func (w *CSVHistoryWriter) Append(_ context.Context, results []models.CheckResult) error {
	if err := common.EnsureParentDir(w.path); err != nil {
		return checkerrors.NewStorageHistoryWrite(w.path, err)
	}

	isNew := !common.FileExists(w.path)

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return checkerrors.NewStorageHistoryWrite(w.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if isNew {
		if err := writer.Write(w.columns); err != nil {
			return checkerrors.NewStorageHistoryWrite(w.path, err)
		}
	}

	rows := models.FlattenResults(results)
	record := make([]string, len(w.columns))
	for _, row := range rows {
		for i, c := range w.columns {
			record[i], _ = row.Column(c)
		}
		if err := writer.Write(record); err != nil {
			return checkerrors.NewStorageHistoryWrite(w.path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return checkerrors.NewStorageHistoryWrite(w.path, err)
	}

	w.logger.Debug().Int("rows", len(rows)).Bool("new_file", isNew).Msg("History appended")
	return nil
}
