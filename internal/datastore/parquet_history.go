package datastore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/models"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ParquetHistoryRow is the columnar form of a history row.
type ParquetHistoryRow struct {
	Timestamp    string   `parquet:"timestamp,zstd"`
	MonitorID    string   `parquet:"id,zstd,dict"`
	Name         string   `parquet:"name,zstd,dict"`
	URL          string   `parquet:"url,zstd,dict"`
	Selector     string   `parquet:"selector,zstd,dict"`
	Status       string   `parquet:"status,zstd,dict"`
	Hash         string   `parquet:"hash,zstd"`
	MatchedValue *string  `parquet:"matched_value,zstd,optional"`
	DiffSummary  *string  `parquet:"diff_summary,zstd,optional"`
	Added        []string `parquet:"added,list"`
	Removed      []string `parquet:"removed,list"`
}

// ParquetWriterConfig holds configuration for ParquetHistoryWriter.
type ParquetWriterConfig struct {
	CompressionType string
}

// DefaultParquetWriterConfig returns default configuration.
func DefaultParquetWriterConfig() ParquetWriterConfig {
	return ParquetWriterConfig{CompressionType: "zstd"}
}

// ParquetHistoryWriter writes each run to its own Parquet file next to the
// configured path, suffixed with the run time.
type ParquetHistoryWriter struct {
	basePath     string
	writerConfig ParquetWriterConfig
	now          func() time.Time
	logger       zerolog.Logger
}

// NewParquetHistoryWriter creates a writer rooted at basePath, e.g.
// ./data/shop-history.parquet produces ./data/shop-history-20240301T120000Z.parquet.
func NewParquetHistoryWriter(basePath string, cfg ParquetWriterConfig, logger zerolog.Logger) *ParquetHistoryWriter {
	return &ParquetHistoryWriter{
		basePath:     basePath,
		writerConfig: cfg,
		now:          time.Now,
		logger:       logger.With().Str("component", "ParquetHistoryWriter").Logger(),
	}
}

// FilePathFor returns the file a run at t is written to.
func (w *ParquetHistoryWriter) FilePathFor(t time.Time) string {
	ext := filepath.Ext(w.basePath)
	if ext == "" {
		ext = ".parquet"
	}
	stem := strings.TrimSuffix(w.basePath, filepath.Ext(w.basePath))
	return fmt.Sprintf("%s-%s%s", stem, t.UTC().Format("20060102T150405Z"), ext)
}

// Append writes the rows of results to a new file. A run with no rows
// writes nothing.
func (w *ParquetHistoryWriter) Append(_ context.Context, results []models.CheckResult) error {
	rows := models.FlattenResults(results)
	if len(rows) == 0 {
		return nil
	}

	filePath := w.FilePathFor(w.now())
	if err := common.EnsureParentDir(filePath); err != nil {
		return checkerrors.NewStorageHistoryWrite(filePath, err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return checkerrors.NewStorageHistoryWrite(filePath, err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[ParquetHistoryRow](file, w.compressionOption())
	records := make([]ParquetHistoryRow, 0, len(rows))
	for _, row := range rows {
		records = append(records, toParquetRow(row))
	}

	if _, err := writer.Write(records); err != nil {
		return checkerrors.NewStorageHistoryWrite(filePath, err)
	}
	if err := writer.Close(); err != nil {
		return checkerrors.NewStorageHistoryWrite(filePath, err)
	}

	w.logger.Info().
		Str("file_path", filePath).
		Int("records_written", len(records)).
		Msg("Wrote history to Parquet file")
	return nil
}

func (w *ParquetHistoryWriter) compressionOption() parquet.WriterOption {
	switch w.writerConfig.CompressionType {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}

func toParquetRow(row models.HistoryRow) ParquetHistoryRow {
	return ParquetHistoryRow{
		Timestamp:    row.Timestamp,
		MonitorID:    row.ID,
		Name:         row.Name,
		URL:          row.URL,
		Selector:     row.Selector,
		Status:       row.Status,
		Hash:         row.Hash,
		MatchedValue: stringPtrOrNil(row.MatchedValue),
		DiffSummary:  stringPtrOrNil(row.DiffSummary),
		Added:        row.Added,
		Removed:      row.Removed,
	}
}

// stringPtrOrNil converts string to pointer, or nil if string is empty
func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
