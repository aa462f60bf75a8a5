package datastore

import (
	"context"

	"github.com/aleister1102/pagewatch/internal/models"
)

// HistoryWriter appends the outcome of a run to a history sink.
type HistoryWriter interface {
	Append(ctx context.Context, results []models.CheckResult) error
}

// MultiHistoryWriter fans a run out to several sinks, stopping at the first
// failure.
type MultiHistoryWriter []HistoryWriter

func (m MultiHistoryWriter) Append(ctx context.Context, results []models.CheckResult) error {
	for _, w := range m {
		if err := w.Append(ctx, results); err != nil {
			return err
		}
	}
	return nil
}
