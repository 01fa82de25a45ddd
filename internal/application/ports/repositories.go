package ports

import (
	"context"
	"errors"

	"pcfg.dev/cli/internal/core/domain"
)

// ErrRecordNotFound is returned when a run has no stored record
var ErrRecordNotFound = errors.New("record not found")

// RecordStore defines the interface for run record persistence
type RecordStore interface {
	// Append adds entry to the record of runID, creating the record if needed
	Append(ctx context.Context, runID string, entry domain.RecordEntry) (*domain.Record, error)

	// Load retrieves the record of runID
	Load(ctx context.Context, runID string) (*domain.Record, error)

	// List returns summaries of all stored records, most recently updated first
	List(ctx context.Context) ([]domain.RecordSummary, error)
}
