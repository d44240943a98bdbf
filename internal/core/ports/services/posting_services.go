package services

import (
	"context"

	"github.com/finboard/ledger-engine/internal/core/domain"
)

// PostingSvcFacade is the ledger posting engine: the only component that
// turns draft entries into ledger rows and balance changes.
type PostingSvcFacade interface {
	// PostEntry atomically posts a draft entry into its open period. On
	// success the returned entry is POSTED; on any failure no ledger rows
	// exist and no balance moved.
	PostEntry(ctx context.Context, entryID string, postedBy string) (*domain.JournalEntry, error)

	// ReverseEntry creates and posts an offsetting entry for a posted one,
	// dated in the current open period, and marks the original REVERSED.
	// Returns the reversal entry.
	ReverseEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)
}
