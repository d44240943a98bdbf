package services

import (
	"context"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/finboard/ledger-engine/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries and the
// ledger history they produced.
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryByNumber retrieves an entry with its lines by entry number.
	GetEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error)

	// ListEntriesByStatus retrieves entries in the given status, newest first.
	ListEntriesByStatus(ctx context.Context, status domain.EntryStatus, limit int, offset int) ([]domain.JournalEntry, error)

	// ListLedgerByAccount retrieves the immutable ledger history of an
	// account within a date range.
	ListLedgerByAccount(ctx context.Context, accountID string, from, to time.Time, limit int, offset int) ([]domain.LedgerEntry, error)
}

// JournalWriterSvc defines the draft entry workflow. Posting and reversal
// live on PostingSvcFacade.
type JournalWriterSvc interface {
	// CreateEntry validates and persists a new draft entry.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// UpdateEntry re-validates and replaces a draft entry's header and lines.
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error)

	// ApproveEntry stamps approval metadata on a draft entry.
	ApproveEntry(ctx context.Context, entryID string, approverID string) (*domain.JournalEntry, error)

	// CancelEntry transitions a draft entry to CANCELLED.
	CancelEntry(ctx context.Context, entryID string, reason string, userID string) error
}

// JournalSvcFacade combines the journal workflow interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
