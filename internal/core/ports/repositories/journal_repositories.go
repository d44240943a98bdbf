package repositories

import (
	"context"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
)

// JournalReader defines read operations for journal entry data
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryByNumber retrieves an entry with its lines by its unique number.
	FindEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error)

	// ListEntriesByStatus retrieves a paginated list of entries in the given
	// status, newest first, without lines.
	ListEntriesByStatus(ctx context.Context, status domain.EntryStatus, limit int, offset int) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for draft journal entries
type JournalWriter interface {
	// NextEntryNumber allocates the next entry number from the database sequence.
	NextEntryNumber(ctx context.Context) (string, error)

	// SaveEntry persists a new draft entry with its lines.
	SaveEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateDraftEntry replaces the header and lines of an entry. The update
	// is guarded on DRAFT status and returns apperrors.ErrConflict otherwise.
	UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error

	// MarkApproved stamps approval metadata on a draft entry.
	MarkApproved(ctx context.Context, entryID string, approverID string, now time.Time) error

	// MarkCancelled transitions a draft entry to CANCELLED. Guarded on DRAFT
	// status; returns apperrors.ErrConflict otherwise.
	MarkCancelled(ctx context.Context, entryID string, reason string, userID string, now time.Time) error
}

// JournalPostingSupport defines the atomic posting operations. Each call is
// a single database transaction: either every ledger row is written and every
// balance updated, or nothing is.
type JournalPostingSupport interface {
	// PostEntry converts a validated draft entry into general-ledger rows,
	// applies balance changes, and flips the entry to POSTED. Fails with
	// apperrors.ErrConflict when the entry is no longer a draft, and with
	// apperrors.ErrLockTimeout when account locks cannot be acquired in time.
	PostEntry(ctx context.Context, entry domain.JournalEntry, period domain.Period, postedBy string, now time.Time) ([]domain.LedgerEntry, error)

	// PostReversal persists and posts the offsetting entry and marks the
	// original as REVERSED, all in one transaction.
	PostReversal(ctx context.Context, original domain.JournalEntry, reversal domain.JournalEntry, period domain.Period, userID string, now time.Time) ([]domain.LedgerEntry, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	JournalPostingSupport
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
