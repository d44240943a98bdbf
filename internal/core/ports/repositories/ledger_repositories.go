package repositories

import (
	"context"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
)

// LedgerReader defines read operations over the append-only general ledger.
// There is deliberately no writer interface: ledger rows are created only by
// JournalPostingSupport and never changed afterwards.
type LedgerReader interface {
	// ListLedgerByAccount retrieves ledger rows for an account within a date
	// range, oldest first.
	ListLedgerByAccount(ctx context.Context, accountID string, from, to time.Time, limit int, offset int) ([]domain.LedgerEntry, error)

	// AggregateAccountMovementOnOrBefore sums debits and credits of all ledger
	// rows for an account with a transaction date at or before the given date.
	// Date-scoped, so backdated rows count regardless of posting order.
	AggregateAccountMovementOnOrBefore(ctx context.Context, accountID string, date time.Time) (domain.AccountMovement, error)

	// AggregateMovementsByPeriod sums debits and credits per account for all
	// ledger rows referencing the period.
	AggregateMovementsByPeriod(ctx context.Context, periodID string) ([]domain.AccountMovement, error)

	// ReadIntegritySnapshot reads accounts, ledger aggregates and periods in
	// one repeatable-read transaction for integrity verification.
	ReadIntegritySnapshot(ctx context.Context) (*domain.IntegritySnapshot, error)

	// GetProfitAndLossData returns per-account net amounts for revenue and
	// expense accounts over a date range.
	GetProfitAndLossData(ctx context.Context, from, to time.Time) (revenue []domain.AccountAmount, expenses []domain.AccountAmount, err error)

	// GetBalanceSheetData returns per-account net amounts for asset,
	// liability and equity accounts as of a date.
	GetBalanceSheetData(ctx context.Context, asOf time.Time) (assets []domain.AccountAmount, liabilities []domain.AccountAmount, equity []domain.AccountAmount, err error)
}
