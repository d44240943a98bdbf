package repositories

import (
	"context"

	"github.com/finboard/ledger-engine/internal/core/domain"
)

// TrialBalanceRepository persists generated trial balance rows. Trial
// balances are derived data; regeneration replaces the period's rows.
type TrialBalanceRepository interface {
	// ReplaceTrialBalance atomically swaps the stored rows for a period.
	ReplaceTrialBalance(ctx context.Context, periodID string, lines []domain.TrialBalanceLine) error

	// FindTrialBalanceByPeriod retrieves the stored rows for a period,
	// ordered by account code.
	FindTrialBalanceByPeriod(ctx context.Context, periodID string) ([]domain.TrialBalanceLine, error)
}
