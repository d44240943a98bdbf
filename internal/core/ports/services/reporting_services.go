package services

import (
	"context"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
)

// ReportingSvcFacade derives period-level aggregates from the ledger.
type ReportingSvcFacade interface {
	// GenerateTrialBalance computes and persists one row per active account
	// for the period, carrying opening balances forward from the prior
	// period's closing figures, and asserts the debit/credit identity.
	GenerateTrialBalance(ctx context.Context, periodID string, generatedBy string) ([]domain.TrialBalanceLine, error)

	// GetTrialBalance retrieves the stored trial balance rows for a period.
	GetTrialBalance(ctx context.Context, periodID string) ([]domain.TrialBalanceLine, error)

	// ProfitAndLoss generates a profit and loss report for a date range.
	ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error)

	// BalanceSheet generates a balance sheet as of a date.
	BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error)

	// VerifyLedgerIntegrity recomputes every account balance from ledger
	// history and the per-period debit/credit identity, returning one
	// finding per violation. An empty slice means the ledger is sound.
	VerifyLedgerIntegrity(ctx context.Context) ([]domain.ConsistencyFinding, error)
}
