package repositories

import (
	"context"

	"github.com/finboard/ledger-engine/internal/core/domain"
)

// ReconciliationRepositoryFacade defines persistence for bank reconciliations.
type ReconciliationRepositoryFacade interface {
	// SaveReconciliation persists a new reconciliation in DRAFT.
	SaveReconciliation(ctx context.Context, rec domain.BankReconciliation) error

	// FindReconciliationByID retrieves a reconciliation by its identifier.
	FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error)

	// UpdateReconciliation writes the full record, guarded on the expected
	// current status. A guard miss returns apperrors.ErrConflict so that two
	// concurrent transitions cannot both win.
	UpdateReconciliation(ctx context.Context, rec domain.BankReconciliation, expectedStatus domain.ReconciliationStatus) error

	// ListReconciliationsByAccount retrieves reconciliations for an account,
	// newest statement first.
	ListReconciliationsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.BankReconciliation, error)
}
