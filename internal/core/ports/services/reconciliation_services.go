package services

import (
	"context"

	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/finboard/ledger-engine/internal/dto"
)

// ReconciliationSvcFacade manages the bank reconciliation lifecycle.
type ReconciliationSvcFacade interface {
	// CreateReconciliation opens a DRAFT reconciliation for a bank account,
	// computing the book balance from ledger history at the statement date.
	CreateReconciliation(ctx context.Context, req dto.CreateReconciliationRequest, creatorUserID string) (*domain.BankReconciliation, error)

	// StartReconciliation transitions DRAFT to IN_PROGRESS.
	StartReconciliation(ctx context.Context, reconciliationID string, userID string) (*domain.BankReconciliation, error)

	// CompleteReconciliation transitions IN_PROGRESS to COMPLETED, recording
	// the reconciled balance and the statement/book difference.
	CompleteReconciliation(ctx context.Context, reconciliationID string, reconciledBy string) (*domain.BankReconciliation, error)

	// GetReconciliationByID retrieves a reconciliation.
	GetReconciliationByID(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error)

	// ListReconciliationsByAccount retrieves reconciliations for an account.
	ListReconciliationsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.BankReconciliation, error)
}
