package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/ledger-engine/internal/core/ports/services"
	"github.com/finboard/ledger-engine/internal/dto"
	"github.com/finboard/ledger-engine/internal/utils/accounting"
)

var (
	ErrNotBankAccount         = errors.New("account is not flagged as a bank account")
	ErrReconciliationNotFound = errors.New("reconciliation not found")
	ErrNotInProgress          = errors.New("reconciliation is not in progress")
	ErrAlreadyStarted         = errors.New("reconciliation is already started")
	ErrAlreadyCompleted       = errors.New("reconciliation is already completed")
)

// reconciliationService matches ledger-derived bank balances against
// externally supplied statement balances. The reconciliation record is the
// only holder of reconciliation state.
type reconciliationService struct {
	BaseService
	reconciliationRepo portsrepo.ReconciliationRepositoryFacade
	accountRepo        portsrepo.AccountRepositoryFacade
	ledgerRepo         portsrepo.LedgerReader
}

// NewReconciliationService creates a new bank reconciliation service.
func NewReconciliationService(reconciliationRepo portsrepo.ReconciliationRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, ledgerRepo portsrepo.LedgerReader) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconciliationRepo: reconciliationRepo,
		accountRepo:        accountRepo,
		ledgerRepo:         ledgerRepo,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// CreateReconciliation opens a DRAFT reconciliation for a bank account. The
// book balance is the registered opening balance plus the signed sum of all
// ledger rows dated at or before the statement date. Summing by date covers
// backdated entries that the running-balance snapshots, written in posting
// order, would miss.
func (s *reconciliationService) CreateReconciliation(ctx context.Context, req dto.CreateReconciliationRequest, creatorUserID string) (*domain.BankReconciliation, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, req.AccountID)
		}
		return nil, err
	}
	if !account.IsBank {
		return nil, fmt.Errorf("%w: ID %s", ErrNotBankAccount, req.AccountID)
	}

	movement, err := s.ledgerRepo.AggregateAccountMovementOnOrBefore(ctx, account.AccountID, req.StatementDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive book balance", slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to derive book balance: %w", err)
	}
	delta, err := accounting.SignedDelta(account.AccountType, movement.Debit, movement.Credit)
	if err != nil {
		return nil, fmt.Errorf("failed to derive book balance: %w", err)
	}
	bookBalance := account.SignedOpeningBalance().Add(delta)

	now := time.Now().UTC()
	rec := domain.BankReconciliation{
		ReconciliationID: uuid.NewString(),
		AccountID:        account.AccountID,
		StatementDate:    req.StatementDate,
		StatementBalance: req.StatementBalance,
		BookBalance:      bookBalance,
		Status:           domain.ReconciliationDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.reconciliationRepo.SaveReconciliation(ctx, rec); err != nil {
		s.LogError(ctx, err, "Failed to save reconciliation", slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to save reconciliation: %w", err)
	}

	s.LogInfo(ctx, "Bank reconciliation created",
		slog.String("reconciliation_id", rec.ReconciliationID),
		slog.String("account_id", rec.AccountID),
		slog.String("book_balance", bookBalance.String()))
	return &rec, nil
}

// StartReconciliation transitions DRAFT -> IN_PROGRESS.
func (s *reconciliationService) StartReconciliation(ctx context.Context, reconciliationID string, userID string) (*domain.BankReconciliation, error) {
	rec, err := s.getReconciliation(ctx, reconciliationID)
	if err != nil {
		return nil, err
	}
	if !rec.Status.CanTransitionTo(domain.ReconciliationInProgress) {
		if rec.Status == domain.ReconciliationCompleted {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyCompleted, reconciliationID)
		}
		return nil, fmt.Errorf("%w: %s", ErrAlreadyStarted, reconciliationID)
	}

	expected := rec.Status
	rec.Status = domain.ReconciliationInProgress
	rec.LastUpdatedAt = time.Now().UTC()
	rec.LastUpdatedBy = userID

	if err := s.reconciliationRepo.UpdateReconciliation(ctx, *rec, expected); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyStarted, reconciliationID)
		}
		s.LogError(ctx, err, "Failed to start reconciliation", slog.String("reconciliation_id", reconciliationID))
		return nil, fmt.Errorf("failed to start reconciliation: %w", err)
	}

	s.LogInfo(ctx, "Bank reconciliation started", slog.String("reconciliation_id", reconciliationID))
	return rec, nil
}

// CompleteReconciliation transitions IN_PROGRESS -> COMPLETED, recording the
// reconciled balance and difference and stamping the account.
func (s *reconciliationService) CompleteReconciliation(ctx context.Context, reconciliationID string, reconciledBy string) (*domain.BankReconciliation, error) {
	rec, err := s.getReconciliation(ctx, reconciliationID)
	if err != nil {
		return nil, err
	}
	if rec.Status == domain.ReconciliationCompleted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCompleted, reconciliationID)
	}
	if !rec.Status.CanTransitionTo(domain.ReconciliationCompleted) {
		return nil, fmt.Errorf("%w: status is %s", ErrNotInProgress, rec.Status)
	}

	now := time.Now().UTC()
	expected := rec.Status
	rec.Status = domain.ReconciliationCompleted
	rec.ReconciledBalance = rec.BookBalance
	rec.Difference = rec.StatementBalance.Sub(rec.BookBalance)
	rec.ReconciledBy = reconciledBy
	rec.ReconciledAt = &now
	rec.LastUpdatedAt = now
	rec.LastUpdatedBy = reconciledBy

	if err := s.reconciliationRepo.UpdateReconciliation(ctx, *rec, expected); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrNotInProgress, reconciliationID)
		}
		s.LogError(ctx, err, "Failed to complete reconciliation", slog.String("reconciliation_id", reconciliationID))
		return nil, fmt.Errorf("failed to complete reconciliation: %w", err)
	}

	// Derived convenience stamp; the reconciliation row stays the single
	// source of truth for reconciliation state.
	if err := s.accountRepo.StampReconciled(ctx, rec.AccountID, reconciledBy, now); err != nil {
		s.LogWarn(ctx, "Failed to stamp account last-reconciled time",
			slog.String("account_id", rec.AccountID),
			slog.String("error", err.Error()))
	}

	s.LogInfo(ctx, "Bank reconciliation completed",
		slog.String("reconciliation_id", reconciliationID),
		slog.String("difference", rec.Difference.String()))
	return rec, nil
}

// GetReconciliationByID retrieves a reconciliation.
func (s *reconciliationService) GetReconciliationByID(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	return s.getReconciliation(ctx, reconciliationID)
}

// ListReconciliationsByAccount retrieves reconciliations for an account.
func (s *reconciliationService) ListReconciliationsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.BankReconciliation, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.reconciliationRepo.ListReconciliationsByAccount(ctx, accountID, limit, offset)
}

func (s *reconciliationService) getReconciliation(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	rec, err := s.reconciliationRepo.FindReconciliationByID(ctx, reconciliationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %s", ErrReconciliationNotFound, reconciliationID)
		}
		s.LogError(ctx, err, "Failed to find reconciliation", slog.String("reconciliation_id", reconciliationID))
		return nil, err
	}
	return rec, nil
}
