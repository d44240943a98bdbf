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
)

var (
	ErrDuplicateCode    = errors.New("account code already registered")
	ErrInvalidHierarchy = errors.New("invalid account hierarchy")
	ErrHasOpenBalance   = errors.New("control account has a non-zero balance")
	ErrHasChildren      = errors.New("account has active child accounts")
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountInactive  = errors.New("account is inactive")
)

// maxHierarchyDepth bounds parent-chain walks so a corrupted hierarchy can
// never loop forever.
const maxHierarchyDepth = 32

// accountService owns the chart of accounts. It never mutates balances;
// that is the posting transaction's job.
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewAccountService creates a new account registry service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// RegisterAccount persists a new account after code and hierarchy validation.
func (s *accountService) RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest, creatorUserID string) (*domain.Account, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", apperrors.ErrValidation)
	}

	// Reject duplicate codes up front; the unique index backs this up under
	// concurrency.
	if existing, err := s.accountRepo.FindAccountByCode(ctx, req.Code); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check account code uniqueness", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: code %s", ErrDuplicateCode, req.Code)
	}

	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s not found", ErrInvalidHierarchy, *req.ParentAccountID)
			}
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("%w: parent account %s is inactive", ErrInvalidHierarchy, parent.AccountID)
		}
		parentID = parent.AccountID
	}

	openingSide := req.OpeningSide
	if openingSide == "" {
		openingSide = req.AccountType.NormalSide()
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		Category:        req.Category,
		IsGroup:         req.IsGroup,
		IsControl:       req.IsControl,
		IsBank:          req.IsBank,
		OpeningBalance:  req.OpeningBalance,
		OpeningSide:     openingSide,
		ParentAccountID: parentID,
		Description:     req.Description,
		IsActive:        true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	// The running balance starts at the opening balance, expressed on the
	// account's natural side.
	account.Balance = account.SignedOpeningBalance()

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: code %s", ErrDuplicateCode, req.Code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account registered",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code),
		slog.String("type", string(account.AccountType)))
	return &account, nil
}

// GetAccountByID retrieves a specific account.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its unique code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts keyed by ID.
func (s *accountService) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
}

// GetAccountBalance returns the read-only balance view of an account.
func (s *accountService) GetAccountBalance(ctx context.Context, accountID string) (*dto.AccountBalance, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	balance := dto.ToAccountBalance(account)
	return &balance, nil
}

// ListAccounts retrieves a paginated list of accounts.
func (s *accountService) ListAccounts(ctx context.Context, includeInactive bool, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.accountRepo.ListAccounts(ctx, includeInactive, limit, offset)
}

// GetAccountPath walks parent references from the account to its root,
// returning the chain root-first. Traversal is by ID lookup, so a cyclic
// hierarchy is detected rather than followed.
func (s *accountService) GetAccountPath(ctx context.Context, accountID string) ([]domain.Account, error) {
	var path []domain.Account
	seen := make(map[string]struct{})
	currentID := accountID
	for depth := 0; currentID != ""; depth++ {
		if depth >= maxHierarchyDepth {
			return nil, fmt.Errorf("%w: hierarchy deeper than %d levels", ErrInvalidHierarchy, maxHierarchyDepth)
		}
		if _, ok := seen[currentID]; ok {
			return nil, fmt.Errorf("%w: cycle detected at account %s", ErrInvalidHierarchy, currentID)
		}
		seen[currentID] = struct{}{}

		account, err := s.accountRepo.FindAccountByID(ctx, currentID)
		if err != nil {
			return nil, fmt.Errorf("failed to walk account hierarchy at %s: %w", currentID, err)
		}
		path = append([]domain.Account{*account}, path...)
		currentID = account.ParentAccountID
	}
	return path, nil
}

// GetChildAccounts retrieves the direct children of an account.
func (s *accountService) GetChildAccounts(ctx context.Context, accountID string, activeOnly bool) ([]domain.Account, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %s", ErrAccountNotFound, accountID)
		}
		return nil, err
	}
	return s.accountRepo.FindChildAccounts(ctx, accountID, activeOnly)
}

// UpdateAccount updates an account's mutable details. Code, type, flags and
// parent are immutable after registration.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Category != nil {
		account.Category = *req.Category
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

// DeactivateAccount soft-deletes an account. Accounts with ledger history
// are never removed; deactivation only stops future postings.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, accountID)
	}

	children, err := s.accountRepo.FindChildAccounts(ctx, accountID, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch child accounts", slog.String("account_id", accountID))
		return fmt.Errorf("failed to fetch child accounts: %w", err)
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: account %s has %d active children", ErrHasChildren, accountID, len(children))
	}

	if account.IsControl && !account.Balance.IsZero() {
		return fmt.Errorf("%w: account %s balance is %s", ErrHasOpenBalance, accountID, account.Balance.String())
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}
