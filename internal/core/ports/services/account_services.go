package services

import (
	"context"

	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/finboard/ledger-engine/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its unique code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByIDs retrieves multiple accounts by their IDs.
	GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// GetAccountBalance returns the read-only balance view of an account.
	GetAccountBalance(ctx context.Context, accountID string) (*dto.AccountBalance, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, includeInactive bool, limit int, offset int) ([]domain.Account, error)

	// GetAccountPath walks the parent chain from the account up to its root,
	// returning the path root-first.
	GetAccountPath(ctx context.Context, accountID string) ([]domain.Account, error)

	// GetChildAccounts retrieves the direct children of an account.
	GetChildAccounts(ctx context.Context, accountID string, activeOnly bool) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the chart of accounts.
// Note the absence of any balance mutation: balances move only through the
// posting engine.
type AccountWriterSvc interface {
	// RegisterAccount persists a new account with an immutable code.
	RegisterAccount(ctx context.Context, req dto.RegisterAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Accounts with ledger
	// history are never hard-deleted.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
