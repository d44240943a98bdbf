package repositories

import (
	"context"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its unique code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, includeInactive bool, limit int, offset int) ([]domain.Account, error)

	// FindChildAccounts retrieves the direct children of an account.
	FindChildAccounts(ctx context.Context, parentAccountID string, activeOnly bool) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable details.
	// Code, type and balance are never touched by this method.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error

	// StampReconciled records the completion time of a bank reconciliation
	// on the account row.
	StampReconciled(ctx context.Context, accountID string, userID string, at time.Time) error
}

// AccountPostingSupport defines the balance-mutation operations reserved for
// the posting transaction. No service exposes these.
type AccountPostingSupport interface {
	// FindAccountsByIDsForUpdate selects accounts and locks them for update
	// within a transaction. Lock order is ascending account ID.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies signed balance deltas for multiple
	// accounts within a given transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountPostingSupport
}
