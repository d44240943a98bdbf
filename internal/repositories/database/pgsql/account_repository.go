package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, code, name, account_type, category, is_group, is_control, is_bank,
	opening_balance, opening_side, balance, parent_account_id, description, is_active,
	last_reconciled_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart-of-accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// rowScanner abstracts pgx.Row and pgx.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var acc domain.Account
	var parentID sql.NullString
	var reconciledAt sql.NullTime
	err := row.Scan(
		&acc.AccountID,
		&acc.Code,
		&acc.Name,
		&acc.AccountType,
		&acc.Category,
		&acc.IsGroup,
		&acc.IsControl,
		&acc.IsBank,
		&acc.OpeningBalance,
		&acc.OpeningSide,
		&acc.Balance,
		&parentID,
		&acc.Description,
		&acc.IsActive,
		&reconciledAt,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if parentID.Valid {
		acc.ParentAccountID = parentID.String
	}
	if reconciledAt.Valid {
		t := reconciledAt.Time
		acc.LastReconciledAt = &t
	}
	return acc, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	var parentID sql.NullString
	if account.ParentAccountID != "" {
		parentID = sql.NullString{String: account.ParentAccountID, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Code,
		account.Name,
		account.AccountType,
		account.Category,
		account.IsGroup,
		account.IsControl,
		account.IsBank,
		account.OpeningBalance,
		account.OpeningSide,
		account.Balance,
		parentID,
		account.Description,
		account.IsActive,
		nil, // last_reconciled_at
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if classified := classifyPgError(err); errors.Is(classified, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its primary key.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return &acc, nil
}

// FindAccountByCode retrieves an account by its unique code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts[acc.AccountID] = acc
	}
	return accounts, rows.Err()
}

// ListAccounts retrieves accounts ordered by code. A non-positive limit
// returns all rows.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, includeInactive bool, limit int, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ($1 OR is_active) ORDER BY code`
	args := []any{includeInactive}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := r.Pool.Query(ctx, query+`;`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// FindChildAccounts retrieves the direct children of an account.
func (r *PgxAccountRepository) FindChildAccounts(ctx context.Context, parentAccountID string, activeOnly bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE parent_account_id = $1 AND (NOT $2 OR is_active) ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, parentAccountID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query child accounts of %s: %w", parentAccountID, err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// UpdateAccount updates mutable account details. Code, type, flags, parent
// and balance stay untouched.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, category = $3, description = $4, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.Category,
		account.Description,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active;
	`
	ct, err := r.Pool.Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// StampReconciled records the completion time of a bank reconciliation.
func (r *PgxAccountRepository) StampReconciled(ctx context.Context, accountID string, userID string, at time.Time) error {
	query := `
		UPDATE accounts
		SET last_reconciled_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, accountID, at, userID)
	if err != nil {
		return fmt.Errorf("failed to stamp reconciliation on account %s: %w", accountID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindAccountsByIDsForUpdate retrieves accounts by IDs and locks the rows
// for update in ascending ID order so concurrent postings that share
// accounts always acquire locks in the same sequence. Must run inside a
// transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	sorted := make([]string, len(accountIDs))
	copy(sorted, accountIDs)
	sort.Strings(sorted)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts for update: %w", classifyPgError(err))
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accounts[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read locked account rows: %w", classifyPgError(err))
	}
	for _, id := range sorted {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accounts, nil
}

// UpdateAccountBalancesInTx applies signed balance deltas within a
// transaction. Accounts must already be locked via
// FindAccountsByIDsForUpdate.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, accountID, delta, now, userID)
			accountIDs = append(accountIDs, accountID)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", accountIDs[i], classifyPgError(err))
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: account %s vanished during balance update", apperrors.ErrNotFound, accountIDs[i])
		}
	}
	if closeErr := br.Close(); closeErr != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", classifyPgError(closeErr))
	}
	return batchErr
}
