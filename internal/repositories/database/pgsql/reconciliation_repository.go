package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reconciliationColumns = `reconciliation_id, account_id, statement_date, statement_balance,
	book_balance, reconciled_balance, difference, status, reconciled_by, reconciled_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

func scanReconciliation(row rowScanner) (domain.BankReconciliation, error) {
	var rec domain.BankReconciliation
	var reconciledAt sql.NullTime
	err := row.Scan(
		&rec.ReconciliationID,
		&rec.AccountID,
		&rec.StatementDate,
		&rec.StatementBalance,
		&rec.BookBalance,
		&rec.ReconciledBalance,
		&rec.Difference,
		&rec.Status,
		&rec.ReconciledBy,
		&reconciledAt,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return domain.BankReconciliation{}, err
	}
	if reconciledAt.Valid {
		t := reconciledAt.Time
		rec.ReconciledAt = &t
	}
	return rec, nil
}

// SaveReconciliation persists a new reconciliation.
func (r *PgxReconciliationRepository) SaveReconciliation(ctx context.Context, rec domain.BankReconciliation) error {
	query := `
		INSERT INTO bank_reconciliations (` + reconciliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	var reconciledAt sql.NullTime
	if rec.ReconciledAt != nil {
		reconciledAt = sql.NullTime{Time: *rec.ReconciledAt, Valid: true}
	}
	_, err := r.Pool.Exec(ctx, query,
		rec.ReconciliationID,
		rec.AccountID,
		rec.StatementDate,
		rec.StatementBalance,
		rec.BookBalance,
		rec.ReconciledBalance,
		rec.Difference,
		rec.Status,
		rec.ReconciledBy,
		reconciledAt,
		rec.CreatedAt,
		rec.CreatedBy,
		rec.LastUpdatedAt,
		rec.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save reconciliation %s: %w", rec.ReconciliationID, classifyPgError(err))
	}
	return nil
}

// FindReconciliationByID retrieves a reconciliation by its identifier.
func (r *PgxReconciliationRepository) FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM bank_reconciliations WHERE reconciliation_id = $1;`
	rec, err := scanReconciliation(r.Pool.QueryRow(ctx, query, reconciliationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reconciliation %s: %w", reconciliationID, err)
	}
	return &rec, nil
}

// UpdateReconciliation writes the full record, guarded on the expected
// current status.
func (r *PgxReconciliationRepository) UpdateReconciliation(ctx context.Context, rec domain.BankReconciliation, expectedStatus domain.ReconciliationStatus) error {
	query := `
		UPDATE bank_reconciliations
		SET statement_balance = $2, book_balance = $3, reconciled_balance = $4, difference = $5,
		    status = $6, reconciled_by = $7, reconciled_at = $8, last_updated_at = $9, last_updated_by = $10
		WHERE reconciliation_id = $1 AND status = $11;
	`
	var reconciledAt sql.NullTime
	if rec.ReconciledAt != nil {
		reconciledAt = sql.NullTime{Time: *rec.ReconciledAt, Valid: true}
	}
	ct, err := r.Pool.Exec(ctx, query,
		rec.ReconciliationID,
		rec.StatementBalance,
		rec.BookBalance,
		rec.ReconciledBalance,
		rec.Difference,
		rec.Status,
		rec.ReconciledBy,
		reconciledAt,
		rec.LastUpdatedAt,
		rec.LastUpdatedBy,
		expectedStatus,
	)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation %s: %w", rec.ReconciliationID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// ListReconciliationsByAccount retrieves reconciliations for an account,
// newest statement first.
func (r *PgxReconciliationRepository) ListReconciliationsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.BankReconciliation, error) {
	query := `
		SELECT ` + reconciliationColumns + `
		FROM bank_reconciliations
		WHERE account_id = $1
		ORDER BY statement_date DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var recs []domain.BankReconciliation
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
