package pgsql

import (
	"context"
	"fmt"

	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const trialBalanceColumns = `trial_balance_id, period_id, account_id, account_code, account_name,
	account_type, opening_debit, opening_credit, period_debit, period_credit,
	closing_debit, closing_credit, generated_at, generated_by`

type PgxTrialBalanceRepository struct {
	BaseRepository
}

func newPgxTrialBalanceRepository(pool *pgxpool.Pool) portsrepo.TrialBalanceRepository {
	return &PgxTrialBalanceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TrialBalanceRepository = (*PgxTrialBalanceRepository)(nil)

// ReplaceTrialBalance swaps the stored rows for a period in one
// transaction. Trial balance rows are derived data, so a delete-and-insert
// replace is safe.
func (r *PgxTrialBalanceRepository) ReplaceTrialBalance(ctx context.Context, periodID string, lines []domain.TrialBalanceLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM trial_balances WHERE period_id = $1;`, periodID); err != nil {
		return fmt.Errorf("failed to clear trial balance for period %s: %w", periodID, err)
	}

	query := `
		INSERT INTO trial_balances (` + trialBalanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query,
			line.TrialBalanceID,
			line.PeriodID,
			line.AccountID,
			line.AccountCode,
			line.AccountName,
			line.AccountType,
			line.OpeningDebit,
			line.OpeningCredit,
			line.PeriodDebit,
			line.PeriodCredit,
			line.ClosingDebit,
			line.ClosingCredit,
			line.GeneratedAt,
			line.GeneratedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert trial balance row for period %s: %w", periodID, classifyPgError(err))
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close trial balance batch: %w", err)
	}
	return r.Commit(ctx, tx)
}

// FindTrialBalanceByPeriod retrieves the stored rows for a period, ordered
// by account code.
func (r *PgxTrialBalanceRepository) FindTrialBalanceByPeriod(ctx context.Context, periodID string) ([]domain.TrialBalanceLine, error) {
	query := `SELECT ` + trialBalanceColumns + ` FROM trial_balances WHERE period_id = $1 ORDER BY account_code;`
	rows, err := r.Pool.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance for period %s: %w", periodID, err)
	}
	defer rows.Close()

	var lines []domain.TrialBalanceLine
	for rows.Next() {
		var l domain.TrialBalanceLine
		err := rows.Scan(
			&l.TrialBalanceID,
			&l.PeriodID,
			&l.AccountID,
			&l.AccountCode,
			&l.AccountName,
			&l.AccountType,
			&l.OpeningDebit,
			&l.OpeningCredit,
			&l.PeriodDebit,
			&l.PeriodCredit,
			&l.ClosingDebit,
			&l.ClosingCredit,
			&l.GeneratedAt,
			&l.GeneratedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
