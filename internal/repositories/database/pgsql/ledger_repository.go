package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the query surface shared by *pgxpool.Pool and pgx.Tx, so the
// aggregate helpers can run either standalone or inside a snapshot
// transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const ledgerColumns = `ledger_id, transaction_date, period_id, account_id, entry_id, line_id,
	description, debit, credit, running_balance, source_type, source_id, created_at, created_by`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerReader {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerReader = (*PgxLedgerRepository)(nil)

func scanLedgerEntry(row rowScanner) (domain.LedgerEntry, error) {
	var l domain.LedgerEntry
	err := row.Scan(
		&l.LedgerID,
		&l.TransactionDate,
		&l.PeriodID,
		&l.AccountID,
		&l.EntryID,
		&l.LineID,
		&l.Description,
		&l.Debit,
		&l.Credit,
		&l.RunningBalance,
		&l.SourceType,
		&l.SourceID,
		&l.CreatedAt,
		&l.CreatedBy,
	)
	return l, err
}

// ListLedgerByAccount retrieves ledger rows for an account within a date
// range, oldest first. Ties on transaction date break on the time-ordered
// ledger ID.
func (r *PgxLedgerRepository) ListLedgerByAccount(ctx context.Context, accountID string, from, to time.Time, limit int, offset int) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM general_ledger
		WHERE account_id = $1 AND transaction_date::date >= $2::date AND transaction_date::date <= $3::date
		ORDER BY transaction_date, ledger_id
		LIMIT $4 OFFSET $5;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		l, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		entries = append(entries, l)
	}
	return entries, rows.Err()
}

// AggregateAccountMovementOnOrBefore sums debits and credits of all ledger
// rows for an account with a transaction date at or before the given date.
// Summing by date instead of walking running balances keeps backdated rows
// in scope even though snapshots are written in posting order.
func (r *PgxLedgerRepository) AggregateAccountMovementOnOrBefore(ctx context.Context, accountID string, date time.Time) (domain.AccountMovement, error) {
	query := `
		SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM general_ledger
		WHERE account_id = $1 AND transaction_date::date <= $2::date;
	`
	m := domain.AccountMovement{AccountID: accountID}
	if err := r.Pool.QueryRow(ctx, query, accountID, date).Scan(&m.Debit, &m.Credit); err != nil {
		return domain.AccountMovement{}, fmt.Errorf("failed to aggregate ledger movement for account %s: %w", accountID, err)
	}
	return m, nil
}

func (r *PgxLedgerRepository) queryMovements(ctx context.Context, q querier, query string, args ...any) ([]domain.AccountMovement, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.AccountMovement
	for rows.Next() {
		var m domain.AccountMovement
		if err := rows.Scan(&m.AccountID, &m.Debit, &m.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// AggregateMovementsByPeriod sums debits and credits per account for all
// ledger rows referencing the period.
func (r *PgxLedgerRepository) AggregateMovementsByPeriod(ctx context.Context, periodID string) ([]domain.AccountMovement, error) {
	query := `
		SELECT account_id, COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM general_ledger
		WHERE period_id = $1
		GROUP BY account_id;
	`
	return r.queryMovements(ctx, r.Pool, query, periodID)
}

// ReadIntegritySnapshot reads accounts, per-account ledger aggregates,
// periods and per-period totals inside one repeatable-read read-only
// transaction. All four result sets see the same committed ledger state, so
// a posting that commits mid-verification cannot make a healthy account look
// drifted.
func (r *PgxLedgerRepository) ReadIntegritySnapshot(ctx context.Context) (*domain.IntegritySnapshot, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snapshot := &domain.IntegritySnapshot{}

	accountRows, err := tx.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code;`)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts for snapshot: %w", err)
	}
	for accountRows.Next() {
		a, err := scanAccount(accountRows)
		if err != nil {
			accountRows.Close()
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		snapshot.Accounts = append(snapshot.Accounts, a)
	}
	accountRows.Close()
	if err := accountRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts for snapshot: %w", err)
	}

	snapshot.Movements, err = r.queryMovements(ctx, tx, `
		SELECT account_id, COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM general_ledger
		GROUP BY account_id;
	`)
	if err != nil {
		return nil, err
	}

	periodRows, err := tx.Query(ctx, `SELECT `+periodColumns+` FROM periods ORDER BY start_date;`)
	if err != nil {
		return nil, fmt.Errorf("failed to read periods for snapshot: %w", err)
	}
	for periodRows.Next() {
		p, err := scanPeriod(periodRows)
		if err != nil {
			periodRows.Close()
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		snapshot.Periods = append(snapshot.Periods, p)
	}
	periodRows.Close()
	if err := periodRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read periods for snapshot: %w", err)
	}

	totalRows, err := tx.Query(ctx, `
		SELECT period_id, COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0)
		FROM general_ledger
		GROUP BY period_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read period totals for snapshot: %w", err)
	}
	for totalRows.Next() {
		var t domain.PeriodTotal
		if err := totalRows.Scan(&t.PeriodID, &t.Debit, &t.Credit); err != nil {
			totalRows.Close()
			return nil, fmt.Errorf("failed to scan period total row: %w", err)
		}
		snapshot.PeriodTotals = append(snapshot.PeriodTotals, t)
	}
	totalRows.Close()
	if err := totalRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read period totals for snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot transaction: %w", err)
	}
	return snapshot, nil
}

func (r *PgxLedgerRepository) queryNetAmounts(ctx context.Context, query string, args ...any) ([]domain.AccountAmount, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report amounts: %w", err)
	}
	defer rows.Close()

	var amounts []domain.AccountAmount
	for rows.Next() {
		var a domain.AccountAmount
		if err := rows.Scan(&a.AccountID, &a.Code, &a.Name, &a.NetAmount); err != nil {
			return nil, fmt.Errorf("failed to scan report amount row: %w", err)
		}
		amounts = append(amounts, a)
	}
	return amounts, rows.Err()
}

// GetProfitAndLossData returns per-account net amounts for revenue and
// expense accounts over a date range. Amounts are on each type's natural
// side: credits minus debits for revenue, debits minus credits for expenses.
func (r *PgxLedgerRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	revenueQuery := `
		SELECT a.account_id, a.code, a.name, COALESCE(SUM(gl.credit - gl.debit), 0)
		FROM accounts a
		JOIN general_ledger gl ON gl.account_id = a.account_id
		WHERE a.account_type = $1 AND gl.transaction_date::date >= $2::date AND gl.transaction_date::date <= $3::date
		GROUP BY a.account_id, a.code, a.name
		HAVING COALESCE(SUM(gl.credit - gl.debit), 0) <> 0
		ORDER BY a.code;
	`
	expenseQuery := `
		SELECT a.account_id, a.code, a.name, COALESCE(SUM(gl.debit - gl.credit), 0)
		FROM accounts a
		JOIN general_ledger gl ON gl.account_id = a.account_id
		WHERE a.account_type = $1 AND gl.transaction_date::date >= $2::date AND gl.transaction_date::date <= $3::date
		GROUP BY a.account_id, a.code, a.name
		HAVING COALESCE(SUM(gl.debit - gl.credit), 0) <> 0
		ORDER BY a.code;
	`
	revenue, err := r.queryNetAmounts(ctx, revenueQuery, domain.Revenue, from, to)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := r.queryNetAmounts(ctx, expenseQuery, domain.Expense, from, to)
	if err != nil {
		return nil, nil, err
	}
	return revenue, expenses, nil
}

// GetBalanceSheetData returns per-account net amounts for asset, liability
// and equity accounts as of a date, including registered opening balances.
func (r *PgxLedgerRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	debitNormal := `
		SELECT a.account_id, a.code, a.name,
		       a.opening_balance * (CASE WHEN a.opening_side = $3 THEN 1 ELSE -1 END)
		       + COALESCE(SUM(gl.debit - gl.credit), 0)
		FROM accounts a
		LEFT JOIN general_ledger gl
		  ON gl.account_id = a.account_id AND gl.transaction_date::date <= $2::date
		WHERE a.account_type = $1 AND NOT a.is_group
		GROUP BY a.account_id, a.code, a.name, a.opening_balance, a.opening_side
		ORDER BY a.code;
	`
	creditNormal := `
		SELECT a.account_id, a.code, a.name,
		       a.opening_balance * (CASE WHEN a.opening_side = $3 THEN 1 ELSE -1 END)
		       + COALESCE(SUM(gl.credit - gl.debit), 0)
		FROM accounts a
		LEFT JOIN general_ledger gl
		  ON gl.account_id = a.account_id AND gl.transaction_date::date <= $2::date
		WHERE a.account_type = $1 AND NOT a.is_group
		GROUP BY a.account_id, a.code, a.name, a.opening_balance, a.opening_side
		ORDER BY a.code;
	`
	assets, err := r.queryNetAmounts(ctx, debitNormal, domain.Asset, asOf, domain.SideDebit)
	if err != nil {
		return nil, nil, nil, err
	}
	liabilities, err := r.queryNetAmounts(ctx, creditNormal, domain.Liability, asOf, domain.SideCredit)
	if err != nil {
		return nil, nil, nil, err
	}
	equity, err := r.queryNetAmounts(ctx, creditNormal, domain.Equity, asOf, domain.SideCredit)
	if err != nil {
		return nil, nil, nil, err
	}
	return assets, liabilities, equity, nil
}
