package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	"github.com/finboard/ledger-engine/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, entry_number, entry_date, entry_type, source_type, source_id,
	source_reference, description, total_debit, total_credit, status, posted_by, posted_at,
	approved_by, approved_at, cancel_reason, reversed_by_entry_id, reverses_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_number, account_id, debit, credit, description, cost_center`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountPostingSupport
	lockTimeout time.Duration
}

// newPgxJournalRepository creates the journal repository. The account
// repository is needed for row locking and balance updates inside the
// posting transaction; lockTimeout bounds how long a posting waits for
// contended account rows.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountPostingSupport, lockTimeout time.Duration) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		lockTimeout:    lockTimeout,
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanEntry(row rowScanner) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	var postedAt, approvedAt sql.NullTime
	var reversedBy, reverses sql.NullString
	err := row.Scan(
		&e.EntryID,
		&e.EntryNumber,
		&e.EntryDate,
		&e.EntryType,
		&e.SourceType,
		&e.SourceID,
		&e.SourceReference,
		&e.Description,
		&e.TotalDebit,
		&e.TotalCredit,
		&e.Status,
		&e.PostedBy,
		&postedAt,
		&e.ApprovedBy,
		&approvedAt,
		&e.CancelReason,
		&reversedBy,
		&reverses,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	if postedAt.Valid {
		t := postedAt.Time
		e.PostedAt = &t
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		e.ApprovedAt = &t
	}
	if reversedBy.Valid {
		s := reversedBy.String
		e.ReversedByEntryID = &s
	}
	if reverses.Valid {
		s := reverses.String
		e.ReversesEntryID = &s
	}
	return e, nil
}

func scanLine(row rowScanner) (domain.JournalEntryLine, error) {
	var l domain.JournalEntryLine
	err := row.Scan(
		&l.LineID,
		&l.EntryID,
		&l.LineNumber,
		&l.AccountID,
		&l.Debit,
		&l.Credit,
		&l.Description,
		&l.CostCenter,
	)
	return l, err
}

// NextEntryNumber allocates the next entry number from the database
// sequence. Numbers are gapless only under the sequence's usual caveats;
// a rolled-back draft burns its number.
func (r *PgxJournalRepository) NextEntryNumber(ctx context.Context) (string, error) {
	var n int64
	err := r.Pool.QueryRow(ctx, `SELECT nextval('entry_number_seq');`).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("failed to allocate entry number: %w", err)
	}
	return fmt.Sprintf("JE-%06d", n), nil
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by ID %s: %w", entryID, err)
	}
	if err := r.loadLines(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindEntryByNumber retrieves an entry with its lines by its unique number.
func (r *PgxJournalRepository) FindEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_number = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry by number %s: %w", entryNumber, err)
	}
	if err := r.loadLines(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *PgxJournalRepository) loadLines(ctx context.Context, entry *domain.JournalEntry) error {
	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE entry_id = $1 ORDER BY line_number;`
	rows, err := r.Pool.Query(ctx, query, entry.EntryID)
	if err != nil {
		return fmt.Errorf("failed to query lines for entry %s: %w", entry.EntryID, err)
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return fmt.Errorf("failed to scan line row: %w", err)
		}
		entry.Lines = append(entry.Lines, line)
	}
	return rows.Err()
}

// ListEntriesByStatus retrieves entries in the given status without lines,
// newest first.
func (r *PgxJournalRepository) ListEntriesByStatus(ctx context.Context, status domain.EntryStatus, limit int, offset int) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries by status %s: %w", status, err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SaveEntry persists a new draft entry with its lines in one transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := insertEntryHeader(ctx, tx, entry); err != nil {
		return err
	}
	if err := insertEntryLines(ctx, tx, entry.Lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func insertEntryHeader(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	var postedAt, approvedAt sql.NullTime
	if entry.PostedAt != nil {
		postedAt = sql.NullTime{Time: *entry.PostedAt, Valid: true}
	}
	if entry.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *entry.ApprovedAt, Valid: true}
	}
	var reversedBy, reverses sql.NullString
	if entry.ReversedByEntryID != nil {
		reversedBy = sql.NullString{String: *entry.ReversedByEntryID, Valid: true}
	}
	if entry.ReversesEntryID != nil {
		reverses = sql.NullString{String: *entry.ReversesEntryID, Valid: true}
	}

	_, err := tx.Exec(ctx, query,
		entry.EntryID,
		entry.EntryNumber,
		entry.EntryDate,
		entry.EntryType,
		entry.SourceType,
		entry.SourceID,
		entry.SourceReference,
		entry.Description,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.Status,
		entry.PostedBy,
		postedAt,
		entry.ApprovedBy,
		approvedAt,
		entry.CancelReason,
		reversedBy,
		reverses,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if classified := classifyPgError(err); errors.Is(classified, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: entry number %s", apperrors.ErrDuplicate, entry.EntryNumber)
		}
		return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}
	return nil
}

func insertEntryLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalEntryLine) error {
	query := `
		INSERT INTO journal_entry_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(query,
			line.LineID,
			line.EntryID,
			line.LineNumber,
			line.AccountID,
			line.Debit,
			line.Credit,
			line.Description,
			line.CostCenter,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert entry line: %w", classifyPgError(err))
		}
	}
	return br.Close()
}

// UpdateDraftEntry replaces the header and lines of a draft entry. The
// header update is guarded on DRAFT status so a concurrent post or cancel
// wins the race.
func (r *PgxJournalRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	query := `
		UPDATE journal_entries
		SET entry_date = $2, description = $3, source_type = $4, source_id = $5,
		    source_reference = $6, total_debit = $7, total_credit = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE entry_id = $1 AND status = $11;
	`
	ct, err := tx.Exec(ctx, query,
		entry.EntryID,
		entry.EntryDate,
		entry.Description,
		entry.SourceType,
		entry.SourceID,
		entry.SourceReference,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
		domain.Draft,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", entry.EntryID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
		return fmt.Errorf("failed to clear lines for entry %s: %w", entry.EntryID, err)
	}
	if err := insertEntryLines(ctx, tx, entry.Lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// MarkApproved stamps approval metadata on a draft entry. Guarded on DRAFT
// status and on the entry not already carrying an approval.
func (r *PgxJournalRepository) MarkApproved(ctx context.Context, entryID string, approverID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET approved_by = $2, approved_at = $3, last_updated_at = $3, last_updated_by = $2
		WHERE entry_id = $1 AND status = $4 AND approved_at IS NULL;
	`
	ct, err := r.Pool.Exec(ctx, query, entryID, approverID, now, domain.Draft)
	if err != nil {
		return fmt.Errorf("failed to approve entry %s: %w", entryID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// MarkCancelled transitions a draft entry to CANCELLED.
func (r *PgxJournalRepository) MarkCancelled(ctx context.Context, entryID string, reason string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $4, cancel_reason = $2, last_updated_at = $3, last_updated_by = $5
		WHERE entry_id = $1 AND status = $6;
	`
	ct, err := r.Pool.Exec(ctx, query, entryID, reason, now, domain.Cancelled, userID, domain.Draft)
	if err != nil {
		return fmt.Errorf("failed to cancel entry %s: %w", entryID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

// PostEntry materializes a draft entry into general-ledger rows and updated
// account balances in one transaction. Account rows are locked first, in
// ascending ID order; the status flip is guarded on DRAFT so a concurrent
// post of the same entry observes zero affected rows and rolls back.
func (r *PgxJournalRepository) PostEntry(ctx context.Context, entry domain.JournalEntry, period domain.Period, postedBy string, now time.Time) ([]domain.LedgerEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	ledgerRows, err := r.postWithinTx(ctx, tx, entry, period, postedBy, now)
	if err != nil {
		return nil, err
	}
	if err := r.flipToPosted(ctx, tx, entry.EntryID, postedBy, now); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return ledgerRows, nil
}

// PostReversal persists the offsetting entry, materializes its ledger rows,
// flips it to POSTED, and marks the original as REVERSED, all in one
// transaction. The original's guard (POSTED and not yet reversed) makes
// double reversal race-safe.
func (r *PgxJournalRepository) PostReversal(ctx context.Context, original domain.JournalEntry, reversal domain.JournalEntry, period domain.Period, userID string, now time.Time) ([]domain.LedgerEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	// Claim the original first so a losing concurrent reversal fails before
	// doing any ledger work.
	claim := `
		UPDATE journal_entries
		SET status = $4, reversed_by_entry_id = $2, last_updated_at = $3, last_updated_by = $5
		WHERE entry_id = $1 AND status = $6 AND reversed_by_entry_id IS NULL;
	`
	ct, err := tx.Exec(ctx, claim, original.EntryID, reversal.EntryID, now, domain.Reversed, userID, domain.Posted)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry %s reversed: %w", original.EntryID, err)
	}
	if ct.RowsAffected() == 0 {
		return nil, apperrors.ErrConflict
	}

	if err := insertEntryHeader(ctx, tx, reversal); err != nil {
		return nil, err
	}
	if err := insertEntryLines(ctx, tx, reversal.Lines); err != nil {
		return nil, err
	}

	ledgerRows, err := r.postWithinTx(ctx, tx, reversal, period, userID, now)
	if err != nil {
		return nil, err
	}
	if err := r.flipToPosted(ctx, tx, reversal.EntryID, userID, now); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return ledgerRows, nil
}

// postWithinTx runs the shared posting mechanics: bound the lock wait, hold
// the period open under a share lock, lock the touched accounts, re-check
// them under lock, append ledger rows with running balances, and apply the
// balance deltas.
func (r *PgxJournalRepository) postWithinTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, period domain.Period, userID string, now time.Time) ([]domain.LedgerEntry, error) {
	timeout := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
	if _, err := tx.Exec(ctx, `SET LOCAL lock_timeout = '`+timeout+`';`); err != nil {
		return nil, fmt.Errorf("failed to set lock timeout: %w", err)
	}

	// Share-lock the period row for the life of the transaction. ClosePeriod's
	// guarded UPDATE needs the exclusive row lock, so a close either waits for
	// this posting to commit or has already committed, in which case the
	// re-read sees CLOSED here.
	var periodStatus domain.PeriodStatus
	err := tx.QueryRow(ctx, `SELECT status FROM periods WHERE period_id = $1 FOR SHARE;`, period.PeriodID).Scan(&periodStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: period %s", apperrors.ErrNotFound, period.PeriodID)
		}
		return nil, fmt.Errorf("failed to lock period %s: %w", period.PeriodID, classifyPgError(err))
	}
	if periodStatus != domain.PeriodOpen {
		return nil, fmt.Errorf("%w: period %s closed concurrently", apperrors.ErrConflict, period.Code)
	}

	accountIDs := make([]string, 0, len(entry.Lines))
	seen := make(map[string]bool, len(entry.Lines))
	for _, line := range entry.Lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			accountIDs = append(accountIDs, line.AccountID)
		}
	}

	accounts, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	// Re-check postability under lock: the service validated earlier, but a
	// deactivation may have landed in between.
	for id, acc := range accounts {
		if acc.IsGroup {
			return nil, fmt.Errorf("%w: account %s is a group account", apperrors.ErrValidation, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
	}

	accountTypes := make(map[string]domain.AccountType, len(accounts))
	running := make(map[string]decimal.Decimal, len(accounts))
	for id, acc := range accounts {
		accountTypes[id] = acc.AccountType
		running[id] = acc.Balance
	}
	deltas, err := accounting.EntryDeltas(entry.Lines, accountTypes)
	if err != nil {
		return nil, err
	}

	ledgerRows := make([]domain.LedgerEntry, 0, len(entry.Lines))
	for _, line := range entry.Lines {
		acc := accounts[line.AccountID]
		delta, err := accounting.LineDelta(acc.AccountType, line)
		if err != nil {
			return nil, err
		}
		running[line.AccountID] = running[line.AccountID].Add(delta)

		ledgerRows = append(ledgerRows, domain.LedgerEntry{
			LedgerID:        ulid.Make().String(),
			TransactionDate: entry.EntryDate,
			PeriodID:        period.PeriodID,
			AccountID:       line.AccountID,
			EntryID:         entry.EntryID,
			LineID:          line.LineID,
			Description:     line.Description,
			Debit:           line.Debit,
			Credit:          line.Credit,
			RunningBalance:  running[line.AccountID],
			SourceType:      entry.SourceType,
			SourceID:        entry.SourceID,
			CreatedAt:       now,
			CreatedBy:       userID,
		})
	}

	if err := insertLedgerRows(ctx, tx, ledgerRows); err != nil {
		return nil, err
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, deltas, userID, now); err != nil {
		return nil, err
	}
	return ledgerRows, nil
}

func (r *PgxJournalRepository) flipToPosted(ctx context.Context, tx pgx.Tx, entryID string, postedBy string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $4, posted_by = $2, posted_at = $3, last_updated_at = $3, last_updated_by = $2
		WHERE entry_id = $1 AND status = $5;
	`
	ct, err := tx.Exec(ctx, query, entryID, postedBy, now, domain.Posted, domain.Draft)
	if err != nil {
		return fmt.Errorf("failed to post entry %s: %w", entryID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

func insertLedgerRows(ctx context.Context, tx pgx.Tx, ledgerRows []domain.LedgerEntry) error {
	query := `
		INSERT INTO general_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	batch := &pgx.Batch{}
	for _, row := range ledgerRows {
		batch.Queue(query,
			row.LedgerID,
			row.TransactionDate,
			row.PeriodID,
			row.AccountID,
			row.EntryID,
			row.LineID,
			row.Description,
			row.Debit,
			row.Credit,
			row.RunningBalance,
			row.SourceType,
			row.SourceID,
			row.CreatedAt,
			row.CreatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range ledgerRows {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("failed to insert ledger row: %w", classifyPgError(err))
		}
	}
	return br.Close()
}
