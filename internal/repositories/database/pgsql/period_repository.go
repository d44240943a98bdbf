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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const periodColumns = `period_id, code, name, period_type, start_date, end_date, fiscal_year, status,
	closed_by, closed_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

func scanPeriod(row rowScanner) (domain.Period, error) {
	var p domain.Period
	var closedBy sql.NullString
	var closedAt sql.NullTime
	err := row.Scan(
		&p.PeriodID,
		&p.Code,
		&p.Name,
		&p.PeriodType,
		&p.StartDate,
		&p.EndDate,
		&p.FiscalYear,
		&p.Status,
		&closedBy,
		&closedAt,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return domain.Period{}, err
	}
	if closedBy.Valid {
		p.ClosedBy = closedBy.String
	}
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}
	return p, nil
}

// SavePeriod persists a new period.
func (r *PgxPeriodRepository) SavePeriod(ctx context.Context, period domain.Period) error {
	query := `
		INSERT INTO periods (` + periodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		period.PeriodID,
		period.Code,
		period.Name,
		period.PeriodType,
		period.StartDate,
		period.EndDate,
		period.FiscalYear,
		period.Status,
		nil, // closed_by
		nil, // closed_at
		period.CreatedAt,
		period.CreatedBy,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
	)
	if err != nil {
		if classified := classifyPgError(err); errors.Is(classified, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: period code %s", apperrors.ErrDuplicate, period.Code)
		}
		return fmt.Errorf("failed to save period %s: %w", period.PeriodID, err)
	}
	return nil
}

// FindPeriodByID retrieves a period by its primary key.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error) {
	query := `SELECT ` + periodColumns + ` FROM periods WHERE period_id = $1;`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period by ID %s: %w", periodID, err)
	}
	return &p, nil
}

// FindPeriodByDate retrieves the period covering the given date. Range
// checks run at day granularity; ADJUSTMENT periods are skipped so they
// never capture regular entries.
func (r *PgxPeriodRepository) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE period_type <> $2 AND start_date::date <= $1::date AND end_date::date >= $1::date
		ORDER BY start_date
		LIMIT 1;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, date, domain.PeriodTypeAdjustment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find period for date %s: %w", date.Format("2006-01-02"), err)
	}
	return &p, nil
}

// FindPrecedingPeriod retrieves the latest period ending strictly before
// the given start date.
func (r *PgxPeriodRepository) FindPrecedingPeriod(ctx context.Context, start time.Time) (*domain.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE period_type <> $2 AND end_date::date < $1::date
		ORDER BY end_date DESC
		LIMIT 1;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, start, domain.PeriodTypeAdjustment))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find preceding period before %s: %w", start.Format("2006-01-02"), err)
	}
	return &p, nil
}

// HasOverlappingPeriod reports whether any period of the fiscal year
// overlaps the [start, end] range.
func (r *PgxPeriodRepository) HasOverlappingPeriod(ctx context.Context, fiscalYear int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM periods
			WHERE fiscal_year = $1 AND period_type <> $4
			  AND start_date::date <= $3::date AND end_date::date >= $2::date
		);
	`
	var exists bool
	err := r.Pool.QueryRow(ctx, query, fiscalYear, start, end, domain.PeriodTypeAdjustment).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping periods for FY%d: %w", fiscalYear, err)
	}
	return exists, nil
}

// ListPeriods retrieves periods ordered by start date, optionally filtered
// by fiscal year (0 means all).
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, fiscalYear int) ([]domain.Period, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM periods
		WHERE ($1 = 0 OR fiscal_year = $1)
		ORDER BY start_date;
	`
	rows, err := r.Pool.Query(ctx, query, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// ClosePeriod flips an open period to closed. The status guard makes the
// flip race-safe: a concurrent close wins and this call observes zero
// affected rows.
func (r *PgxPeriodRepository) ClosePeriod(ctx context.Context, periodID string, closedBy string, now time.Time) error {
	query := `
		UPDATE periods
		SET status = $4, closed_by = $2, closed_at = $3, last_updated_at = $3, last_updated_by = $2
		WHERE period_id = $1 AND status = $5;
	`
	ct, err := r.Pool.Exec(ctx, query, periodID, closedBy, now, domain.PeriodClosed, domain.PeriodOpen)
	if err != nil {
		return fmt.Errorf("failed to close period %s: %w", periodID, err)
	}
	if ct.RowsAffected() == 0 {
		exists, existsErr := r.periodExists(ctx, periodID)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrConflict
	}
	return nil
}

func (r *PgxPeriodRepository) periodExists(ctx context.Context, periodID string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM periods WHERE period_id = $1);`, periodID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check period %s existence: %w", periodID, err)
	}
	return exists, nil
}
