package repositories

import (
	"context"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
)

// PeriodReader defines read operations for fiscal period data
type PeriodReader interface {
	// FindPeriodByID retrieves a specific period by its unique identifier.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error)

	// FindPeriodByDate retrieves the period whose date range contains the
	// given date. Returns apperrors.ErrNotFound when no period covers it.
	FindPeriodByDate(ctx context.Context, date time.Time) (*domain.Period, error)

	// FindPrecedingPeriod retrieves the latest period ending strictly before
	// the given start date, or apperrors.ErrNotFound when none exists.
	FindPrecedingPeriod(ctx context.Context, start time.Time) (*domain.Period, error)

	// HasOverlappingPeriod reports whether any period of the fiscal year
	// overlaps [start, end].
	HasOverlappingPeriod(ctx context.Context, fiscalYear int, start, end time.Time) (bool, error)

	// ListPeriods retrieves all periods, optionally filtered by fiscal year
	// (0 means all), ordered by start date.
	ListPeriods(ctx context.Context, fiscalYear int) ([]domain.Period, error)
}

// PeriodWriter defines write operations for fiscal period data
type PeriodWriter interface {
	// SavePeriod persists a new period.
	SavePeriod(ctx context.Context, period domain.Period) error

	// ClosePeriod flips an open period to closed. The update is guarded on
	// the current status; closing an already-closed period returns
	// apperrors.ErrConflict. There is no reopen operation.
	ClosePeriod(ctx context.Context, periodID string, closedBy string, now time.Time) error
}

// PeriodRepositoryFacade combines all period-related repository interfaces
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
