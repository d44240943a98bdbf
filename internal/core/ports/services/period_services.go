package services

import (
	"context"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/finboard/ledger-engine/internal/dto"
)

// PeriodSvcFacade defines operations on the fiscal period registry.
type PeriodSvcFacade interface {
	// CreatePeriod persists a new open period after overlap validation.
	CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest, creatorUserID string) (*domain.Period, error)

	// GetPeriodByID retrieves a specific period.
	GetPeriodByID(ctx context.Context, periodID string) (*domain.Period, error)

	// GetCurrentPeriod resolves the period containing the given date.
	GetCurrentPeriod(ctx context.Context, date time.Time) (*domain.Period, error)

	// ListPeriods retrieves periods, optionally filtered by fiscal year (0 = all).
	ListPeriods(ctx context.Context, fiscalYear int) ([]domain.Period, error)

	// ClosePeriod transitions a period from OPEN to CLOSED, exactly once.
	ClosePeriod(ctx context.Context, periodID string, closedBy string) (*domain.Period, error)

	// IsPeriodOpen reports whether a period still accepts postings.
	IsPeriodOpen(ctx context.Context, periodID string) (bool, error)
}
