package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/ledger-engine/internal/core/ports/services"
	"github.com/finboard/ledger-engine/internal/dto"
)

var (
	ErrOverlappingPeriod   = errors.New("period overlaps an existing period in the fiscal year")
	ErrNoPeriodDefined     = errors.New("no period defined for date")
	ErrPeriodAlreadyClosed = errors.New("period is already closed")
	ErrPeriodClosed        = errors.New("period is closed for posting")
	ErrPeriodNotFound      = errors.New("period not found")
)

// periodService owns the fiscal period registry and its open/closed state.
type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepositoryFacade
}

// NewPeriodService creates a new period registry service.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade) portssvc.PeriodSvcFacade {
	return &periodService{periodRepo: periodRepo}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// CreatePeriod persists a new open period after range and overlap validation.
func (s *periodService) CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest, creatorUserID string) (*domain.Period, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, fmt.Errorf("%w: period start must precede end", apperrors.ErrValidation)
	}

	overlaps, err := s.periodRepo.HasOverlappingPeriod(ctx, req.FiscalYear, req.StartDate, req.EndDate)
	if err != nil {
		s.LogError(ctx, err, "Failed to check period overlap", slog.Int("fiscal_year", req.FiscalYear))
		return nil, fmt.Errorf("failed to check period overlap: %w", err)
	}
	if overlaps {
		return nil, fmt.Errorf("%w: [%s, %s] in FY%d", ErrOverlappingPeriod,
			req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), req.FiscalYear)
	}

	now := time.Now().UTC()
	period := domain.Period{
		PeriodID:   uuid.NewString(),
		Code:       req.Code,
		Name:       req.Name,
		PeriodType: req.PeriodType,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		FiscalYear: req.FiscalYear,
		Status:     domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: code %s", apperrors.ErrDuplicate, req.Code)
		}
		s.LogError(ctx, err, "Failed to save period", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save period: %w", err)
	}

	s.LogInfo(ctx, "Period created",
		slog.String("period_id", period.PeriodID),
		slog.String("code", period.Code),
		slog.Int("fiscal_year", period.FiscalYear))
	return &period, nil
}

// GetPeriodByID retrieves a specific period.
func (s *periodService) GetPeriodByID(ctx context.Context, periodID string) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPeriodNotFound, periodID)
		}
		s.LogError(ctx, err, "Failed to find period", slog.String("period_id", periodID))
		return nil, err
	}
	return period, nil
}

// GetCurrentPeriod resolves the period whose range contains the given date.
func (s *periodService) GetCurrentPeriod(ctx context.Context, date time.Time) (*domain.Period, error) {
	period, err := s.periodRepo.FindPeriodByDate(ctx, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoPeriodDefined, date.Format("2006-01-02"))
		}
		s.LogError(ctx, err, "Failed to resolve period for date", slog.Time("date", date))
		return nil, err
	}
	return period, nil
}

// ListPeriods retrieves periods ordered by start date.
func (s *periodService) ListPeriods(ctx context.Context, fiscalYear int) ([]domain.Period, error) {
	return s.periodRepo.ListPeriods(ctx, fiscalYear)
}

// ClosePeriod transitions a period OPEN -> CLOSED. Closing is one-way; there
// is no reopen path in this engine.
func (s *periodService) ClosePeriod(ctx context.Context, periodID string, closedBy string) (*domain.Period, error) {
	period, err := s.GetPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if !period.Status.CanTransitionTo(domain.PeriodClosed) {
		return nil, fmt.Errorf("%w: %s", ErrPeriodAlreadyClosed, periodID)
	}

	now := time.Now().UTC()
	if err := s.periodRepo.ClosePeriod(ctx, periodID, closedBy, now); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost the race against another closer.
			return nil, fmt.Errorf("%w: %s", ErrPeriodAlreadyClosed, periodID)
		}
		s.LogError(ctx, err, "Failed to close period", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to close period: %w", err)
	}

	period.Status = domain.PeriodClosed
	period.ClosedBy = closedBy
	period.ClosedAt = &now
	period.LastUpdatedAt = now
	period.LastUpdatedBy = closedBy

	s.LogInfo(ctx, "Period closed",
		slog.String("period_id", periodID),
		slog.String("closed_by", closedBy))
	return period, nil
}

// IsPeriodOpen reports whether the period still accepts postings.
func (s *periodService) IsPeriodOpen(ctx context.Context, periodID string) (bool, error) {
	period, err := s.GetPeriodByID(ctx, periodID)
	if err != nil {
		return false, err
	}
	return period.IsOpen(), nil
}
