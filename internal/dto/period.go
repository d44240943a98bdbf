package dto

import (
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
)

// CreatePeriodRequest defines the data needed to create a fiscal period.
type CreatePeriodRequest struct {
	Code       string            `json:"code" validate:"required,max=32"`
	Name       string            `json:"name" validate:"required,max=255"`
	PeriodType domain.PeriodType `json:"periodType" validate:"required,oneof=MONTH QUARTER YEAR ADJUSTMENT"`
	StartDate  time.Time         `json:"startDate" validate:"required"`
	EndDate    time.Time         `json:"endDate" validate:"required"`
	FiscalYear int               `json:"fiscalYear" validate:"required,gt=1900"`
}
