package domain

import "time"

// PeriodStatus indicates whether a fiscal period accepts postings.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// CanTransitionTo reports whether the status change is legal. A period
// closes exactly once; there is no reopening path.
func (s PeriodStatus) CanTransitionTo(next PeriodStatus) bool {
	return s == PeriodOpen && next == PeriodClosed
}

// PeriodType classifies a fiscal period.
type PeriodType string

const (
	PeriodTypeMonth      PeriodType = "MONTH"
	PeriodTypeQuarter    PeriodType = "QUARTER"
	PeriodTypeYear       PeriodType = "YEAR"
	PeriodTypeAdjustment PeriodType = "ADJUSTMENT"
)

// Period is a non-overlapping date range within a fiscal year. Ledger rows
// reference the period they were posted into; a closed period rejects all
// further postings.
type Period struct {
	PeriodID   string       `json:"periodID"` // Primary key (UUID)
	Code       string       `json:"code"`     // e.g. "2026-08"
	Name       string       `json:"name"`
	PeriodType PeriodType   `json:"periodType"`
	StartDate  time.Time    `json:"startDate"`
	EndDate    time.Time    `json:"endDate"`
	FiscalYear int          `json:"fiscalYear"`
	Status     PeriodStatus `json:"status"`
	ClosedBy   string       `json:"closedBy,omitempty"`
	ClosedAt   *time.Time   `json:"closedAt,omitempty"`
	AuditFields
}

// Contains reports whether date falls within [StartDate, EndDate], compared
// at day granularity.
func (p *Period) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate.Truncate(24*time.Hour)) && !d.After(p.EndDate.Truncate(24*time.Hour))
}

// IsOpen reports whether the period still accepts postings.
func (p *Period) IsOpen() bool {
	return p.Status == PeriodOpen
}
