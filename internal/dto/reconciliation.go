package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReconciliationRequest defines the data needed to open a bank
// reconciliation against an externally supplied statement balance.
type CreateReconciliationRequest struct {
	AccountID        string          `json:"accountID" validate:"required"`
	StatementDate    time.Time       `json:"statementDate" validate:"required"`
	StatementBalance decimal.Decimal `json:"statementBalance"`
}
