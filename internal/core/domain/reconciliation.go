package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus indicates the state of a bank reconciliation.
type ReconciliationStatus string

const (
	ReconciliationDraft      ReconciliationStatus = "DRAFT"
	ReconciliationInProgress ReconciliationStatus = "IN_PROGRESS"
	ReconciliationCompleted  ReconciliationStatus = "COMPLETED"
)

// CanTransitionTo reports whether the status change is legal:
// DRAFT -> IN_PROGRESS -> COMPLETED, no reopening.
func (s ReconciliationStatus) CanTransitionTo(next ReconciliationStatus) bool {
	switch s {
	case ReconciliationDraft:
		return next == ReconciliationInProgress
	case ReconciliationInProgress:
		return next == ReconciliationCompleted
	default:
		return false
	}
}

// BankReconciliation matches the ledger-derived balance of a bank account
// against an externally supplied statement balance. The reconciliation
// record is the single source of truth for reconciliation state; the account
// only carries a derived last-reconciled timestamp.
type BankReconciliation struct {
	ReconciliationID  string               `json:"reconciliationID"` // Primary key (UUID)
	AccountID         string               `json:"accountID"`
	StatementDate     time.Time            `json:"statementDate"`
	StatementBalance  decimal.Decimal      `json:"statementBalance"`
	BookBalance       decimal.Decimal      `json:"bookBalance"`
	ReconciledBalance decimal.Decimal      `json:"reconciledBalance"`
	Difference        decimal.Decimal      `json:"difference"`
	Status            ReconciliationStatus `json:"status"`
	ReconciledBy      string               `json:"reconciledBy,omitempty"`
	ReconciledAt      *time.Time           `json:"reconciledAt,omitempty"`
	AuditFields
}
