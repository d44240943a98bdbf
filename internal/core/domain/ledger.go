package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one immutable general-ledger row, derived from exactly one
// journal entry line at posting time. Rows are append-only: the store rejects
// updates and deletes.
type LedgerEntry struct {
	LedgerID        string          `json:"ledgerID"` // ULID, time-ordered
	TransactionDate time.Time       `json:"transactionDate"`
	PeriodID        string          `json:"periodID"`
	AccountID       string          `json:"accountID"`
	EntryID         string          `json:"entryID"`
	LineID          string          `json:"lineID"`
	Description     string          `json:"description,omitempty"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	// RunningBalance is the account balance immediately after this row was
	// applied, on the account's natural side.
	RunningBalance decimal.Decimal `json:"runningBalance"`
	SourceType     string          `json:"sourceType,omitempty"`
	SourceID       string          `json:"sourceID,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// AccountMovement aggregates ledger activity for one account over some
// window (a period, or the whole ledger).
type AccountMovement struct {
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}
