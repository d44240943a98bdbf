package dto

import (
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one leg of a journal entry. Exactly one of Debit and
// Credit must be non-zero; the service enforces this beyond what struct tags
// can express.
type EntryLineRequest struct {
	AccountID   string          `json:"accountID" validate:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
	CostCenter  string          `json:"costCenter"`
}

// CreateEntryRequest defines the data needed to create a draft journal entry.
type CreateEntryRequest struct {
	EntryDate       time.Time          `json:"entryDate" validate:"required"`
	EntryType       domain.EntryType   `json:"entryType" validate:"required,oneof=MANUAL SYSTEM"`
	SourceType      string             `json:"sourceType"`
	SourceID        string             `json:"sourceID"`
	SourceReference string             `json:"sourceReference"`
	Description     string             `json:"description" validate:"required"`
	Lines           []EntryLineRequest `json:"lines" validate:"required,min=2,dive"`
}

// UpdateEntryRequest replaces the header and lines of a draft entry.
// Lines are always replaced wholesale; partial line edits are not supported.
type UpdateEntryRequest struct {
	EntryDate   *time.Time         `json:"entryDate"`
	Description *string            `json:"description"`
	Lines       []EntryLineRequest `json:"lines" validate:"omitempty,min=2,dive"`
}
