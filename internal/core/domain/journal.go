package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft     EntryStatus = "DRAFT"
	Posted    EntryStatus = "POSTED"
	Cancelled EntryStatus = "CANCELLED"
	Reversed  EntryStatus = "REVERSED"
)

// CanTransitionTo reports whether the status change is legal:
// DRAFT -> POSTED, DRAFT -> CANCELLED, POSTED -> REVERSED. Everything else
// is rejected; reversal never mutates the original's lines, it only marks
// the original as having been offset.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case Draft:
		return next == Posted || next == Cancelled
	case Posted:
		return next == Reversed
	default:
		return false
	}
}

// EntryType distinguishes manually captured entries from ones generated by
// the system or derived from a source document.
type EntryType string

const (
	EntryManual EntryType = "MANUAL"
	EntrySystem EntryType = "SYSTEM"
)

// SourceTypeReversal tags the offsetting entry created by a reversal.
const SourceTypeReversal = "REVERSAL"

// JournalEntry is a proposed double-entry transaction. It stays mutable
// while in DRAFT; the posting engine is the only component that moves it to
// POSTED and materializes its lines into the general ledger.
type JournalEntry struct {
	EntryID         string          `json:"entryID"`     // Primary key (UUID)
	EntryNumber     string          `json:"entryNumber"` // Unique, e.g. "JE-000042"
	EntryDate       time.Time       `json:"entryDate"`
	EntryType       EntryType       `json:"entryType"`
	SourceType      string          `json:"sourceType,omitempty"` // Originating document kind
	SourceID        string          `json:"sourceID,omitempty"`
	SourceReference string          `json:"sourceReference,omitempty"`
	Description     string          `json:"description"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	Status          EntryStatus     `json:"status"`
	PostedBy        string          `json:"postedBy,omitempty"`
	PostedAt        *time.Time      `json:"postedAt,omitempty"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	CancelReason    string          `json:"cancelReason,omitempty"`
	// ReversedByEntryID is set on the original once a reversal posts;
	// ReversesEntryID is set on the reversal, pointing back at the original.
	ReversedByEntryID *string            `json:"reversedByEntryID,omitempty"`
	ReversesEntryID   *string            `json:"reversesEntryID,omitempty"`
	Lines             []JournalEntryLine `json:"lines,omitempty"`
	AuditFields
}

// JournalEntryLine is one debit-or-credit leg of an entry. Exactly one of
// Debit and Credit is non-zero. Lines are owned by their entry and never
// mutated independently.
type JournalEntryLine struct {
	LineID      string          `json:"lineID"` // Primary key (UUID)
	EntryID     string          `json:"entryID"`
	LineNumber  int             `json:"lineNumber"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	CostCenter  string          `json:"costCenter,omitempty"`
}

// IsBalanced reports whether total debits equal total credits across lines
// and both sides are strictly positive.
func (e *JournalEntry) IsBalanced() bool {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, line := range e.Lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits.Equal(credits) && debits.IsPositive()
}
