package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// BalanceSide indicates which side of the ledger an amount sits on.
type BalanceSide string

const (
	SideDebit  BalanceSide = "DEBIT"
	SideCredit BalanceSide = "CREDIT"
)

// NormalSide returns the side on which a positive balance of this account
// type naturally sits: debit for assets and expenses, credit otherwise.
func (t AccountType) NormalSide() BalanceSide {
	switch t {
	case Asset, Expense:
		return SideDebit
	default:
		return SideCredit
	}
}

// IsValid reports whether t is one of the five known account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account is a node in the chart-of-accounts tree. Balance is signed and
// normalized to the account's natural side; it is mutated exclusively by the
// posting transaction.
type Account struct {
	AccountID        string          `json:"accountID"` // Primary key (UUID)
	Code             string          `json:"code"`      // Unique, immutable once registered
	Name             string          `json:"name"`
	AccountType      AccountType     `json:"accountType"`
	Category         string          `json:"category"` // Free-form grouping (e.g. "CURRENT_ASSETS")
	IsGroup          bool            `json:"isGroup"`  // Group accounts are never posting targets
	IsControl        bool            `json:"isControl"`
	IsBank           bool            `json:"isBank"` // Eligible for bank reconciliation
	OpeningBalance   decimal.Decimal `json:"openingBalance"`
	OpeningSide      BalanceSide     `json:"openingSide"`
	Balance          decimal.Decimal `json:"balance"`
	ParentAccountID  string          `json:"parentAccountID"` // Empty for root accounts
	Description      string          `json:"description"`
	IsActive         bool            `json:"isActive"`
	LastReconciledAt *time.Time      `json:"lastReconciledAt,omitempty"`
	AuditFields
}

// SignedOpeningBalance expresses the registered opening balance on the
// account's natural side: positive when the opening side matches the normal
// side, negative otherwise.
func (a *Account) SignedOpeningBalance() decimal.Decimal {
	if a.OpeningSide == a.AccountType.NormalSide() {
		return a.OpeningBalance
	}
	return a.OpeningBalance.Neg()
}
