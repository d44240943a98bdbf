package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceLine is one account's row in a generated trial balance. Rows
// are derived and regenerable, never a source of truth.
type TrialBalanceLine struct {
	TrialBalanceID string          `json:"trialBalanceID"` // Primary key (UUID)
	PeriodID       string          `json:"periodID"`
	AccountID      string          `json:"accountID"`
	AccountCode    string          `json:"accountCode"`
	AccountName    string          `json:"accountName"`
	AccountType    AccountType     `json:"accountType"`
	OpeningDebit   decimal.Decimal `json:"openingDebit"`
	OpeningCredit  decimal.Decimal `json:"openingCredit"`
	PeriodDebit    decimal.Decimal `json:"periodDebit"`
	PeriodCredit   decimal.Decimal `json:"periodCredit"`
	ClosingDebit   decimal.Decimal `json:"closingDebit"`
	ClosingCredit  decimal.Decimal `json:"closingCredit"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	GeneratedBy    string          `json:"generatedBy"`
}

// AccountAmount represents an account with its net amount for financial reports.
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// PAndLReport represents a profit and loss report over a date range.
type PAndLReport struct {
	Revenue   []AccountAmount `json:"revenue"`
	Expenses  []AccountAmount `json:"expenses"`
	NetProfit decimal.Decimal `json:"netProfit"`
}

// BalanceSheetReport represents a balance sheet as of a date.
type BalanceSheetReport struct {
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
}

// PeriodTotal is the summed debit and credit of all ledger rows in one period.
type PeriodTotal struct {
	PeriodID string          `json:"periodID"`
	Debit    decimal.Decimal `json:"debit"`
	Credit   decimal.Decimal `json:"credit"`
}

// IntegritySnapshot is everything ledger verification needs, read inside a
// single repeatable-read transaction so postings committing mid-scan cannot
// skew the comparison.
type IntegritySnapshot struct {
	Accounts     []Account         `json:"accounts"`
	Movements    []AccountMovement `json:"movements"`
	Periods      []Period          `json:"periods"`
	PeriodTotals []PeriodTotal     `json:"periodTotals"`
}

// ConsistencyFinding describes one violated structural invariant discovered
// by ledger verification.
type ConsistencyFinding struct {
	Kind      string          `json:"kind"` // e.g. "ACCOUNT_BALANCE_DRIFT", "PERIOD_IMBALANCE"
	AccountID string          `json:"accountID,omitempty"`
	PeriodID  string          `json:"periodID,omitempty"`
	Expected  decimal.Decimal `json:"expected"`
	Actual    decimal.Decimal `json:"actual"`
	Detail    string          `json:"detail"`
}
