package dto

import (
	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RegisterAccountRequest defines the data needed to register a new account.
// The code is immutable once registered.
type RegisterAccountRequest struct {
	Code            string             `json:"code" validate:"required,max=32"`
	Name            string             `json:"name" validate:"required,max=255"`
	AccountType     domain.AccountType `json:"accountType" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Category        string             `json:"category"`
	IsGroup         bool               `json:"isGroup"`
	IsControl       bool               `json:"isControl"`
	IsBank          bool               `json:"isBank"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	OpeningBalance  decimal.Decimal    `json:"openingBalance"`
	OpeningSide     domain.BalanceSide `json:"openingSide" validate:"omitempty,oneof=DEBIT CREDIT"`
	Description     string             `json:"description"` // Optional
}

// UpdateAccountRequest defines the mutable account fields. Pointers
// distinguish zero-value updates from fields not provided.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
}

// AccountBalance is the read-only balance view exposed to collaborators.
type AccountBalance struct {
	AccountID   string             `json:"accountID"`
	Code        string             `json:"code"`
	AccountType domain.AccountType `json:"accountType"`
	Balance     decimal.Decimal    `json:"balance"`
	NormalSide  domain.BalanceSide `json:"normalSide"`
}

// ToAccountBalance converts a domain.Account into its balance view.
func ToAccountBalance(acc *domain.Account) AccountBalance {
	return AccountBalance{
		AccountID:   acc.AccountID,
		Code:        acc.Code,
		AccountType: acc.AccountType,
		Balance:     acc.Balance,
		NormalSide:  acc.AccountType.NormalSide(),
	}
}
