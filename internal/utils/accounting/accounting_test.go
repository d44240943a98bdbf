package accounting_test

import (
	"testing"

	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/finboard/ledger-engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedDelta(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	zero := decimal.Zero

	tests := []struct {
		name        string
		accountType domain.AccountType
		debit       decimal.Decimal
		credit      decimal.Decimal
		want        decimal.Decimal
	}{
		{"debit to asset increases", domain.Asset, hundred, zero, hundred},
		{"credit to asset decreases", domain.Asset, zero, hundred, hundred.Neg()},
		{"debit to expense increases", domain.Expense, hundred, zero, hundred},
		{"credit to expense decreases", domain.Expense, zero, hundred, hundred.Neg()},
		{"credit to liability increases", domain.Liability, zero, hundred, hundred},
		{"debit to liability decreases", domain.Liability, hundred, zero, hundred.Neg()},
		{"credit to equity increases", domain.Equity, zero, hundred, hundred},
		{"credit to revenue increases", domain.Revenue, zero, hundred, hundred},
		{"debit to revenue decreases", domain.Revenue, hundred, zero, hundred.Neg()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.SignedDelta(tt.accountType, tt.debit, tt.credit)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSignedDelta_UnknownType(t *testing.T) {
	_, err := accounting.SignedDelta("BOGUS", decimal.NewFromInt(1), decimal.Zero)
	assert.Error(t, err)
}

func TestSidesForBalance(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	debit, credit := accounting.SidesForBalance(domain.Asset, hundred)
	assert.True(t, debit.Equal(hundred))
	assert.True(t, credit.IsZero())

	// Negative natural-side balance flips to the opposite column.
	debit, credit = accounting.SidesForBalance(domain.Asset, hundred.Neg())
	assert.True(t, debit.IsZero())
	assert.True(t, credit.Equal(hundred))

	debit, credit = accounting.SidesForBalance(domain.Revenue, hundred)
	assert.True(t, debit.IsZero())
	assert.True(t, credit.Equal(hundred))

	debit, credit = accounting.SidesForBalance(domain.Revenue, hundred.Neg())
	assert.True(t, debit.Equal(hundred))
	assert.True(t, credit.IsZero())

	debit, credit = accounting.SidesForBalance(domain.Liability, decimal.Zero)
	assert.True(t, debit.IsZero())
	assert.True(t, credit.IsZero())
}

func TestEntryDeltas(t *testing.T) {
	fiveHundred := decimal.NewFromInt(500)
	lines := []domain.JournalEntryLine{
		{LineNumber: 1, AccountID: "cash", Debit: fiveHundred},
		{LineNumber: 2, AccountID: "revenue", Credit: fiveHundred},
	}
	types := map[string]domain.AccountType{
		"cash":    domain.Asset,
		"revenue": domain.Revenue,
	}

	deltas, err := accounting.EntryDeltas(lines, types)
	require.NoError(t, err)
	assert.True(t, deltas["cash"].Equal(fiveHundred))
	assert.True(t, deltas["revenue"].Equal(fiveHundred))
}

func TestEntryDeltas_NetsSameAccount(t *testing.T) {
	lines := []domain.JournalEntryLine{
		{LineNumber: 1, AccountID: "cash", Debit: decimal.NewFromInt(300)},
		{LineNumber: 2, AccountID: "cash", Credit: decimal.NewFromInt(100)},
		{LineNumber: 3, AccountID: "equity", Credit: decimal.NewFromInt(200)},
	}
	types := map[string]domain.AccountType{
		"cash":   domain.Asset,
		"equity": domain.Equity,
	}

	deltas, err := accounting.EntryDeltas(lines, types)
	require.NoError(t, err)
	assert.True(t, deltas["cash"].Equal(decimal.NewFromInt(200)))
	assert.True(t, deltas["equity"].Equal(decimal.NewFromInt(200)))
}

func TestEntryDeltas_UnknownAccount(t *testing.T) {
	lines := []domain.JournalEntryLine{
		{LineNumber: 1, AccountID: "mystery", Debit: decimal.NewFromInt(1)},
	}
	_, err := accounting.EntryDeltas(lines, map[string]domain.AccountType{})
	assert.Error(t, err)
}
