package accounting

import (
	"fmt"

	"github.com/finboard/ledger-engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedDelta applies the balance sign convention for a single debit/credit
// pair against an account of the given type. This is the only place the
// convention lives; the posting transaction and reporting both go through it.
//
// DEBIT to ASSET/EXPENSE -> Positive (+)
// CREDIT to ASSET/EXPENSE -> Negative (-)
// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
func SignedDelta(accountType domain.AccountType, debit, credit decimal.Decimal) (decimal.Decimal, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return debit.Sub(credit), nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return credit.Sub(debit), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// LineDelta is SignedDelta applied to one journal entry line.
func LineDelta(accountType domain.AccountType, line domain.JournalEntryLine) (decimal.Decimal, error) {
	return SignedDelta(accountType, line.Debit, line.Credit)
}

// SidesForBalance expresses a signed natural-side balance as a debit/credit
// column pair: a non-negative balance sits on the account's normal side, a
// negative one flips to the opposite side as a positive figure.
func SidesForBalance(accountType domain.AccountType, balance decimal.Decimal) (debit, credit decimal.Decimal) {
	onNormal := balance
	flipped := false
	if balance.IsNegative() {
		onNormal = balance.Neg()
		flipped = true
	}
	if (accountType.NormalSide() == domain.SideDebit) != flipped {
		return onNormal, decimal.Zero
	}
	return decimal.Zero, onNormal
}

// EntryDeltas computes the net natural-side balance change per account for a
// set of entry lines. accountTypes must contain every referenced account.
func EntryDeltas(lines []domain.JournalEntryLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not known for account ID %s", line.AccountID)
		}
		delta, err := LineDelta(accountType, line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.LineNumber, err)
		}
		deltas[line.AccountID] = deltas[line.AccountID].Add(delta)
	}
	return deltas, nil
}
