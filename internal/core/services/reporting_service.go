package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/ledger-engine/internal/core/ports/services"
	"github.com/finboard/ledger-engine/internal/utils/accounting"
)

var (
	ErrPriorPeriodNotClosed = errors.New("prior period must be closed before carrying balances forward")

	// ErrTrialBalanceImbalance is a structural invariant violation: under a
	// correct posting engine it can never occur.
	ErrTrialBalanceImbalance = fmt.Errorf("%w: trial balance does not balance", apperrors.ErrConsistency)
)

// reportingService derives trial balances and financial reports from the
// ledger. Everything it produces is regenerable; nothing it writes is a
// source of truth.
type reportingService struct {
	BaseService
	ledgerRepo  portsrepo.LedgerReader
	tbRepo      portsrepo.TrialBalanceRepository
	periodRepo  portsrepo.PeriodRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	guard       *ConsistencyGuard
}

// NewReportingService creates a new reporting service.
func NewReportingService(ledgerRepo portsrepo.LedgerReader, tbRepo portsrepo.TrialBalanceRepository, periodRepo portsrepo.PeriodRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, guard *ConsistencyGuard) portssvc.ReportingSvcFacade {
	if guard == nil {
		guard = NewConsistencyGuard()
	}
	return &reportingService{
		ledgerRepo:  ledgerRepo,
		tbRepo:      tbRepo,
		periodRepo:  periodRepo,
		accountRepo: accountRepo,
		guard:       guard,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// openingBalances resolves the signed opening balance per account for a
// period: the prior period's persisted closing figures when a prior period
// exists (generating them first if needed), or the accounts' registered
// opening balances for the first period.
func (s *reportingService) openingBalances(ctx context.Context, period *domain.Period, accounts map[string]domain.Account, generatedBy string) (map[string]decimal.Decimal, error) {
	opening := make(map[string]decimal.Decimal, len(accounts))

	prior, err := s.periodRepo.FindPrecedingPeriod(ctx, period.StartDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// First period: carry the registered opening balances.
			for id, acc := range accounts {
				opening[id] = acc.SignedOpeningBalance()
			}
			return opening, nil
		}
		return nil, fmt.Errorf("failed to resolve prior period: %w", err)
	}

	if prior.IsOpen() {
		return nil, fmt.Errorf("%w: period %s is still open", ErrPriorPeriodNotClosed, prior.Code)
	}

	priorRows, err := s.tbRepo.FindTrialBalanceByPeriod(ctx, prior.PeriodID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load prior trial balance: %w", err)
	}
	if len(priorRows) == 0 {
		// The prior period closed without a generated trial balance; build it
		// so the carry-forward chain stays unambiguous.
		priorRows, err = s.GenerateTrialBalance(ctx, prior.PeriodID, generatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to generate prior trial balance for %s: %w", prior.Code, err)
		}
	}

	for _, row := range priorRows {
		acc, ok := accounts[row.AccountID]
		if !ok {
			continue
		}
		signed, err := accounting.SignedDelta(acc.AccountType, row.ClosingDebit, row.ClosingCredit)
		if err != nil {
			return nil, err
		}
		opening[row.AccountID] = signed
	}
	// Accounts absent from the prior trial balance simply open at zero;
	// registered opening balances only seed the first period of the chain.
	return opening, nil
}

// GenerateTrialBalance computes and persists the trial balance for a period,
// then asserts the fundamental double-entry identity over it.
func (s *reportingService) GenerateTrialBalance(ctx context.Context, periodID string, generatedBy string) ([]domain.TrialBalanceLine, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPeriodNotFound, periodID)
		}
		return nil, err
	}

	allAccounts, err := s.accountRepo.ListAccounts(ctx, true, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts := make(map[string]domain.Account, len(allAccounts))
	for _, acc := range allAccounts {
		if acc.IsGroup {
			// Group accounts never carry postings; their figures roll up
			// through their children.
			continue
		}
		accounts[acc.AccountID] = acc
	}

	opening, err := s.openingBalances(ctx, period, accounts, generatedBy)
	if err != nil {
		return nil, err
	}

	movements, err := s.ledgerRepo.AggregateMovementsByPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger movements: %w", err)
	}
	movementByAccount := make(map[string]domain.AccountMovement, len(movements))
	for _, m := range movements {
		movementByAccount[m.AccountID] = m
	}

	now := time.Now().UTC()
	lines := make([]domain.TrialBalanceLine, 0, len(accounts))
	totalClosingDebit := decimal.Zero
	totalClosingCredit := decimal.Zero

	for id, acc := range accounts {
		openingSigned := opening[id]
		movement := movementByAccount[id]

		// Skip accounts with neither history nor balance to keep the report
		// to the accounts that matter.
		if openingSigned.IsZero() && movement.Debit.IsZero() && movement.Credit.IsZero() {
			continue
		}

		delta, err := accounting.SignedDelta(acc.AccountType, movement.Debit, movement.Credit)
		if err != nil {
			return nil, err
		}
		closingSigned := openingSigned.Add(delta)

		openingDebit, openingCredit := accounting.SidesForBalance(acc.AccountType, openingSigned)
		closingDebit, closingCredit := accounting.SidesForBalance(acc.AccountType, closingSigned)

		lines = append(lines, domain.TrialBalanceLine{
			TrialBalanceID: uuid.NewString(),
			PeriodID:       periodID,
			AccountID:      id,
			AccountCode:    acc.Code,
			AccountName:    acc.Name,
			AccountType:    acc.AccountType,
			OpeningDebit:   openingDebit,
			OpeningCredit:  openingCredit,
			PeriodDebit:    movement.Debit,
			PeriodCredit:   movement.Credit,
			ClosingDebit:   closingDebit,
			ClosingCredit:  closingCredit,
			GeneratedAt:    now,
			GeneratedBy:    generatedBy,
		})
		totalClosingDebit = totalClosingDebit.Add(closingDebit)
		totalClosingCredit = totalClosingCredit.Add(closingCredit)
	}

	if !totalClosingDebit.Equal(totalClosingCredit) {
		// A generated trial balance that does not balance means the posting
		// engine wrote inconsistent rows. Quarantine the period and escalate.
		s.guard.QuarantinePeriod(periodID, "trial balance imbalance")
		s.LogError(ctx, ErrTrialBalanceImbalance, "STRUCTURAL INVARIANT VIOLATED: trial balance imbalance",
			slog.String("period_id", periodID),
			slog.String("closing_debit", totalClosingDebit.String()),
			slog.String("closing_credit", totalClosingCredit.String()))
		return nil, fmt.Errorf("%w: period %s debit %s credit %s", ErrTrialBalanceImbalance,
			periodID, totalClosingDebit.String(), totalClosingCredit.String())
	}

	if err := s.tbRepo.ReplaceTrialBalance(ctx, periodID, lines); err != nil {
		s.LogError(ctx, err, "Failed to persist trial balance", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to persist trial balance: %w", err)
	}

	s.LogInfo(ctx, "Trial balance generated",
		slog.String("period_id", periodID),
		slog.Int("rows", len(lines)),
		slog.String("total", totalClosingDebit.String()))
	return lines, nil
}

// GetTrialBalance retrieves stored trial balance rows for a period.
func (s *reportingService) GetTrialBalance(ctx context.Context, periodID string) ([]domain.TrialBalanceLine, error) {
	return s.tbRepo.FindTrialBalanceByPeriod(ctx, periodID)
}

// ProfitAndLoss generates a profit and loss report for a date range.
func (s *reportingService) ProfitAndLoss(ctx context.Context, from, to time.Time) (*domain.PAndLReport, error) {
	revenue, expenses, err := s.ledgerRepo.GetProfitAndLossData(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve profit and loss data")
		return nil, fmt.Errorf("failed to retrieve profit and loss data: %w", err)
	}

	totalRevenue := decimal.Zero
	for _, r := range revenue {
		totalRevenue = totalRevenue.Add(r.NetAmount)
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.NetAmount)
	}

	return &domain.PAndLReport{
		Revenue:   revenue,
		Expenses:  expenses,
		NetProfit: totalRevenue.Sub(totalExpenses),
	}, nil
}

// BalanceSheet generates a balance sheet as of a date.
func (s *reportingService) BalanceSheet(ctx context.Context, asOf time.Time) (*domain.BalanceSheetReport, error) {
	assets, liabilities, equity, err := s.ledgerRepo.GetBalanceSheetData(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data")
		return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
	}

	sum := func(rows []domain.AccountAmount) decimal.Decimal {
		total := decimal.Zero
		for _, r := range rows {
			total = total.Add(r.NetAmount)
		}
		return total
	}

	return &domain.BalanceSheetReport{
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		TotalAssets:      sum(assets),
		TotalLiabilities: sum(liabilities),
		TotalEquity:      sum(equity),
	}, nil
}

// VerifyLedgerIntegrity recomputes every stored balance from ledger history
// and checks the per-period debit/credit identity, quarantining anything
// that fails. All inputs come from one repeatable-read snapshot, so postings
// committing during the scan cannot surface as false drift. It takes no
// locks.
func (s *reportingService) VerifyLedgerIntegrity(ctx context.Context) ([]domain.ConsistencyFinding, error) {
	var findings []domain.ConsistencyFinding

	snapshot, err := s.ledgerRepo.ReadIntegritySnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read integrity snapshot: %w", err)
	}
	movementByAccount := make(map[string]domain.AccountMovement, len(snapshot.Movements))
	for _, m := range snapshot.Movements {
		movementByAccount[m.AccountID] = m
	}

	for _, acc := range snapshot.Accounts {
		if acc.IsGroup {
			continue
		}
		movement := movementByAccount[acc.AccountID]
		delta, err := accounting.SignedDelta(acc.AccountType, movement.Debit, movement.Credit)
		if err != nil {
			return nil, err
		}
		expected := acc.SignedOpeningBalance().Add(delta)
		if !expected.Equal(acc.Balance) {
			s.guard.QuarantineAccount(acc.AccountID, "running balance drift")
			finding := domain.ConsistencyFinding{
				Kind:      "ACCOUNT_BALANCE_DRIFT",
				AccountID: acc.AccountID,
				Expected:  expected,
				Actual:    acc.Balance,
				Detail:    fmt.Sprintf("account %s: ledger history yields %s, stored balance is %s", acc.Code, expected.String(), acc.Balance.String()),
			}
			findings = append(findings, finding)
			s.LogError(ctx, apperrors.ErrConsistency, "STRUCTURAL INVARIANT VIOLATED: account balance drift",
				slog.String("account_id", acc.AccountID),
				slog.String("expected", expected.String()),
				slog.String("actual", acc.Balance.String()))
		}
	}

	totalsByPeriod := make(map[string]domain.PeriodTotal, len(snapshot.PeriodTotals))
	for _, t := range snapshot.PeriodTotals {
		totalsByPeriod[t.PeriodID] = t
	}
	for _, period := range snapshot.Periods {
		total, ok := totalsByPeriod[period.PeriodID]
		if !ok {
			continue
		}
		debits := total.Debit
		credits := total.Credit
		if !debits.Equal(credits) {
			s.guard.QuarantinePeriod(period.PeriodID, "period debit/credit imbalance")
			findings = append(findings, domain.ConsistencyFinding{
				Kind:     "PERIOD_IMBALANCE",
				PeriodID: period.PeriodID,
				Expected: debits,
				Actual:   credits,
				Detail:   fmt.Sprintf("period %s: debits %s, credits %s", period.Code, debits.String(), credits.String()),
			})
			s.LogError(ctx, apperrors.ErrConsistency, "STRUCTURAL INVARIANT VIOLATED: period imbalance",
				slog.String("period_id", period.PeriodID),
				slog.String("debits", debits.String()),
				slog.String("credits", credits.String()))
		}
	}

	return findings, nil
}
