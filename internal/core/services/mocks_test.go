package services_test

import (
	"context"
	"time"

	"github.com/finboard/ledger-engine/internal/core/domain"
	portsrepo "github.com/finboard/ledger-engine/internal/core/ports/repositories"
	portssvc "github.com/finboard/ledger-engine/internal/core/ports/services"
	"github.com/finboard/ledger-engine/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, includeInactive bool, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, includeInactive, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindChildAccounts(ctx context.Context, parentAccountID string, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, parentAccountID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) StampReconciled(ctx context.Context, accountID string, userID string, at time.Time) error {
	args := m.Called(ctx, accountID, userID, at)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, balanceChanges, userID, now)
	return args.Error(0)
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

// --- Mock PeriodRepository ---

type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.Period, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) FindPrecedingPeriod(ctx context.Context, start time.Time) (*domain.Period, error) {
	args := m.Called(ctx, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) HasOverlappingPeriod(ctx context.Context, fiscalYear int, start, end time.Time) (bool, error) {
	args := m.Called(ctx, fiscalYear, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, fiscalYear int) ([]domain.Period, error) {
	args := m.Called(ctx, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodRepository) SavePeriod(ctx context.Context, period domain.Period) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockPeriodRepository) ClosePeriod(ctx context.Context, periodID string, closedBy string, now time.Time) error {
	args := m.Called(ctx, periodID, closedBy, now)
	return args.Error(0)
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryByNumber(ctx context.Context, entryNumber string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntriesByStatus(ctx context.Context, status domain.EntryStatus, limit int, offset int) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) NextEntryNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateDraftEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) MarkApproved(ctx context.Context, entryID string, approverID string, now time.Time) error {
	args := m.Called(ctx, entryID, approverID, now)
	return args.Error(0)
}

func (m *MockJournalRepository) MarkCancelled(ctx context.Context, entryID string, reason string, userID string, now time.Time) error {
	args := m.Called(ctx, entryID, reason, userID, now)
	return args.Error(0)
}

func (m *MockJournalRepository) PostEntry(ctx context.Context, entry domain.JournalEntry, period domain.Period, postedBy string, now time.Time) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, entry, period, postedBy, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockJournalRepository) PostReversal(ctx context.Context, original domain.JournalEntry, reversal domain.JournalEntry, period domain.Period, userID string, now time.Time) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, original, reversal, period, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) ListLedgerByAccount(ctx context.Context, accountID string, from, to time.Time, limit int, offset int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID, from, to, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) AggregateAccountMovementOnOrBefore(ctx context.Context, accountID string, date time.Time) (domain.AccountMovement, error) {
	args := m.Called(ctx, accountID, date)
	return args.Get(0).(domain.AccountMovement), args.Error(1)
}

func (m *MockLedgerRepository) AggregateMovementsByPeriod(ctx context.Context, periodID string) ([]domain.AccountMovement, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountMovement), args.Error(1)
}

func (m *MockLedgerRepository) ReadIntegritySnapshot(ctx context.Context) (*domain.IntegritySnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegritySnapshot), args.Error(1)
}

func (m *MockLedgerRepository) GetProfitAndLossData(ctx context.Context, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	args := m.Called(ctx, from, to)
	var revenue, expenses []domain.AccountAmount
	if args.Get(0) != nil {
		revenue = args.Get(0).([]domain.AccountAmount)
	}
	if args.Get(1) != nil {
		expenses = args.Get(1).([]domain.AccountAmount)
	}
	return revenue, expenses, args.Error(2)
}

func (m *MockLedgerRepository) GetBalanceSheetData(ctx context.Context, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	args := m.Called(ctx, asOf)
	var assets, liabilities, equity []domain.AccountAmount
	if args.Get(0) != nil {
		assets = args.Get(0).([]domain.AccountAmount)
	}
	if args.Get(1) != nil {
		liabilities = args.Get(1).([]domain.AccountAmount)
	}
	if args.Get(2) != nil {
		equity = args.Get(2).([]domain.AccountAmount)
	}
	return assets, liabilities, equity, args.Error(3)
}

var _ portsrepo.LedgerReader = (*MockLedgerRepository)(nil)

// --- Mock TrialBalanceRepository ---

type MockTrialBalanceRepository struct {
	mock.Mock
}

func (m *MockTrialBalanceRepository) ReplaceTrialBalance(ctx context.Context, periodID string, lines []domain.TrialBalanceLine) error {
	args := m.Called(ctx, periodID, lines)
	return args.Error(0)
}

func (m *MockTrialBalanceRepository) FindTrialBalanceByPeriod(ctx context.Context, periodID string) ([]domain.TrialBalanceLine, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceLine), args.Error(1)
}

var _ portsrepo.TrialBalanceRepository = (*MockTrialBalanceRepository)(nil)

// --- Mock ReconciliationRepository ---

type MockReconciliationRepository struct {
	mock.Mock
}

func (m *MockReconciliationRepository) SaveReconciliation(ctx context.Context, rec domain.BankReconciliation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockReconciliationRepository) FindReconciliationByID(ctx context.Context, reconciliationID string) (*domain.BankReconciliation, error) {
	args := m.Called(ctx, reconciliationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankReconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) UpdateReconciliation(ctx context.Context, rec domain.BankReconciliation, expectedStatus domain.ReconciliationStatus) error {
	args := m.Called(ctx, rec, expectedStatus)
	return args.Error(0)
}

func (m *MockReconciliationRepository) ListReconciliationsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.BankReconciliation, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankReconciliation), args.Error(1)
}

var _ portsrepo.ReconciliationRepositoryFacade = (*MockReconciliationRepository)(nil)

// --- Mock AccountReaderSvc ---

type MockAccountReaderSvc struct {
	mock.Mock
}

func (m *MockAccountReaderSvc) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) GetAccountBalance(ctx context.Context, accountID string) (*dto.AccountBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AccountBalance), args.Error(1)
}

func (m *MockAccountReaderSvc) ListAccounts(ctx context.Context, includeInactive bool, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, includeInactive, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) GetAccountPath(ctx context.Context, accountID string) ([]domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) GetChildAccounts(ctx context.Context, accountID string, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, accountID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

var _ portssvc.AccountReaderSvc = (*MockAccountReaderSvc)(nil)

// --- Mock PeriodSvc ---

type MockPeriodSvc struct {
	mock.Mock
}

func (m *MockPeriodSvc) CreatePeriod(ctx context.Context, req dto.CreatePeriodRequest, creatorUserID string) (*domain.Period, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodSvc) GetPeriodByID(ctx context.Context, periodID string) (*domain.Period, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodSvc) GetCurrentPeriod(ctx context.Context, date time.Time) (*domain.Period, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodSvc) ListPeriods(ctx context.Context, fiscalYear int) ([]domain.Period, error) {
	args := m.Called(ctx, fiscalYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Period), args.Error(1)
}

func (m *MockPeriodSvc) ClosePeriod(ctx context.Context, periodID string, closedBy string) (*domain.Period, error) {
	args := m.Called(ctx, periodID, closedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Period), args.Error(1)
}

func (m *MockPeriodSvc) IsPeriodOpen(ctx context.Context, periodID string) (bool, error) {
	args := m.Called(ctx, periodID)
	return args.Bool(0), args.Error(1)
}

var _ portssvc.PeriodSvcFacade = (*MockPeriodSvc)(nil)
