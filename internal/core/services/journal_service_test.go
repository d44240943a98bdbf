package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/finboard/ledger-engine/internal/apperrors"
	"github.com/finboard/ledger-engine/internal/core/domain"
	portssvc "github.com/finboard/ledger-engine/internal/core/ports/services"
	"github.com/finboard/ledger-engine/internal/core/services"
	"github.com/finboard/ledger-engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockLedgerRepo  *MockLedgerRepository
	mockAccountSvc  *MockAccountReaderSvc
	service         portssvc.JournalSvcFacade
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountSvc = new(MockAccountReaderSvc)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockLedgerRepo, suite.mockAccountSvc)
}

func postableAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"cash":    {AccountID: "cash", Code: "1000", AccountType: domain.Asset, IsActive: true},
		"revenue": {AccountID: "revenue", Code: "4000", AccountType: domain.Revenue, IsActive: true},
	}
}

func balancedEntryRequest() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		EntryDate:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		EntryType:   domain.EntryManual,
		Description: "Cash sale",
		Lines: []dto.EntryLineRequest{
			{AccountID: "cash", Debit: decimal.NewFromInt(500)},
			{AccountID: "revenue", Credit: decimal.NewFromInt(500)},
		},
	}
}

func (suite *JournalServiceTestSuite) TestCreateEntry_Success() {
	ctx := context.Background()
	req := balancedEntryRequest()

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, []string{"cash", "revenue"}).Return(postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("NextEntryNumber", ctx).Return("JE-000001", nil).Once()
	suite.mockJournalRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	entry, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.Equal("JE-000001", entry.EntryNumber)
	suite.Equal(domain.Draft, entry.Status)
	suite.True(entry.TotalDebit.Equal(decimal.NewFromInt(500)))
	suite.True(entry.TotalCredit.Equal(decimal.NewFromInt(500)))
	suite.Require().Len(entry.Lines, 2)
	suite.Equal(1, entry.Lines[0].LineNumber)
	suite.Equal(2, entry.Lines[1].LineNumber)
	suite.Equal(entry.EntryID, entry.Lines[0].EntryID)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestCreateEntry_Unbalanced() {
	ctx := context.Background()
	req := balancedEntryRequest()
	req.Lines[1].Credit = decimal.NewFromInt(499)

	_, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrUnbalancedEntry)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveEntry")
}

func (suite *JournalServiceTestSuite) TestCreateEntry_BothSidesOnOneLine() {
	ctx := context.Background()
	req := balancedEntryRequest()
	req.Lines[0].Credit = decimal.NewFromInt(100)

	_, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrLineOneSided)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_NegativeAmount() {
	ctx := context.Background()
	req := balancedEntryRequest()
	req.Lines[0].Debit = decimal.NewFromInt(-500)

	_, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_SingleAccountBothLegs() {
	ctx := context.Background()
	req := balancedEntryRequest()
	req.Lines[1].AccountID = "cash"

	_, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryMinAccounts)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_GroupAccount() {
	ctx := context.Background()
	req := balancedEntryRequest()
	accounts := postableAccounts()
	grp := accounts["cash"]
	grp.IsGroup = true
	accounts["cash"] = grp

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, []string{"cash", "revenue"}).Return(accounts, nil).Once()

	_, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrGroupAccountNotPostable)
}

func (suite *JournalServiceTestSuite) TestCreateEntry_InactiveAccount() {
	ctx := context.Background()
	req := balancedEntryRequest()
	accounts := postableAccounts()
	inactive := accounts["revenue"]
	inactive.IsActive = false
	accounts["revenue"] = inactive

	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, []string{"cash", "revenue"}).Return(accounts, nil).Once()

	_, err := suite.service.CreateEntry(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountInactive)
}

func (suite *JournalServiceTestSuite) TestUpdateEntry_NotDraft() {
	ctx := context.Background()
	posted := &domain.JournalEntry{EntryID: "e1", Status: domain.Posted}

	suite.mockJournalRepo.On("FindEntryByID", ctx, "e1").Return(posted, nil).Once()

	desc := "amended"
	_, err := suite.service.UpdateEntry(ctx, "e1", dto.UpdateEntryRequest{Description: &desc}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotEditable)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "UpdateDraftEntry")
}

func (suite *JournalServiceTestSuite) TestUpdateEntry_ReplacesLines() {
	ctx := context.Background()
	draft := &domain.JournalEntry{
		EntryID:     "e1",
		EntryNumber: "JE-000001",
		Status:      domain.Draft,
		Lines: []domain.JournalEntryLine{
			{LineID: "l1", EntryID: "e1", LineNumber: 1, AccountID: "cash", Debit: decimal.NewFromInt(100)},
			{LineID: "l2", EntryID: "e1", LineNumber: 2, AccountID: "revenue", Credit: decimal.NewFromInt(100)},
		},
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, "e1").Return(draft, nil).Once()
	suite.mockAccountSvc.On("GetAccountsByIDs", ctx, []string{"cash", "revenue"}).Return(postableAccounts(), nil).Once()
	suite.mockJournalRepo.On("UpdateDraftEntry", ctx, mock.AnythingOfType("domain.JournalEntry")).Return(nil).Once()

	updated, err := suite.service.UpdateEntry(ctx, "e1", dto.UpdateEntryRequest{
		Lines: []dto.EntryLineRequest{
			{AccountID: "cash", Debit: decimal.NewFromInt(750)},
			{AccountID: "revenue", Credit: decimal.NewFromInt(750)},
		},
	}, "user-1")

	suite.Require().NoError(err)
	suite.True(updated.TotalDebit.Equal(decimal.NewFromInt(750)))
	suite.Require().Len(updated.Lines, 2)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestApproveEntry_AlreadyApproved() {
	ctx := context.Background()
	when := time.Now().UTC()
	draft := &domain.JournalEntry{
		EntryID:    "e1",
		Status:     domain.Draft,
		ApprovedBy: "reviewer",
		ApprovedAt: &when,
	}

	suite.mockJournalRepo.On("FindEntryByID", ctx, "e1").Return(draft, nil).Once()

	_, err := suite.service.ApproveEntry(ctx, "e1", "another-reviewer")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAlreadyApproved)
}

func (suite *JournalServiceTestSuite) TestCancelEntry_PostedEntry() {
	ctx := context.Background()
	posted := &domain.JournalEntry{EntryID: "e1", Status: domain.Posted}

	suite.mockJournalRepo.On("FindEntryByID", ctx, "e1").Return(posted, nil).Once()

	err := suite.service.CancelEntry(ctx, "e1", "mistake", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrCannotCancelPosted)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "MarkCancelled")
}

func (suite *JournalServiceTestSuite) TestCancelEntry_Success() {
	ctx := context.Background()
	draft := &domain.JournalEntry{EntryID: "e1", Status: domain.Draft}

	suite.mockJournalRepo.On("FindEntryByID", ctx, "e1").Return(draft, nil).Once()
	suite.mockJournalRepo.On("MarkCancelled", ctx, "e1", "duplicate capture", "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.CancelEntry(ctx, "e1", "duplicate capture", "user-1")

	suite.Require().NoError(err)
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestGetEntryByID_NotFound() {
	ctx := context.Background()

	suite.mockJournalRepo.On("FindEntryByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetEntryByID(ctx, "missing")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrEntryNotFound)
}

func (suite *JournalServiceTestSuite) TestListLedgerByAccount_DefaultsLimit() {
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	suite.mockLedgerRepo.On("ListLedgerByAccount", ctx, "cash", from, to, 100, 0).Return([]domain.LedgerEntry{}, nil).Once()

	_, err := suite.service.ListLedgerByAccount(ctx, "cash", from, to, 0, 0)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
