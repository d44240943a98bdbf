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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.service = services.NewAccountService(suite.mockRepo)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.RegisterAccountRequest{
		Code:        "1000",
		Name:        "Cash at Bank",
		AccountType: domain.Asset,
		IsBank:      true,
	}

	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.RegisterAccount(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal("1000", account.Code)
	suite.Equal(domain.Asset, account.AccountType)
	suite.Equal(domain.SideDebit, account.OpeningSide) // defaulted to the normal side
	suite.True(account.IsActive)
	suite.True(account.IsBank)
	suite.True(account.Balance.IsZero())
	suite.Equal(creatorUserID, account.CreatedBy)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_OpeningBalanceOnOppositeSide() {
	ctx := context.Background()
	req := dto.RegisterAccountRequest{
		Code:           "2100",
		Name:           "Supplier Control",
		AccountType:    domain.Liability,
		IsControl:      true,
		OpeningBalance: decimal.NewFromInt(250),
		OpeningSide:    domain.SideDebit,
	}

	suite.mockRepo.On("FindAccountByCode", ctx, "2100").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.RegisterAccount(ctx, req, "user-1")

	suite.Require().NoError(err)
	// Debit opening on a credit-normal account yields a negative natural balance.
	suite.True(account.Balance.Equal(decimal.NewFromInt(-250)))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_DuplicateCode() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: uuid.NewString(), Code: "1000"}

	suite.mockRepo.On("FindAccountByCode", ctx, "1000").Return(existing, nil).Once()

	_, err := suite.service.RegisterAccount(ctx, dto.RegisterAccountRequest{
		Code:        "1000",
		Name:        "Cash",
		AccountType: domain.Asset,
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDuplicateCode)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_ParentNotFound() {
	ctx := context.Background()
	parentID := uuid.NewString()

	suite.mockRepo.On("FindAccountByCode", ctx, "1010").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("FindAccountByID", ctx, parentID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.RegisterAccount(ctx, dto.RegisterAccountRequest{
		Code:            "1010",
		Name:            "Petty Cash",
		AccountType:     domain.Asset,
		ParentAccountID: &parentID,
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidHierarchy)
}

func (suite *AccountServiceTestSuite) TestRegisterAccount_NegativeOpeningBalance() {
	ctx := context.Background()

	_, err := suite.service.RegisterAccount(ctx, dto.RegisterAccountRequest{
		Code:           "1000",
		Name:           "Cash",
		AccountType:    domain.Asset,
		OpeningBalance: decimal.NewFromInt(-5),
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestGetAccountPath_WalksToRoot() {
	ctx := context.Background()
	root := domain.Account{AccountID: "root", Code: "1", IsGroup: true}
	mid := domain.Account{AccountID: "mid", Code: "1.1", ParentAccountID: "root", IsGroup: true}
	leaf := domain.Account{AccountID: "leaf", Code: "1.1.1", ParentAccountID: "mid"}

	suite.mockRepo.On("FindAccountByID", ctx, "leaf").Return(&leaf, nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, "mid").Return(&mid, nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, "root").Return(&root, nil).Once()

	path, err := suite.service.GetAccountPath(ctx, "leaf")

	suite.Require().NoError(err)
	suite.Require().Len(path, 3)
	suite.Equal("root", path[0].AccountID)
	suite.Equal("mid", path[1].AccountID)
	suite.Equal("leaf", path[2].AccountID)
}

func (suite *AccountServiceTestSuite) TestGetAccountPath_DetectsCycle() {
	ctx := context.Background()
	a := domain.Account{AccountID: "a", ParentAccountID: "b"}
	b := domain.Account{AccountID: "b", ParentAccountID: "a"}

	suite.mockRepo.On("FindAccountByID", ctx, "a").Return(&a, nil).Once()
	suite.mockRepo.On("FindAccountByID", ctx, "b").Return(&b, nil).Once()

	_, err := suite.service.GetAccountPath(ctx, "a")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidHierarchy)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	account := &domain.Account{AccountID: "acc-1", IsActive: true}

	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()
	suite.mockRepo.On("FindChildAccounts", ctx, "acc-1", true).Return([]domain.Account{}, nil).Once()
	suite.mockRepo.On("DeactivateAccount", ctx, "acc-1", "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, "acc-1", "user-1")

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_WithActiveChildren() {
	ctx := context.Background()
	account := &domain.Account{AccountID: "acc-1", IsActive: true, IsGroup: true}
	child := domain.Account{AccountID: "acc-2", ParentAccountID: "acc-1", IsActive: true}

	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()
	suite.mockRepo.On("FindChildAccounts", ctx, "acc-1", true).Return([]domain.Account{child}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, "acc-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrHasChildren)
	suite.mockRepo.AssertNotCalled(suite.T(), "DeactivateAccount")
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_ControlWithBalance() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID: "acc-1",
		IsActive:  true,
		IsControl: true,
		Balance:   decimal.NewFromInt(10),
	}

	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()
	suite.mockRepo.On("FindChildAccounts", ctx, "acc-1", true).Return([]domain.Account{}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, "acc-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrHasOpenBalance)
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NoChangesSkipsWrite() {
	ctx := context.Background()
	account := &domain.Account{AccountID: "acc-1", Name: "Cash", IsActive: true}

	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	updated, err := suite.service.UpdateAccount(ctx, "acc-1", dto.UpdateAccountRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.Equal("Cash", updated.Name)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestGetAccountBalance() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   "acc-1",
		Code:        "4000",
		AccountType: domain.Revenue,
		Balance:     decimal.NewFromInt(900),
	}

	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(account, nil).Once()

	balance, err := suite.service.GetAccountBalance(ctx, "acc-1")

	suite.Require().NoError(err)
	suite.Equal("4000", balance.Code)
	suite.Equal(domain.SideCredit, balance.NormalSide)
	suite.True(balance.Balance.Equal(decimal.NewFromInt(900)))
}

func (suite *AccountServiceTestSuite) TestGetChildAccounts() {
	ctx := context.Background()
	parent := &domain.Account{AccountID: "acc-1", Code: "1", IsGroup: true, IsActive: true}
	children := []domain.Account{
		{AccountID: "acc-2", Code: "1000", ParentAccountID: "acc-1", IsActive: true},
		{AccountID: "acc-3", Code: "1100", ParentAccountID: "acc-1", IsActive: true},
	}

	suite.mockRepo.On("FindAccountByID", ctx, "acc-1").Return(parent, nil).Once()
	suite.mockRepo.On("FindChildAccounts", ctx, "acc-1", true).Return(children, nil).Once()

	got, err := suite.service.GetChildAccounts(ctx, "acc-1", true)

	suite.Require().NoError(err)
	suite.Len(got, 2)
}

func (suite *AccountServiceTestSuite) TestGetChildAccounts_ParentNotFound() {
	ctx := context.Background()

	suite.mockRepo.On("FindAccountByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetChildAccounts(ctx, "missing", true)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindChildAccounts")
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
