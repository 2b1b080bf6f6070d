// internal/service/group_service_test.go
package service

import (
	"context"
	"testing"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type groupFixture struct {
	groupRepo  *MockGroupRepository
	memberRepo *MockMembershipRepository
	walletRepo *MockWalletRepository
	ledgerRepo *MockLedgerRepository
	ctrl       *MockTxController
	service    GroupService
}

func newGroupFixture() *groupFixture {
	f := &groupFixture{
		groupRepo:  new(MockGroupRepository),
		memberRepo: new(MockMembershipRepository),
		walletRepo: new(MockWalletRepository),
		ledgerRepo: new(MockLedgerRepository),
		ctrl:       new(MockTxController),
	}
	begin, commit, rollback := txFuncs(f.ctrl)
	ledger := NewLedgerService(
		new(MockDBBeginner),
		new(MockDBExecutor),
		new(MockUserRepository),
		f.walletRepo,
		f.ledgerRepo,
		begin,
		commit,
		rollback,
	)
	f.service = NewGroupService(
		new(MockDBBeginner),
		new(MockDBExecutor),
		f.groupRepo,
		f.memberRepo,
		ledger,
		begin,
		commit,
		rollback,
	)
	return f
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// TestJoin tests the atomic slot reservation protocol.
func TestJoin(t *testing.T) {
	userID := int64(1)
	groupID := int64(10)

	t.Run("SuccessfulJoinDrainsBalance", func(t *testing.T) {
		ctx := context.Background()
		f := newGroupFixture()

		group := &domain.Group{
			ID:          groupID,
			Name:        "Gold Savers",
			DailyAmount: dec(500),
			ROIPercent:  decimal.NewFromInt(10),
			TotalSlots:  1,
			FilledSlots: 0,
			IsActive:    true,
		}

		wallet := domain.NewWallet(userID)
		wallet.Balance = decimal.NewFromInt(500)

		f.ctrl.On("Commit").Return(nil).Once()
		f.ctrl.On("Rollback").Return(nil).Maybe()

		f.groupRepo.On("GetGroupByIDForUpdate", ctx, mock.Anything, groupID).Return(group, nil).Once()
		f.memberRepo.On("ActiveMembershipExists", ctx, mock.Anything, userID, groupID).Return(false, nil).Once()
		f.walletRepo.On("GetWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(wallet, nil).Once()
		f.ledgerRepo.On("SuccessEntryExists", ctx, mock.Anything, wallet.ID, domain.EntryKindGroupInvestment, mock.AnythingOfType("string")).Return(false, nil).Once()
		f.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).Return(nil).Once()
		f.walletRepo.On("UpdateWalletTotals", ctx, mock.Anything, wallet).Return(nil).Once()
		f.memberRepo.On("CreateMembership", ctx, mock.Anything, mock.AnythingOfType("*domain.GroupMembership")).Return(nil).Once()
		f.groupRepo.On("IncrementFilledSlots", ctx, mock.Anything, groupID).Return(nil).Once()

		result, err := f.service.Join(ctx, userID, groupID)

		assert.NoError(t, err)
		assert.Equal(t, "daily", result.Plan)
		assert.True(t, result.AmountDeducted.Equal(decimal.NewFromInt(500)))
		assert.True(t, result.Membership.TotalInvested.Equal(decimal.NewFromInt(500)))
		assert.True(t, wallet.Balance.IsZero())

		mock.AssertExpectationsForObjects(t, f.ctrl, f.groupRepo, f.memberRepo, f.walletRepo, f.ledgerRepo)
	})

	t.Run("JoinAmountPriorityDailyOverMonthly", func(t *testing.T) {
		ctx := context.Background()
		f := newGroupFixture()

		group := &domain.Group{
			ID:            groupID,
			Name:          "Mixed Plans",
			DailyAmount:   dec(50),
			MonthlyAmount: dec(1500),
			YearlyAmount:  dec(18000),
			TotalSlots:    10,
			IsActive:      true,
		}

		wallet := domain.NewWallet(userID)
		wallet.Balance = decimal.NewFromInt(100)

		f.ctrl.On("Commit").Return(nil).Once()
		f.ctrl.On("Rollback").Return(nil).Maybe()

		f.groupRepo.On("GetGroupByIDForUpdate", ctx, mock.Anything, groupID).Return(group, nil).Once()
		f.memberRepo.On("ActiveMembershipExists", ctx, mock.Anything, userID, groupID).Return(false, nil).Once()
		f.walletRepo.On("GetWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(wallet, nil).Once()
		f.ledgerRepo.On("SuccessEntryExists", ctx, mock.Anything, wallet.ID, domain.EntryKindGroupInvestment, mock.AnythingOfType("string")).Return(false, nil).Once()
		f.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).Return(nil).Once()
		f.walletRepo.On("UpdateWalletTotals", ctx, mock.Anything, wallet).Return(nil).Once()
		f.memberRepo.On("CreateMembership", ctx, mock.Anything, mock.AnythingOfType("*domain.GroupMembership")).Return(nil).Once()
		f.groupRepo.On("IncrementFilledSlots", ctx, mock.Anything, groupID).Return(nil).Once()

		result, err := f.service.Join(ctx, userID, groupID)

		assert.NoError(t, err)
		assert.Equal(t, "daily", result.Plan)
		assert.True(t, result.AmountDeducted.Equal(decimal.NewFromInt(50)))

		mock.AssertExpectationsForObjects(t, f.ctrl, f.groupRepo, f.memberRepo, f.walletRepo, f.ledgerRepo)
	})

	t.Run("BonusCountsTowardEligibilityButIsNotDebited", func(t *testing.T) {
		ctx := context.Background()
		f := newGroupFixture()

		group := &domain.Group{
			ID:          groupID,
			Name:        "Bonus Friendly",
			DailyAmount: dec(100),
			TotalSlots:  5,
			IsActive:    true,
		}

		// 100 real + 50 bonus; the join needs 100 and must come out of the
		// real balance only.
		wallet := domain.NewWallet(userID)
		wallet.Balance = decimal.NewFromInt(100)
		wallet.BonusBalance = decimal.NewFromInt(50)

		f.ctrl.On("Commit").Return(nil).Once()
		f.ctrl.On("Rollback").Return(nil).Maybe()

		f.groupRepo.On("GetGroupByIDForUpdate", ctx, mock.Anything, groupID).Return(group, nil).Once()
		f.memberRepo.On("ActiveMembershipExists", ctx, mock.Anything, userID, groupID).Return(false, nil).Once()
		f.walletRepo.On("GetWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(wallet, nil).Once()
		f.ledgerRepo.On("SuccessEntryExists", ctx, mock.Anything, wallet.ID, domain.EntryKindGroupInvestment, mock.AnythingOfType("string")).Return(false, nil).Once()
		f.ledgerRepo.On("CreateEntry", ctx, mock.Anything, mock.AnythingOfType("*domain.LedgerEntry")).Return(nil).Once()
		f.walletRepo.On("UpdateWalletTotals", ctx, mock.Anything, wallet).Return(nil).Once()
		f.memberRepo.On("CreateMembership", ctx, mock.Anything, mock.AnythingOfType("*domain.GroupMembership")).Return(nil).Once()
		f.groupRepo.On("IncrementFilledSlots", ctx, mock.Anything, groupID).Return(nil).Once()

		result, err := f.service.Join(ctx, userID, groupID)

		assert.NoError(t, err)
		assert.True(t, result.AmountDeducted.Equal(decimal.NewFromInt(100)))
		assert.True(t, wallet.Balance.IsZero())
		assert.True(t, wallet.BonusBalance.Equal(decimal.NewFromInt(50)))

		mock.AssertExpectationsForObjects(t, f.ctrl, f.groupRepo, f.memberRepo, f.walletRepo, f.ledgerRepo)
	})

	t.Run("CapacityExceeded", func(t *testing.T) {
		ctx := context.Background()
		f := newGroupFixture()

		group := &domain.Group{
			ID:          groupID,
			DailyAmount: dec(100),
			TotalSlots:  3,
			FilledSlots: 3,
			IsActive:    true,
		}

		f.ctrl.On("Rollback").Return(nil).Once()
		f.groupRepo.On("GetGroupByIDForUpdate", ctx, mock.Anything, groupID).Return(group, nil).Once()

		result, err := f.service.Join(ctx, userID, groupID)

		assert.ErrorIs(t, err, util.ErrCapacityExceeded)
		assert.Nil(t, result)

		f.ctrl.AssertNotCalled(t, "Commit")
		f.memberRepo.AssertNotCalled(t, "CreateMembership", mock.Anything, mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, f.ctrl, f.groupRepo)
	})

	t.Run("AlreadyMember", func(t *testing.T) {
		ctx := context.Background()
		f := newGroupFixture()

		group := &domain.Group{
			ID:          groupID,
			DailyAmount: dec(100),
			TotalSlots:  3,
			IsActive:    true,
		}

		f.ctrl.On("Rollback").Return(nil).Once()
		f.groupRepo.On("GetGroupByIDForUpdate", ctx, mock.Anything, groupID).Return(group, nil).Once()
		f.memberRepo.On("ActiveMembershipExists", ctx, mock.Anything, userID, groupID).Return(true, nil).Once()

		result, err := f.service.Join(ctx, userID, groupID)

		assert.ErrorIs(t, err, util.ErrAlreadyMember)
		assert.Nil(t, result)

		f.ctrl.AssertNotCalled(t, "Commit")

		mock.AssertExpectationsForObjects(t, f.ctrl, f.groupRepo, f.memberRepo)
	})

	t.Run("NoJoinAmountConfigured", func(t *testing.T) {
		ctx := context.Background()
		f := newGroupFixture()

		group := &domain.Group{
			ID:         groupID,
			TotalSlots: 3,
			IsActive:   true,
		}

		f.ctrl.On("Rollback").Return(nil).Once()
		f.groupRepo.On("GetGroupByIDForUpdate", ctx, mock.Anything, groupID).Return(group, nil).Once()
		f.memberRepo.On("ActiveMembershipExists", ctx, mock.Anything, userID, groupID).Return(false, nil).Once()

		result, err := f.service.Join(ctx, userID, groupID)

		assert.ErrorIs(t, err, util.ErrNoJoinAmountConfigured)
		assert.Nil(t, result)

		mock.AssertExpectationsForObjects(t, f.ctrl, f.groupRepo, f.memberRepo)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		ctx := context.Background()
		f := newGroupFixture()

		group := &domain.Group{
			ID:          groupID,
			DailyAmount: dec(500),
			TotalSlots:  3,
			IsActive:    true,
		}

		wallet := domain.NewWallet(userID)
		wallet.Balance = decimal.NewFromInt(400)

		f.ctrl.On("Rollback").Return(nil).Once()
		f.groupRepo.On("GetGroupByIDForUpdate", ctx, mock.Anything, groupID).Return(group, nil).Once()
		f.memberRepo.On("ActiveMembershipExists", ctx, mock.Anything, userID, groupID).Return(false, nil).Once()
		f.walletRepo.On("GetWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(wallet, nil).Once()

		result, err := f.service.Join(ctx, userID, groupID)

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		var insufficient *util.InsufficientFundsError
		assert.ErrorAs(t, err, &insufficient)
		assert.True(t, insufficient.Available.Equal(decimal.NewFromInt(400)))
		assert.Nil(t, result)

		f.ctrl.AssertNotCalled(t, "Commit")
		f.groupRepo.AssertNotCalled(t, "IncrementFilledSlots", mock.Anything, mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, f.ctrl, f.groupRepo, f.memberRepo, f.walletRepo)
	})
}

// TestListGroups tests the listing with projected returns.
func TestListGroups(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture()

	groups := []domain.Group{
		{
			ID:           1,
			Name:         "Yearly Plan",
			YearlyAmount: dec(1000),
			ROIPercent:   decimal.NewFromInt(10),
			TotalSlots:   5,
		},
		{
			ID:         2,
			Name:       "No Yearly Amount",
			ROIPercent: decimal.NewFromInt(10),
			TotalSlots: 5,
		},
	}
	f.groupRepo.On("ListActiveGroups", ctx, mock.Anything).Return(groups, nil).Once()

	got, returns, err := f.service.ListGroups(ctx)

	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, returns, 2)
	assert.True(t, returns[0].ROIAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, returns[0].TotalReturn.Equal(decimal.NewFromInt(1100)))
	assert.True(t, returns[1].TotalReturn.IsZero())

	mock.AssertExpectationsForObjects(t, f.groupRepo)
}

// TestMembershipReturn tests the per-membership projection.
func TestMembershipReturn(t *testing.T) {
	ctx := context.Background()
	f := newGroupFixture()

	userID := int64(1)
	groupID := int64(10)

	membership := &domain.GroupMembership{
		UserID:        userID,
		GroupID:       groupID,
		TotalInvested: decimal.NewFromInt(1000),
	}
	group := &domain.Group{
		ID:         groupID,
		ROIPercent: decimal.NewFromInt(10),
	}

	f.memberRepo.On("GetMembershipByUserAndGroup", ctx, mock.Anything, userID, groupID).Return(membership, nil).Once()
	f.groupRepo.On("GetGroupByID", ctx, mock.Anything, groupID).Return(group, nil).Once()

	ret, err := f.service.MembershipReturn(ctx, userID, groupID)

	assert.NoError(t, err)
	assert.True(t, ret.ROIAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, ret.TotalReturn.Equal(decimal.NewFromInt(1100)))

	mock.AssertExpectationsForObjects(t, f.memberRepo, f.groupRepo)
}
