// internal/service/admin_book_service_test.go
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

type adminBookFixture struct {
	eventRepo *MockEventRepository
	adminRepo *MockAdminWalletRepository
	ctrl      *MockTxController
	service   AdminBookService
}

func newAdminBookFixture() *adminBookFixture {
	f := &adminBookFixture{
		eventRepo: new(MockEventRepository),
		adminRepo: new(MockAdminWalletRepository),
		ctrl:      new(MockTxController),
	}
	begin, commit, rollback := txFuncs(f.ctrl)
	f.service = NewAdminBookService(
		new(MockDBBeginner),
		new(MockDBExecutor),
		f.eventRepo,
		f.adminRepo,
		begin,
		commit,
		rollback,
	)
	return f
}

// TestRecord tests the admin accounting mirror.
func TestRecord(t *testing.T) {
	userID := int64(1)
	amount := decimal.NewFromInt(250)

	t.Run("InvestmentRecordsCredit", func(t *testing.T) {
		ctx := context.Background()
		f := newAdminBookFixture()

		event := domain.NewApprovalEvent(userID, nil, domain.EventTypeGroupInvestment, amount)
		book := &domain.AdminWallet{
			ID:          5,
			UserID:      userID,
			TotalCredit: decimal.NewFromInt(100),
			TotalDebit:  decimal.NewFromInt(40),
		}

		f.ctrl.On("Commit").Return(nil).Once()
		f.ctrl.On("Rollback").Return(nil).Maybe()

		f.eventRepo.On("GetEventByID", ctx, mock.Anything, event.ID).Return(event, nil).Once()
		f.adminRepo.On("GetAdminWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(book, nil).Once()
		f.adminRepo.On("EntryExists", ctx, mock.Anything, book.ID, event.ID).Return(false, nil).Once()

		var entry *domain.AdminWalletEntry
		f.adminRepo.On("CreateEntry", ctx, mock.Anything, mock.AnythingOfType("*domain.AdminWalletEntry")).
			Run(func(args mock.Arguments) { entry = args.Get(2).(*domain.AdminWalletEntry) }).
			Return(nil).Once()
		f.adminRepo.On("UpdateAdminWalletTotals", ctx, mock.Anything, book).Return(nil).Once()

		recorded, err := f.service.Record(ctx, event.ID)

		assert.NoError(t, err)
		assert.True(t, recorded)
		assert.Equal(t, domain.AdminEntryCredit, entry.EntryType)
		assert.True(t, entry.Amount.Equal(amount))
		assert.True(t, book.TotalCredit.Equal(decimal.NewFromInt(350)))
		// balance = total_credit - total_debit
		assert.True(t, book.Balance.Equal(decimal.NewFromInt(310)))

		mock.AssertExpectationsForObjects(t, f.ctrl, f.eventRepo, f.adminRepo)
	})

	t.Run("WithdrawalRecordsDebit", func(t *testing.T) {
		ctx := context.Background()
		f := newAdminBookFixture()

		event := domain.NewApprovalEvent(userID, nil, domain.EventTypeGroupWithdrawal, amount)
		book := &domain.AdminWallet{
			ID:          5,
			UserID:      userID,
			TotalCredit: decimal.NewFromInt(500),
		}

		f.ctrl.On("Commit").Return(nil).Once()
		f.ctrl.On("Rollback").Return(nil).Maybe()

		f.eventRepo.On("GetEventByID", ctx, mock.Anything, event.ID).Return(event, nil).Once()
		f.adminRepo.On("GetAdminWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(book, nil).Once()
		f.adminRepo.On("EntryExists", ctx, mock.Anything, book.ID, event.ID).Return(false, nil).Once()

		var entry *domain.AdminWalletEntry
		f.adminRepo.On("CreateEntry", ctx, mock.Anything, mock.AnythingOfType("*domain.AdminWalletEntry")).
			Run(func(args mock.Arguments) { entry = args.Get(2).(*domain.AdminWalletEntry) }).
			Return(nil).Once()
		f.adminRepo.On("UpdateAdminWalletTotals", ctx, mock.Anything, book).Return(nil).Once()

		recorded, err := f.service.Record(ctx, event.ID)

		assert.NoError(t, err)
		assert.True(t, recorded)
		assert.Equal(t, domain.AdminEntryDebit, entry.EntryType)
		assert.True(t, book.TotalDebit.Equal(amount))
		assert.True(t, book.Balance.Equal(decimal.NewFromInt(250)))

		mock.AssertExpectationsForObjects(t, f.ctrl, f.eventRepo, f.adminRepo)
	})

	t.Run("LazyBookCreation", func(t *testing.T) {
		ctx := context.Background()
		f := newAdminBookFixture()

		event := domain.NewApprovalEvent(userID, nil, domain.EventTypeGroupInvestment, amount)

		f.ctrl.On("Commit").Return(nil).Once()
		f.ctrl.On("Rollback").Return(nil).Maybe()

		f.eventRepo.On("GetEventByID", ctx, mock.Anything, event.ID).Return(event, nil).Once()
		f.adminRepo.On("GetAdminWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(nil, util.ErrNotFound).Once()
		f.adminRepo.On("CreateAdminWallet", ctx, mock.Anything, mock.AnythingOfType("*domain.AdminWallet")).Return(nil).Once()
		f.adminRepo.On("EntryExists", ctx, mock.Anything, int64(0), event.ID).Return(false, nil).Once()
		f.adminRepo.On("CreateEntry", ctx, mock.Anything, mock.AnythingOfType("*domain.AdminWalletEntry")).Return(nil).Once()
		f.adminRepo.On("UpdateAdminWalletTotals", ctx, mock.Anything, mock.AnythingOfType("*domain.AdminWallet")).Return(nil).Once()

		recorded, err := f.service.Record(ctx, event.ID)

		assert.NoError(t, err)
		assert.True(t, recorded)

		mock.AssertExpectationsForObjects(t, f.ctrl, f.eventRepo, f.adminRepo)
	})

	t.Run("DuplicateEventIsNoOp", func(t *testing.T) {
		ctx := context.Background()
		f := newAdminBookFixture()

		event := domain.NewApprovalEvent(userID, nil, domain.EventTypeGroupInvestment, amount)
		book := &domain.AdminWallet{
			ID:          5,
			UserID:      userID,
			TotalCredit: amount,
			Balance:     amount,
		}

		f.ctrl.On("Rollback").Return(nil).Once()

		f.eventRepo.On("GetEventByID", ctx, mock.Anything, event.ID).Return(event, nil).Once()
		f.adminRepo.On("GetAdminWalletByUserIDForUpdate", ctx, mock.Anything, userID).Return(book, nil).Once()
		f.adminRepo.On("EntryExists", ctx, mock.Anything, book.ID, event.ID).Return(true, nil).Once()

		recorded, err := f.service.Record(ctx, event.ID)

		assert.NoError(t, err)
		assert.False(t, recorded)
		// Totals untouched by the duplicate.
		assert.True(t, book.TotalCredit.Equal(amount))
		assert.True(t, book.TotalDebit.IsZero())

		f.adminRepo.AssertNotCalled(t, "CreateEntry", mock.Anything, mock.Anything, mock.Anything)
		f.adminRepo.AssertNotCalled(t, "UpdateAdminWalletTotals", mock.Anything, mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, f.ctrl, f.eventRepo, f.adminRepo)
	})

	t.Run("NonGroupEventIsIgnored", func(t *testing.T) {
		ctx := context.Background()
		f := newAdminBookFixture()

		event := domain.NewApprovalEvent(userID, nil, domain.EventTypeDeposit, amount)

		f.ctrl.On("Rollback").Return(nil).Once()
		f.eventRepo.On("GetEventByID", ctx, mock.Anything, event.ID).Return(event, nil).Once()

		recorded, err := f.service.Record(ctx, event.ID)

		assert.NoError(t, err)
		assert.False(t, recorded)

		f.adminRepo.AssertNotCalled(t, "GetAdminWalletByUserIDForUpdate", mock.Anything, mock.Anything, mock.Anything)

		mock.AssertExpectationsForObjects(t, f.ctrl, f.eventRepo)
	})
}

// TestGetBook tests the read path.
func TestGetBook(t *testing.T) {
	ctx := context.Background()
	f := newAdminBookFixture()

	book := &domain.AdminWallet{ID: 5, UserID: 1, Balance: decimal.NewFromInt(100)}
	f.adminRepo.On("GetAdminWalletByUserID", ctx, mock.Anything, int64(1)).Return(book, nil).Once()

	got, err := f.service.GetBook(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, book, got)

	mock.AssertExpectationsForObjects(t, f.adminRepo)
}
