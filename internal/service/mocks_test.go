// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"time"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/pkg/db"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockDBBeginner is a mock implementation of db.DBTxBeginner.
type MockDBBeginner struct {
	mock.Mock
}

func (m *MockDBBeginner) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	args := m.Called(ctx, opts)
	return &sqlx.Tx{}, args.Error(1)
}

// MockTxController is a mock implementation of db.TxController.
// It also implicitly implements repository.DBExecutor for testing purposes
// by embedding MockDBExecutor.
type MockTxController struct {
	mock.Mock
	MockDBExecutor // Embed MockDBExecutor to satisfy repository.DBExecutor interface
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// txFuncs returns begin/commit/rollback functions routed to the given mock
// controller, mirroring how pkg/db wires the real ones.
func txFuncs(ctrl *MockTxController) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	begin := func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
		return ctrl, nil
	}
	commit := func(tx db.TxController) error {
		return ctrl.Commit()
	}
	rollback := func(tx db.TxController) {
		_ = ctrl.Rollback()
	}
	return begin, commit, rollback
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateWalletTotals(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of repository.LedgerRepository.
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) CreateEntry(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	args := m.Called(ctx, q, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) SuccessEntryExists(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, kind domain.EntryKind, idempotencyKey string) (bool, error) {
	args := m.Called(ctx, q, walletID, kind, idempotencyKey)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) GetEntriesByWalletID(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	args := m.Called(ctx, q, walletID, limit, offset)
	return args.Get(0).([]domain.LedgerEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) SumSuccessAmounts(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, q, walletID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockEventRepository is a mock implementation of repository.EventRepository.
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) CreateEvent(ctx context.Context, q repository.DBExecutor, event *domain.ApprovalEvent) error {
	args := m.Called(ctx, q, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetEventByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.ApprovalEvent, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalEvent), args.Error(1)
}

func (m *MockEventRepository) GetEventByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.ApprovalEvent, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalEvent), args.Error(1)
}

func (m *MockEventRepository) UpdateEventDecision(ctx context.Context, q repository.DBExecutor, id uuid.UUID, status domain.EventStatus, adminNote string, processedAt time.Time) error {
	args := m.Called(ctx, q, id, status, adminNote, processedAt)
	return args.Error(0)
}

func (m *MockEventRepository) MarkEventSynced(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockGroupRepository is a mock implementation of repository.GroupRepository.
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) CreateGroup(ctx context.Context, q repository.DBExecutor, group *domain.Group) error {
	args := m.Called(ctx, q, group)
	return args.Error(0)
}

func (m *MockGroupRepository) GetGroupByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) GetGroupByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) ListActiveGroups(ctx context.Context, q repository.DBExecutor) ([]domain.Group, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockGroupRepository) IncrementFilledSlots(ctx context.Context, q repository.DBExecutor, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

// MockMembershipRepository is a mock implementation of repository.MembershipRepository.
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) CreateMembership(ctx context.Context, q repository.DBExecutor, membership *domain.GroupMembership) error {
	args := m.Called(ctx, q, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) GetMembershipByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.GroupMembership, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupMembership), args.Error(1)
}

func (m *MockMembershipRepository) GetMembershipByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.GroupMembership, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupMembership), args.Error(1)
}

func (m *MockMembershipRepository) GetMembershipByUserAndGroup(ctx context.Context, q repository.DBExecutor, userID, groupID int64) (*domain.GroupMembership, error) {
	args := m.Called(ctx, q, userID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GroupMembership), args.Error(1)
}

func (m *MockMembershipRepository) ActiveMembershipExists(ctx context.Context, q repository.DBExecutor, userID, groupID int64) (bool, error) {
	args := m.Called(ctx, q, userID, groupID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) ListActiveMemberships(ctx context.Context, q repository.DBExecutor) ([]domain.GroupMembership, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.GroupMembership), args.Error(1)
}

func (m *MockMembershipRepository) SetTotalInvested(ctx context.Context, q repository.DBExecutor, id uuid.UUID, total decimal.Decimal) error {
	args := m.Called(ctx, q, id, total)
	return args.Error(0)
}

func (m *MockMembershipRepository) SetROIEarned(ctx context.Context, q repository.DBExecutor, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, q, id, amount)
	return args.Error(0)
}

// MockAdminWalletRepository is a mock implementation of repository.AdminWalletRepository.
type MockAdminWalletRepository struct {
	mock.Mock
}

func (m *MockAdminWalletRepository) CreateAdminWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.AdminWallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockAdminWalletRepository) GetAdminWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.AdminWallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminWallet), args.Error(1)
}

func (m *MockAdminWalletRepository) GetAdminWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.AdminWallet, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminWallet), args.Error(1)
}

func (m *MockAdminWalletRepository) UpdateAdminWalletTotals(ctx context.Context, q repository.DBExecutor, wallet *domain.AdminWallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockAdminWalletRepository) EntryExists(ctx context.Context, q repository.DBExecutor, adminWalletID int64, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, q, adminWalletID, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminWalletRepository) CreateEntry(ctx context.Context, q repository.DBExecutor, entry *domain.AdminWalletEntry) error {
	args := m.Called(ctx, q, entry)
	return args.Error(0)
}
