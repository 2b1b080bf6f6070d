// internal/service/admin_book_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/internal/util"
	"fundpool-ledger/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminBookService maintains the platform-side accounting mirror. It records
// the platform's credit/debit exposure per approved group event and never
// touches user balances. Invoking it zero, one or many times for the same
// event yields the same books.
type AdminBookService interface {
	// Record mirrors one approved event onto the admin books. Returns true
	// only on the call that actually created the entry.
	Record(ctx context.Context, eventID uuid.UUID) (bool, error)
	// GetBook retrieves the admin wallet for a user.
	GetBook(ctx context.Context, userID int64) (*domain.AdminWallet, error)
}

// adminBookService implements the AdminBookService interface.
type adminBookService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	eventRepo  repository.EventRepository
	adminRepo  repository.AdminWalletRepository
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewAdminBookService creates a new instance of AdminBookService.
func NewAdminBookService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	eventRepo repository.EventRepository,
	adminRepo repository.AdminWalletRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) AdminBookService {
	return &adminBookService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		eventRepo:  eventRepo,
		adminRepo:  adminRepo,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// Record classifies an approved group event (investment -> credit,
// withdrawal -> debit), updates the running totals and recomputed balance,
// and inserts the mirror entry — all in one transaction. Events that already
// have an entry for this admin wallet are a no-op.
func (s *adminBookService) Record(ctx context.Context, eventID uuid.UUID) (bool, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return false, fmt.Errorf("record: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return false, fmt.Errorf("record: transaction controller does not implement DBExecutor")
	}

	event, err := s.eventRepo.GetEventByID(ctx, txExecutor, eventID)
	if err != nil {
		return false, fmt.Errorf("record: failed to get event %s: %w", eventID, err)
	}

	var entryType domain.AdminEntryType
	switch event.Type {
	case domain.EventTypeGroupInvestment:
		entryType = domain.AdminEntryCredit
	case domain.EventTypeGroupWithdrawal:
		entryType = domain.AdminEntryDebit
	default:
		// Only group money movements appear on the platform books.
		return false, nil
	}

	if event.Amount.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}

	book, err := s.getOrCreateBookTx(ctx, txExecutor, event.UserID)
	if err != nil {
		return false, fmt.Errorf("record: %w", err)
	}

	exists, err := s.adminRepo.EntryExists(ctx, txExecutor, book.ID, event.ID)
	if err != nil {
		return false, fmt.Errorf("record: failed to check entry existence: %w", err)
	}
	if exists {
		return false, nil
	}

	switch entryType {
	case domain.AdminEntryCredit:
		book.TotalCredit = book.TotalCredit.Add(event.Amount)
	case domain.AdminEntryDebit:
		book.TotalDebit = book.TotalDebit.Add(event.Amount)
	}
	book.RecalcBalance()

	entry := &domain.AdminWalletEntry{
		AdminWalletID: book.ID,
		EventID:       event.ID,
		Amount:        event.Amount,
		EntryType:     entryType,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.adminRepo.CreateEntry(ctx, txExecutor, entry); err != nil {
		return false, fmt.Errorf("record: failed to create entry: %w", err)
	}

	if err := s.adminRepo.UpdateAdminWalletTotals(ctx, txExecutor, book); err != nil {
		return false, fmt.Errorf("record: failed to update admin wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return false, fmt.Errorf("record: failed to commit transaction: %w", err)
	}

	return true, nil
}

// getOrCreateBookTx returns the user's admin wallet locked for update,
// creating it on first reference.
func (s *adminBookService) getOrCreateBookTx(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.AdminWallet, error) {
	book, err := s.adminRepo.GetAdminWalletByUserIDForUpdate(ctx, q, userID)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("failed to get admin wallet for user %d: %w", userID, err)
	}

	book = &domain.AdminWallet{
		UserID:      userID,
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
		Balance:     decimal.Zero,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.adminRepo.CreateAdminWallet(ctx, q, book); err != nil {
		return nil, fmt.Errorf("failed to create admin wallet for user %d: %w", userID, err)
	}
	return book, nil
}

// GetBook retrieves the admin wallet for a user.
func (s *adminBookService) GetBook(ctx context.Context, userID int64) (*domain.AdminWallet, error) {
	book, err := s.adminRepo.GetAdminWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}
