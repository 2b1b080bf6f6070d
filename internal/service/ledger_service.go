// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/internal/util"
	"fundpool-ledger/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerResult is the outcome of a credit or debit call. Applied is false
// when the operation was a duplicate-delivery no-op: the idempotency key
// already has a success entry and the balance was left untouched.
type LedgerResult struct {
	Applied bool
	Entry   *domain.LedgerEntry
}

// LedgerService defines the ledger engine's primitive operations. Every
// product module (groups, investments, referral payouts) mutates balances
// exclusively through Credit and Debit.
type LedgerService interface {
	Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*LedgerResult, error)
	Debit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*LedgerResult, error)

	// CreditTx and DebitTx apply the primitive against a wallet that the
	// caller has already locked inside its own transaction, so settlement,
	// group joining and ROI crediting can compose the ledger mutation into
	// a larger atomic unit.
	CreditTx(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, amount decimal.Decimal, kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*LedgerResult, error)
	DebitTx(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, amount decimal.Decimal, kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*LedgerResult, error)

	// GetOrCreateWalletTx returns the user's wallet, locked for update,
	// creating it lazily on first reference. Must run inside a transaction.
	GetOrCreateWalletTx(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error)

	GetBalance(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error)
	GetWalletForUser(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetLedgerHistory(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int64, error)
	AuditWallet(ctx context.Context, walletID uuid.UUID) (cached, ledgerSum decimal.Decimal, err error)
	CreateUser(ctx context.Context, username string) (*domain.User, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	ledgerRepo repository.LedgerRepository
	beginTx    db.BeginTxFunc    // Injected dependency for beginning transactions
	commitTx   db.CommitTxFunc   // Injected dependency for committing transactions
	rollbackTx db.RollbackTxFunc // Injected dependency for rolling back transactions
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	ledgerRepo repository.LedgerRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) LedgerService {
	return &ledgerService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// Credit adds money to a wallet: inserts a success ledger entry with a
// positive amount and updates the cached balance plus the relevant lifetime
// aggregate in one transaction, with the wallet row locked throughout.
func (s *ledgerService) Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*LedgerResult, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("credit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("credit: transaction controller does not implement DBExecutor")
	}

	wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, txExecutor, walletID)
	if err != nil {
		return nil, fmt.Errorf("credit: failed to lock wallet %s: %w", walletID, err)
	}

	result, err := s.CreditTx(ctx, txExecutor, wallet, amount, kind, source, idempotencyKey, note)
	if err != nil {
		return nil, err
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("credit: failed to commit transaction: %w", err)
	}

	return result, nil
}

// Debit removes money from a wallet: inserts a success ledger entry with a
// negative amount and updates the cached balance plus the relevant lifetime
// aggregate in one transaction, with the wallet row locked throughout.
func (s *ledgerService) Debit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal, kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*LedgerResult, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("debit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("debit: transaction controller does not implement DBExecutor")
	}

	wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, txExecutor, walletID)
	if err != nil {
		return nil, fmt.Errorf("debit: failed to lock wallet %s: %w", walletID, err)
	}

	result, err := s.DebitTx(ctx, txExecutor, wallet, amount, kind, source, idempotencyKey, note)
	if err != nil {
		return nil, err
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("debit: failed to commit transaction: %w", err)
	}

	return result, nil
}

// CreditTx applies a credit against an already-locked wallet.
func (s *ledgerService) CreditTx(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, amount decimal.Decimal, kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*LedgerResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}

	if idempotencyKey != nil {
		exists, err := s.ledgerRepo.SuccessEntryExists(ctx, q, wallet.ID, kind, *idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("credit: failed to check idempotency key: %w", err)
		}
		if exists {
			// Duplicate delivery: the entry is already on the books.
			return &LedgerResult{Applied: false}, nil
		}
	}

	entry := domain.NewLedgerEntry(wallet.ID, amount, kind, source, idempotencyKey, note)
	if err := s.ledgerRepo.CreateEntry(ctx, q, entry); err != nil {
		return nil, fmt.Errorf("credit: failed to create ledger entry: %w", err)
	}

	wallet.Balance = wallet.Balance.Add(amount)
	switch kind {
	case domain.EntryKindDeposit:
		wallet.TotalDeposit = wallet.TotalDeposit.Add(amount)
	case domain.EntryKindEarned:
		wallet.TotalEarned = wallet.TotalEarned.Add(amount)
	}

	if err := s.walletRepo.UpdateWalletTotals(ctx, q, wallet); err != nil {
		return nil, fmt.Errorf("credit: failed to update wallet totals: %w", err)
	}

	return &LedgerResult{Applied: true, Entry: entry}, nil
}

// DebitTx applies a debit against an already-locked wallet. The wallet must
// be active and hold at least the debited amount.
func (s *ledgerService) DebitTx(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, amount decimal.Decimal, kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*LedgerResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}

	if !wallet.IsActive() {
		return nil, util.ErrWalletFrozen
	}

	if idempotencyKey != nil {
		exists, err := s.ledgerRepo.SuccessEntryExists(ctx, q, wallet.ID, kind, *idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("debit: failed to check idempotency key: %w", err)
		}
		if exists {
			// Duplicate delivery: the entry is already on the books.
			return &LedgerResult{Applied: false}, nil
		}
	}

	if wallet.Balance.LessThan(amount) {
		return nil, &util.InsufficientFundsError{Required: amount, Available: wallet.Balance}
	}

	entry := domain.NewLedgerEntry(wallet.ID, amount.Neg(), kind, source, idempotencyKey, note)
	if err := s.ledgerRepo.CreateEntry(ctx, q, entry); err != nil {
		return nil, fmt.Errorf("debit: failed to create ledger entry: %w", err)
	}

	wallet.Balance = wallet.Balance.Sub(amount)
	switch kind {
	case domain.EntryKindWithdraw:
		wallet.TotalWithdraw = wallet.TotalWithdraw.Add(amount)
	case domain.EntryKindPaid:
		wallet.TotalPaid = wallet.TotalPaid.Add(amount)
	}

	if err := s.walletRepo.UpdateWalletTotals(ctx, q, wallet); err != nil {
		return nil, fmt.Errorf("debit: failed to update wallet totals: %w", err)
	}

	return &LedgerResult{Applied: true, Entry: entry}, nil
}

// GetOrCreateWalletTx returns the user's wallet locked for update, creating
// it on first reference.
func (s *ledgerService) GetOrCreateWalletTx(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserIDForUpdate(ctx, q, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}

	wallet = domain.NewWallet(userID)
	if err := s.walletRepo.CreateWallet(ctx, q, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}
	return wallet, nil
}

// GetBalance retrieves a wallet by ID.
func (s *ledgerService) GetBalance(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	// For read-only operations outside a transaction, use s.dbExecutor
	wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get balance: failed to get wallet %s: %w", walletID, err)
	}
	return wallet, nil
}

// GetWalletForUser retrieves the user's wallet, creating it lazily if the
// user has never been referenced before.
func (s *ledgerService) GetWalletForUser(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err == nil {
		return wallet, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	wallet, err = s.GetOrCreateWalletTx(ctx, txExecutor, userID)
	if err != nil {
		return nil, err
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return wallet, nil
}

// GetLedgerHistory retrieves a paginated list of ledger entries for a wallet.
func (s *ledgerService) GetLedgerHistory(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	// First, check if the wallet exists
	_, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, 0, util.ErrWalletNotFound
		}
		return nil, 0, fmt.Errorf("failed to check wallet existence: %w", err)
	}

	entries, totalCount, err := s.ledgerRepo.GetEntriesByWalletID(ctx, s.dbExecutor, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve ledger history: %w", err)
	}

	return entries, totalCount, nil
}

// AuditWallet returns the cached balance alongside the replayed sum of all
// success entries. The two must always be equal; a mismatch means the cache
// has drifted and needs operator attention.
func (s *ledgerService) AuditWallet(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return decimal.Zero, decimal.Zero, util.ErrWalletNotFound
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("audit: failed to get wallet %s: %w", walletID, err)
	}

	sum, err := s.ledgerRepo.SumSuccessAmounts(ctx, s.dbExecutor, walletID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("audit: failed to sum ledger entries: %w", err)
	}

	return wallet.Balance, sum, nil
}

// CreateUser registers a new user. The wallet is not created here; it
// appears lazily the first time the ledger touches the user.
func (s *ledgerService) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, util.ErrInvalidInput
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create user: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create user: transaction controller does not implement DBExecutor")
	}

	_, err = s.userRepo.GetUserByUsername(ctx, txExecutor, username)
	if err == nil {
		return nil, fmt.Errorf("create user: user with username '%s' already exists: %w", username, util.ErrDuplicateEntry)
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("create user: failed to check existing user: %w", err)
	}

	user := domain.NewUser(username)
	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		return nil, fmt.Errorf("create user: failed to create user: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create user: failed to commit transaction: %w", err)
	}

	return user, nil
}
