// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const walletColumns = `id, user_id, balance, bonus_balance, total_deposit, total_earned, total_withdraw, total_paid, status, created_at, updated_at`

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct {
	// No longer holds *sqlx.DB as methods receive DBExecutor directly
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet into the database using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (` + walletColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := q.ExecContext(ctx, query,
		wallet.ID,
		wallet.UserID,
		wallet.Balance,
		wallet.BonusBalance,
		wallet.TotalDeposit,
		wallet.TotalEarned,
		wallet.TotalWithdraw,
		wallet.TotalPaid,
		wallet.Status,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by ID %s: %w", id, err)
	}
	return &wallet, nil
}

// GetWalletByIDForUpdate retrieves a wallet by ID and locks its row for the
// duration of the surrounding transaction.
func (r *WalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet %s: %w", id, err)
	}
	return &wallet, nil
}

// GetWalletByUserID retrieves the wallet owned by a user using the provided DBExecutor.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// GetWalletByUserIDForUpdate retrieves the wallet owned by a user and locks
// its row for the duration of the surrounding transaction.
func (r *WalletRepository) GetWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// UpdateWalletTotals persists the cached balance and lifetime aggregates of a
// wallet using the provided DBExecutor.
func (r *WalletRepository) UpdateWalletTotals(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `UPDATE wallets
              SET balance = $1, total_deposit = $2, total_earned = $3, total_withdraw = $4, total_paid = $5, updated_at = $6
              WHERE id = $7`
	result, err := q.ExecContext(ctx, query,
		wallet.Balance,
		wallet.TotalDeposit,
		wallet.TotalEarned,
		wallet.TotalWithdraw,
		wallet.TotalPaid,
		time.Now().UTC(),
		wallet.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet totals for ID %s: %w", wallet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet %s: %w", wallet.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating wallet %s, wallet might not exist", wallet.ID)
	}
	return nil
}
