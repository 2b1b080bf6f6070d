// internal/repository/postgres/admin_wallet_pg.go
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

const adminWalletColumns = `id, user_id, total_credit, total_debit, balance, updated_at`

// AdminWalletRepository implements repository.AdminWalletRepository for PostgreSQL.
type AdminWalletRepository struct {
	// No longer holds *sqlx.DB as methods receive DBExecutor directly
}

// NewAdminWalletRepository creates a new AdminWalletRepository.
func NewAdminWalletRepository(db *sqlx.DB) repository.AdminWalletRepository {
	return &AdminWalletRepository{}
}

// CreateAdminWallet inserts a new admin wallet using the provided DBExecutor.
func (r *AdminWalletRepository) CreateAdminWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.AdminWallet) error {
	query := `INSERT INTO admin_wallets (user_id, total_credit, total_debit, balance, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		wallet.UserID,
		wallet.TotalCredit,
		wallet.TotalDebit,
		wallet.Balance,
		wallet.UpdatedAt,
	).Scan(&wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to create admin wallet: %w", err)
	}
	return nil
}

// GetAdminWalletByUserID retrieves the admin wallet for a user using the provided DBExecutor.
func (r *AdminWalletRepository) GetAdminWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.AdminWallet, error) {
	var wallet domain.AdminWallet
	query := `SELECT ` + adminWalletColumns + ` FROM admin_wallets WHERE user_id = $1`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// GetAdminWalletByUserIDForUpdate retrieves the admin wallet for a user and
// locks its row for the duration of the surrounding transaction.
func (r *AdminWalletRepository) GetAdminWalletByUserIDForUpdate(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.AdminWallet, error) {
	var wallet domain.AdminWallet
	query := `SELECT ` + adminWalletColumns + ` FROM admin_wallets WHERE user_id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock admin wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

// UpdateAdminWalletTotals persists the running totals and recomputed balance.
func (r *AdminWalletRepository) UpdateAdminWalletTotals(ctx context.Context, q repository.DBExecutor, wallet *domain.AdminWallet) error {
	query := `UPDATE admin_wallets
              SET total_credit = $1, total_debit = $2, balance = $3, updated_at = $4
              WHERE id = $5`
	result, err := q.ExecContext(ctx, query,
		wallet.TotalCredit,
		wallet.TotalDebit,
		wallet.Balance,
		time.Now().UTC(),
		wallet.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update admin wallet %d: %w", wallet.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating admin wallet %d: %w", wallet.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating admin wallet %d, wallet might not exist", wallet.ID)
	}
	return nil
}

// EntryExists reports whether an entry already exists for (admin wallet, event).
func (r *AdminWalletRepository) EntryExists(ctx context.Context, q repository.DBExecutor, adminWalletID int64, eventID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
                SELECT 1 FROM admin_wallet_entries
                WHERE admin_wallet_id = $1 AND event_id = $2
              )`
	err := q.GetContext(ctx, &exists, query, adminWalletID, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to check admin wallet entry existence: %w", err)
	}
	return exists, nil
}

// CreateEntry records one approved event on the mirror.
func (r *AdminWalletRepository) CreateEntry(ctx context.Context, q repository.DBExecutor, entry *domain.AdminWalletEntry) error {
	query := `INSERT INTO admin_wallet_entries (admin_wallet_id, event_id, amount, entry_type, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		entry.AdminWalletID,
		entry.EventID,
		entry.Amount,
		entry.EntryType,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create admin wallet entry: %w", err)
	}
	return nil
}
