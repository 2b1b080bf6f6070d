// internal/repository/admin_wallet_repo.go
package repository

import (
	"context"

	"fundpool-ledger/internal/domain"

	"github.com/google/uuid"
)

// AdminWalletRepository defines the interface for the platform-side
// accounting mirror.
type AdminWalletRepository interface {
	// CreateAdminWallet adds a new admin wallet for a user.
	CreateAdminWallet(ctx context.Context, q DBExecutor, wallet *domain.AdminWallet) error
	// GetAdminWalletByUserID retrieves the admin wallet for a user.
	GetAdminWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.AdminWallet, error)
	// GetAdminWalletByUserIDForUpdate retrieves the admin wallet for a user
	// with a row lock. Must run inside a transaction.
	GetAdminWalletByUserIDForUpdate(ctx context.Context, q DBExecutor, userID int64) (*domain.AdminWallet, error)
	// UpdateAdminWalletTotals persists the running totals and recomputed balance.
	UpdateAdminWalletTotals(ctx context.Context, q DBExecutor, wallet *domain.AdminWallet) error
	// EntryExists reports whether an entry already exists for
	// (admin wallet, event).
	EntryExists(ctx context.Context, q DBExecutor, adminWalletID int64, eventID uuid.UUID) (bool, error)
	// CreateEntry records one approved event on the mirror.
	CreateEntry(ctx context.Context, q DBExecutor, entry *domain.AdminWalletEntry) error
}
