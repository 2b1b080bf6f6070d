// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"fundpool-ledger/internal/domain"

	"github.com/google/uuid"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet adds a new wallet to the database using the provided DBExecutor.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
	GetWalletByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Wallet, error)
	// GetWalletByIDForUpdate retrieves a wallet by ID with a row lock (FOR UPDATE),
	// serializing concurrent mutators of the same wallet. Must run inside a transaction.
	GetWalletByIDForUpdate(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Wallet, error)
	// GetWalletByUserID retrieves the wallet owned by a user.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// GetWalletByUserIDForUpdate retrieves the wallet owned by a user with a row lock.
	GetWalletByUserIDForUpdate(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// UpdateWalletTotals persists the wallet's cached balance and lifetime
	// aggregates. Callers must hold the row lock.
	UpdateWalletTotals(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
}
