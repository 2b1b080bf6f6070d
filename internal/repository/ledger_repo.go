// internal/repository/ledger_repo.go
package repository

import (
	"context"

	"fundpool-ledger/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository defines the interface for ledger entry data operations.
// Entries are append-only: there is no update or delete.
type LedgerRepository interface {
	// CreateEntry appends a new ledger entry using the provided DBExecutor.
	CreateEntry(ctx context.Context, q DBExecutor, entry *domain.LedgerEntry) error
	// SuccessEntryExists reports whether a success entry already exists for
	// (wallet, kind, idempotency key).
	SuccessEntryExists(ctx context.Context, q DBExecutor, walletID uuid.UUID, kind domain.EntryKind, idempotencyKey string) (bool, error)
	// GetEntriesByWalletID retrieves a page of entries for a wallet, newest
	// first, along with the total count.
	GetEntriesByWalletID(ctx context.Context, q DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int64, error)
	// SumSuccessAmounts returns the signed sum of all success entries for a
	// wallet. The wallet's cached balance must always equal this sum.
	SumSuccessAmounts(ctx context.Context, q DBExecutor, walletID uuid.UUID) (decimal.Decimal, error)
}
