// internal/repository/postgres/ledger_pg.go
package postgres

import (
	"context"
	"fmt"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements repository.LedgerRepository for PostgreSQL.
type LedgerRepository struct {
	// No longer holds *sqlx.DB as methods receive DBExecutor directly
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) repository.LedgerRepository {
	return &LedgerRepository{}
}

// CreateEntry appends a new ledger entry using the provided DBExecutor.
func (r *LedgerRepository) CreateEntry(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (id, wallet_id, amount, kind, source, status, idempotency_key, note, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		entry.ID,
		entry.WalletID,
		entry.Amount,
		entry.Kind,
		entry.Source,
		entry.Status,
		entry.IdempotencyKey,
		entry.Note,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// SuccessEntryExists reports whether a success entry already exists for
// (wallet, kind, idempotency key).
func (r *LedgerRepository) SuccessEntryExists(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, kind domain.EntryKind, idempotencyKey string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
                SELECT 1 FROM ledger_entries
                WHERE wallet_id = $1 AND kind = $2 AND idempotency_key = $3 AND status = 'success'
              )`
	err := q.GetContext(ctx, &exists, query, walletID, kind, idempotencyKey)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger entry existence for wallet %s: %w", walletID, err)
	}
	return exists, nil
}

// GetEntriesByWalletID retrieves a paginated list of ledger entries for a
// specific wallet, newest first.
// It performs two queries: one for the data and one for the total count.
func (r *LedgerRepository) GetEntriesByWalletID(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	entries := []domain.LedgerEntry{}

	// Query 1: Get the paginated entries
	query := `
		SELECT id, wallet_id, amount, kind, source, status, idempotency_key, note, created_at
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &entries, query, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries for wallet %s: %w", walletID, err)
	}

	// Query 2: Get the total count of entries for the wallet
	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM ledger_entries WHERE wallet_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, walletID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total ledger entry count for wallet %s: %w", walletID, err)
	}

	return entries, totalCount, nil
}

// SumSuccessAmounts returns the signed sum of all success entries for a
// wallet. Used for reconciliation against the cached balance.
func (r *LedgerRepository) SumSuccessAmounts(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE wallet_id = $1 AND status = 'success'`
	err := q.GetContext(ctx, &sum, query, walletID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger entries for wallet %s: %w", walletID, err)
	}
	return sum, nil
}
