// internal/domain/entry.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// EntryKind defines the kind of a ledger entry.
type EntryKind string

const (
	EntryKindDeposit         EntryKind = "deposit"
	EntryKindWithdraw        EntryKind = "withdraw"
	EntryKindEarned          EntryKind = "earned"
	EntryKindPaid            EntryKind = "paid"
	EntryKindGroupInvestment EntryKind = "group_investment"
	EntryKindInterest        EntryKind = "interest"
	EntryKindAdminAdjustment EntryKind = "admin_adjustment"
)

// ValidEntryKind reports whether k is one of the known entry kinds.
func ValidEntryKind(k EntryKind) bool {
	switch k {
	case EntryKindDeposit, EntryKindWithdraw, EntryKindEarned, EntryKindPaid,
		EntryKindGroupInvestment, EntryKindInterest, EntryKindAdminAdjustment:
		return true
	}
	return false
}

// EntrySource defines which actor originated a ledger entry.
type EntrySource string

const (
	EntrySourceSystem  EntrySource = "system"
	EntrySourceAdmin   EntrySource = "admin"
	EntrySourcePayment EntrySource = "payment"
)

// ValidEntrySource reports whether s is one of the known entry sources.
func ValidEntrySource(s EntrySource) bool {
	switch s {
	case EntrySourceSystem, EntrySourceAdmin, EntrySourcePayment:
		return true
	}
	return false
}

// EntryStatus defines the status of a ledger entry. Only success entries
// affect the wallet balance.
type EntryStatus string

const (
	EntryStatusPending EntryStatus = "pending"
	EntryStatusSuccess EntryStatus = "success"
	EntryStatusFailed  EntryStatus = "failed"
)

// LedgerEntry is an immutable record of one signed balance change.
// A positive amount is a credit, a negative amount a debit; the sign itself
// records the direction. For a given (wallet, kind, idempotency key) at most
// one entry may ever reach success.
type LedgerEntry struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	WalletID       uuid.UUID       `db:"wallet_id" json:"wallet_id"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Kind           EntryKind       `db:"kind" json:"kind"`
	Source         EntrySource     `db:"source" json:"source"`
	Status         EntryStatus     `db:"status" json:"status"`
	IdempotencyKey *string         `db:"idempotency_key" json:"idempotency_key"`
	Note           string          `db:"note" json:"note"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// NewLedgerEntry creates a success ledger entry with the given signed amount.
func NewLedgerEntry(
	walletID uuid.UUID,
	amount decimal.Decimal,
	kind EntryKind,
	source EntrySource,
	idempotencyKey *string,
	note string,
) *LedgerEntry {
	return &LedgerEntry{
		ID:             uuid.New(),
		WalletID:       walletID,
		Amount:         amount,
		Kind:           kind,
		Source:         source,
		Status:         EntryStatusSuccess,
		IdempotencyKey: idempotencyKey,
		Note:           note,
		CreatedAt:      time.Now().UTC(),
	}
}
