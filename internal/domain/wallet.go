// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// WalletStatus defines the lifecycle status of a wallet.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
)

// Wallet represents a user's central spendable balance. One wallet per user,
// created lazily on first reference; mutated only by the ledger service and
// never deleted.
type Wallet struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`             // Cached sum of all success ledger entries
	BonusBalance  decimal.Decimal `db:"bonus_balance" json:"bonus_balance"` // Non-ledger-backed credit, eligibility checks only
	TotalDeposit  decimal.Decimal `db:"total_deposit" json:"total_deposit"`
	TotalEarned   decimal.Decimal `db:"total_earned" json:"total_earned"`
	TotalWithdraw decimal.Decimal `db:"total_withdraw" json:"total_withdraw"`
	TotalPaid     decimal.Decimal `db:"total_paid" json:"total_paid"`
	Status        WalletStatus    `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a new Wallet instance for a user with a zero balance.
func NewWallet(userID int64) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:            uuid.New(),
		UserID:        userID,
		Balance:       decimal.Zero,
		BonusBalance:  decimal.Zero,
		TotalDeposit:  decimal.Zero,
		TotalEarned:   decimal.Zero,
		TotalWithdraw: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Status:        WalletStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsActive reports whether the wallet may be debited.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}

// AvailableBalance is the amount considered for group-join eligibility:
// ledger balance plus bonus balance. The bonus part is never debited.
func (w *Wallet) AvailableBalance() decimal.Decimal {
	return w.Balance.Add(w.BonusBalance)
}
