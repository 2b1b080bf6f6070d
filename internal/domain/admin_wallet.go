// internal/domain/admin_wallet.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// AdminEntryType classifies an admin wallet entry.
type AdminEntryType string

const (
	AdminEntryCredit AdminEntryType = "credit"
	AdminEntryDebit  AdminEntryType = "debit"
)

// AdminWallet is the platform-side accounting mirror for one user. It records
// the platform's credit/debit exposure per approved event and never affects
// the user's spendable balance.
type AdminWallet struct {
	ID          int64           `db:"id" json:"id"`
	UserID      int64           `db:"user_id" json:"user_id"`
	TotalCredit decimal.Decimal `db:"total_credit" json:"total_credit"`
	TotalDebit  decimal.Decimal `db:"total_debit" json:"total_debit"`
	Balance     decimal.Decimal `db:"balance" json:"balance"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// RecalcBalance recomputes the mirror balance as total_credit - total_debit.
func (w *AdminWallet) RecalcBalance() {
	w.Balance = w.TotalCredit.Sub(w.TotalDebit)
}

// AdminWalletEntry records one approved event on the mirror. At most one
// entry exists per (admin wallet, event) pair.
type AdminWalletEntry struct {
	ID            int64           `db:"id" json:"id"`
	AdminWalletID int64           `db:"admin_wallet_id" json:"admin_wallet_id"`
	EventID       uuid.UUID       `db:"event_id" json:"event_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	EntryType     AdminEntryType  `db:"entry_type" json:"entry_type"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
