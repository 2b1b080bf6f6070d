// internal/domain/event.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// EventType defines the financial meaning of an approval event.
type EventType string

const (
	EventTypeDeposit         EventType = "deposit"
	EventTypeWithdraw        EventType = "withdraw"
	EventTypeGroupInvestment EventType = "group_investment"
	EventTypeGroupWithdrawal EventType = "group_withdrawal"
)

// EventStatus defines the admin-decision state of an approval event.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// ApprovalEvent is a user-initiated financial request that an administrator
// decides exactly once. Once approved it becomes a candidate for settlement;
// Synced records whether it has already been applied to the ledger and stays
// true forever afterwards, guarding against re-application on redelivery.
type ApprovalEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       int64           `db:"user_id" json:"user_id"`
	MembershipID *uuid.UUID      `db:"membership_id" json:"membership_id"` // Set for group investment/withdrawal events
	Type         EventType       `db:"event_type" json:"event_type"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Status       EventStatus     `db:"status" json:"status"`
	Synced       bool            `db:"synced" json:"synced"`
	AdminNote    string          `db:"admin_note" json:"admin_note"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at"`
}

// NewApprovalEvent creates a pending approval event.
func NewApprovalEvent(userID int64, membershipID *uuid.UUID, eventType EventType, amount decimal.Decimal) *ApprovalEvent {
	return &ApprovalEvent{
		ID:           uuid.New(),
		UserID:       userID,
		MembershipID: membershipID,
		Type:         eventType,
		Amount:       amount,
		Status:       EventStatusPending,
		Synced:       false,
		CreatedAt:    time.Now().UTC(),
	}
}
