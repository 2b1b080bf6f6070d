// internal/domain/group.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// ROILockPeriod is how long a membership's one-time return stays locked
// after joining.
const ROILockPeriod = 365 * 24 * time.Hour

// Group is a fixed-capacity pooled-contribution arrangement. Joining costs
// the first configured amount in priority order daily > monthly > yearly.
type Group struct {
	ID             int64            `db:"id" json:"id"`
	Name           string           `db:"name" json:"name"`
	DailyAmount    *decimal.Decimal `db:"daily_amount" json:"daily_amount"`
	MonthlyAmount  *decimal.Decimal `db:"monthly_amount" json:"monthly_amount"`
	YearlyAmount   *decimal.Decimal `db:"yearly_amount" json:"yearly_amount"`
	ROIPercent     decimal.Decimal  `db:"roi_percent" json:"roi_percent"`
	DurationMonths int              `db:"duration_months" json:"duration_months"`
	TotalSlots     int              `db:"total_slots" json:"total_slots"`
	FilledSlots    int              `db:"filled_slots" json:"filled_slots"`
	IsActive       bool             `db:"is_active" json:"is_active"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// JoinAmount returns the amount a new member pays and the plan label it was
// taken from. Priority: daily > monthly > yearly. ok is false when no amount
// is configured.
func (g *Group) JoinAmount() (amount decimal.Decimal, plan string, ok bool) {
	switch {
	case g.DailyAmount != nil && g.DailyAmount.IsPositive():
		return *g.DailyAmount, "daily", true
	case g.MonthlyAmount != nil && g.MonthlyAmount.IsPositive():
		return *g.MonthlyAmount, "monthly", true
	case g.YearlyAmount != nil && g.YearlyAmount.IsPositive():
		return *g.YearlyAmount, "yearly", true
	}
	return decimal.Zero, "", false
}

// SlotsAvailable returns the number of unreserved slots.
func (g *Group) SlotsAvailable() int {
	return g.TotalSlots - g.FilledSlots
}

// GroupMembership is one user's stake in a group. Created when a slot is
// reserved; mutated by settled investment/withdrawal events and once by the
// ROI pass; deactivated, never deleted. A non-zero ROIEarned is itself the
// "already credited" guard.
type GroupMembership struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	GroupID       int64           `db:"group_id" json:"group_id"`
	TotalInvested decimal.Decimal `db:"total_invested" json:"total_invested"`
	ROIEarned     decimal.Decimal `db:"roi_earned" json:"roi_earned"`
	ROIUnlockDate time.Time       `db:"roi_unlock_date" json:"roi_unlock_date"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	JoinedAt      time.Time       `db:"joined_at" json:"joined_at"`
}

// NewGroupMembership creates an active membership with the join amount as
// the initial invested total and the ROI unlocking one lock period from now.
func NewGroupMembership(userID, groupID int64, joinAmount decimal.Decimal) *GroupMembership {
	now := time.Now().UTC()
	return &GroupMembership{
		ID:            uuid.New(),
		UserID:        userID,
		GroupID:       groupID,
		TotalInvested: joinAmount,
		ROIEarned:     decimal.Zero,
		ROIUnlockDate: now.Add(ROILockPeriod),
		IsActive:      true,
		JoinedAt:      now,
	}
}

// ROIAmount computes the one-time return for the invested total at the given
// group rate: total_invested * rate / 100.
func (m *GroupMembership) ROIAmount(roiPercent decimal.Decimal) decimal.Decimal {
	return m.TotalInvested.Mul(roiPercent).Div(decimal.NewFromInt(100))
}
