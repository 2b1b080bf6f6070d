// internal/repository/postgres/group_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const groupColumns = `id, name, daily_amount, monthly_amount, yearly_amount, roi_percent, duration_months, total_slots, filled_slots, is_active, created_at`

const membershipColumns = `id, user_id, group_id, total_invested, roi_earned, roi_unlock_date, is_active, joined_at`

// GroupRepository implements repository.GroupRepository for PostgreSQL.
type GroupRepository struct {
	// No longer holds *sqlx.DB as methods receive DBExecutor directly
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *sqlx.DB) repository.GroupRepository {
	return &GroupRepository{}
}

// CreateGroup inserts a new group using the provided DBExecutor.
func (r *GroupRepository) CreateGroup(ctx context.Context, q repository.DBExecutor, group *domain.Group) error {
	query := `INSERT INTO groups (name, daily_amount, monthly_amount, yearly_amount, roi_percent, duration_months, total_slots, filled_slots, is_active, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		group.Name,
		group.DailyAmount,
		group.MonthlyAmount,
		group.YearlyAmount,
		group.ROIPercent,
		group.DurationMonths,
		group.TotalSlots,
		group.FilledSlots,
		group.IsActive,
		group.CreatedAt,
	).Scan(&group.ID)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// GetGroupByID retrieves a group by its ID using the provided DBExecutor.
func (r *GroupRepository) GetGroupByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	var group domain.Group
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	err := q.GetContext(ctx, &group, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group %d: %w", id, err)
	}
	return &group, nil
}

// GetGroupByIDForUpdate retrieves an active group by ID and locks its row,
// serializing concurrent joins against the same group.
func (r *GroupRepository) GetGroupByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Group, error) {
	var group domain.Group
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1 AND is_active = TRUE FOR UPDATE`
	err := q.GetContext(ctx, &group, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock group %d: %w", id, err)
	}
	return &group, nil
}

// ListActiveGroups retrieves all active groups using the provided DBExecutor.
func (r *GroupRepository) ListActiveGroups(ctx context.Context, q repository.DBExecutor) ([]domain.Group, error) {
	groups := []domain.Group{}
	query := `SELECT ` + groupColumns + ` FROM groups WHERE is_active = TRUE ORDER BY id`
	err := q.SelectContext(ctx, &groups, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active groups: %w", err)
	}
	return groups, nil
}

// IncrementFilledSlots reserves one slot on a group.
func (r *GroupRepository) IncrementFilledSlots(ctx context.Context, q repository.DBExecutor, id int64) error {
	query := `UPDATE groups SET filled_slots = filled_slots + 1 WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment filled slots for group %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after incrementing slots for group %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// MembershipRepository implements repository.MembershipRepository for PostgreSQL.
type MembershipRepository struct {
	// No longer holds *sqlx.DB as methods receive DBExecutor directly
}

// NewMembershipRepository creates a new MembershipRepository.
func NewMembershipRepository(db *sqlx.DB) repository.MembershipRepository {
	return &MembershipRepository{}
}

// CreateMembership inserts a new group membership using the provided DBExecutor.
func (r *MembershipRepository) CreateMembership(ctx context.Context, q repository.DBExecutor, membership *domain.GroupMembership) error {
	query := `INSERT INTO group_memberships (` + membershipColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.ExecContext(ctx, query,
		membership.ID,
		membership.UserID,
		membership.GroupID,
		membership.TotalInvested,
		membership.ROIEarned,
		membership.ROIUnlockDate,
		membership.IsActive,
		membership.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group membership: %w", err)
	}
	return nil
}

// GetMembershipByID retrieves a membership by its ID using the provided DBExecutor.
func (r *MembershipRepository) GetMembershipByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.GroupMembership, error) {
	var membership domain.GroupMembership
	query := `SELECT ` + membershipColumns + ` FROM group_memberships WHERE id = $1`
	err := q.GetContext(ctx, &membership, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership %s: %w", id, err)
	}
	return &membership, nil
}

// GetMembershipByIDForUpdate retrieves a membership by ID and locks its row
// for the duration of the surrounding transaction.
func (r *MembershipRepository) GetMembershipByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.GroupMembership, error) {
	var membership domain.GroupMembership
	query := `SELECT ` + membershipColumns + ` FROM group_memberships WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &membership, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock membership %s: %w", id, err)
	}
	return &membership, nil
}

// GetMembershipByUserAndGroup retrieves a user's active membership in a group.
func (r *MembershipRepository) GetMembershipByUserAndGroup(ctx context.Context, q repository.DBExecutor, userID, groupID int64) (*domain.GroupMembership, error) {
	var membership domain.GroupMembership
	query := `SELECT ` + membershipColumns + ` FROM group_memberships WHERE user_id = $1 AND group_id = $2 AND is_active = TRUE`
	err := q.GetContext(ctx, &membership, query, userID, groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get membership for user %d in group %d: %w", userID, groupID, err)
	}
	return &membership, nil
}

// ActiveMembershipExists reports whether the user already holds an active
// membership in the group.
func (r *MembershipRepository) ActiveMembershipExists(ctx context.Context, q repository.DBExecutor, userID, groupID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
                SELECT 1 FROM group_memberships
                WHERE user_id = $1 AND group_id = $2 AND is_active = TRUE
              )`
	err := q.GetContext(ctx, &exists, query, userID, groupID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership existence for user %d in group %d: %w", userID, groupID, err)
	}
	return exists, nil
}

// ListActiveMemberships retrieves all active memberships for the ROI pass.
func (r *MembershipRepository) ListActiveMemberships(ctx context.Context, q repository.DBExecutor) ([]domain.GroupMembership, error) {
	memberships := []domain.GroupMembership{}
	query := `SELECT ` + membershipColumns + ` FROM group_memberships WHERE is_active = TRUE ORDER BY joined_at`
	err := q.SelectContext(ctx, &memberships, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active memberships: %w", err)
	}
	return memberships, nil
}

// SetTotalInvested overwrites the running invested total of a membership.
func (r *MembershipRepository) SetTotalInvested(ctx context.Context, q repository.DBExecutor, id uuid.UUID, total decimal.Decimal) error {
	query := `UPDATE group_memberships SET total_invested = $1 WHERE id = $2`
	result, err := q.ExecContext(ctx, query, total, id)
	if err != nil {
		return fmt.Errorf("failed to set invested total for membership %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating membership %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// SetROIEarned records the one-time credited return on a membership.
func (r *MembershipRepository) SetROIEarned(ctx context.Context, q repository.DBExecutor, id uuid.UUID, amount decimal.Decimal) error {
	query := `UPDATE group_memberships SET roi_earned = $1 WHERE id = $2`
	result, err := q.ExecContext(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to set ROI earned for membership %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating membership %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
