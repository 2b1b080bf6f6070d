// internal/repository/group_repo.go
package repository

import (
	"context"

	"fundpool-ledger/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupRepository defines the interface for group data operations.
type GroupRepository interface {
	// CreateGroup adds a new group.
	CreateGroup(ctx context.Context, q DBExecutor, group *domain.Group) error
	// GetGroupByID retrieves a group by its ID.
	GetGroupByID(ctx context.Context, q DBExecutor, id int64) (*domain.Group, error)
	// GetGroupByIDForUpdate retrieves an active group by ID with a row lock
	// (FOR UPDATE), serializing concurrent joins. Must run inside a transaction.
	GetGroupByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Group, error)
	// ListActiveGroups retrieves all active groups.
	ListActiveGroups(ctx context.Context, q DBExecutor) ([]domain.Group, error)
	// IncrementFilledSlots reserves one slot. Callers must hold the row lock.
	IncrementFilledSlots(ctx context.Context, q DBExecutor, id int64) error
}

// MembershipRepository defines the interface for group membership data operations.
type MembershipRepository interface {
	// CreateMembership adds a new membership.
	CreateMembership(ctx context.Context, q DBExecutor, membership *domain.GroupMembership) error
	// GetMembershipByID retrieves a membership by its ID.
	GetMembershipByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.GroupMembership, error)
	// GetMembershipByIDForUpdate retrieves a membership by ID with a row lock.
	GetMembershipByIDForUpdate(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.GroupMembership, error)
	// GetMembershipByUserAndGroup retrieves a user's active membership in a group.
	GetMembershipByUserAndGroup(ctx context.Context, q DBExecutor, userID, groupID int64) (*domain.GroupMembership, error)
	// ActiveMembershipExists reports whether the user already holds an active
	// membership in the group.
	ActiveMembershipExists(ctx context.Context, q DBExecutor, userID, groupID int64) (bool, error)
	// ListActiveMemberships retrieves all active memberships, for the ROI pass.
	ListActiveMemberships(ctx context.Context, q DBExecutor) ([]domain.GroupMembership, error)
	// SetTotalInvested overwrites the running invested total. Callers must
	// hold the row lock.
	SetTotalInvested(ctx context.Context, q DBExecutor, id uuid.UUID, total decimal.Decimal) error
	// SetROIEarned records the one-time credited return. Callers must hold
	// the row lock.
	SetROIEarned(ctx context.Context, q DBExecutor, id uuid.UUID, amount decimal.Decimal) error
}
