// internal/service/group_service.go
package service

import (
	"context"
	"fmt"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/internal/util"
	"fundpool-ledger/pkg/db"

	"github.com/shopspring/decimal"
)

// JoinResult describes a successful group join.
type JoinResult struct {
	Membership     *domain.GroupMembership
	AmountDeducted decimal.Decimal
	Plan           string // daily | monthly | yearly
}

// GroupReturn is the projected return for a group or membership.
type GroupReturn struct {
	TotalInvested decimal.Decimal `json:"total_invested"`
	ROIAmount     decimal.Decimal `json:"roi_amount"`
	TotalReturn   decimal.Decimal `json:"total_return"`
}

// GroupService serializes slot reservation in fixed-capacity groups and
// exposes group read models.
type GroupService interface {
	// Join reserves one slot and pays the join amount atomically: either the
	// slot is reserved, the fee is paid and the membership exists, or none
	// of it happened.
	Join(ctx context.Context, userID, groupID int64) (*JoinResult, error)
	// ListGroups returns all active groups with their projected returns.
	ListGroups(ctx context.Context) ([]domain.Group, []GroupReturn, error)
	// MembershipReturn projects the return on what the user has actually
	// invested in a group.
	MembershipReturn(ctx context.Context, userID, groupID int64) (*GroupReturn, error)
}

// groupService implements the GroupService interface.
type groupService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	groupRepo  repository.GroupRepository
	memberRepo repository.MembershipRepository
	ledger     LedgerService
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewGroupService creates a new instance of GroupService.
func NewGroupService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	ledger LedgerService,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) GroupService {
	return &groupService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		ledger:     ledger,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// Join runs the whole reservation protocol inside one transaction with the
// group row locked: capacity check, duplicate-membership check, join amount
// resolution, eligibility check against balance plus bonus, debit with a
// unique per-join idempotency key, membership creation, slot increment.
func (s *groupService) Join(ctx context.Context, userID, groupID int64) (*JoinResult, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("join group: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("join group: transaction controller does not implement DBExecutor")
	}

	group, err := s.groupRepo.GetGroupByIDForUpdate(ctx, txExecutor, groupID)
	if err != nil {
		return nil, fmt.Errorf("join group: failed to lock group %d: %w", groupID, err)
	}

	if group.FilledSlots >= group.TotalSlots {
		return nil, util.ErrCapacityExceeded
	}

	exists, err := s.memberRepo.ActiveMembershipExists(ctx, txExecutor, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("join group: failed to check existing membership: %w", err)
	}
	if exists {
		return nil, util.ErrAlreadyMember
	}

	joinAmount, plan, ok := group.JoinAmount()
	if !ok {
		return nil, util.ErrNoJoinAmountConfigured
	}

	wallet, err := s.ledger.GetOrCreateWalletTx(ctx, txExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("join group: %w", err)
	}

	// Bonus balance counts toward eligibility but is never debited.
	available := wallet.AvailableBalance()
	if available.LessThan(joinAmount) {
		return nil, &util.InsufficientFundsError{Required: joinAmount, Available: available}
	}

	membership := domain.NewGroupMembership(userID, groupID, joinAmount)
	key := "group-join-" + membership.ID.String()

	if _, err := s.ledger.DebitTx(ctx, txExecutor, wallet, joinAmount,
		domain.EntryKindGroupInvestment, domain.EntrySourceSystem, &key,
		fmt.Sprintf("Joined group (%s): %s", plan, group.Name)); err != nil {
		return nil, fmt.Errorf("join group: failed to debit join amount: %w", err)
	}

	if err := s.memberRepo.CreateMembership(ctx, txExecutor, membership); err != nil {
		return nil, fmt.Errorf("join group: failed to create membership: %w", err)
	}

	if err := s.groupRepo.IncrementFilledSlots(ctx, txExecutor, groupID); err != nil {
		return nil, fmt.Errorf("join group: failed to reserve slot: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("join group: failed to commit transaction: %w", err)
	}

	return &JoinResult{
		Membership:     membership,
		AmountDeducted: joinAmount,
		Plan:           plan,
	}, nil
}

// ListGroups returns all active groups and, index-aligned, their projected
// returns computed from the yearly amount at the group rate.
func (s *groupService) ListGroups(ctx context.Context) ([]domain.Group, []GroupReturn, error) {
	groups, err := s.groupRepo.ListActiveGroups(ctx, s.dbExecutor)
	if err != nil {
		return nil, nil, fmt.Errorf("list groups: %w", err)
	}

	returns := make([]GroupReturn, len(groups))
	for i := range groups {
		returns[i] = projectedReturn(&groups[i])
	}
	return groups, returns, nil
}

// MembershipReturn projects the return on the user's actual invested total,
// not on the group's preset amounts.
func (s *groupService) MembershipReturn(ctx context.Context, userID, groupID int64) (*GroupReturn, error) {
	membership, err := s.memberRepo.GetMembershipByUserAndGroup(ctx, s.dbExecutor, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("membership return: %w", err)
	}

	group, err := s.groupRepo.GetGroupByID(ctx, s.dbExecutor, groupID)
	if err != nil {
		return nil, fmt.Errorf("membership return: %w", err)
	}

	roi := membership.ROIAmount(group.ROIPercent)
	return &GroupReturn{
		TotalInvested: membership.TotalInvested,
		ROIAmount:     roi,
		TotalReturn:   membership.TotalInvested.Add(roi),
	}, nil
}

// projectedReturn computes the headline figures shown on a group listing,
// based on the yearly amount.
func projectedReturn(group *domain.Group) GroupReturn {
	if group.YearlyAmount == nil || !group.YearlyAmount.IsPositive() {
		return GroupReturn{
			TotalInvested: decimal.Zero,
			ROIAmount:     decimal.Zero,
			TotalReturn:   decimal.Zero,
		}
	}

	invested := *group.YearlyAmount
	roi := invested.Mul(group.ROIPercent).Div(decimal.NewFromInt(100))
	return GroupReturn{
		TotalInvested: invested,
		ROIAmount:     roi,
		TotalReturn:   invested.Add(roi),
	}
}
