// internal/service/roi_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/pkg/db"

	"github.com/shopspring/decimal"
)

// ROIService is the periodic eligibility pass that credits each unlocked
// membership's one-time return exactly once. The pass is idempotent and safe
// to run on any cadence: memberships already credited are always skipped.
type ROIService interface {
	// RunOnce walks all active memberships and credits every eligible one.
	// Returns the number of memberships credited in this pass.
	RunOnce(ctx context.Context) (int, error)
	// Run invokes RunOnce on the given interval until the context ends.
	Run(ctx context.Context, interval time.Duration)
}

// roiService implements the ROIService interface.
type roiService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	groupRepo  repository.GroupRepository
	memberRepo repository.MembershipRepository
	ledger     LedgerService
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
	logger     *slog.Logger
	now        func() time.Time // Injected clock for tests
}

// NewROIService creates a new instance of ROIService.
func NewROIService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	groupRepo repository.GroupRepository,
	memberRepo repository.MembershipRepository,
	ledger LedgerService,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) ROIService {
	return &roiService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		ledger:     ledger,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce lists active memberships outside any transaction, then credits
// each eligible one in its own transaction. A failure on one membership is
// logged and does not stop the pass.
func (s *roiService) RunOnce(ctx context.Context) (int, error) {
	memberships, err := s.memberRepo.ListActiveMemberships(ctx, s.dbExecutor)
	if err != nil {
		return 0, fmt.Errorf("roi pass: failed to list memberships: %w", err)
	}

	credited := 0
	for i := range memberships {
		applied, err := s.creditIfEligible(ctx, &memberships[i])
		if err != nil {
			s.logger.Error("roi credit failed",
				"membership_id", memberships[i].ID, "error", err)
			continue
		}
		if applied {
			credited++
		}
	}

	s.logger.Info("roi pass finished",
		"memberships", len(memberships), "credited", credited)
	return credited, nil
}

// creditIfEligible re-checks eligibility under the membership row lock and
// credits the return atomically with recording it on the membership.
func (s *roiService) creditIfEligible(ctx context.Context, candidate *domain.GroupMembership) (bool, error) {
	// Cheap pre-checks on the unlocked snapshot avoid opening transactions
	// for memberships that cannot be eligible.
	if candidate.ROIEarned.IsPositive() || s.now().Before(candidate.ROIUnlockDate) {
		return false, nil
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return false, fmt.Errorf("transaction controller does not implement DBExecutor")
	}

	membership, err := s.memberRepo.GetMembershipByIDForUpdate(ctx, txExecutor, candidate.ID)
	if err != nil {
		return false, fmt.Errorf("failed to lock membership %s: %w", candidate.ID, err)
	}

	// Already credited: a non-zero roi_earned is the guard.
	if membership.ROIEarned.IsPositive() {
		return false, nil
	}
	if s.now().Before(membership.ROIUnlockDate) {
		return false, nil
	}
	if membership.TotalInvested.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}

	group, err := s.groupRepo.GetGroupByID(ctx, txExecutor, membership.GroupID)
	if err != nil {
		return false, fmt.Errorf("failed to get group %d: %w", membership.GroupID, err)
	}
	if group.ROIPercent.LessThanOrEqual(decimal.Zero) {
		return false, nil
	}

	roiAmount := membership.ROIAmount(group.ROIPercent)

	wallet, err := s.ledger.GetOrCreateWalletTx(ctx, txExecutor, membership.UserID)
	if err != nil {
		return false, err
	}

	key := "group-roi-" + membership.ID.String()
	if _, err := s.ledger.CreditTx(ctx, txExecutor, wallet, roiAmount,
		domain.EntryKindEarned, domain.EntrySourceSystem, &key,
		fmt.Sprintf("ROI credited for group %s", group.Name)); err != nil {
		return false, fmt.Errorf("failed to credit ROI: %w", err)
	}

	if err := s.memberRepo.SetROIEarned(ctx, txExecutor, membership.ID, roiAmount); err != nil {
		return false, fmt.Errorf("failed to record ROI on membership: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// Run invokes RunOnce on the given interval until ctx is cancelled.
func (s *roiService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("roi scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("roi pass failed", "error", err)
			}
		}
	}
}
