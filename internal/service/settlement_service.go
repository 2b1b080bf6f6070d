// internal/service/settlement_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/internal/util"
	"fundpool-ledger/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementService turns approved external events into ledger mutations,
// exactly once each, however many times the approval notification is
// delivered.
type SettlementService interface {
	// CreateEvent records a pending approval event initiated by a user.
	CreateEvent(ctx context.Context, userID int64, membershipID *uuid.UUID, eventType domain.EventType, amount decimal.Decimal) (*domain.ApprovalEvent, error)
	// Decide performs the exactly-once pending -> approved/rejected
	// transition and, on approval, dispatches settlement.
	Decide(ctx context.Context, eventID uuid.UUID, approve bool, adminNote string) (*domain.ApprovalEvent, error)
	// ApplyEvent settles an approved event. Safe to call any number of
	// times; returns true only on the call that actually applied it.
	ApplyEvent(ctx context.Context, eventID uuid.UUID) (bool, error)
	// GetEvent retrieves an event by ID.
	GetEvent(ctx context.Context, eventID uuid.UUID) (*domain.ApprovalEvent, error)
}

// settlementService implements the SettlementService interface.
type settlementService struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	eventRepo  repository.EventRepository
	memberRepo repository.MembershipRepository
	ledger     LedgerService
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
	logger     *slog.Logger
}

// NewSettlementService creates a new instance of SettlementService.
func NewSettlementService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	eventRepo repository.EventRepository,
	memberRepo repository.MembershipRepository,
	ledger LedgerService,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) SettlementService {
	return &settlementService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		eventRepo:  eventRepo,
		memberRepo: memberRepo,
		ledger:     ledger,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
		logger:     logger,
	}
}

// CreateEvent records a pending approval event.
func (s *settlementService) CreateEvent(ctx context.Context, userID int64, membershipID *uuid.UUID, eventType domain.EventType, amount decimal.Decimal) (*domain.ApprovalEvent, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create event: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create event: transaction controller does not implement DBExecutor")
	}

	event := domain.NewApprovalEvent(userID, membershipID, eventType, amount)
	if err := s.eventRepo.CreateEvent(ctx, txExecutor, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create event: failed to commit transaction: %w", err)
	}

	return event, nil
}

// Decide transitions a pending event to approved or rejected, exactly once.
// Approval explicitly dispatches settlement; the settlement itself runs in
// its own transaction so a settlement failure never undoes the decision,
// it just leaves the event unsynced for a later retry.
func (s *settlementService) Decide(ctx context.Context, eventID uuid.UUID, approve bool, adminNote string) (*domain.ApprovalEvent, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("decide: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("decide: transaction controller does not implement DBExecutor")
	}

	event, err := s.eventRepo.GetEventByIDForUpdate(ctx, txExecutor, eventID)
	if err != nil {
		return nil, fmt.Errorf("decide: failed to lock event %s: %w", eventID, err)
	}

	if event.Status != domain.EventStatusPending {
		return nil, util.ErrEventAlreadyDecided
	}

	status := domain.EventStatusRejected
	if approve {
		status = domain.EventStatusApproved
	}
	now := time.Now().UTC()
	if err := s.eventRepo.UpdateEventDecision(ctx, txExecutor, eventID, status, adminNote, now); err != nil {
		return nil, fmt.Errorf("decide: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("decide: failed to commit transaction: %w", err)
	}

	event.Status = status
	event.AdminNote = adminNote
	event.ProcessedAt = &now

	if approve {
		if _, err := s.ApplyEvent(ctx, eventID); err != nil {
			// Decision is committed; the event stays unsynced and the next
			// delivery retries cleanly.
			s.logger.Error("settlement failed after approval",
				"event_id", eventID, "error", err)
		}
	}

	return event, nil
}

// ApplyEvent settles an approved event: maps its type to a ledger operation
// keyed by the event ID, adjusts the linked membership for group events, and
// marks the event synced — all in one transaction.
func (s *settlementService) ApplyEvent(ctx context.Context, eventID uuid.UUID) (bool, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return false, fmt.Errorf("apply event: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return false, fmt.Errorf("apply event: transaction controller does not implement DBExecutor")
	}

	event, err := s.eventRepo.GetEventByIDForUpdate(ctx, txExecutor, eventID)
	if err != nil {
		return false, fmt.Errorf("apply event: failed to lock event %s: %w", eventID, err)
	}

	if event.Status != domain.EventStatusApproved {
		return false, nil
	}
	if event.Synced {
		// Already applied on a previous delivery.
		return false, nil
	}
	if event.Amount.LessThanOrEqual(decimal.Zero) {
		return false, util.ErrInvalidAmount
	}

	wallet, err := s.ledger.GetOrCreateWalletTx(ctx, txExecutor, event.UserID)
	if err != nil {
		return false, fmt.Errorf("apply event: %w", err)
	}

	key := event.ID.String()
	var result *LedgerResult

	switch {
	case event.Type == domain.EventTypeDeposit:
		result, err = s.ledger.CreditTx(ctx, txExecutor, wallet, event.Amount,
			domain.EntryKindDeposit, domain.EntrySourcePayment, &key, "Admin approved deposit")

	case event.Type == domain.EventTypeWithdraw:
		result, err = s.ledger.DebitTx(ctx, txExecutor, wallet, event.Amount,
			domain.EntryKindWithdraw, domain.EntrySourcePayment, &key, "Admin approved withdrawal")

	case event.Type == domain.EventTypeGroupInvestment && event.MembershipID != nil:
		result, err = s.ledger.DebitTx(ctx, txExecutor, wallet, event.Amount,
			domain.EntryKindGroupInvestment, domain.EntrySourceSystem, &key, "Group investment")
		if err == nil {
			err = s.adjustInvested(ctx, txExecutor, *event.MembershipID, event.Amount)
		}

	case event.Type == domain.EventTypeGroupWithdrawal && event.MembershipID != nil:
		// The credit is recorded with kind withdraw so it reads as a
		// withdrawal in the member's ledger history.
		result, err = s.ledger.CreditTx(ctx, txExecutor, wallet, event.Amount,
			domain.EntryKindWithdraw, domain.EntrySourceSystem, &key, "Group withdrawal approved")
		if err == nil {
			err = s.adjustInvested(ctx, txExecutor, *event.MembershipID, event.Amount.Neg())
		}

	default:
		result, err = s.ledger.DebitTx(ctx, txExecutor, wallet, event.Amount,
			domain.EntryKindPaid, domain.EntrySourceSystem, &key, "Platform usage payment")
	}
	if err != nil {
		return false, fmt.Errorf("apply event %s: %w", eventID, err)
	}

	// Mark synced even when the ledger reported "already applied": a previous
	// attempt wrote the entry but crashed before flagging the event.
	if err := s.eventRepo.MarkEventSynced(ctx, txExecutor, eventID); err != nil {
		return false, fmt.Errorf("apply event: failed to mark event %s synced: %w", eventID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return false, fmt.Errorf("apply event: failed to commit transaction: %w", err)
	}

	return result.Applied, nil
}

// adjustInvested moves the membership's running invested total by delta,
// holding its row lock. A result below zero means a withdrawal exceeded the
// tracked investment — a data inconsistency that is surfaced, not clamped.
func (s *settlementService) adjustInvested(ctx context.Context, q repository.DBExecutor, membershipID uuid.UUID, delta decimal.Decimal) error {
	membership, err := s.memberRepo.GetMembershipByIDForUpdate(ctx, q, membershipID)
	if err != nil {
		return fmt.Errorf("failed to lock membership %s: %w", membershipID, err)
	}

	total := membership.TotalInvested.Add(delta)
	if total.IsNegative() {
		s.logger.Error("group withdrawal exceeds tracked investment",
			"membership_id", membershipID,
			"total_invested", membership.TotalInvested.String(),
			"delta", delta.String())
		return util.ErrInvestedBelowZero
	}

	if err := s.memberRepo.SetTotalInvested(ctx, q, membershipID, total); err != nil {
		return fmt.Errorf("failed to update invested total for membership %s: %w", membershipID, err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (s *settlementService) GetEvent(ctx context.Context, eventID uuid.UUID) (*domain.ApprovalEvent, error) {
	event, err := s.eventRepo.GetEventByID(ctx, s.dbExecutor, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}
