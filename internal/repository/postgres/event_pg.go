// internal/repository/postgres/event_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/repository"
	"fundpool-ledger/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const eventColumns = `id, user_id, membership_id, event_type, amount, status, synced, admin_note, created_at, processed_at`

// EventRepository implements repository.EventRepository for PostgreSQL.
type EventRepository struct {
	// No longer holds *sqlx.DB as methods receive DBExecutor directly
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *sqlx.DB) repository.EventRepository {
	return &EventRepository{}
}

// CreateEvent inserts a new pending approval event using the provided DBExecutor.
func (r *EventRepository) CreateEvent(ctx context.Context, q repository.DBExecutor, event *domain.ApprovalEvent) error {
	query := `INSERT INTO approval_events (` + eventColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := q.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.MembershipID,
		event.Type,
		event.Amount,
		event.Status,
		event.Synced,
		event.AdminNote,
		event.CreatedAt,
		event.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create approval event: %w", err)
	}
	return nil
}

// GetEventByID retrieves an approval event by its ID using the provided DBExecutor.
func (r *EventRepository) GetEventByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.ApprovalEvent, error) {
	var event domain.ApprovalEvent
	query := `SELECT ` + eventColumns + ` FROM approval_events WHERE id = $1`
	err := q.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get approval event %s: %w", id, err)
	}
	return &event, nil
}

// GetEventByIDForUpdate retrieves an approval event by ID and locks its row
// for the duration of the surrounding transaction.
func (r *EventRepository) GetEventByIDForUpdate(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.ApprovalEvent, error) {
	var event domain.ApprovalEvent
	query := `SELECT ` + eventColumns + ` FROM approval_events WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &event, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock approval event %s: %w", id, err)
	}
	return &event, nil
}

// UpdateEventDecision records the pending -> approved/rejected transition.
func (r *EventRepository) UpdateEventDecision(ctx context.Context, q repository.DBExecutor, id uuid.UUID, status domain.EventStatus, adminNote string, processedAt time.Time) error {
	query := `UPDATE approval_events
              SET status = $1, admin_note = $2, processed_at = $3
              WHERE id = $4`
	result, err := q.ExecContext(ctx, query, status, adminNote, processedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update decision for event %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after deciding event %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

// MarkEventSynced flags an event as applied to the ledger.
func (r *EventRepository) MarkEventSynced(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	query := `UPDATE approval_events SET synced = TRUE WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark event %s synced: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after marking event %s synced: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
