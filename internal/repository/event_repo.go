// internal/repository/event_repo.go
package repository

import (
	"context"
	"time"

	"fundpool-ledger/internal/domain"

	"github.com/google/uuid"
)

// EventRepository defines the interface for approval event data operations.
type EventRepository interface {
	// CreateEvent adds a new pending approval event.
	CreateEvent(ctx context.Context, q DBExecutor, event *domain.ApprovalEvent) error
	// GetEventByID retrieves an event by its ID.
	GetEventByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.ApprovalEvent, error)
	// GetEventByIDForUpdate retrieves an event by ID with a row lock
	// (FOR UPDATE). Must run inside a transaction.
	GetEventByIDForUpdate(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.ApprovalEvent, error)
	// UpdateEventDecision records the exactly-once pending -> approved/rejected
	// transition.
	UpdateEventDecision(ctx context.Context, q DBExecutor, id uuid.UUID, status domain.EventStatus, adminNote string, processedAt time.Time) error
	// MarkEventSynced flags an event as applied to the ledger. Once set it is
	// never cleared.
	MarkEventSynced(ctx context.Context, q DBExecutor, id uuid.UUID) error
}
