// internal/api/handler/event.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/service"
	"fundpool-ledger/internal/util"
)

// EventHandler handles HTTP requests for approval events and the admin
// accounting mirror.
type EventHandler struct {
	settlement service.SettlementService
	adminBook  service.AdminBookService
	logger     *slog.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(settlement service.SettlementService, adminBook service.AdminBookService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		settlement: settlement,
		adminBook:  adminBook,
		logger:     logger,
	}
}

// CreateEventRequest represents the request body for event creation.
type CreateEventRequest struct {
	UserID       int64           `json:"user_id"`
	MembershipID *uuid.UUID      `json:"membership_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
}

// CreateEvent handles the create approval event request.
// POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	event, err := h.settlement.CreateEvent(r.Context(), req.UserID, req.MembershipID,
		domain.EventType(req.Type), req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, event)
}

// GetEvent handles the get event request.
// GET /events/{eventID}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	event, err := h.settlement.GetEvent(r.Context(), eventID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, event)
}

// DecideEventRequest represents the request body for an admin decision.
type DecideEventRequest struct {
	Approve   bool   `json:"approve"`
	AdminNote string `json:"admin_note"`
}

// DecideEvent handles the approve/reject decision on a pending event.
// POST /events/{eventID}/decide
func (h *EventHandler) DecideEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req DecideEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	event, err := h.settlement.Decide(r.Context(), eventID, req.Approve, req.AdminNote)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, event)
}

// SettleEvent retries the ledger application of an approved event.
// POST /events/{eventID}/settle
func (h *EventHandler) SettleEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	applied, err := h.settlement.ApplyEvent(r.Context(), eventID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"event_id": eventID,
		"applied":  applied,
	})
}

// RecordAdminEntry mirrors an event into the admin accounting book.
// POST /events/{eventID}/admin-record
func (h *EventHandler) RecordAdminEntry(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "eventID"))
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	recorded, err := h.adminBook.Record(r.Context(), eventID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"event_id": eventID,
		"recorded": recorded,
	})
}

// GetAdminBook handles the read of an admin accounting book.
// GET /admin-books/{userID}
func (h *EventHandler) GetAdminBook(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	book, err := h.adminBook.GetBook(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, book)
}
