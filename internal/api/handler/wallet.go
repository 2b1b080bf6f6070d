// internal/api/handler/wallet.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fundpool-ledger/internal/api/types"
	"fundpool-ledger/internal/domain"
	"fundpool-ledger/internal/service"
	"fundpool-ledger/internal/util" // For custom errors
)

// DefaultTimeout is the request timeout applied by the router middleware.
const DefaultTimeout = 30 * time.Second

// WalletHandler handles HTTP requests related to wallets and the ledger
// primitives.
type WalletHandler struct {
	service service.LedgerService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.LedgerService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	var insufficient *util.InsufficientFundsError

	switch {
	case util.IsError(err, util.ErrInvalidInput), util.IsError(err, util.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrWalletNotFound), util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case errors.As(err, &insufficient):
		respondWithJSON(w, logger, http.StatusPaymentRequired, map[string]interface{}{
			"error":     "Insufficient funds",
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
		return
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	case util.IsError(err, util.ErrWalletFrozen):
		statusCode = http.StatusForbidden
		message = "Wallet is frozen"
	case util.IsError(err, util.ErrCapacityExceeded):
		statusCode = http.StatusConflict
		message = "No slots available"
	case util.IsError(err, util.ErrAlreadyMember):
		statusCode = http.StatusConflict
		message = "Already a member of this group"
	case util.IsError(err, util.ErrNoJoinAmountConfigured):
		statusCode = http.StatusBadRequest
		message = "Group joining amount not configured"
	case util.IsError(err, util.ErrEventAlreadyDecided):
		statusCode = http.StatusConflict
		message = "Event has already been decided"
	case util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusConflict
		message = "Duplicate entry"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}

// parseWalletID extracts the wallet UUID from the URL.
func parseWalletID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "walletID"))
}

// LedgerOpRequest represents the request body for a credit or debit.
type LedgerOpRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Kind           string          `json:"kind"`
	Source         string          `json:"source"`
	IdempotencyKey *string         `json:"idempotency_key"`
	Note           string          `json:"note"`
}

// Credit handles the credit primitive.
// POST /wallets/{walletID}/credit
func (h *WalletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.ledgerOp(w, r, h.service.Credit)
}

// Debit handles the debit primitive.
// POST /wallets/{walletID}/debit
func (h *WalletHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.ledgerOp(w, r, h.service.Debit)
}

type ledgerOpFunc func(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal,
	kind domain.EntryKind, source domain.EntrySource, idempotencyKey *string, note string) (*service.LedgerResult, error)

func (h *WalletHandler) ledgerOp(w http.ResponseWriter, r *http.Request, op ledgerOpFunc) {
	walletID, err := parseWalletID(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req LedgerOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	kind := domain.EntryKind(req.Kind)
	source := domain.EntrySource(req.Source)
	if !domain.ValidEntryKind(kind) || !domain.ValidEntrySource(source) {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	result, err := op(r.Context(), walletID, req.Amount, kind, source, req.IdempotencyKey, req.Note)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	payload := map[string]interface{}{"applied": result.Applied}
	if result.Entry != nil {
		payload["entry_id"] = result.Entry.ID
	}
	respondWithJSON(w, h.logger, http.StatusOK, payload)
}

// GetWalletBalance handles the get wallet balance request.
// GET /wallets/{walletID}/balance
func (h *WalletHandler) GetWalletBalance(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseWalletID(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	wallet, err := h.service.GetBalance(r.Context(), walletID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"wallet_id":     wallet.ID,
		"balance":       wallet.Balance,
		"bonus_balance": wallet.BonusBalance,
		"status":        wallet.Status,
	})
}

// GetLedgerHistory handles the get ledger history request.
// GET /wallets/{walletID}/entries
func (h *WalletHandler) GetLedgerHistory(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseWalletID(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	// Parse query parameters for pagination
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10 // Default limit
	}
	offset, err := strconv.Atoi(offsetStr)
	if err != nil || offset < 0 {
		offset = 0 // Default offset
	}

	entries, totalCount, err := h.service.GetLedgerHistory(r.Context(), walletID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.LedgerEntry]{
		Data:       entries,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}

// AuditWallet handles the reconciliation check request.
// GET /wallets/{walletID}/audit
func (h *WalletHandler) AuditWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := parseWalletID(r)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	cached, ledgerSum, err := h.service.AuditWallet(r.Context(), walletID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"wallet_id":  walletID,
		"balance":    cached,
		"ledger_sum": ledgerSum,
		"consistent": cached.Equal(ledgerSum),
	})
}

// CreateUserRequest represents the request body for user creation.
type CreateUserRequest struct {
	Username string `json:"username"`
}

// CreateUser handles the create user request.
// POST /users
func (h *WalletHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Username)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, user)
}

// GetUserWallet handles fetching (and lazily creating) a user's wallet.
// GET /users/{userID}/wallet
func (h *WalletHandler) GetUserWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	wallet, err := h.service.GetWalletForUser(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, wallet)
}
