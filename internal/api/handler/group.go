// internal/api/handler/group.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fundpool-ledger/internal/service"
	"fundpool-ledger/internal/util"
)

// GroupHandler handles HTTP requests related to investment groups.
type GroupHandler struct {
	service service.GroupService
	logger  *slog.Logger
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(svc service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		service: svc,
		logger:  logger,
	}
}

// JoinGroupRequest represents the request body for joining a group.
type JoinGroupRequest struct {
	UserID int64 `json:"user_id"`
}

// Join handles the join group request.
// POST /groups/{groupID}/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	var req JoinGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	result, err := h.service.Join(r.Context(), req.UserID, groupID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"membership_id":   result.Membership.ID,
		"group_id":        result.Membership.GroupID,
		"amount_deducted": result.AmountDeducted,
		"plan":            result.Plan,
		"roi_unlock_date": result.Membership.ROIUnlockDate,
	})
}

// ListGroups handles the list active groups request.
// GET /groups
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, returns, err := h.service.ListGroups(r.Context())
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	items := make([]map[string]interface{}, 0, len(groups))
	for i, g := range groups {
		items = append(items, map[string]interface{}{
			"id":               g.ID,
			"name":             g.Name,
			"daily_amount":     g.DailyAmount,
			"monthly_amount":   g.MonthlyAmount,
			"yearly_amount":    g.YearlyAmount,
			"roi_percent":      g.ROIPercent,
			"duration_months":  g.DurationMonths,
			"total_slots":      g.TotalSlots,
			"filled_slots":     g.FilledSlots,
			"slots_available":  g.SlotsAvailable(),
			"projected_return": returns[i],
		})
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{"groups": items})
}

// MembershipReturn handles the membership return projection request.
// GET /groups/{groupID}/memberships/{userID}/return
func (h *GroupHandler) MembershipReturn(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	ret, err := h.service.MembershipReturn(r.Context(), userID, groupID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, ret)
}
