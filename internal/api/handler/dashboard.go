package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/team"
)

type suspensionRequest struct {
	From  string `json:"from"`
	Until string `json:"until"`
}

type subscriptionRequest struct {
	PlanID string `json:"planId"`
}

type dashboardTeamResponse struct {
	teamResponse
	Plan           planResponse          `json:"plan"`
	Subscription   *subscriptionResponse `json:"subscription"`
	MemberCount    int                   `json:"memberCount"`
	PotentialCount int                   `json:"potentialMemberCount"`
}

// DashboardHandler handles the superuser /dashboard endpoints. Routes address
// teams by id rather than slug.
type DashboardHandler struct {
	teams  TeamDirectory
	ledger MemberLedger
	subs   Subscriptions
	now    func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(teams TeamDirectory, ledger MemberLedger, subs Subscriptions) *DashboardHandler {
	return &DashboardHandler{teams: teams, ledger: ledger, subs: subs, now: time.Now}
}

// WithClock replaces the time source used as the default suspension start.
func (h *DashboardHandler) WithClock(now func() time.Time) *DashboardHandler {
	h.now = now
	return h
}

func (h *DashboardHandler) listResponse(w http.ResponseWriter, r *http.Request, items []team.Team, total, page, limit int) {
	out := make([]teamResponse, 0, len(items))
	for i := range items {
		out = append(out, toTeamResponse(&items[i], h.teams.SuspendedNow(&items[i])))
	}
	response.SuccessList(w, http.StatusOK, out, total, page, limit, middleware.GetRequestID(r.Context()))
}

// ListTeams handles GET /dashboard/teams.
func (h *DashboardHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.teams.List(r.Context(), page)
	if err != nil {
		writeError(w, r, err, "Failed to list teams")
		return
	}

	h.listResponse(w, r, result.Items, result.Total, result.Page, result.Limit)
}

// SearchTeams handles GET /dashboard/teams/search?q=.
func (h *DashboardHandler) SearchTeams(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "q is required", middleware.GetRequestID(r.Context()))
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.teams.Search(r.Context(), q, page)
	if err != nil {
		writeError(w, r, err, "Failed to search teams")
		return
	}

	h.listResponse(w, r, result.Items, result.Total, result.Page, result.Limit)
}

// GetTeam handles GET /dashboard/teams/{id}.
func (h *DashboardHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	t, err := h.teams.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to get team")
		return
	}
	h.writeTeam(w, r, t)
}

func (h *DashboardHandler) writeTeam(w http.ResponseWriter, r *http.Request, t *team.Team) {
	ctx := r.Context()

	sub, err := h.subs.Current(ctx, t.ID)
	if err != nil {
		writeError(w, r, err, "Failed to get team")
		return
	}
	p, err := h.subs.PlanFor(ctx, t.ID)
	if err != nil {
		writeError(w, r, err, "Failed to get team")
		return
	}
	count, err := h.ledger.MemberCount(ctx, t.ID)
	if err != nil {
		writeError(w, r, err, "Failed to get team")
		return
	}
	potential, err := h.ledger.PotentialMemberCount(ctx, t.ID)
	if err != nil {
		writeError(w, r, err, "Failed to get team")
		return
	}

	response.Success(w, http.StatusOK, dashboardTeamResponse{
		teamResponse:   toTeamResponse(t, h.teams.SuspendedNow(t)),
		Plan:           toPlanResponse(p),
		Subscription:   toSubscriptionResponse(sub),
		MemberCount:    count,
		PotentialCount: potential,
	}, middleware.GetRequestID(ctx))
}

// Suspend handles POST /dashboard/teams/{id}/suspension.
func (h *DashboardHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req suspensionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	window, errs := validation.ValidateSuspensionRequest(validation.SuspensionRequest{From: req.From, Until: req.Until}, h.now())
	if rejectFieldErrors(w, r, errs) {
		return
	}

	t, err := h.teams.Suspend(r.Context(), id, window.From, window.Until)
	if err != nil {
		writeError(w, r, err, "Failed to suspend team")
		return
	}

	h.writeTeam(w, r, t)
}

// Unsuspend handles DELETE /dashboard/teams/{id}/suspension.
func (h *DashboardHandler) Unsuspend(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	t, err := h.teams.Unsuspend(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to unsuspend team")
		return
	}

	h.writeTeam(w, r, t)
}

// SwapSubscription handles PUT /dashboard/teams/{id}/subscription.
func (h *DashboardHandler) SwapSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req subscriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if rejectFieldErrors(w, r, validation.ValidateSubscriptionRequest(validation.SubscriptionRequest{PlanID: req.PlanID})) {
		return
	}

	sub, err := h.subs.Swap(r.Context(), id, strings.TrimSpace(req.PlanID))
	if err != nil {
		writeError(w, r, err, "Failed to swap subscription")
		return
	}

	response.Success(w, http.StatusOK, toSubscriptionResponse(sub), middleware.GetRequestID(r.Context()))
}

// CancelSubscription handles DELETE /dashboard/teams/{id}/subscription.
func (h *DashboardHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.teams.FindByID(r.Context(), id); err != nil {
		writeError(w, r, err, "Failed to cancel subscription")
		return
	}
	if err := h.subs.Cancel(r.Context(), id); err != nil {
		writeError(w, r, err, "Failed to cancel subscription")
		return
	}

	response.NoContent(w)
}
