package handler

import (
	"net/http"
	"strings"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/entitlement"
	"github.com/daap14/teamhub/internal/team"
)

type teamRequest struct {
	Name string `json:"name"`
}

type teamDetailResponse struct {
	teamResponse
	Plan           planResponse    `json:"plan"`
	MemberCount    int             `json:"memberCount"`
	PotentialCount int             `json:"potentialMemberCount"`
	Permissions    map[string]bool `json:"permissions"`
}

// TeamHandler handles the caller-facing team endpoints.
type TeamHandler struct {
	scope  teamScope
	teams  TeamDirectory
	ledger MemberLedger
	plans  Subscriptions
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teams TeamDirectory, ledger MemberLedger, plans Subscriptions, authz Authorizer) *TeamHandler {
	return &TeamHandler{
		scope:  teamScope{teams: teams, authz: authz},
		teams:  teams,
		ledger: ledger,
		plans:  plans,
	}
}

func (h *TeamHandler) toResponses(items []team.Team) []teamResponse {
	out := make([]teamResponse, 0, len(items))
	for i := range items {
		out = append(out, toTeamResponse(&items[i], h.teams.SuspendedNow(&items[i])))
	}
	return out
}

// Create handles POST /teams. The caller becomes the owner.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req teamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if rejectFieldErrors(w, r, validation.ValidateTeamRequest(validation.TeamRequest{Name: req.Name})) {
		return
	}

	t, _, err := h.ledger.CreateTeam(r.Context(), strings.TrimSpace(req.Name), identity.UserID)
	if err != nil {
		writeError(w, r, err, "Failed to create team")
		return
	}

	response.Success(w, http.StatusCreated, toTeamResponse(t, false), requestID)
}

// List handles GET /teams: the teams the caller belongs to.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.ledger.TeamsForUser(r.Context(), identity.UserID, page)
	if err != nil {
		writeError(w, r, err, "Failed to list teams")
		return
	}

	response.SuccessList(w, http.StatusOK, h.toResponses(result.Items), result.Total, result.Page, result.Limit, requestID)
}

// Get handles GET /teams/{slug}. The response carries the team's plan,
// member counts and the caller's effective permissions.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	s, ok := h.scope.resolve(w, r, entitlement.ActionViewTeam)
	if !ok {
		return
	}
	ctx := r.Context()

	p, err := h.plans.PlanFor(ctx, s.team.ID)
	if err != nil {
		writeError(w, r, err, "Failed to load team")
		return
	}
	count, err := h.ledger.MemberCount(ctx, s.team.ID)
	if err != nil {
		writeError(w, r, err, "Failed to load team")
		return
	}
	potential, err := h.ledger.PotentialMemberCount(ctx, s.team.ID)
	if err != nil {
		writeError(w, r, err, "Failed to load team")
		return
	}
	perms, err := h.ledger.Permissions(ctx, s.team.ID, s.identity.UserID)
	if err != nil {
		writeError(w, r, err, "Failed to load team")
		return
	}

	response.Success(w, http.StatusOK, teamDetailResponse{
		teamResponse:   toTeamResponse(s.team, h.teams.SuspendedNow(s.team)),
		Plan:           toPlanResponse(p),
		MemberCount:    count,
		PotentialCount: potential,
		Permissions:    perms,
	}, requestID)
}

// Update handles PATCH /teams/{slug}.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	s, ok := h.scope.resolve(w, r, entitlement.ActionUpdateTeam)
	if !ok {
		return
	}

	var req teamRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if rejectFieldErrors(w, r, validation.ValidateTeamRequest(validation.TeamRequest{Name: req.Name})) {
		return
	}

	t, err := h.teams.Rename(r.Context(), s.team.ID, req.Name)
	if err != nil {
		writeError(w, r, err, "Failed to update team")
		return
	}

	response.Success(w, http.StatusOK, toTeamResponse(t, h.teams.SuspendedNow(t)), requestID)
}

// Delete handles DELETE /teams/{slug}.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope.resolve(w, r, entitlement.ActionDeleteTeam)
	if !ok {
		return
	}

	if err := h.teams.Delete(r.Context(), s.team.ID); err != nil {
		writeError(w, r, err, "Failed to delete team")
		return
	}

	response.NoContent(w)
}
