package handler

import (
	"net/http"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/entitlement"
)

type createInvitationRequest struct {
	Email string `json:"email"`
	Group string `json:"group"`
}

// InvitationHandler handles the team side of /teams/{slug}/invitations.
type InvitationHandler struct {
	scope       teamScope
	invitations InvitationWorkflow
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(teams TeamDirectory, invitations InvitationWorkflow, authz Authorizer) *InvitationHandler {
	return &InvitationHandler{
		scope:       teamScope{teams: teams, authz: authz},
		invitations: invitations,
	}
}

// List handles GET /teams/{slug}/invitations.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	s, ok := h.scope.resolve(w, r, entitlement.ActionViewInvitations)
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.invitations.ListForTeam(r.Context(), s.team.ID, page)
	if err != nil {
		writeError(w, r, err, "Failed to list invitations")
		return
	}

	response.SuccessList(w, http.StatusOK, toInvitationResponses(result.Items), result.Total, result.Page, result.Limit, requestID)
}

// Create handles POST /teams/{slug}/invitations.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	s, ok := h.scope.resolve(w, r, entitlement.ActionManageInvitations)
	if !ok {
		return
	}

	var req createInvitationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if rejectFieldErrors(w, r, validation.ValidateCreateInvitationRequest(validation.CreateInvitationRequest{
		Email: req.Email,
		Group: req.Group,
	})) {
		return
	}

	inv, err := h.invitations.Invite(r.Context(), s.team.ID, req.Email, req.Group)
	if err != nil {
		writeError(w, r, err, "Failed to create invitation")
		return
	}
	inv.TeamName, inv.TeamSlug = s.team.Name, s.team.Slug

	response.Success(w, http.StatusCreated, toInvitationResponse(inv), requestID)
}

// Revoke handles DELETE /teams/{slug}/invitations/{id}.
func (h *InvitationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope.resolve(w, r, entitlement.ActionManageInvitations)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.invitations.Revoke(r.Context(), s.team.ID, id); err != nil {
		writeError(w, r, err, "Failed to revoke invitation")
		return
	}

	response.NoContent(w)
}
