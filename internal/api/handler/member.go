package handler

import (
	"net/http"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/entitlement"
	"github.com/daap14/teamhub/internal/member"
)

type updateMemberRequest struct {
	Group      *string         `json:"group"`
	Overwrites map[string]bool `json:"overwrites"`
}

// MemberHandler handles /teams/{slug}/members and the caller's own membership.
type MemberHandler struct {
	scope  teamScope
	ledger MemberLedger
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(teams TeamDirectory, ledger MemberLedger, authz Authorizer) *MemberHandler {
	return &MemberHandler{
		scope:  teamScope{teams: teams, authz: authz},
		ledger: ledger,
	}
}

// List handles GET /teams/{slug}/members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	s, ok := h.scope.resolve(w, r, entitlement.ActionViewMembers)
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.ledger.List(r.Context(), s.team.ID, page)
	if err != nil {
		writeError(w, r, err, "Failed to list members")
		return
	}

	items := make([]memberResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toMemberResponse(&result.Items[i]))
	}
	response.SuccessList(w, http.StatusOK, items, result.Total, result.Page, result.Limit, requestID)
}

// Get handles GET /teams/{slug}/members/{id}.
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	s, ok := h.scope.resolve(w, r, entitlement.ActionViewMembers)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	m, err := h.ledger.Get(r.Context(), s.team.ID, id)
	if err != nil {
		writeError(w, r, err, "Failed to get member")
		return
	}

	response.Success(w, http.StatusOK, toMemberResponse(m), requestID)
}

// Update handles PATCH /teams/{slug}/members/{id}. The group is applied
// before the overwrites.
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	s, ok := h.scope.resolve(w, r, entitlement.ActionManageMembers)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req updateMemberRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if rejectFieldErrors(w, r, validation.ValidateUpdateMemberRequest(validation.UpdateMemberRequest{
		Group:      req.Group,
		Overwrites: req.Overwrites,
	})) {
		return
	}

	m, err := h.ledger.Update(r.Context(), s.team.ID, id, member.Patch{
		Group:      req.Group,
		Overwrites: member.Overwrites(req.Overwrites),
	})
	if err != nil {
		writeError(w, r, err, "Failed to update member")
		return
	}

	response.Success(w, http.StatusOK, toMemberResponse(m), requestID)
}

// Delete handles DELETE /teams/{slug}/members/{id}.
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope.resolve(w, r, entitlement.ActionManageMembers)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.ledger.RemoveMember(r.Context(), s.team.ID, id); err != nil {
		writeError(w, r, err, "Failed to remove member")
		return
	}

	response.NoContent(w)
}

// Leave handles DELETE /teams/{slug}/membership.
func (h *MemberHandler) Leave(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scope.resolve(w, r, entitlement.ActionLeaveTeam)
	if !ok {
		return
	}

	if _, err := h.ledger.Leave(r.Context(), s.team.ID, s.identity.UserID); err != nil {
		writeError(w, r, err, "Failed to leave team")
		return
	}

	response.NoContent(w)
}
