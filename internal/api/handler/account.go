package handler

import (
	"net/http"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/invitation"
)

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
}

// AccountHandler handles endpoints about the caller: the invitations
// addressed to them and bearer token issuance.
type AccountHandler struct {
	invitations InvitationWorkflow
	users       UserService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(invitations InvitationWorkflow, users UserService) *AccountHandler {
	return &AccountHandler{invitations: invitations, users: users}
}

// ListInvitations handles GET /account/invitations.
func (h *AccountHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	result, err := h.invitations.ListForEmail(r.Context(), identity.Email, page)
	if err != nil {
		writeError(w, r, err, "Failed to list invitations")
		return
	}

	response.SuccessList(w, http.StatusOK, toInvitationResponses(result.Items), result.Total, result.Page, result.Limit, requestID)
}

// AcceptInvitation handles PUT /account/invitations/{id}. The new membership
// is returned.
func (h *AccountHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	m, err := h.invitations.Accept(r.Context(), id, invitation.Actor{UserID: identity.UserID, Email: identity.Email})
	if err != nil {
		writeError(w, r, err, "Failed to accept invitation")
		return
	}

	response.Success(w, http.StatusOK, toMemberResponse(m), requestID)
}

// DeclineInvitation handles DELETE /account/invitations/{id}.
func (h *AccountHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.invitations.Decline(r.Context(), id, invitation.Actor{UserID: identity.UserID, Email: identity.Email}); err != nil {
		writeError(w, r, err, "Failed to decline invitation")
		return
	}

	response.NoContent(w)
}

// IssueToken handles POST /account/token.
func (h *AccountHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	token, err := h.users.IssueToken(identity)
	if err != nil {
		writeError(w, r, err, "Failed to issue token")
		return
	}

	response.Success(w, http.StatusCreated, tokenResponse{Token: token, TokenType: "Bearer"}, requestID)
}
