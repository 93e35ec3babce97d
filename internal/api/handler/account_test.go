package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamhub/internal/api/handler"
	"github.com/daap14/teamhub/internal/auth"
	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/invitation"
	"github.com/daap14/teamhub/internal/member"
)

func TestAccountListInvitations(t *testing.T) {
	t.Parallel()

	invitations := &mockInvitations{
		listForEmailFn: func(_ context.Context, email string, page database.Page) (*database.Result[invitation.Invitation], error) {
			assert.Equal(t, caller.Email, email)
			inv := sampleInvitation(uuid.New(), email)
			inv.TeamName, inv.TeamSlug = "Ops", "ops"
			return database.NewResult([]invitation.Invitation{*inv}, 1, page), nil
		},
	}
	h := handler.NewAccountHandler(invitations, &mockUsers{})

	req, w := makeChiRequest(http.MethodGet, "/account/invitations", nil, caller, nil)
	h.ListInvitations(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := parseEnvelope(t, w)
	items := env["data"].([]any)
	require.Len(t, items, 1)
	team := items[0].(map[string]any)["team"].(map[string]any)
	assert.Equal(t, "Ops", team["name"])
	assert.Equal(t, "ops", team["slug"])
	assert.Equal(t, float64(1), env["meta"].(map[string]any)["total"])
}

func TestAccountListInvitations_Unauthenticated(t *testing.T) {
	t.Parallel()

	h := handler.NewAccountHandler(&mockInvitations{}, &mockUsers{})

	req, w := makeChiRequest(http.MethodGet, "/account/invitations", nil, nil, nil)
	h.ListInvitations(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccountAcceptInvitation(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	joined := sampleMember(uuid.New(), member.GroupAdmin)
	invitations := &mockInvitations{
		acceptFn: func(_ context.Context, got uuid.UUID, actor invitation.Actor) (*member.Member, error) {
			assert.Equal(t, id, got)
			assert.Equal(t, invitation.Actor{UserID: caller.UserID, Email: caller.Email}, actor)
			return joined, nil
		},
	}
	h := handler.NewAccountHandler(invitations, &mockUsers{})

	req, w := makeChiRequest(http.MethodPut, "/account/invitations/"+id.String(), nil, caller, map[string]string{"id": id.String()})
	h.AcceptInvitation(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	d := data(t, w)
	assert.Equal(t, joined.ID.String(), d["id"])
	assert.Equal(t, "admin", d["group"])
}

func TestAccountAcceptInvitation_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"identity mismatch", invitation.ErrIdentityMismatch, http.StatusForbidden, "IDENTITY_MISMATCH"},
		{"not found", invitation.ErrInvitationNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"capacity", member.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"already member", member.ErrDuplicateMembership, http.StatusConflict, "DUPLICATE_MEMBERSHIP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			invitations := &mockInvitations{
				acceptFn: func(context.Context, uuid.UUID, invitation.Actor) (*member.Member, error) {
					return nil, tt.err
				},
			}
			h := handler.NewAccountHandler(invitations, &mockUsers{})

			id := uuid.NewString()
			req, w := makeChiRequest(http.MethodPut, "/account/invitations/"+id, nil, caller, map[string]string{"id": id})
			h.AcceptInvitation(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestAccountDeclineInvitation(t *testing.T) {
	t.Parallel()

	declined := false
	invitations := &mockInvitations{
		declineFn: func(context.Context, uuid.UUID, invitation.Actor) error {
			declined = true
			return nil
		},
	}
	h := handler.NewAccountHandler(invitations, &mockUsers{})

	id := uuid.NewString()
	req, w := makeChiRequest(http.MethodDelete, "/account/invitations/"+id, nil, caller, map[string]string{"id": id})
	h.DeclineInvitation(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, declined)
}

func TestAccountIssueToken(t *testing.T) {
	t.Parallel()

	users := &mockUsers{
		issueTokenFn: func(identity *auth.Identity) (string, error) {
			assert.Equal(t, caller.UserID, identity.UserID)
			return "signed.jwt.value", nil
		},
	}
	h := handler.NewAccountHandler(&mockInvitations{}, users)

	req, w := makeChiRequest(http.MethodPost, "/account/token", nil, caller, nil)
	h.IssueToken(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	d := data(t, w)
	assert.Equal(t, "signed.jwt.value", d["token"])
	assert.Equal(t, "Bearer", d["tokenType"])
}

func TestAccountIssueToken_Disabled(t *testing.T) {
	t.Parallel()

	users := &mockUsers{
		issueTokenFn: func(*auth.Identity) (string, error) {
			return "", auth.ErrTokensDisabled
		},
	}
	h := handler.NewAccountHandler(&mockInvitations{}, users)

	req, w := makeChiRequest(http.MethodPost, "/account/token", nil, caller, nil)
	h.IssueToken(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "TOKENS_DISABLED", errorCode(t, w))
}

func TestAccountIssueToken_UnmappedError(t *testing.T) {
	t.Parallel()

	users := &mockUsers{
		issueTokenFn: func(*auth.Identity) (string, error) {
			return "", errors.New("signer exploded")
		},
	}
	h := handler.NewAccountHandler(&mockInvitations{}, users)

	req, w := makeChiRequest(http.MethodPost, "/account/token", nil, caller, nil)
	h.IssueToken(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := parseEnvelope(t, w)
	errObj := env["error"].(map[string]any)
	assert.Equal(t, "INTERNAL_ERROR", errObj["code"])
	assert.Equal(t, "Failed to issue token", errObj["message"])
}
