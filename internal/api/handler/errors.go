package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/auth"
	"github.com/daap14/teamhub/internal/entitlement"
	"github.com/daap14/teamhub/internal/invitation"
	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/plan"
	"github.com/daap14/teamhub/internal/subscription"
	"github.com/daap14/teamhub/internal/team"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings translates domain sentinels into API errors. Order matters
// only for errors that wrap more than one sentinel.
var errorMappings = []errorMapping{
	{team.ErrTeamNotFound, http.StatusNotFound, "NOT_FOUND", "Team not found"},
	{member.ErrMemberNotFound, http.StatusNotFound, "NOT_FOUND", "Member not found"},
	{invitation.ErrInvitationNotFound, http.StatusNotFound, "NOT_FOUND", "Invitation not found"},
	{auth.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", "User not found"},
	{subscription.ErrSubscriptionNotFound, http.StatusNotFound, "NOT_FOUND", "Subscription not found"},

	{team.ErrDuplicateSlug, http.StatusConflict, "DUPLICATE_SLUG", "Team slug already exists"},
	{team.ErrSlugExhausted, http.StatusConflict, "SLUG_EXHAUSTED", "No free slug is available for this name"},
	{member.ErrDuplicateMembership, http.StatusConflict, "DUPLICATE_MEMBERSHIP", "User is already a member of the team"},
	{invitation.ErrDuplicateInvitation, http.StatusConflict, "DUPLICATE_INVITATION", "A pending invitation already exists for this email"},
	{auth.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL", "A user with this email already exists"},
	{member.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED", "Team member limit reached"},
	{member.ErrOwnerMembership, http.StatusConflict, "OWNER_MEMBERSHIP", "The owner's membership cannot be changed"},

	{team.ErrInvalidSuspension, http.StatusBadRequest, "VALIDATION_ERROR", "Suspension must not end before it starts"},
	{member.ErrInvalidGroup, http.StatusBadRequest, "INVALID_GROUP", "Group must be one of owner, admin, member"},
	{invitation.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL", "Email must be a valid address"},
	{plan.ErrUnknownPlan, http.StatusBadRequest, "UNKNOWN_PLAN", "Plan is not registered"},

	{invitation.ErrIdentityMismatch, http.StatusForbidden, "IDENTITY_MISMATCH", "Invitation is addressed to another email"},
	{entitlement.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Action not permitted"},
	{auth.ErrTokensDisabled, http.StatusNotImplemented, "TOKENS_DISABLED", "Bearer tokens are not enabled"},
}

// writeError maps err onto the API error envelope. Unmapped errors are logged
// and reported as 500 with failure as the public message.
func writeError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	requestID := middleware.GetRequestID(r.Context())

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			response.Err(w, m.status, m.code, m.message, requestID)
			return
		}
	}

	slog.Error(failure, "error", err, "requestId", requestID, "path", r.URL.Path)
	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", failure, requestID)
}
