package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/auth"
	"github.com/daap14/teamhub/internal/entitlement"
	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/team"
)

// teamScope resolves the {slug} team of a request and authorizes the caller
// against it before any team-scoped handler runs.
type teamScope struct {
	teams TeamDirectory
	authz Authorizer
}

// scoped is the outcome of a successful teamScope.resolve.
type scoped struct {
	identity *auth.Identity
	team     *team.Team
	member   *member.Member
}

func (s teamScope) resolve(w http.ResponseWriter, r *http.Request, action entitlement.Action) (scoped, bool) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return scoped{}, false
	}

	t, err := s.teams.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err, "Failed to load team")
		return scoped{}, false
	}

	d, err := s.authz.Authorize(r.Context(), t.ID, identity.UserID, action)
	if err != nil {
		writeError(w, r, err, "Failed to authorize request")
		return scoped{}, false
	}
	if !d.Allowed {
		requestID := middleware.GetRequestID(r.Context())
		switch d.Reason {
		case entitlement.ReasonSuspended:
			response.Err(w, http.StatusForbidden, "TEAM_SUSPENDED", "Team is suspended", requestID)
		case entitlement.ReasonNotMember:
			// Non-members cannot learn that a team exists.
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Team not found", requestID)
		default:
			response.Err(w, http.StatusForbidden, "FORBIDDEN", "Not allowed: "+string(d.Reason), requestID)
		}
		return scoped{}, false
	}

	return scoped{identity: identity, team: t, member: d.Member}, true
}
