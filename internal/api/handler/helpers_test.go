package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/auth"
	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/entitlement"
	"github.com/daap14/teamhub/internal/invitation"
	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/plan"
	"github.com/daap14/teamhub/internal/subscription"
	"github.com/daap14/teamhub/internal/team"
)

// --- Mock TeamDirectory ---

type mockTeams struct {
	findByIDFn   func(ctx context.Context, id uuid.UUID) (*team.Team, error)
	findBySlugFn func(ctx context.Context, slug string) (*team.Team, error)
	renameFn     func(ctx context.Context, id uuid.UUID, name string) (*team.Team, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	listFn       func(ctx context.Context, page database.Page) (*database.Result[team.Team], error)
	searchFn     func(ctx context.Context, query string, page database.Page) (*database.Result[team.Team], error)
	suspendFn    func(ctx context.Context, id uuid.UUID, from time.Time, until *time.Time) (*team.Team, error)
	unsuspendFn  func(ctx context.Context, id uuid.UUID) (*team.Team, error)
	suspended    bool
}

func (m *mockTeams) FindByID(ctx context.Context, id uuid.UUID) (*team.Team, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeams) FindBySlug(ctx context.Context, slug string) (*team.Team, error) {
	if m.findBySlugFn != nil {
		return m.findBySlugFn(ctx, slug)
	}
	return nil, team.ErrTeamNotFound
}

func (m *mockTeams) Rename(ctx context.Context, id uuid.UUID, name string) (*team.Team, error) {
	return m.renameFn(ctx, id, name)
}

func (m *mockTeams) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTeams) List(ctx context.Context, page database.Page) (*database.Result[team.Team], error) {
	if m.listFn != nil {
		return m.listFn(ctx, page)
	}
	return database.NewResult[team.Team](nil, 0, page), nil
}

func (m *mockTeams) Search(ctx context.Context, query string, page database.Page) (*database.Result[team.Team], error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, page)
	}
	return database.NewResult[team.Team](nil, 0, page), nil
}

func (m *mockTeams) Suspend(ctx context.Context, id uuid.UUID, from time.Time, until *time.Time) (*team.Team, error) {
	return m.suspendFn(ctx, id, from, until)
}

func (m *mockTeams) Unsuspend(ctx context.Context, id uuid.UUID) (*team.Team, error) {
	return m.unsuspendFn(ctx, id)
}

func (m *mockTeams) SuspendedNow(*team.Team) bool { return m.suspended }

// --- Mock MemberLedger ---

type mockLedger struct {
	createTeamFn   func(ctx context.Context, name string, ownerID uuid.UUID) (*team.Team, *member.Member, error)
	teamsForUserFn func(ctx context.Context, userID uuid.UUID, page database.Page) (*database.Result[team.Team], error)
	listFn         func(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[member.Member], error)
	getFn          func(ctx context.Context, teamID, memberID uuid.UUID) (*member.Member, error)
	updateFn       func(ctx context.Context, teamID, memberID uuid.UUID, p member.Patch) (*member.Member, error)
	removeMemberFn func(ctx context.Context, teamID, memberID uuid.UUID) (*member.Member, error)
	leaveFn        func(ctx context.Context, teamID, userID uuid.UUID) (*member.Member, error)
	memberCount    int
	potentialCount int
	permissions    map[string]bool
}

func (m *mockLedger) CreateTeam(ctx context.Context, name string, ownerID uuid.UUID) (*team.Team, *member.Member, error) {
	return m.createTeamFn(ctx, name, ownerID)
}

func (m *mockLedger) TeamsForUser(ctx context.Context, userID uuid.UUID, page database.Page) (*database.Result[team.Team], error) {
	return m.teamsForUserFn(ctx, userID, page)
}

func (m *mockLedger) List(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[member.Member], error) {
	return m.listFn(ctx, teamID, page)
}

func (m *mockLedger) Get(ctx context.Context, teamID, memberID uuid.UUID) (*member.Member, error) {
	if m.getFn != nil {
		return m.getFn(ctx, teamID, memberID)
	}
	return nil, member.ErrMemberNotFound
}

func (m *mockLedger) Update(ctx context.Context, teamID, memberID uuid.UUID, p member.Patch) (*member.Member, error) {
	return m.updateFn(ctx, teamID, memberID, p)
}

func (m *mockLedger) RemoveMember(ctx context.Context, teamID, memberID uuid.UUID) (*member.Member, error) {
	return m.removeMemberFn(ctx, teamID, memberID)
}

func (m *mockLedger) Leave(ctx context.Context, teamID, userID uuid.UUID) (*member.Member, error) {
	return m.leaveFn(ctx, teamID, userID)
}

func (m *mockLedger) MemberCount(context.Context, uuid.UUID) (int, error) {
	return m.memberCount, nil
}

func (m *mockLedger) PotentialMemberCount(context.Context, uuid.UUID) (int, error) {
	return m.potentialCount, nil
}

func (m *mockLedger) Permissions(context.Context, uuid.UUID, uuid.UUID) (map[string]bool, error) {
	return m.permissions, nil
}

// --- Mock InvitationWorkflow ---

type mockInvitations struct {
	inviteFn       func(ctx context.Context, teamID uuid.UUID, email, group string) (*invitation.Invitation, error)
	acceptFn       func(ctx context.Context, id uuid.UUID, actor invitation.Actor) (*member.Member, error)
	declineFn      func(ctx context.Context, id uuid.UUID, actor invitation.Actor) error
	revokeFn       func(ctx context.Context, teamID, id uuid.UUID) error
	listForEmailFn func(ctx context.Context, email string, page database.Page) (*database.Result[invitation.Invitation], error)
	listForTeamFn  func(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[invitation.Invitation], error)
}

func (m *mockInvitations) Invite(ctx context.Context, teamID uuid.UUID, email, group string) (*invitation.Invitation, error) {
	return m.inviteFn(ctx, teamID, email, group)
}

func (m *mockInvitations) Accept(ctx context.Context, id uuid.UUID, actor invitation.Actor) (*member.Member, error) {
	return m.acceptFn(ctx, id, actor)
}

func (m *mockInvitations) Decline(ctx context.Context, id uuid.UUID, actor invitation.Actor) error {
	return m.declineFn(ctx, id, actor)
}

func (m *mockInvitations) Revoke(ctx context.Context, teamID, id uuid.UUID) error {
	return m.revokeFn(ctx, teamID, id)
}

func (m *mockInvitations) ListForEmail(ctx context.Context, email string, page database.Page) (*database.Result[invitation.Invitation], error) {
	return m.listForEmailFn(ctx, email, page)
}

func (m *mockInvitations) ListForTeam(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[invitation.Invitation], error) {
	return m.listForTeamFn(ctx, teamID, page)
}

// --- Mock Authorizer ---

type mockAuthorizer struct {
	decision entitlement.Decision
	err      error
	actions  []entitlement.Action
}

func allow() *mockAuthorizer {
	return &mockAuthorizer{decision: entitlement.Decision{Allowed: true}}
}

func deny(reason entitlement.Reason) *mockAuthorizer {
	return &mockAuthorizer{decision: entitlement.Decision{Reason: reason}}
}

func (m *mockAuthorizer) Authorize(_ context.Context, _, _ uuid.UUID, action entitlement.Action) (entitlement.Decision, error) {
	m.actions = append(m.actions, action)
	return m.decision, m.err
}

// --- Mock Subscriptions ---

type mockSubs struct {
	current  *subscription.Subscription
	plan     plan.Plan
	swapFn   func(ctx context.Context, teamID uuid.UUID, planID string) (*subscription.Subscription, error)
	cancelFn func(ctx context.Context, teamID uuid.UUID) error
}

func (m *mockSubs) Current(context.Context, uuid.UUID) (*subscription.Subscription, error) {
	return m.current, nil
}

func (m *mockSubs) PlanFor(context.Context, uuid.UUID) (plan.Plan, error) {
	return m.plan, nil
}

func (m *mockSubs) Swap(ctx context.Context, teamID uuid.UUID, planID string) (*subscription.Subscription, error) {
	return m.swapFn(ctx, teamID, planID)
}

func (m *mockSubs) Cancel(ctx context.Context, teamID uuid.UUID) error {
	return m.cancelFn(ctx, teamID)
}

// --- Mock UserService ---

type mockUsers struct {
	createUserFn func(ctx context.Context, name, email string, superuser bool) (*auth.User, string, error)
	issueTokenFn func(identity *auth.Identity) (string, error)
}

func (m *mockUsers) CreateUser(ctx context.Context, name, email string, superuser bool) (*auth.User, string, error) {
	return m.createUserFn(ctx, name, email, superuser)
}

func (m *mockUsers) IssueToken(identity *auth.Identity) (string, error) {
	return m.issueTokenFn(identity)
}

// --- Helpers ---

var caller = &auth.Identity{UserID: uuid.New(), UserName: "dana", Email: "dana@example.com"}

func sampleTeam() *team.Team {
	now := time.Now().UTC()
	return &team.Team{
		ID:          uuid.New(),
		Name:        "Acme",
		Slug:        "acme",
		OwnerUserID: caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func teamsWith(t *team.Team) *mockTeams {
	return &mockTeams{
		findBySlugFn: func(_ context.Context, slug string) (*team.Team, error) {
			if slug != t.Slug {
				return nil, team.ErrTeamNotFound
			}
			return t, nil
		},
		findByIDFn: func(_ context.Context, id uuid.UUID) (*team.Team, error) {
			if id != t.ID {
				return nil, team.ErrTeamNotFound
			}
			return t, nil
		},
	}
}

func sampleMember(teamID uuid.UUID, group member.Group) *member.Member {
	now := time.Now().UTC()
	return &member.Member{
		ID:        uuid.New(),
		TeamID:    teamID,
		UserID:    uuid.New(),
		Group:     group,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// makeChiRequest builds a request carrying chi URL params and, when identity
// is non-nil, an authenticated caller.
func makeChiRequest(method, path string, body []byte, identity *auth.Identity, params map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	if identity != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), identity))
	}

	return req, httptest.NewRecorder()
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "failed to parse response body")
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := parseEnvelope(t, w)
	errObj, ok := env["error"].(map[string]any)
	require.True(t, ok, "expected an error envelope, got %s", w.Body.String())
	return errObj["code"].(string)
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	env := parseEnvelope(t, w)
	d, ok := env["data"].(map[string]any)
	require.True(t, ok, "expected an object in data, got %s", w.Body.String())
	return d
}
