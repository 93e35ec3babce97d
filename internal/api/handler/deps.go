package handler

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/auth"
	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/entitlement"
	"github.com/daap14/teamhub/internal/invitation"
	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/plan"
	"github.com/daap14/teamhub/internal/subscription"
	"github.com/daap14/teamhub/internal/team"
)

// TeamDirectory is the subset of team.Directory used by the handlers.
type TeamDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*team.Team, error)
	FindBySlug(ctx context.Context, slug string) (*team.Team, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*team.Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page database.Page) (*database.Result[team.Team], error)
	Search(ctx context.Context, query string, page database.Page) (*database.Result[team.Team], error)
	Suspend(ctx context.Context, id uuid.UUID, from time.Time, until *time.Time) (*team.Team, error)
	Unsuspend(ctx context.Context, id uuid.UUID) (*team.Team, error)
	SuspendedNow(t *team.Team) bool
}

// MemberLedger is the subset of member.Ledger used by the handlers.
type MemberLedger interface {
	CreateTeam(ctx context.Context, name string, ownerID uuid.UUID) (*team.Team, *member.Member, error)
	TeamsForUser(ctx context.Context, userID uuid.UUID, page database.Page) (*database.Result[team.Team], error)
	List(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[member.Member], error)
	Get(ctx context.Context, teamID, memberID uuid.UUID) (*member.Member, error)
	Update(ctx context.Context, teamID, memberID uuid.UUID, p member.Patch) (*member.Member, error)
	RemoveMember(ctx context.Context, teamID, memberID uuid.UUID) (*member.Member, error)
	Leave(ctx context.Context, teamID, userID uuid.UUID) (*member.Member, error)
	MemberCount(ctx context.Context, teamID uuid.UUID) (int, error)
	PotentialMemberCount(ctx context.Context, teamID uuid.UUID) (int, error)
	Permissions(ctx context.Context, teamID, userID uuid.UUID) (map[string]bool, error)
}

// InvitationWorkflow is the subset of invitation.Workflow used by the handlers.
type InvitationWorkflow interface {
	Invite(ctx context.Context, teamID uuid.UUID, email, group string) (*invitation.Invitation, error)
	Accept(ctx context.Context, id uuid.UUID, actor invitation.Actor) (*member.Member, error)
	Decline(ctx context.Context, id uuid.UUID, actor invitation.Actor) error
	Revoke(ctx context.Context, teamID, id uuid.UUID) error
	ListForEmail(ctx context.Context, email string, page database.Page) (*database.Result[invitation.Invitation], error)
	ListForTeam(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[invitation.Invitation], error)
}

// Authorizer decides team-scoped actions.
type Authorizer interface {
	Authorize(ctx context.Context, teamID, userID uuid.UUID, action entitlement.Action) (entitlement.Decision, error)
}

// Subscriptions is the subset of subscription.Resolver used by the handlers.
type Subscriptions interface {
	Current(ctx context.Context, teamID uuid.UUID) (*subscription.Subscription, error)
	PlanFor(ctx context.Context, teamID uuid.UUID) (plan.Plan, error)
	Swap(ctx context.Context, teamID uuid.UUID, planID string) (*subscription.Subscription, error)
	Cancel(ctx context.Context, teamID uuid.UUID) error
}

// UserService issues users and credentials.
type UserService interface {
	CreateUser(ctx context.Context, name, email string, superuser bool) (*auth.User, string, error)
	IssueToken(identity *auth.Identity) (string, error)
}
