package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/plan"
	"github.com/daap14/teamhub/internal/team"
)

// ErrForbidden is returned by Require when the evaluator denies an action.
var ErrForbidden = errors.New("forbidden")

// ErrUnknownAction is returned for actions missing from the catalog.
var ErrUnknownAction = errors.New("unknown action")

// Reason explains a denial.
type Reason string

const (
	ReasonSuspended  Reason = "team is suspended"
	ReasonNotMember  Reason = "not a member of the team"
	ReasonGroup      Reason = "group is not allowed to perform this action"
	ReasonPermission Reason = "permission is not granted"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Member is the acting user's membership when one was looked up.
	Member *member.Member
}

func deny(r Reason) Decision {
	return Decision{Reason: r}
}

// Teams looks up teams and their suspension state.
type Teams interface {
	FindByID(ctx context.Context, id uuid.UUID) (*team.Team, error)
}

// Members looks up a user's membership in a team.
type Members interface {
	FindByUser(ctx context.Context, teamID, userID uuid.UUID) (*member.Member, error)
}

// PlanResolver returns the plan currently in force for a team.
type PlanResolver interface {
	PlanFor(ctx context.Context, teamID uuid.UUID) (plan.Plan, error)
}

// Evaluator answers "may user U perform action A on team T".
type Evaluator struct {
	teams   Teams
	members Members
	plans   PlanResolver
	catalog Catalog
	now     func() time.Time
}

// NewEvaluator creates an Evaluator using DefaultCatalog.
func NewEvaluator(teams Teams, members Members, plans PlanResolver) *Evaluator {
	return &Evaluator{
		teams:   teams,
		members: members,
		plans:   plans,
		catalog: DefaultCatalog(),
		now:     time.Now,
	}
}

// WithCatalog replaces the action rules.
func (e *Evaluator) WithCatalog(c Catalog) *Evaluator {
	e.catalog = c
	return e
}

// WithClock replaces the time source used for suspension checks.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Authorize evaluates action for userID on teamID. Checks run in order:
// team existence, suspension, membership, group, then permission. A missing
// team is an error, not a denial.
func (e *Evaluator) Authorize(ctx context.Context, teamID, userID uuid.UUID, action Action) (Decision, error) {
	rule, ok := e.catalog[action]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	t, err := e.teams.FindByID(ctx, teamID)
	if err != nil {
		return Decision{}, err
	}

	if rule.SuspensionGated && t.IsSuspended(e.now()) {
		return deny(ReasonSuspended), nil
	}
	if !rule.MemberScoped {
		return Decision{Allowed: true}, nil
	}

	m, err := e.members.FindByUser(ctx, teamID, userID)
	switch {
	case errors.Is(err, member.ErrMemberNotFound):
		if userID != t.OwnerUserID {
			return deny(ReasonNotMember), nil
		}
		m = &member.Member{TeamID: teamID, UserID: userID, Group: member.GroupOwner}
	case err != nil:
		return Decision{}, err
	}

	m = member.Effective(m, t.OwnerUserID)
	if !rule.allowsGroup(m.Group) {
		return Decision{Reason: ReasonGroup, Member: m}, nil
	}

	if rule.Permission != "" {
		p, err := e.plans.PlanFor(ctx, teamID)
		if err != nil {
			return Decision{}, err
		}
		if !member.Permission(p, m, rule.Permission) {
			return Decision{Reason: ReasonPermission, Member: m}, nil
		}
	}

	return Decision{Allowed: true, Member: m}, nil
}

// Require is Authorize for callers that only need an error. Denials wrap
// ErrForbidden.
func (e *Evaluator) Require(ctx context.Context, teamID, userID uuid.UUID, action Action) (*member.Member, error) {
	d, err := e.Authorize(ctx, teamID, userID, action)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, d.Reason)
	}
	return d.Member, nil
}
