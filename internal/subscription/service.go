package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/event"
	"github.com/daap14/teamhub/internal/plan"
	"github.com/daap14/teamhub/internal/team"
)

// TeamFinder looks up live teams.
type TeamFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*team.Team, error)
}

// Resolver derives a team's plan from its subscription and records plan swaps.
type Resolver struct {
	repo   Repository
	plans  *plan.Registry
	teams  TeamFinder
	tx     database.Transactor
	events event.Publisher
	now    func() time.Time
}

// NewResolver creates a new Resolver.
func NewResolver(repo Repository, plans *plan.Registry, teams TeamFinder, tx database.Transactor, events event.Publisher) *Resolver {
	return &Resolver{repo: repo, plans: plans, teams: teams, tx: tx, events: events, now: time.Now}
}

// WithClock replaces the time source used to decide whether a subscription is active.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Current returns the team's subscription, or nil when it has none or it has ended.
func (r *Resolver) Current(ctx context.Context, teamID uuid.UUID) (*Subscription, error) {
	s, err := r.repo.Get(ctx, teamID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !s.Active(r.now()) {
		return nil, nil
	}
	return s, nil
}

// PlanFor returns the plan of the team's active subscription, or the free plan.
func (r *Resolver) PlanFor(ctx context.Context, teamID uuid.UUID) (plan.Plan, error) {
	s, err := r.Current(ctx, teamID)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("resolving subscription: %w", err)
	}
	if s == nil {
		return r.plans.Free(), nil
	}
	return r.plans.Resolve(s.PlanID), nil
}

// Swap moves the team to planID and emits SubscriptionSwapped once stored.
func (r *Resolver) Swap(ctx context.Context, teamID uuid.UUID, planID string) (*Subscription, error) {
	if _, ok := r.plans.Lookup(planID); !ok {
		return nil, fmt.Errorf("%w: %q", plan.ErrUnknownPlan, planID)
	}

	t, err := r.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	s := &Subscription{TeamID: teamID, PlanID: planID}
	var previous string
	err = r.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := r.Current(ctx, teamID)
		if err != nil {
			return err
		}
		if current != nil {
			previous = current.PlanID
		}
		return r.repo.Upsert(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	event.Emit(ctx, r.events, event.SubscriptionSwapped{
		TeamID:   t.ID,
		TeamSlug: t.Slug,
		Subscription: event.Subscription{
			PlanID:     s.PlanID,
			PreviousID: previous,
			EndsAt:     s.EndsAt,
		},
	})
	return s, nil
}

// Cancel ends the team's subscription now; the team falls back to the free plan.
func (r *Resolver) Cancel(ctx context.Context, teamID uuid.UUID) error {
	return r.repo.End(ctx, teamID, r.now())
}
