package member

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

// ErrCapacityExceeded is returned when the team's plan has no free member slot.
var ErrCapacityExceeded = errors.New("team member limit reached")

// ErrOwnerMembership is returned when an operation would remove the team
// owner's membership or take the owner out of the owner group.
var ErrOwnerMembership = errors.New("the team owner's membership cannot be changed")

// Teams is the part of the team directory the ledger depends on.
type Teams interface {
	CreateTeam(ctx context.Context, name string, ownerID uuid.UUID) (*team.Team, error)
	FindByID(ctx context.Context, id uuid.UUID) (*team.Team, error)
	Lock(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID, page database.Page) (*database.Result[team.Team], error)
}

// PlanResolver returns the plan currently in force for a team.
type PlanResolver interface {
	PlanFor(ctx context.Context, teamID uuid.UUID) (plan.Plan, error)
}

// PendingCounter counts invitations that still reserve a slot at the given time.
type PendingCounter interface {
	CountPending(ctx context.Context, teamID uuid.UUID, at time.Time) (int, error)
}

// Ledger tracks team membership and answers permission questions about it.
type Ledger struct {
	repo    Repository
	teams   Teams
	plans   PlanResolver
	pending PendingCounter
	tx      database.Transactor
	events  event.Publisher
	now     func() time.Time
}

// NewLedger creates a new Ledger.
func NewLedger(repo Repository, teams Teams, plans PlanResolver, pending PendingCounter, tx database.Transactor, events event.Publisher) *Ledger {
	return &Ledger{
		repo:    repo,
		teams:   teams,
		plans:   plans,
		pending: pending,
		tx:      tx,
		events:  events,
		now:     time.Now,
	}
}

// WithClock replaces the time source used to decide which invitations are pending.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// CreateTeam creates a team and its owner's membership in one transaction.
func (l *Ledger) CreateTeam(ctx context.Context, name string, ownerID uuid.UUID) (*team.Team, *Member, error) {
	var t *team.Team
	m := &Member{UserID: ownerID, Group: GroupOwner, Overwrites: Overwrites{}}

	err := l.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		t, err = l.teams.CreateTeam(ctx, name, ownerID)
		if err != nil {
			return err
		}
		m.TeamID = t.ID
		return l.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, nil, err
	}
	return t, m, nil
}

// AddMember adds userID to the team. It fails with ErrDuplicateMembership when
// the user already belongs to the team and with ErrCapacityExceeded when the
// plan's member ceiling is reached by members plus pending invitations.
func (l *Ledger) AddMember(ctx context.Context, teamID, userID uuid.UUID, group Group, overwrites Overwrites) (*Member, error) {
	return l.add(ctx, teamID, userID, group, overwrites, 0)
}

// AddFromInvitation adds a member on behalf of a pending invitation that is
// about to be deleted in the same transaction. The invitation's reserved slot
// is not counted against the capacity check.
func (l *Ledger) AddFromInvitation(ctx context.Context, teamID, userID uuid.UUID, group Group) (*Member, error) {
	return l.add(ctx, teamID, userID, group, nil, 1)
}

func (l *Ledger) add(ctx context.Context, teamID, userID uuid.UUID, group Group, overwrites Overwrites, reserved int) (*Member, error) {
	if !group.Valid() {
		return nil, ErrInvalidGroup
	}
	if group == GroupOwner {
		return nil, ErrOwnerMembership
	}
	if overwrites == nil {
		overwrites = Overwrites{}
	}

	m := &Member{TeamID: teamID, UserID: userID, Group: group, Overwrites: overwrites}
	err := l.tx.InTx(ctx, func(ctx context.Context) error {
		if err := l.teams.Lock(ctx, teamID); err != nil {
			return err
		}

		_, err := l.repo.GetByUser(ctx, teamID, userID)
		switch {
		case err == nil:
			return ErrDuplicateMembership
		case !errors.Is(err, ErrMemberNotFound):
			return err
		}

		if err := l.checkCapacity(ctx, teamID, reserved); err != nil {
			return err
		}
		return l.repo.Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CheckCapacity locks the team and verifies one more potential member fits
// the plan. Callers run it inside the transaction that consumes the slot.
func (l *Ledger) CheckCapacity(ctx context.Context, teamID uuid.UUID) error {
	if err := l.teams.Lock(ctx, teamID); err != nil {
		return err
	}
	return l.checkCapacity(ctx, teamID, 0)
}

func (l *Ledger) checkCapacity(ctx context.Context, teamID uuid.UUID, reserved int) error {
	p, err := l.plans.PlanFor(ctx, teamID)
	if err != nil {
		return err
	}
	if p.Unlimited() {
		return nil
	}

	potential, err := l.PotentialMemberCount(ctx, teamID)
	if err != nil {
		return err
	}
	if potential-reserved >= p.Members {
		return ErrCapacityExceeded
	}
	return nil
}

// RemoveMember deletes a membership and emits MemberRemoved.
func (l *Ledger) RemoveMember(ctx context.Context, teamID, memberID uuid.UUID) (*Member, error) {
	t, err := l.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	m, err := l.repo.GetByID(ctx, teamID, memberID)
	if err != nil {
		return nil, err
	}
	return m, l.remove(ctx, t, m, true)
}

// Leave removes userID's own membership and emits MemberRemoved.
func (l *Ledger) Leave(ctx context.Context, teamID, userID uuid.UUID) (*Member, error) {
	t, err := l.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	m, err := l.repo.GetByUser(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	return m, l.remove(ctx, t, m, false)
}

func (l *Ledger) remove(ctx context.Context, t *team.Team, m *Member, kicked bool) error {
	if m.UserID == t.OwnerUserID {
		return ErrOwnerMembership
	}
	if err := l.repo.Delete(ctx, t.ID, m.ID); err != nil {
		return err
	}

	event.Emit(ctx, l.events, event.MemberRemoved{
		TeamID:   t.ID,
		TeamSlug: t.Slug,
		MemberID: m.ID,
		UserID:   m.UserID,
		Kicked:   kicked,
	})
	return nil
}

// Patch lists the member fields to change. Nil fields are left as they are.
type Patch struct {
	Group      *string
	Overwrites Overwrites
}

// Update applies p to a member in a single transaction. Ownership cannot be
// granted or taken away, and the owner's permissions cannot be overwritten.
// Invalid groups are rejected before anything is read or written.
func (l *Ledger) Update(ctx context.Context, teamID, memberID uuid.UUID, p Patch) (*Member, error) {
	var g Group
	if p.Group != nil {
		var err error
		if g, err = ParseGroup(*p.Group); err != nil {
			return nil, err
		}
	}

	var m *Member
	err := l.tx.InTx(ctx, func(ctx context.Context) error {
		if err := l.teams.Lock(ctx, teamID); err != nil {
			return err
		}
		t, err := l.teams.FindByID(ctx, teamID)
		if err != nil {
			return err
		}
		if m, err = l.repo.GetByID(ctx, teamID, memberID); err != nil {
			return err
		}

		owner := m.UserID == t.OwnerUserID
		if p.Group != nil && owner != (g == GroupOwner) {
			return ErrOwnerMembership
		}
		if p.Overwrites != nil && owner {
			return ErrOwnerMembership
		}

		if p.Group != nil && m.Group != g {
			if m, err = l.repo.UpdateGroup(ctx, teamID, memberID, g); err != nil {
				return err
			}
		}
		if p.Overwrites != nil {
			if m, err = l.repo.UpdateOverwrites(ctx, teamID, memberID, p.Overwrites); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateGroup moves a member to another group.
func (l *Ledger) UpdateGroup(ctx context.Context, teamID, memberID uuid.UUID, group string) (*Member, error) {
	return l.Update(ctx, teamID, memberID, Patch{Group: &group})
}

// UpdateOverwrites replaces a member's permission overwrites. A nil set
// clears them.
func (l *Ledger) UpdateOverwrites(ctx context.Context, teamID, memberID uuid.UUID, overwrites Overwrites) (*Member, error) {
	if overwrites == nil {
		overwrites = Overwrites{}
	}
	return l.Update(ctx, teamID, memberID, Patch{Overwrites: overwrites})
}

// Get returns a membership by id.
func (l *Ledger) Get(ctx context.Context, teamID, memberID uuid.UUID) (*Member, error) {
	return l.repo.GetByID(ctx, teamID, memberID)
}

// FindByUser returns the user's membership in the team.
func (l *Ledger) FindByUser(ctx context.Context, teamID, userID uuid.UUID) (*Member, error) {
	return l.repo.GetByUser(ctx, teamID, userID)
}

// List returns a page of the team's members.
func (l *Ledger) List(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[Member], error) {
	return l.repo.List(ctx, teamID, page)
}

// TeamsForUser returns a page of the teams userID belongs to.
func (l *Ledger) TeamsForUser(ctx context.Context, userID uuid.UUID, page database.Page) (*database.Result[team.Team], error) {
	return l.teams.ListForUser(ctx, userID, page)
}

// MemberCount returns the number of current members.
func (l *Ledger) MemberCount(ctx context.Context, teamID uuid.UUID) (int, error) {
	return l.repo.Count(ctx, teamID)
}

// PotentialMemberCount returns current members plus pending invitations.
func (l *Ledger) PotentialMemberCount(ctx context.Context, teamID uuid.UUID) (int, error) {
	members, err := l.repo.Count(ctx, teamID)
	if err != nil {
		return 0, err
	}
	invited, err := l.pending.CountPending(ctx, teamID, l.now())
	if err != nil {
		return 0, fmt.Errorf("counting pending invitations: %w", err)
	}
	return members + invited, nil
}

// HasPermission reports whether userID holds the named permission in the
// team: the plan default, unless the member carries an overwrite for it.
func (l *Ledger) HasPermission(ctx context.Context, teamID, userID uuid.UUID, permission string) (bool, error) {
	p, m, err := l.planAndMember(ctx, teamID, userID)
	if err != nil {
		return false, err
	}
	return Permission(p, m, permission), nil
}

// Permissions returns the user's effective permission set in the team.
func (l *Ledger) Permissions(ctx context.Context, teamID, userID uuid.UUID) (map[string]bool, error) {
	p, m, err := l.planAndMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	return EffectivePermissions(p, m), nil
}

func (l *Ledger) planAndMember(ctx context.Context, teamID, userID uuid.UUID) (plan.Plan, *Member, error) {
	p, err := l.plans.PlanFor(ctx, teamID)
	if err != nil {
		return plan.Plan{}, nil, err
	}
	t, err := l.teams.FindByID(ctx, teamID)
	if err != nil {
		return plan.Plan{}, nil, err
	}
	m, err := l.repo.GetByUser(ctx, teamID, userID)
	if err != nil && !errors.Is(err, ErrMemberNotFound) {
		return plan.Plan{}, nil, err
	}
	return p, Effective(m, t.OwnerUserID), nil
}
