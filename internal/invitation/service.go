package invitation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/member"
)

// ErrIdentityMismatch is returned when the acting user's email is not the
// invitation's address.
var ErrIdentityMismatch = errors.New("invitation belongs to another email address")

// ErrInvalidEmail is returned for addresses that fail validation.
var ErrInvalidEmail = errors.New("invalid email address")

// Ledger is the part of the membership ledger invitations depend on.
type Ledger interface {
	CheckCapacity(ctx context.Context, teamID uuid.UUID) error
	AddFromInvitation(ctx context.Context, teamID, userID uuid.UUID, group member.Group) (*member.Member, error)
}

// Workflow moves invitations from pending to accepted, declined or revoked.
type Workflow struct {
	repo   Repository
	ledger Ledger
	tx     database.Transactor
	ttl    time.Duration
	now    func() time.Time
}

// NewWorkflow creates a new Workflow. A zero ttl creates invitations that never expire.
func NewWorkflow(repo Repository, ledger Ledger, tx database.Transactor, ttl time.Duration) *Workflow {
	return &Workflow{repo: repo, ledger: ledger, tx: tx, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source used for expiry.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// Invite creates a pending invitation for email. The invitation reserves a
// member slot, so the team's capacity is checked under the team lock.
func (w *Workflow) Invite(ctx context.Context, teamID uuid.UUID, email, group string) (*Invitation, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	g, err := member.ParseGroup(group)
	if err != nil {
		return nil, err
	}
	if g == member.GroupOwner {
		return nil, member.ErrOwnerMembership
	}

	now := w.now()
	inv := &Invitation{TeamID: teamID, Email: email, Group: g}
	if w.ttl > 0 {
		expires := now.Add(w.ttl)
		inv.ExpiresAt = &expires
	}

	err = w.tx.InTx(ctx, func(ctx context.Context) error {
		if err := w.ledger.CheckCapacity(ctx, teamID); err != nil {
			return err
		}
		if err := w.repo.DeleteExpiredFor(ctx, teamID, email, now); err != nil {
			return err
		}
		return w.repo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Get returns a pending invitation.
func (w *Workflow) Get(ctx context.Context, id uuid.UUID) (*Invitation, error) {
	inv, err := w.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.Expired(w.now()) {
		return nil, ErrInvitationNotFound
	}
	return inv, nil
}

// Accept turns the invitation into a membership for actor. The member is
// created and the invitation deleted in one transaction; on any failure the
// invitation stays pending.
func (w *Workflow) Accept(ctx context.Context, id uuid.UUID, actor Actor) (*member.Member, error) {
	var m *member.Member
	err := w.tx.InTx(ctx, func(ctx context.Context) error {
		inv, err := w.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := w.checkAddressee(inv, actor); err != nil {
			return err
		}

		m, err = w.ledger.AddFromInvitation(ctx, inv.TeamID, actor.UserID, inv.Group)
		if err != nil {
			return err
		}
		return w.repo.Delete(ctx, inv.ID)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Decline deletes the invitation without creating a membership.
func (w *Workflow) Decline(ctx context.Context, id uuid.UUID, actor Actor) error {
	inv, err := w.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := w.checkAddressee(inv, actor); err != nil {
		return err
	}
	return w.repo.Delete(ctx, inv.ID)
}

// Revoke cancels a pending invitation from the team's side.
func (w *Workflow) Revoke(ctx context.Context, teamID, id uuid.UUID) error {
	inv, err := w.Get(ctx, id)
	if err != nil {
		return err
	}
	if inv.TeamID != teamID {
		return ErrInvitationNotFound
	}
	return w.repo.Delete(ctx, inv.ID)
}

func (w *Workflow) checkAddressee(inv *Invitation, actor Actor) error {
	if inv.Expired(w.now()) {
		return ErrInvitationNotFound
	}
	if NormalizeEmail(actor.Email) != NormalizeEmail(inv.Email) {
		return ErrIdentityMismatch
	}
	return nil
}

// ListForEmail returns the pending invitations addressed to email.
func (w *Workflow) ListForEmail(ctx context.Context, email string, page database.Page) (*database.Result[Invitation], error) {
	return w.repo.ListForEmail(ctx, NormalizeEmail(email), w.now(), page)
}

// ListForTeam returns the team's pending invitations.
func (w *Workflow) ListForTeam(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[Invitation], error) {
	return w.repo.ListForTeam(ctx, teamID, w.now(), page)
}

// PurgeExpired deletes every invitation that has expired.
func (w *Workflow) PurgeExpired(ctx context.Context) (int64, error) {
	return w.repo.DeleteExpired(ctx, w.now())
}
