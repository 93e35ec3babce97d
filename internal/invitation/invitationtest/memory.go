// Package invitationtest provides an in-memory invitation.Repository for tests.
package invitationtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/invitation"
)

// Repository is an in-memory invitation.Repository. Like the table's unique
// index, it holds at most one row per (team, lower(email)) regardless of expiry.
type Repository struct {
	mu          sync.Mutex
	invitations map[uuid.UUID]*invitation.Invitation
	seq         time.Time
}

// NewRepository creates an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		invitations: make(map[uuid.UUID]*invitation.Invitation),
		seq:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Seed stores an invitation as is, assigning an id when missing.
func (r *Repository) Seed(inv *invitation.Invitation) *invitation.Invitation {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.seq = r.seq.Add(time.Second)
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = r.seq
	}
	cp := *inv
	r.invitations[inv.ID] = &cp
	return inv
}

// Len returns the number of stored rows, expired ones included.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invitations)
}

func (r *Repository) Create(_ context.Context, inv *invitation.Invitation) error {
	r.mu.Lock()
	for _, x := range r.invitations {
		if x.TeamID == inv.TeamID && strings.EqualFold(x.Email, inv.Email) {
			r.mu.Unlock()
			return invitation.ErrDuplicateInvitation
		}
	}
	r.mu.Unlock()
	inv.ID = uuid.Nil
	inv.CreatedAt = time.Time{}
	r.Seed(inv)
	return nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, invitation.ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error) {
	return r.GetByID(ctx, id)
}

func (r *Repository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invitations[id]; !ok {
		return invitation.ErrInvitationNotFound
	}
	delete(r.invitations, id)
	return nil
}

func (r *Repository) DeleteExpiredFor(_ context.Context, teamID uuid.UUID, email string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, inv := range r.invitations {
		if inv.TeamID == teamID && strings.EqualFold(inv.Email, email) && inv.Expired(at) {
			delete(r.invitations, id)
		}
	}
	return nil
}

func (r *Repository) DeleteExpired(_ context.Context, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, inv := range r.invitations {
		if inv.Expired(at) {
			delete(r.invitations, id)
			n++
		}
	}
	return n, nil
}

func (r *Repository) pending(at time.Time, match func(inv *invitation.Invitation) bool) []invitation.Invitation {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []invitation.Invitation
	for _, inv := range r.invitations {
		if !inv.Expired(at) && match(inv) {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Repository) CountPending(_ context.Context, teamID uuid.UUID, at time.Time) (int, error) {
	return len(r.pending(at, func(inv *invitation.Invitation) bool { return inv.TeamID == teamID })), nil
}

func paginate(all []invitation.Invitation, page database.Page) *database.Result[invitation.Invitation] {
	page = page.Normalize()
	start := min(page.Offset(), len(all))
	end := min(start+page.Limit, len(all))
	return database.NewResult(all[start:end], len(all), page)
}

func (r *Repository) ListForEmail(_ context.Context, email string, at time.Time, page database.Page) (*database.Result[invitation.Invitation], error) {
	all := r.pending(at, func(inv *invitation.Invitation) bool { return strings.EqualFold(inv.Email, email) })
	return paginate(all, page), nil
}

func (r *Repository) ListForTeam(_ context.Context, teamID uuid.UUID, at time.Time, page database.Page) (*database.Result[invitation.Invitation], error) {
	all := r.pending(at, func(inv *invitation.Invitation) bool { return inv.TeamID == teamID })
	return paginate(all, page), nil
}
