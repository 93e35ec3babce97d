// Package teamtest provides an in-memory team.Repository for tests.
package teamtest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/team"
)

// Repository is an in-memory team.Repository. Membership for ListForUser is
// supplied through Members.
type Repository struct {
	mu    sync.Mutex
	teams map[uuid.UUID]*team.Team
	seq   time.Time

	// Members maps a user to the teams they belong to.
	Members map[uuid.UUID][]uuid.UUID
	// CreateHook, when set, runs before each insert and may reject it.
	CreateHook func(t *team.Team) error
	// Locks counts Lock calls per team.
	Locks map[uuid.UUID]int
}

// NewRepository creates an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		teams:   make(map[uuid.UUID]*team.Team),
		seq:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Members: make(map[uuid.UUID][]uuid.UUID),
		Locks:   make(map[uuid.UUID]int),
	}
}

// Seed stores a team as is, assigning an id when missing.
func (r *Repository) Seed(t *team.Team) *team.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.seq = r.seq.Add(time.Second)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.seq
		t.UpdatedAt = r.seq
	}
	cp := *t
	r.teams[t.ID] = &cp
	return t
}

func (r *Repository) live(id uuid.UUID) (*team.Team, bool) {
	t, ok := r.teams[id]
	if !ok || t.DeletedAt != nil {
		return nil, false
	}
	return t, true
}

func (r *Repository) slugTaken(slug string, except uuid.UUID) bool {
	for _, t := range r.teams {
		if t.DeletedAt == nil && t.Slug == slug && t.ID != except {
			return true
		}
	}
	return false
}

func (r *Repository) Create(_ context.Context, t *team.Team) error {
	if r.CreateHook != nil {
		if err := r.CreateHook(t); err != nil {
			return err
		}
	}
	r.mu.Lock()
	taken := r.slugTaken(t.Slug, uuid.Nil)
	r.mu.Unlock()
	if taken {
		return team.ErrDuplicateSlug
	}
	t.ID = uuid.Nil
	t.CreatedAt = time.Time{}
	r.Seed(t)
	return nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.live(id)
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *Repository) GetBySlug(_ context.Context, slug string) (*team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.teams {
		if t.DeletedAt == nil && t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, team.ErrTeamNotFound
}

func (r *Repository) SlugExists(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slugTaken(slug, uuid.Nil), nil
}

func (r *Repository) Lock(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live(id); !ok {
		return team.ErrTeamNotFound
	}
	r.Locks[id]++
	return nil
}

func (r *Repository) filter(match func(t *team.Team) bool, page database.Page) *database.Result[team.Team] {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []team.Team
	for _, t := range r.teams {
		if t.DeletedAt == nil && match(t) {
			all = append(all, *t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	page = page.Normalize()
	start := min(page.Offset(), len(all))
	end := min(start+page.Limit, len(all))
	return database.NewResult(all[start:end], len(all), page)
}

func (r *Repository) List(_ context.Context, page database.Page) (*database.Result[team.Team], error) {
	return r.filter(func(*team.Team) bool { return true }, page), nil
}

func (r *Repository) ListForUser(_ context.Context, userID uuid.UUID, page database.Page) (*database.Result[team.Team], error) {
	r.mu.Lock()
	ids := append([]uuid.UUID(nil), r.Members[userID]...)
	r.mu.Unlock()
	return r.filter(func(t *team.Team) bool {
		for _, id := range ids {
			if id == t.ID {
				return true
			}
		}
		return false
	}, page), nil
}

func (r *Repository) Search(_ context.Context, query string, page database.Page) (*database.Result[team.Team], error) {
	q := strings.ToLower(query)
	return r.filter(func(t *team.Team) bool {
		return t.ID.String() == q || t.OwnerUserID.String() == q ||
			strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Slug), q)
	}, page), nil
}

func (r *Repository) Rename(_ context.Context, id uuid.UUID, name, slug string) (*team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.live(id)
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	if r.slugTaken(slug, id) {
		return nil, team.ErrDuplicateSlug
	}
	t.Name = name
	t.Slug = slug
	cp := *t
	return &cp, nil
}

func (r *Repository) SetSuspension(_ context.Context, id uuid.UUID, from, to *time.Time) (*team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.live(id)
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	t.SuspendedAt = from
	t.SuspendedTo = to
	cp := *t
	return &cp, nil
}

func (r *Repository) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.live(id)
	if !ok {
		return team.ErrTeamNotFound
	}
	now := time.Now().UTC()
	t.DeletedAt = &now
	return nil
}
