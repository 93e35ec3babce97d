// Package membertest provides an in-memory member.Repository for tests.
package membertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
	"github.com/daap14/teamhub/internal/member"
)

// Repository is an in-memory member.Repository enforcing one membership per
// (team, user) pair.
type Repository struct {
	mu      sync.Mutex
	members map[uuid.UUID]*member.Member
	seq     time.Time
}

// NewRepository creates an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		members: make(map[uuid.UUID]*member.Member),
		seq:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func clone(m *member.Member) *member.Member {
	cp := *m
	cp.Overwrites = make(member.Overwrites, len(m.Overwrites))
	for k, v := range m.Overwrites {
		cp.Overwrites[k] = v
	}
	return &cp
}

func (r *Repository) find(teamID uuid.UUID, match func(m *member.Member) bool) *member.Member {
	for _, m := range r.members {
		if m.TeamID == teamID && match(m) {
			return m
		}
	}
	return nil
}

func (r *Repository) Create(_ context.Context, m *member.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(m.TeamID, func(x *member.Member) bool { return x.UserID == m.UserID }) != nil {
		return member.ErrDuplicateMembership
	}
	if m.Overwrites == nil {
		m.Overwrites = member.Overwrites{}
	}
	m.ID = uuid.New()
	r.seq = r.seq.Add(time.Second)
	m.CreatedAt = r.seq
	m.UpdatedAt = r.seq
	r.members[m.ID] = clone(m)
	return nil
}

func (r *Repository) GetByID(_ context.Context, teamID, id uuid.UUID) (*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok || m.TeamID != teamID {
		return nil, member.ErrMemberNotFound
	}
	return clone(m), nil
}

func (r *Repository) GetByUser(_ context.Context, teamID, userID uuid.UUID) (*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(teamID, func(x *member.Member) bool { return x.UserID == userID })
	if m == nil {
		return nil, member.ErrMemberNotFound
	}
	return clone(m), nil
}

func (r *Repository) List(_ context.Context, teamID uuid.UUID, page database.Page) (*database.Result[member.Member], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []member.Member
	for _, m := range r.members {
		if m.TeamID == teamID {
			all = append(all, *clone(m))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	page = page.Normalize()
	start := min(page.Offset(), len(all))
	end := min(start+page.Limit, len(all))
	return database.NewResult(all[start:end], len(all), page), nil
}

func (r *Repository) Count(_ context.Context, teamID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.members {
		if m.TeamID == teamID {
			n++
		}
	}
	return n, nil
}

func (r *Repository) update(teamID, id uuid.UUID, fn func(m *member.Member)) (*member.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok || m.TeamID != teamID {
		return nil, member.ErrMemberNotFound
	}
	fn(m)
	r.seq = r.seq.Add(time.Second)
	m.UpdatedAt = r.seq
	return clone(m), nil
}

func (r *Repository) UpdateGroup(_ context.Context, teamID, id uuid.UUID, group member.Group) (*member.Member, error) {
	return r.update(teamID, id, func(m *member.Member) { m.Group = group })
}

func (r *Repository) UpdateOverwrites(_ context.Context, teamID, id uuid.UUID, overwrites member.Overwrites) (*member.Member, error) {
	return r.update(teamID, id, func(m *member.Member) {
		m.Overwrites = member.Overwrites{}
		for k, v := range overwrites {
			m.Overwrites[k] = v
		}
	})
}

func (r *Repository) Delete(_ context.Context, teamID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok || m.TeamID != teamID {
		return member.ErrMemberNotFound
	}
	delete(r.members, id)
	return nil
}
