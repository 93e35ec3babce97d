package team

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
)

// maxSlugAttempts bounds the suffix search for a free slug.
const maxSlugAttempts = 100

// ErrSlugExhausted is returned when no free slug was found within maxSlugAttempts.
var ErrSlugExhausted = errors.New("no free slug available")

// ErrInvalidSuspension is returned when a suspension window ends before it starts.
var ErrInvalidSuspension = errors.New("suspension must not end before it starts")

// Directory owns team identity, slugs and suspension state.
type Directory struct {
	repo Repository
	tx   database.Transactor
	now  func() time.Time
}

// NewDirectory creates a new Directory.
func NewDirectory(repo Repository, tx database.Transactor) *Directory {
	return &Directory{repo: repo, tx: tx, now: time.Now}
}

// WithClock replaces the time source used for suspension checks.
func (d *Directory) WithClock(now func() time.Time) *Directory {
	d.now = now
	return d
}

// CreateTeam creates a team owned by ownerID with a slug derived from name.
func (d *Directory) CreateTeam(ctx context.Context, name string, ownerID uuid.UUID) (*Team, error) {
	name = strings.TrimSpace(name)
	t := &Team{Name: name, OwnerUserID: ownerID}

	err := d.claimSlug(ctx, Slugify(name), func(ctx context.Context, slug string) error {
		t.Slug = slug
		return d.repo.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Rename changes the team name. The slug is regenerated from the new name
// unless the current slug already belongs to the same base.
func (d *Directory) Rename(ctx context.Context, id uuid.UUID, name string) (*Team, error) {
	current, err := d.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	base := Slugify(name)
	if sameBase(current.Slug, base) {
		return d.repo.Rename(ctx, id, name, current.Slug)
	}

	var renamed *Team
	err = d.claimSlug(ctx, base, func(ctx context.Context, slug string) error {
		var err error
		renamed, err = d.repo.Rename(ctx, id, name, slug)
		return err
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

// claimSlug walks base, base-2, base-3, ... and calls write with the first
// candidate that is free. Each write runs in its own savepoint so a unique
// violation from a concurrent writer only costs one attempt.
func (d *Directory) claimSlug(ctx context.Context, base string, write func(ctx context.Context, slug string) error) error {
	for n := 1; n <= maxSlugAttempts; n++ {
		slug := slugCandidate(base, n)
		if err := validateSlug(slug); err != nil {
			return err
		}

		taken, err := d.repo.SlugExists(ctx, slug)
		if err != nil {
			return err
		}
		if taken {
			continue
		}

		err = d.tx.InTx(ctx, func(ctx context.Context) error {
			return write(ctx, slug)
		})
		if errors.Is(err, ErrDuplicateSlug) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w for %q", ErrSlugExhausted, base)
}

// FindByID returns a live team.
func (d *Directory) FindByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	return d.repo.GetByID(ctx, id)
}

// FindBySlug returns a live team.
func (d *Directory) FindBySlug(ctx context.Context, slug string) (*Team, error) {
	return d.repo.GetBySlug(ctx, slug)
}

// Lock serializes writers on the team until the surrounding transaction ends.
func (d *Directory) Lock(ctx context.Context, id uuid.UUID) error {
	return d.repo.Lock(ctx, id)
}

// List returns a page of all live teams.
func (d *Directory) List(ctx context.Context, page database.Page) (*database.Result[Team], error) {
	return d.repo.List(ctx, page)
}

// ListForUser returns a page of the teams userID belongs to.
func (d *Directory) ListForUser(ctx context.Context, userID uuid.UUID, page database.Page) (*database.Result[Team], error) {
	return d.repo.ListForUser(ctx, userID, page)
}

// Search returns teams whose id or owner id equals query, or whose name or
// slug contains it case-insensitively.
func (d *Directory) Search(ctx context.Context, query string, page database.Page) (*database.Result[Team], error) {
	return d.repo.Search(ctx, strings.TrimSpace(query), page)
}

// Suspend opens a suspension window starting at from. A nil until leaves it open-ended.
func (d *Directory) Suspend(ctx context.Context, id uuid.UUID, from time.Time, until *time.Time) (*Team, error) {
	if until != nil && until.Before(from) {
		return nil, ErrInvalidSuspension
	}
	return d.repo.SetSuspension(ctx, id, &from, until)
}

// Unsuspend clears the suspension window.
func (d *Directory) Unsuspend(ctx context.Context, id uuid.UUID) (*Team, error) {
	return d.repo.SetSuspension(ctx, id, nil, nil)
}

// IsSuspended evaluates the team's suspension window at the given time.
func (d *Directory) IsSuspended(t *Team, at time.Time) bool {
	return t.IsSuspended(at)
}

// SuspendedNow evaluates the suspension window against the directory clock.
func (d *Directory) SuspendedNow(t *Team) bool {
	return t.IsSuspended(d.now())
}

// Delete soft-deletes the team.
func (d *Directory) Delete(ctx context.Context, id uuid.UUID) error {
	return d.repo.SoftDelete(ctx, id)
}
