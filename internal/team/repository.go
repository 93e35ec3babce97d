package team

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
)

// ErrTeamNotFound is returned when a team record is not found or is soft-deleted.
var ErrTeamNotFound = errors.New("team not found")

// ErrDuplicateSlug is returned when another live team already holds the slug.
var ErrDuplicateSlug = errors.New("team slug already exists")

// Repository provides operations on the teams table. Soft-deleted rows are
// invisible to every read.
type Repository interface {
	Create(ctx context.Context, t *Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	GetBySlug(ctx context.Context, slug string) (*Team, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Lock takes a row lock on the team for the rest of the surrounding transaction.
	Lock(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page database.Page) (*database.Result[Team], error)
	ListForUser(ctx context.Context, userID uuid.UUID, page database.Page) (*database.Result[Team], error)
	Search(ctx context.Context, query string, page database.Page) (*database.Result[Team], error)
	Rename(ctx context.Context, id uuid.UUID, name, slug string) (*Team, error)
	SetSuspension(ctx context.Context, id uuid.UUID, from, to *time.Time) (*Team, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
