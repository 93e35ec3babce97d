package member

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
)

// ErrMemberNotFound is returned when a membership record is not found.
var ErrMemberNotFound = errors.New("member not found")

// ErrDuplicateMembership is returned when the user already belongs to the team.
var ErrDuplicateMembership = errors.New("user is already a member of the team")

// ErrInvalidGroup is returned for a group outside Groups.
var ErrInvalidGroup = errors.New("invalid group")

// Repository provides operations on the team_members table. Every lookup is
// scoped to a team.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, teamID, id uuid.UUID) (*Member, error)
	GetByUser(ctx context.Context, teamID, userID uuid.UUID) (*Member, error)
	List(ctx context.Context, teamID uuid.UUID, page database.Page) (*database.Result[Member], error)
	Count(ctx context.Context, teamID uuid.UUID) (int, error)
	UpdateGroup(ctx context.Context, teamID, id uuid.UUID, group Group) (*Member, error)
	UpdateOverwrites(ctx context.Context, teamID, id uuid.UUID, overwrites Overwrites) (*Member, error)
	Delete(ctx context.Context, teamID, id uuid.UUID) error
}
