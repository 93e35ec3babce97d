package invitation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/database"
)

// ErrInvitationNotFound is returned when an invitation does not exist or has expired.
var ErrInvitationNotFound = errors.New("invitation not found")

// ErrDuplicateInvitation is returned when the email already has a pending
// invitation to the team.
var ErrDuplicateInvitation = errors.New("email already has a pending invitation to this team")

// Repository provides operations on the team_invitations table. Methods that
// take a time only see invitations still pending at that time.
type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Invitation, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Invitation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpiredFor(ctx context.Context, teamID uuid.UUID, email string, at time.Time) error
	DeleteExpired(ctx context.Context, at time.Time) (int64, error)
	CountPending(ctx context.Context, teamID uuid.UUID, at time.Time) (int, error)
	ListForEmail(ctx context.Context, email string, at time.Time, page database.Page) (*database.Result[Invitation], error)
	ListForTeam(ctx context.Context, teamID uuid.UUID, at time.Time, page database.Page) (*database.Result[Invitation], error)
}
