package team

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a row in the teams table.
type Team struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	OwnerUserID uuid.UUID
	SuspendedAt *time.Time
	SuspendedTo *time.Time // nil means open-ended
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// IsSuspended reports whether at falls inside the suspension window. The
// window is [SuspendedAt, SuspendedTo] when SuspendedTo is set and
// [SuspendedAt, ∞) otherwise.
func (t *Team) IsSuspended(at time.Time) bool {
	if t.SuspendedAt == nil || at.Before(*t.SuspendedAt) {
		return false
	}
	return t.SuspendedTo == nil || !t.SuspendedTo.Before(at)
}
