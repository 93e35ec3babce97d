package invitation

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/member"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// Invitation represents a pending row in the team_invitations table.
type Invitation struct {
	ID        uuid.UUID
	TeamID    uuid.UUID
	Email     string
	Group     member.Group
	CreatedAt time.Time
	// ExpiresAt is nil for invitations that never expire.
	ExpiresAt *time.Time

	// TeamName and TeamSlug describe the inviting team on reads.
	TeamName string
	TeamSlug string
}

// Expired reports whether the invitation no longer reserves a slot at the given time.
func (i *Invitation) Expired(at time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(at)
}

// Actor is the authenticated user answering an invitation.
type Actor struct {
	UserID uuid.UUID
	Email  string
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether a normalized address looks deliverable.
func ValidEmail(email string) bool {
	return len(email) <= 254 && emailRegex.MatchString(email)
}
