package member

import (
	"time"

	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/plan"
)

// Group is the role a member holds inside a team.
type Group string

const (
	GroupOwner  Group = "owner"
	GroupAdmin  Group = "admin"
	GroupMember Group = "member"
)

// Groups returns the closed set of valid groups.
func Groups() []Group {
	return []Group{GroupOwner, GroupAdmin, GroupMember}
}

// Valid reports whether g is one of Groups.
func (g Group) Valid() bool {
	switch g {
	case GroupOwner, GroupAdmin, GroupMember:
		return true
	}
	return false
}

// ParseGroup converts s into a Group.
func ParseGroup(s string) (Group, error) {
	g := Group(s)
	if !g.Valid() {
		return "", ErrInvalidGroup
	}
	return g, nil
}

// Overwrites are per-member permission values that take precedence over the
// team's plan.
type Overwrites map[string]bool

// Member represents a row in the team_members table.
type Member struct {
	ID         uuid.UUID
	TeamID     uuid.UUID
	UserID     uuid.UUID
	Group      Group
	Overwrites Overwrites
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Effective returns m as it counts in a team owned by ownerID. The owner
// always acts as GroupOwner without overwrites, and a stored GroupOwner on
// anyone else counts as GroupAdmin.
func Effective(m *Member, ownerID uuid.UUID) *Member {
	if m == nil {
		return nil
	}
	out := *m
	switch {
	case m.UserID == ownerID:
		out.Group = GroupOwner
		out.Overwrites = Overwrites{}
	case m.Group == GroupOwner:
		out.Group = GroupAdmin
	}
	return &out
}

// Permission evaluates a permission for m under plan p. A nil member gets the
// plan default.
func Permission(p plan.Plan, m *Member, name string) bool {
	if m != nil {
		if v, ok := m.Overwrites[name]; ok {
			return v
		}
	}
	return p.Allows(name)
}

// EffectivePermissions returns the plan's permission set overlaid with m's overwrites.
func EffectivePermissions(p plan.Plan, m *Member) map[string]bool {
	out := make(map[string]bool, len(p.Permissions))
	for k, v := range p.Permissions {
		out[k] = v
	}
	if m != nil {
		for k, v := range m.Overwrites {
			out[k] = v
		}
	}
	return out
}
