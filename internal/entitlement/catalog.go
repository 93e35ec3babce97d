// Package entitlement decides whether a user may perform an action on a team.
// Every team-scoped handler asks the Evaluator before touching the ledger.
package entitlement

import (
	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/plan"
)

// Action names a team-scoped operation.
type Action string

const (
	ActionViewTeam          Action = "team.view"
	ActionUpdateTeam        Action = "team.update"
	ActionDeleteTeam        Action = "team.delete"
	ActionLeaveTeam         Action = "team.leave"
	ActionViewMembers       Action = "members.view"
	ActionManageMembers     Action = "members.manage"
	ActionViewInvitations   Action = "invitations.view"
	ActionManageInvitations Action = "invitations.manage"
)

// Rule describes what an action requires.
type Rule struct {
	// MemberScoped actions are only open to members of the team.
	MemberScoped bool
	// SuspensionGated actions are denied while the team is suspended.
	SuspensionGated bool
	// Groups lists the groups allowed to act. Empty means any group.
	Groups []member.Group
	// Permission, when set, must be part of the member's effective permissions.
	Permission string
}

func (r Rule) allowsGroup(g member.Group) bool {
	if len(r.Groups) == 0 {
		return true
	}
	for _, allowed := range r.Groups {
		if allowed == g {
			return true
		}
	}
	return false
}

// Catalog maps every known action to its rule.
type Catalog map[Action]Rule

var managers = []member.Group{member.GroupOwner, member.GroupAdmin}

// DefaultCatalog returns the built-in action rules.
func DefaultCatalog() Catalog {
	return Catalog{
		ActionViewTeam: {
			MemberScoped: true,
			Permission:   plan.PermissionViewTeam,
		},
		ActionUpdateTeam: {
			MemberScoped:    true,
			SuspensionGated: true,
			Groups:          managers,
			Permission:      plan.PermissionUpdateTeam,
		},
		ActionDeleteTeam: {
			MemberScoped:    true,
			SuspensionGated: true,
			Groups:          []member.Group{member.GroupOwner},
			Permission:      plan.PermissionDeleteTeam,
		},
		ActionLeaveTeam: {
			MemberScoped: true,
		},
		ActionViewMembers: {
			MemberScoped: true,
			Permission:   plan.PermissionViewMembers,
		},
		ActionManageMembers: {
			MemberScoped:    true,
			SuspensionGated: true,
			Groups:          managers,
			Permission:      plan.PermissionManageMembers,
		},
		ActionViewInvitations: {
			MemberScoped: true,
			Groups:       managers,
		},
		ActionManageInvitations: {
			MemberScoped:    true,
			SuspensionGated: true,
			Groups:          managers,
			Permission:      plan.PermissionManageInvitations,
		},
	}
}
