package plan

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"
)

// Permission names understood by the entitlement layer.
const (
	PermissionViewTeam          = "team.view"
	PermissionUpdateTeam        = "team.update"
	PermissionDeleteTeam        = "team.delete"
	PermissionViewMembers       = "members.view"
	PermissionManageMembers     = "members.manage"
	PermissionManageInvitations = "invitations.manage"
)

// KnownPermissions returns every permission name the entitlement layer checks.
func KnownPermissions() []string {
	return []string{
		PermissionViewTeam,
		PermissionUpdateTeam,
		PermissionDeleteTeam,
		PermissionViewMembers,
		PermissionManageMembers,
		PermissionManageInvitations,
	}
}

// DefaultFreePlan is the identifier of the built-in free plan.
const DefaultFreePlan = "free"

// ErrUnknownPlan is returned when an operation names a plan that is not registered.
var ErrUnknownPlan = errors.New("unknown plan")

// Registry maps plan identifiers to plans. It is read-only after construction.
type Registry struct {
	plans  map[string]Plan
	freeID string
}

// NewRegistry builds a registry from the given plans. freeID must name one of them.
func NewRegistry(freeID string, plans ...Plan) (*Registry, error) {
	r := &Registry{plans: make(map[string]Plan, len(plans)), freeID: freeID}
	for _, p := range plans {
		if p.ID == "" {
			return nil, errors.New("plan id is required")
		}
		if p.Members < 0 {
			return nil, fmt.Errorf("plan %q: members must not be negative", p.ID)
		}
		if p.Permissions == nil {
			p.Permissions = map[string]bool{}
		}
		r.plans[p.ID] = p
	}
	if _, ok := r.plans[freeID]; !ok {
		return nil, fmt.Errorf("free plan %q is not defined: %w", freeID, ErrUnknownPlan)
	}
	return r, nil
}

// Defaults returns the built-in plans used when no plan file is configured.
func Defaults() []Plan {
	all := func() map[string]bool {
		perms := make(map[string]bool)
		for _, name := range KnownPermissions() {
			perms[name] = true
		}
		return perms
	}
	return []Plan{
		{ID: DefaultFreePlan, Name: "Free", Members: 3, Permissions: all()},
		{ID: "pro", Name: "Pro", Members: 0, Permissions: all()},
	}
}

type planFile struct {
	Plans []Plan `json:"plans"`
}

// Load reads plans from a YAML file. An empty path yields the built-in defaults.
func Load(path, freeID string) (*Registry, error) {
	if path == "" {
		return NewRegistry(freeID, Defaults()...)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plans file: %w", err)
	}
	return Parse(raw, freeID)
}

// Parse decodes a YAML plan document.
func Parse(raw []byte, freeID string) (*Registry, error) {
	var f planFile
	if err := yaml.UnmarshalStrict(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing plans file: %w", err)
	}
	return NewRegistry(freeID, f.Plans...)
}

// Resolve returns the plan registered under id. Unknown identifiers resolve
// to the free plan.
func (r *Registry) Resolve(id string) Plan {
	if p, ok := r.plans[id]; ok {
		return p
	}
	return r.plans[r.freeID]
}

// Lookup returns the plan registered under id without falling back.
func (r *Registry) Lookup(id string) (Plan, bool) {
	p, ok := r.plans[id]
	return p, ok
}

// Free returns the plan applied to teams without an active subscription.
func (r *Registry) Free() Plan {
	return r.plans[r.freeID]
}

// Permissions returns a copy of the plan's permission set.
func (r *Registry) Permissions(p Plan) map[string]bool {
	out := make(map[string]bool, len(p.Permissions))
	for k, v := range p.Permissions {
		out[k] = v
	}
	return out
}

// Names returns a sorted list of all registered plan identifiers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.plans))
	for id := range r.plans {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
