package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/daap14/teamhub/internal/member"
	"github.com/daap14/teamhub/internal/plan"
)

// UpdateMemberRequest mirrors the fields of a member PATCH. Nil fields are
// left unchanged.
type UpdateMemberRequest struct {
	Group      *string
	Overwrites map[string]bool
}

// ValidateUpdateMemberRequest validates the fields of a member update request.
func ValidateUpdateMemberRequest(req UpdateMemberRequest) []FieldError {
	var errs []FieldError

	if req.Group == nil && req.Overwrites == nil {
		errs = append(errs, FieldError{Field: "group", Message: "at least one of group or overwrites is required"})
	}

	if req.Group != nil {
		errs = append(errs, validateGroup(*req.Group)...)
	}

	known := make(map[string]bool)
	for _, name := range plan.KnownPermissions() {
		known[name] = true
	}
	keys := make([]string, 0, len(req.Overwrites))
	for k := range req.Overwrites {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !known[k] {
			errs = append(errs, FieldError{
				Field:   "overwrites." + k,
				Message: fmt.Sprintf("unknown permission %q", k),
			})
		}
	}

	return errs
}

func validateGroup(group string) []FieldError {
	if group == "" {
		return []FieldError{{Field: "group", Message: "group is required"}}
	}
	if !member.Group(group).Valid() {
		names := make([]string, 0, len(member.Groups()))
		for _, g := range member.Groups() {
			names = append(names, string(g))
		}
		return []FieldError{{Field: "group", Message: "group must be one of " + strings.Join(names, ", ")}}
	}
	return nil
}
