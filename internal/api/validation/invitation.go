package validation

import (
	"github.com/daap14/teamhub/internal/invitation"
	"github.com/daap14/teamhub/internal/member"
)

// CreateInvitationRequest mirrors the fields needed for invitation validation.
type CreateInvitationRequest struct {
	Email string
	Group string
}

// ValidateCreateInvitationRequest validates the fields of an invite request.
// Owners are never invited; ownership stays with the creator.
func ValidateCreateInvitationRequest(req CreateInvitationRequest) []FieldError {
	var errs []FieldError

	errs = append(errs, validateEmail(req.Email)...)

	if req.Group == string(member.GroupOwner) {
		errs = append(errs, FieldError{Field: "group", Message: "group must be admin or member"})
	} else {
		errs = append(errs, validateGroup(req.Group)...)
	}

	return errs
}

func validateEmail(email string) []FieldError {
	normalized := invitation.NormalizeEmail(email)
	if normalized == "" {
		return []FieldError{{Field: "email", Message: "email is required"}}
	}
	if !invitation.ValidEmail(normalized) {
		return []FieldError{{Field: "email", Message: "email must be a valid address"}}
	}
	return nil
}
