package validation

// TeamRequest mirrors the fields needed for create and rename validation.
type TeamRequest struct {
	Name string
}

// ValidateTeamRequest validates the fields of a create or rename team request.
func ValidateTeamRequest(req TeamRequest) []FieldError {
	return validateName("name", req.Name)
}
