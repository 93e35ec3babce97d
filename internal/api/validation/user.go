package validation

// CreateUserRequest mirrors the fields needed for create user validation.
type CreateUserRequest struct {
	Name  string
	Email string
}

// ValidateCreateUserRequest validates the fields of a create user request.
func ValidateCreateUserRequest(req CreateUserRequest) []FieldError {
	errs := validateName("name", req.Name)
	return append(errs, validateEmail(req.Email)...)
}
