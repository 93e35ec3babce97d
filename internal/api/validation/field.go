package validation

import "strings"

// maxNameLength bounds free-text names.
const maxNameLength = 255

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func validateName(field, value string) []FieldError {
	name := strings.TrimSpace(value)
	if name == "" {
		return []FieldError{{Field: field, Message: field + " is required"}}
	}
	if len(name) > maxNameLength {
		return []FieldError{{Field: field, Message: field + " must be at most 255 characters"}}
	}
	return nil
}
