package validation

import "strings"

// RenameFormRequest mirrors the fields needed for form rename validation.
type RenameFormRequest struct {
	Name *string
}

// ValidateRenameFormRequest validates the fields of a form rename request.
func ValidateRenameFormRequest(req RenameFormRequest) []FieldError {
	if req.Name == nil {
		return []FieldError{{Field: "name", Message: "name is required"}}
	}

	name := strings.TrimSpace(*req.Name)
	if name == "" {
		return []FieldError{{Field: "name", Message: "name cannot be empty"}}
	}
	if len(name) > maxNameLen {
		return []FieldError{{Field: "name", Message: "name must be at most 255 characters"}}
	}
	return nil
}
