package validation

// FieldError describes a validation failure on a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// maxNameLen bounds display names for users and forms.
const maxNameLen = 255
