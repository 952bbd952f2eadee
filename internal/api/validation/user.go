package validation

import (
	"strings"

	"github.com/daap14/formadmin/internal/store"
)

// UpdateUserRequest mirrors the optional fields of a user update. A nil field
// is absent from the request.
type UpdateUserRequest struct {
	Role   *string
	Name   *string
	Status *string
}

// HasAnyField reports whether at least one field carries a non-empty value.
func (r UpdateUserRequest) HasAnyField() bool {
	return nonEmpty(r.Role) || nonEmpty(r.Name) || nonEmpty(r.Status)
}

// ValidateUpdateUserRequest validates the values of the supplied fields.
func ValidateUpdateUserRequest(req UpdateUserRequest) []FieldError {
	var errs []FieldError

	if nonEmpty(req.Role) && !store.Role(*req.Role).Valid() {
		errs = append(errs, FieldError{Field: "role", Message: "role must be one of: admin, user"})
	}
	if nonEmpty(req.Status) && !store.Status(*req.Status).Valid() {
		errs = append(errs, FieldError{Field: "status", Message: "status must be one of: pending, active, blocked"})
	}
	if nonEmpty(req.Name) && len(strings.TrimSpace(*req.Name)) > maxNameLen {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	return errs
}

// ToUpdate converts the non-empty fields into a store update.
func (r UpdateUserRequest) ToUpdate() store.UserUpdate {
	var upd store.UserUpdate
	if nonEmpty(r.Role) {
		role := store.Role(*r.Role)
		upd.Role = &role
	}
	if nonEmpty(r.Name) {
		name := strings.TrimSpace(*r.Name)
		upd.Name = &name
	}
	if nonEmpty(r.Status) {
		status := store.Status(*r.Status)
		upd.Status = &status
	}
	return upd
}

func nonEmpty(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
