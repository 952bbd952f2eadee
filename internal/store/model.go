package store

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Status is the lifecycle state of a user account.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusActive || s == StatusBlocked
}

// User represents a row in the users table. PasswordHash is only populated
// by GetUserByEmail; every other read returns the projection without it.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	Status       Status `json:"status"`
}

// UserUpdate is a partial update. Nil fields are left untouched.
type UserUpdate struct {
	Name   *string
	Role   *Role
	Status *Status
}

// Empty reports whether the update carries no fields.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Role == nil && u.Status == nil
}

// Form represents a row in the forms table. The creator fields never change
// after the form is created.
type Form struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedBy     string    `json:"createdBy"`
	CreatedByName string    `json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
	Status        string    `json:"status"`
}

// normalizeTime drops sub-second precision and the location so every backend
// stores and orders timestamps identically.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
