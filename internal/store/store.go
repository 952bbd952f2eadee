package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert collides with an existing id or email.
var ErrDuplicate = errors.New("record already exists")

// Backend names the storage engine behind a Store.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
	BackendSQLite   Backend = "sqlite"
	BackendJSON     Backend = "jsonfile"
)

// Store is the persistence gateway over users and forms. All backends return
// the same results for the same sequence of calls.
type Store interface {
	// CreateUser inserts u and returns its id. A new UUID is assigned when
	// u.ID is empty.
	CreateUser(ctx context.Context, u *User) (string, error)
	// GetUserByEmail returns the full record including the password hash.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	ListUsersByStatus(ctx context.Context, status Status) ([]User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserStatus(ctx context.Context, id string, status Status) error
	UpdateUser(ctx context.Context, id string, upd UserUpdate) error

	CreateForm(ctx context.Context, f *Form) error
	ListForms(ctx context.Context) ([]Form, error)
	RenameForm(ctx context.Context, id, name string) error

	Backend() Backend
	Ping(ctx context.Context) error
	Close() error
}
