package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const pgUniqueViolation = "23505"

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL, applies migrations and returns the store.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// The *sql.DB borrows connections from pool; it keeps no idle conns of its own.
	if err := Migrate(ctx, stdlib.OpenDBFromPool(pool), BackendPostgres); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStore wraps an existing pool. Migrations are not applied.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Backend() Backend { return BackendPostgres }

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateUser inserts a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, u *User) (string, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Status)
	if err != nil {
		if isPgUniqueViolation(err) {
			return "", ErrDuplicate
		}
		return "", fmt.Errorf("inserting user: %w", err)
	}

	return u.ID, nil
}

// GetUserByEmail retrieves a user, including the password hash, by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, role, status
		FROM users
		WHERE email = $1`

	var u User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return &u, nil
}

// GetUserByID retrieves the public projection of a user.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, name, role, status
		FROM users
		WHERE id = $1`

	var u User
	err := s.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return &u, nil
}

// ListUsersByStatus returns users in the given status ordered by email.
func (s *PostgresStore) ListUsersByStatus(ctx context.Context, status Status) ([]User, error) {
	query := `
		SELECT id, email, name, role, status
		FROM users
		WHERE status = $1
		ORDER BY email COLLATE "C" ASC`

	return s.queryUsers(ctx, query, status)
}

// ListUsers returns every user ordered by email.
func (s *PostgresStore) ListUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, email, name, role, status
		FROM users
		ORDER BY email COLLATE "C" ASC`

	return s.queryUsers(ctx, query)
}

func (s *PostgresStore) queryUsers(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Status); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

// UpdateUserStatus sets the status of a user.
func (s *PostgresStore) UpdateUserStatus(ctx context.Context, id string, status Status) error {
	_, err := s.pool.Exec(ctx, "UPDATE users SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("updating user status: %w", err)
	}
	return nil
}

// UpdateUser applies the non-nil fields of upd in a single statement.
func (s *PostgresStore) UpdateUser(ctx context.Context, id string, upd UserUpdate) error {
	if upd.Empty() {
		return nil
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Role != nil {
		add("role", *upd.Role)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// CreateForm inserts a form record.
func (s *PostgresStore) CreateForm(ctx context.Context, f *Form) error {
	query := `
		INSERT INTO forms (id, name, created_by, created_by_name, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		f.ID, f.Name, f.CreatedBy, f.CreatedByName, normalizeTime(f.CreatedAt), f.Status,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting form: %w", err)
	}
	return nil
}

// ListForms returns every form ordered by creation time.
func (s *PostgresStore) ListForms(ctx context.Context) ([]Form, error) {
	query := `
		SELECT id, name, created_by, created_by_name, created_at, status
		FROM forms
		ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	defer rows.Close()

	forms := []Form{}
	for rows.Next() {
		var f Form
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedBy, &f.CreatedByName, &f.CreatedAt, &f.Status); err != nil {
			return nil, fmt.Errorf("scanning form row: %w", err)
		}
		f.CreatedAt = f.CreatedAt.UTC()
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating form rows: %w", err)
	}

	return forms, nil
}

// RenameForm changes the name of a form.
func (s *PostgresStore) RenameForm(ctx context.Context, id, name string) error {
	if _, err := s.pool.Exec(ctx, "UPDATE forms SET name = $1 WHERE id = $2", name, id); err != nil {
		return fmt.Errorf("renaming form: %w", err)
	}
	return nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
