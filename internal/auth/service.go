package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/daap14/formadmin/internal/store"
)

var (
	// ErrUserNotFound is returned when no account matches the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrPendingApproval is returned when the account has not been approved yet.
	ErrPendingApproval = errors.New("user pending approval")
	// ErrUserBlocked is returned when the account has been blocked.
	ErrUserBlocked = errors.New("user blocked")
	// ErrBadCredentials is returned when the password does not match.
	ErrBadCredentials = errors.New("incorrect password")
	// ErrDuplicateEmail is returned when registering an email that is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// AdminAccount describes the principal administrator created at bootstrap.
type AdminAccount struct {
	ID       string
	Email    string
	Password string
	Name     string
}

// BootstrapResult reports the outcome of Bootstrap. Conflict is set when the
// admin email belongs to an account that is not an active administrator; no
// principal admin exists in that case.
type BootstrapResult struct {
	Created  bool   `json:"created"`
	ID       string `json:"id"`
	Conflict bool   `json:"conflict,omitempty"`
}

// Service provides credential operations over a store.
type Service struct {
	store    store.Store
	hasher   *Hasher
	sessions *Sessions
	admin    AdminAccount
}

// NewService creates a new auth Service.
func NewService(s store.Store, hasher *Hasher, sessions *Sessions, admin AdminAccount) *Service {
	admin.Email = NormalizeEmail(admin.Email)
	return &Service{
		store:    s,
		hasher:   hasher,
		sessions: sessions,
		admin:    admin,
	}
}

// Sessions returns the session codec used by the service.
func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// IsPrincipalAdmin reports whether id is the bootstrap administrator.
func (s *Service) IsPrincipalAdmin(id string) bool {
	return id != "" && id == s.admin.ID
}

// Login checks the credentials for email and issues a session. Account state
// is checked before the password, so pending and blocked accounts are rejected
// whatever password is given.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, *Session, error) {
	u, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	switch u.Status {
	case store.StatusPending:
		return nil, nil, ErrPendingApproval
	case store.StatusBlocked:
		return nil, nil, ErrUserBlocked
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, nil, ErrBadCredentials
	}

	sess, err := s.sessions.Issue(u)
	if err != nil {
		return nil, nil, err
	}

	u.PasswordHash = ""
	return u, sess, nil
}

// Register creates a pending account and returns its id. No session is issued.
func (s *Service) Register(ctx context.Context, email, name, password string) (string, error) {
	email = NormalizeEmail(email)

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return "", ErrDuplicateEmail
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	id, err := s.store.CreateUser(ctx, &store.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         store.RoleUser,
		Status:       store.StatusPending,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return "", ErrDuplicateEmail
		}
		return "", fmt.Errorf("creating user: %w", err)
	}

	slog.Info("user registered", "userId", id)
	return id, nil
}

// Bootstrap creates the principal administrator unless an account with its
// email or id already exists. An existing non-admin holder of the email is
// left untouched and reported through Conflict. It is safe to call repeatedly.
func (s *Service) Bootstrap(ctx context.Context) (BootstrapResult, error) {
	u, err := s.store.GetUserByEmail(ctx, s.admin.Email)
	if err == nil {
		conflict := u.Role != store.RoleAdmin || u.Status != store.StatusActive
		return BootstrapResult{Created: false, ID: u.ID, Conflict: conflict}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return BootstrapResult{}, fmt.Errorf("looking up principal admin: %w", err)
	}

	if _, err := s.store.GetUserByID(ctx, s.admin.ID); err == nil {
		return BootstrapResult{Created: false, ID: s.admin.ID}, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return BootstrapResult{}, fmt.Errorf("looking up principal admin: %w", err)
	}

	hash, err := s.hasher.Hash(s.admin.Password)
	if err != nil {
		return BootstrapResult{}, err
	}

	id, err := s.store.CreateUser(ctx, &store.User{
		ID:           s.admin.ID,
		Email:        s.admin.Email,
		Name:         s.admin.Name,
		PasswordHash: hash,
		Role:         store.RoleAdmin,
		Status:       store.StatusActive,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return BootstrapResult{Created: false, ID: s.admin.ID}, nil
		}
		return BootstrapResult{}, fmt.Errorf("creating principal admin: %w", err)
	}

	slog.Info("principal admin created", "userId", id, "email", s.admin.Email)
	return BootstrapResult{Created: true, ID: id}, nil
}

// NormalizeEmail trims surrounding whitespace. Case is preserved: stored
// emails are matched exactly.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
