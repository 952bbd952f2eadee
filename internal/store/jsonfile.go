package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONFileStore keeps users and forms in a single JSON document. Every read
// loads the file and every mutation rewrites it whole. The mutex serializes
// writers inside one process only; concurrent processes sharing the file can
// still lose updates.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

type jsonDocument struct {
	Users []jsonUser `json:"users"`
	Forms []jsonForm `json:"forms"`
}

type jsonUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
	Role         Role   `json:"role"`
	Status       Status `json:"status"`
}

type jsonForm struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedBy     string    `json:"createdBy"`
	CreatedByName string    `json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
	Status        string    `json:"status"`
}

func (u jsonUser) projection() User {
	return User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Status: u.Status}
}

func (f jsonForm) toModel() Form {
	return Form{
		ID:            f.ID,
		Name:          f.Name,
		CreatedBy:     f.CreatedBy,
		CreatedByName: f.CreatedByName,
		CreatedAt:     f.CreatedAt.UTC(),
		Status:        f.Status,
	}
}

// OpenJSONFile returns a store over the document at path. The file is created
// on the first mutation; a missing file reads as empty.
func OpenJSONFile(path string) (*JSONFileStore, error) {
	s := &JSONFileStore{path: path}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONFileStore) Backend() Backend { return BackendJSON }

func (s *JSONFileStore) Ping(_ context.Context) error {
	_, err := s.load()
	return err
}

func (s *JSONFileStore) Close() error { return nil }

func (s *JSONFileStore) load() (*jsonDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &jsonDocument{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *JSONFileStore) save(doc *jsonDocument) error {
	if doc.Users == nil {
		doc.Users = []jsonUser{}
	}
	if doc.Forms == nil {
		doc.Forms = []jsonForm{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// mutate runs fn on a freshly loaded document and writes it back when fn
// reports a change.
func (s *JSONFileStore) mutate(fn func(doc *jsonDocument) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	return s.save(doc)
}

// CreateUser appends a user to the document.
func (s *JSONFileStore) CreateUser(_ context.Context, u *User) (string, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	err := s.mutate(func(doc *jsonDocument) (bool, error) {
		for _, existing := range doc.Users {
			if existing.ID == u.ID || existing.Email == u.Email {
				return false, ErrDuplicate
			}
		}
		doc.Users = append(doc.Users, jsonUser{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			PasswordHash: u.PasswordHash,
			Role:         u.Role,
			Status:       u.Status,
		})
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// GetUserByEmail returns the full user record, including the password hash.
func (s *JSONFileStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.Email == email {
			full := u.projection()
			full.PasswordHash = u.PasswordHash
			return &full, nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByID returns the public projection of a user.
func (s *JSONFileStore) GetUserByID(_ context.Context, id string) (*User, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.ID == id {
			p := u.projection()
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// ListUsersByStatus returns users in the given status ordered by email.
func (s *JSONFileStore) ListUsersByStatus(_ context.Context, status Status) ([]User, error) {
	return s.listUsers(func(u jsonUser) bool { return u.Status == status })
}

// ListUsers returns every user ordered by email.
func (s *JSONFileStore) ListUsers(_ context.Context) ([]User, error) {
	return s.listUsers(func(jsonUser) bool { return true })
}

func (s *JSONFileStore) listUsers(keep func(jsonUser) bool) ([]User, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	users := []User{}
	for _, u := range doc.Users {
		if keep(u) {
			users = append(users, u.projection())
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

// UpdateUserStatus sets the status of a user. Unknown ids are ignored.
func (s *JSONFileStore) UpdateUserStatus(_ context.Context, id string, status Status) error {
	return s.mutate(func(doc *jsonDocument) (bool, error) {
		for i := range doc.Users {
			if doc.Users[i].ID == id {
				doc.Users[i].Status = status
				return true, nil
			}
		}
		return false, nil
	})
}

// UpdateUser applies the non-nil fields of upd. Unknown ids are ignored.
func (s *JSONFileStore) UpdateUser(_ context.Context, id string, upd UserUpdate) error {
	if upd.Empty() {
		return nil
	}
	return s.mutate(func(doc *jsonDocument) (bool, error) {
		for i := range doc.Users {
			u := &doc.Users[i]
			if u.ID != id {
				continue
			}
			if upd.Name != nil {
				u.Name = *upd.Name
			}
			if upd.Role != nil {
				u.Role = *upd.Role
			}
			if upd.Status != nil {
				u.Status = *upd.Status
			}
			return true, nil
		}
		return false, nil
	})
}

// CreateForm appends a form to the document.
func (s *JSONFileStore) CreateForm(_ context.Context, f *Form) error {
	return s.mutate(func(doc *jsonDocument) (bool, error) {
		for _, existing := range doc.Forms {
			if existing.ID == f.ID {
				return false, ErrDuplicate
			}
		}
		doc.Forms = append(doc.Forms, jsonForm{
			ID:            f.ID,
			Name:          f.Name,
			CreatedBy:     f.CreatedBy,
			CreatedByName: f.CreatedByName,
			CreatedAt:     normalizeTime(f.CreatedAt),
			Status:        f.Status,
		})
		return true, nil
	})
}

// ListForms returns every form ordered by creation time.
func (s *JSONFileStore) ListForms(_ context.Context) ([]Form, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	forms := make([]Form, 0, len(doc.Forms))
	for _, f := range doc.Forms {
		forms = append(forms, f.toModel())
	}
	sort.SliceStable(forms, func(i, j int) bool {
		if !forms[i].CreatedAt.Equal(forms[j].CreatedAt) {
			return forms[i].CreatedAt.Before(forms[j].CreatedAt)
		}
		return forms[i].ID < forms[j].ID
	})
	return forms, nil
}

// RenameForm changes the name of a form. Unknown ids are ignored.
func (s *JSONFileStore) RenameForm(_ context.Context, id, name string) error {
	return s.mutate(func(doc *jsonDocument) (bool, error) {
		for i := range doc.Forms {
			if doc.Forms[i].ID == id {
				doc.Forms[i].Name = name
				return true, nil
			}
		}
		return false, nil
	})
}
