package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"sigs.k8s.io/yaml"
)

const defaultFormStatus = "active"

// formSeed is one entry of a forms seed file. YAML and JSON are both accepted.
type formSeed struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedBy     string    `json:"createdBy"`
	CreatedByName string    `json:"createdByName"`
	CreatedAt     time.Time `json:"createdAt"`
	Status        string    `json:"status"`
}

// LoadFormsSeed parses a forms seed file. Entries without an id or name are
// rejected; a missing status defaults to "active" and a missing createdAt to now.
func LoadFormsSeed(path string) ([]Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading forms seed: %w", err)
	}

	var seeds []formSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parsing forms seed %s: %w", path, err)
	}

	now := time.Now()
	forms := make([]Form, 0, len(seeds))
	for i, s := range seeds {
		if strings.TrimSpace(s.ID) == "" || strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("forms seed entry %d: id and name are required", i)
		}
		f := Form{
			ID:            s.ID,
			Name:          strings.TrimSpace(s.Name),
			CreatedBy:     s.CreatedBy,
			CreatedByName: s.CreatedByName,
			CreatedAt:     s.CreatedAt,
			Status:        s.Status,
		}
		if f.CreatedAt.IsZero() {
			f.CreatedAt = now
		}
		if f.Status == "" {
			f.Status = defaultFormStatus
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// ImportForms inserts forms that do not exist yet and returns how many were
// added. Existing ids are left untouched, so importing is idempotent.
func ImportForms(ctx context.Context, s Store, forms []Form) (int, error) {
	added := 0
	for i := range forms {
		err := s.CreateForm(ctx, &forms[i])
		if errors.Is(err, ErrDuplicate) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("importing form %s: %w", forms[i].ID, err)
		}
		added++
	}
	slog.Info("forms seed imported", "added", added, "total", len(forms))
	return added, nil
}
