package store

import (
	"context"
	"fmt"
	"sync"

	"traceport/internal/template"
	"traceport/pkg/platform/sentinel"
)

// InMemoryStore keeps templates as documents in process memory. Storing the
// serialized form, not the aggregate, keeps memory and postgres behavior
// aligned: every read goes through the same deserialization and migration
// path.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[string]TemplateDoc
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[string]TemplateDoc)}
}

func (s *InMemoryStore) Save(_ context.Context, t *template.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[t.ID()] = Serialize(t)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, sentinel.ErrNotFound)
	}
	return Deserialize(doc)
}

func (s *InMemoryStore) ListByOrganization(_ context.Context, organizationID string) ([]*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*template.Template
	for _, doc := range s.docs {
		if doc.OwnedByOrganizationID != organizationID {
			continue
		}
		t, err := Deserialize(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
