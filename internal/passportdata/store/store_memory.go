package store

import (
	"context"
	"fmt"
	"sync"

	"traceport/internal/passportdata"
	"traceport/pkg/platform/sentinel"
)

// InMemoryModelStore keeps model documents in process memory.
type InMemoryModelStore struct {
	mu   sync.RWMutex
	docs map[string]ModelDoc
}

func NewInMemoryModelStore() *InMemoryModelStore {
	return &InMemoryModelStore{docs: make(map[string]ModelDoc)}
}

func (s *InMemoryModelStore) Save(_ context.Context, m *passportdata.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[m.ID()] = SerializeModel(m)
	return nil
}

func (s *InMemoryModelStore) FindByID(_ context.Context, id string) (*passportdata.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("model %s: %w", id, sentinel.ErrNotFound)
	}
	return DeserializeModel(doc), nil
}

func (s *InMemoryModelStore) ListByOrganization(_ context.Context, organizationID string) ([]*passportdata.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*passportdata.Model
	for _, doc := range s.docs {
		if doc.OwnedByOrganizationID == organizationID {
			out = append(out, DeserializeModel(doc))
		}
	}
	return out, nil
}

// InMemoryItemStore keeps item documents in process memory.
type InMemoryItemStore struct {
	mu   sync.RWMutex
	docs map[string]ItemDoc
}

func NewInMemoryItemStore() *InMemoryItemStore {
	return &InMemoryItemStore{docs: make(map[string]ItemDoc)}
}

func (s *InMemoryItemStore) Save(_ context.Context, i *passportdata.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[i.ID()] = SerializeItem(i)
	return nil
}

func (s *InMemoryItemStore) FindByID(_ context.Context, id string) (*passportdata.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, sentinel.ErrNotFound)
	}
	return DeserializeItem(doc), nil
}

func (s *InMemoryItemStore) ListByModel(_ context.Context, modelID string) ([]*passportdata.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*passportdata.Item
	for _, doc := range s.docs {
		if doc.ModelID == modelID {
			out = append(out, DeserializeItem(doc))
		}
	}
	return out, nil
}
