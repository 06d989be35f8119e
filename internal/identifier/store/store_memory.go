package store

import (
	"context"
	"fmt"
	"sync"

	"traceport/internal/identifier"
	"traceport/pkg/platform/sentinel"
)

// InMemoryStore keeps identifier tokens in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	byUUID map[string]identifier.UniqueProductIdentifier
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byUUID: make(map[string]identifier.UniqueProductIdentifier)}
}

func (s *InMemoryStore) Save(_ context.Context, upi identifier.UniqueProductIdentifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUUID[upi.UUID] = upi
	return nil
}

func (s *InMemoryStore) FindByUUID(_ context.Context, uuid string) (identifier.UniqueProductIdentifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	upi, ok := s.byUUID[uuid]
	if !ok {
		return identifier.UniqueProductIdentifier{}, fmt.Errorf("identifier %s: %w", uuid, sentinel.ErrNotFound)
	}
	return upi, nil
}

func (s *InMemoryStore) ListByReference(_ context.Context, referenceID string) ([]identifier.UniqueProductIdentifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []identifier.UniqueProductIdentifier
	for _, upi := range s.byUUID {
		if upi.ReferenceID == referenceID {
			out = append(out, upi)
		}
	}
	return out, nil
}
