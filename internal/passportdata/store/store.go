package store

import (
	"context"

	"traceport/internal/passportdata"
)

// ModelStore is the persistence port for model carriers. Implementations
// return sentinel.ErrNotFound (wrapped) for missing ids.
type ModelStore interface {
	Save(ctx context.Context, m *passportdata.Model) error
	FindByID(ctx context.Context, id string) (*passportdata.Model, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*passportdata.Model, error)
}

// ItemStore is the persistence port for item carriers.
type ItemStore interface {
	Save(ctx context.Context, i *passportdata.Item) error
	FindByID(ctx context.Context, id string) (*passportdata.Item, error)
	ListByModel(ctx context.Context, modelID string) ([]*passportdata.Item, error)
}
