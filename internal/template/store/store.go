package store

import (
	"context"

	"traceport/internal/template"
)

// Store is the persistence port for templates. Implementations return
// sentinel.ErrNotFound (wrapped) for missing ids.
type Store interface {
	Save(ctx context.Context, t *template.Template) error
	FindByID(ctx context.Context, id string) (*template.Template, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*template.Template, error)
}
