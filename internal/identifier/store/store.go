// Package store resolves public identifier tokens back to the carrier they
// reference. Carrier documents embed their own tokens; this lookup table is
// the reverse index the public passport endpoint queries.
package store

import (
	"context"

	"traceport/internal/identifier"
)

// Store is the persistence port for identifier tokens. FindByUUID returns
// sentinel.ErrNotFound (wrapped) for unknown tokens.
type Store interface {
	Save(ctx context.Context, upi identifier.UniqueProductIdentifier) error
	FindByUUID(ctx context.Context, uuid string) (identifier.UniqueProductIdentifier, error)
	ListByReference(ctx context.Context, referenceID string) ([]identifier.UniqueProductIdentifier, error)
}
