package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"traceport/internal/identifier"
	"traceport/pkg/platform/sentinel"
)

// PostgresStore persists identifier tokens as plain rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS unique_product_identifiers (
			uuid         TEXT PRIMARY KEY,
			reference_id TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS upi_reference_idx ON unique_product_identifiers (reference_id);
	`)
	if err != nil {
		return fmt.Errorf("ensure identifiers schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, upi identifier.UniqueProductIdentifier) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO unique_product_identifiers (uuid, reference_id) VALUES ($1, $2)
		ON CONFLICT (uuid) DO UPDATE SET reference_id = $2
	`, upi.UUID, upi.ReferenceID)
	if err != nil {
		return fmt.Errorf("save identifier %s: %w", upi.UUID, err)
	}
	return nil
}

func (s *PostgresStore) FindByUUID(ctx context.Context, uuid string) (identifier.UniqueProductIdentifier, error) {
	var upi identifier.UniqueProductIdentifier
	err := s.pool.QueryRow(ctx,
		`SELECT uuid, reference_id FROM unique_product_identifiers WHERE uuid = $1`, uuid).
		Scan(&upi.UUID, &upi.ReferenceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return identifier.UniqueProductIdentifier{}, fmt.Errorf("identifier %s: %w", uuid, sentinel.ErrNotFound)
	}
	if err != nil {
		return identifier.UniqueProductIdentifier{}, fmt.Errorf("find identifier %s: %w", uuid, err)
	}
	return upi, nil
}

func (s *PostgresStore) ListByReference(ctx context.Context, referenceID string) ([]identifier.UniqueProductIdentifier, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uuid, reference_id FROM unique_product_identifiers WHERE reference_id = $1`, referenceID)
	if err != nil {
		return nil, fmt.Errorf("list identifiers for %s: %w", referenceID, err)
	}
	defer rows.Close()

	var out []identifier.UniqueProductIdentifier
	for rows.Next() {
		var upi identifier.UniqueProductIdentifier
		if err := rows.Scan(&upi.UUID, &upi.ReferenceID); err != nil {
			return nil, fmt.Errorf("scan identifier row: %w", err)
		}
		out = append(out, upi)
	}
	return out, rows.Err()
}
