package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"traceport/internal/passportdata"
	"traceport/pkg/platform/sentinel"
)

// PostgresModelStore persists model documents as JSONB rows.
type PostgresModelStore struct {
	pool *pgxpool.Pool
}

func NewPostgresModelStore(pool *pgxpool.Pool) *PostgresModelStore {
	return &PostgresModelStore{pool: pool}
}

func (s *PostgresModelStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS models (
			id              TEXT PRIMARY KEY,
			organization_id TEXT NOT NULL,
			doc             JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS models_organization_idx ON models (organization_id);
	`)
	if err != nil {
		return fmt.Errorf("ensure models schema: %w", err)
	}
	return nil
}

func (s *PostgresModelStore) Save(ctx context.Context, m *passportdata.Model) error {
	doc, err := json.Marshal(SerializeModel(m))
	if err != nil {
		return fmt.Errorf("marshal model %s: %w", m.ID(), err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO models (id, organization_id, doc) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET organization_id = $2, doc = $3
	`, m.ID(), m.OwnedByOrganizationID(), doc)
	if err != nil {
		return fmt.Errorf("save model %s: %w", m.ID(), err)
	}
	return nil
}

func (s *PostgresModelStore) FindByID(ctx context.Context, id string) (*passportdata.Model, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM models WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("model %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find model %s: %w", id, err)
	}
	var doc ModelDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal model doc: %w", err)
	}
	return DeserializeModel(doc), nil
}

func (s *PostgresModelStore) ListByOrganization(ctx context.Context, organizationID string) ([]*passportdata.Model, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM models WHERE organization_id = $1`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list models for %s: %w", organizationID, err)
	}
	defer rows.Close()

	var out []*passportdata.Model
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan model row: %w", err)
		}
		var doc ModelDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal model doc: %w", err)
		}
		out = append(out, DeserializeModel(doc))
	}
	return out, rows.Err()
}

// PostgresItemStore persists item documents as JSONB rows.
type PostgresItemStore struct {
	pool *pgxpool.Pool
}

func NewPostgresItemStore(pool *pgxpool.Pool) *PostgresItemStore {
	return &PostgresItemStore{pool: pool}
}

func (s *PostgresItemStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS items (
			id       TEXT PRIMARY KEY,
			model_id TEXT NOT NULL,
			doc      JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS items_model_idx ON items (model_id);
	`)
	if err != nil {
		return fmt.Errorf("ensure items schema: %w", err)
	}
	return nil
}

func (s *PostgresItemStore) Save(ctx context.Context, i *passportdata.Item) error {
	doc, err := json.Marshal(SerializeItem(i))
	if err != nil {
		return fmt.Errorf("marshal item %s: %w", i.ID(), err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO items (id, model_id, doc) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET model_id = $2, doc = $3
	`, i.ID(), i.ModelID(), doc)
	if err != nil {
		return fmt.Errorf("save item %s: %w", i.ID(), err)
	}
	return nil
}

func (s *PostgresItemStore) FindByID(ctx context.Context, id string) (*passportdata.Item, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM items WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find item %s: %w", id, err)
	}
	var doc ItemDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal item doc: %w", err)
	}
	return DeserializeItem(doc), nil
}

func (s *PostgresItemStore) ListByModel(ctx context.Context, modelID string) ([]*passportdata.Item, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM items WHERE model_id = $1`, modelID)
	if err != nil {
		return nil, fmt.Errorf("list items for %s: %w", modelID, err)
	}
	defer rows.Close()

	var out []*passportdata.Item
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		var doc ItemDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal item doc: %w", err)
		}
		out = append(out, DeserializeItem(doc))
	}
	return out, rows.Err()
}
