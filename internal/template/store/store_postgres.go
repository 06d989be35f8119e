package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"traceport/internal/template"
	"traceport/pkg/platform/sentinel"
)

// PostgresStore persists template documents as JSONB rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS templates (
			id              TEXT PRIMARY KEY,
			organization_id TEXT NOT NULL,
			doc             JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS templates_organization_idx ON templates (organization_id);
	`)
	if err != nil {
		return fmt.Errorf("ensure templates schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, t *template.Template) error {
	doc, err := json.Marshal(Serialize(t))
	if err != nil {
		return fmt.Errorf("marshal template %s: %w", t.ID(), err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO templates (id, organization_id, doc) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET organization_id = $2, doc = $3
	`, t.ID(), t.OwnedByOrganizationID(), doc)
	if err != nil {
		return fmt.Errorf("save template %s: %w", t.ID(), err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*template.Template, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM templates WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find template %s: %w", id, err)
	}
	return decodeDoc(raw)
}

func (s *PostgresStore) ListByOrganization(ctx context.Context, organizationID string) ([]*template.Template, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM templates WHERE organization_id = $1`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list templates for %s: %w", organizationID, err)
	}
	defer rows.Close()

	var out []*template.Template
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		t, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func decodeDoc(raw []byte) (*template.Template, error) {
	var doc TemplateDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal template doc: %w", err)
	}
	return Deserialize(doc)
}
