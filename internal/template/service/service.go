// Package service orchestrates template lifecycle: publishing new template
// documents, listing an organization's catalog, and forking shared templates.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"traceport/internal/template"
	"traceport/internal/template/store"
	"traceport/pkg/platform/sentinel"
)

// Service keeps orchestration out of handlers and domain logic thin.
type Service struct {
	templates store.Store
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(templates store.Store, opts ...Option) *Service {
	s := &Service{templates: templates, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create publishes a template document under the calling organization. The
// document's identity and ownership fields are stamped server-side; the
// caller only supplies structure.
func (s *Service) Create(ctx context.Context, organizationID, userID string, doc store.TemplateDoc) (*template.Template, error) {
	doc.ID = uuid.NewString()
	doc.SchemaVersion = store.SchemaVersion
	doc.CreatedByUserID = userID
	doc.OwnedByOrganizationID = organizationID

	t, err := store.Deserialize(doc)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	if err := s.templates.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save template %s: %w", t.ID(), err)
	}

	s.logger.InfoContext(ctx, "template created",
		"template_id", t.ID(),
		"organization_id", organizationID,
	)
	return t, nil
}

// Get loads a template owned by the calling organization.
func (s *Service) Get(ctx context.Context, organizationID, id string) (*template.Template, error) {
	t, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsOwnedBy(organizationID) {
		return nil, fmt.Errorf("template %s: %w", id, sentinel.ErrForbidden)
	}
	return t, nil
}

// List returns the organization's template catalog.
func (s *Service) List(ctx context.Context, organizationID string) ([]*template.Template, error) {
	return s.templates.ListByOrganization(ctx, organizationID)
}

// Copy forks any readable template into the calling organization under a
// fresh id. Version and marketplace provenance survive the fork.
func (s *Service) Copy(ctx context.Context, organizationID, userID, sourceID string) (*template.Template, error) {
	source, err := s.templates.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	copied, err := source.Copy(organizationID, userID)
	if err != nil {
		return nil, fmt.Errorf("copy template %s: %w", sourceID, err)
	}
	if err := s.templates.Save(ctx, copied); err != nil {
		return nil, fmt.Errorf("save template copy %s: %w", copied.ID(), err)
	}

	s.logger.InfoContext(ctx, "template copied",
		"source_template_id", sourceID,
		"template_id", copied.ID(),
		"organization_id", organizationID,
	)
	return copied, nil
}

// AssignMarketplaceResource records where a template was published to or
// forked from.
func (s *Service) AssignMarketplaceResource(ctx context.Context, organizationID, id, resourceID string) (*template.Template, error) {
	t, err := s.Get(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	t.AssignMarketplaceResource(resourceID)
	if err := s.templates.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save template %s: %w", id, err)
	}
	return t, nil
}
