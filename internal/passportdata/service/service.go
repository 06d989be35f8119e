// Package service orchestrates the carrier write path. Every data value write
// follows the same shape: load the carrier and its template, apply the change
// to the aggregate, validate the full value collection against the template,
// and persist only when the report is clean. Structural problems (unknown
// carrier, duplicate slot) surface as errors; content problems travel inside
// the validation report and never abort with an error.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"traceport/internal/datamodel"
	"traceport/internal/events"
	"traceport/internal/identifier"
	idstore "traceport/internal/identifier/store"
	"traceport/internal/passportdata"
	"traceport/internal/passportdata/store"
	"traceport/internal/platform/metrics"
	"traceport/internal/template"
	tmplstore "traceport/internal/template/store"
	"traceport/pkg/platform/sentinel"
)

// Service owns model and item lifecycle and their value writes.
type Service struct {
	models      store.ModelStore
	items       store.ItemStore
	templates   tmplstore.Store
	identifiers idstore.Store
	publisher   events.Publisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(models store.ModelStore, items store.ItemStore, templates tmplstore.Store, identifiers idstore.Store, opts ...Option) *Service {
	s := &Service{
		models:      models,
		items:       items,
		templates:   templates,
		identifiers: identifiers,
		publisher:   events.NoopPublisher{},
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateModel creates a model from a template, seeds its placeholder values,
// and mints its first public identifier.
func (s *Service) CreateModel(ctx context.Context, organizationID, userID, templateID, name, description string) (*passportdata.Model, error) {
	t, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	model, err := passportdata.NewModel(passportdata.ModelCreateProps{
		Name:           name,
		Description:    description,
		OrganizationID: organizationID,
		UserID:         userID,
		Template:       t,
	})
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	upi := model.CreateUniqueProductIdentifier("")

	if err := s.models.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("save model %s: %w", model.ID(), err)
	}
	if err := s.identifiers.Save(ctx, upi); err != nil {
		return nil, fmt.Errorf("save identifier %s: %w", upi.UUID, err)
	}

	s.emit(ctx, events.NewEvent(events.EventModelCreated, organizationID, model.ID(), templateID, 0))
	if s.metrics != nil {
		s.metrics.ModelsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "model created",
		"model_id", model.ID(),
		"template_id", templateID,
		"organization_id", organizationID,
	)
	return model, nil
}

// GetModel loads a model owned by the calling organization.
func (s *Service) GetModel(ctx context.Context, organizationID, id string) (*passportdata.Model, error) {
	model, err := s.models.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.IsOwnedBy(organizationID) {
		return nil, fmt.Errorf("model %s: %w", id, sentinel.ErrForbidden)
	}
	return model, nil
}

// ListModels returns the organization's models.
func (s *Service) ListModels(ctx context.Context, organizationID string) ([]*passportdata.Model, error) {
	return s.models.ListByOrganization(ctx, organizationID)
}

// UpdateModel renames a model and replaces its description.
func (s *Service) UpdateModel(ctx context.Context, organizationID, id, name, description string) (*passportdata.Model, error) {
	model, err := s.GetModel(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	model.Rename(name)
	model.ModifyDescription(description)
	if err := s.models.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("save model %s: %w", id, err)
	}
	return model, nil
}

// AddModelMediaReference attaches a media file id to a model.
func (s *Service) AddModelMediaReference(ctx context.Context, organizationID, id, mediaFileID string) (*passportdata.Model, error) {
	model, err := s.GetModel(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	model.AddMediaReference(mediaFileID)
	if err := s.models.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("save model %s: %w", id, err)
	}
	return model, nil
}

// CreateItem creates an item under a model. The model and template must
// agree; a mismatch is a structural error.
func (s *Service) CreateItem(ctx context.Context, organizationID, userID, modelID string) (*passportdata.Item, error) {
	model, err := s.GetModel(ctx, organizationID, modelID)
	if err != nil {
		return nil, err
	}
	t, err := s.templates.FindByID(ctx, model.TemplateID())
	if err != nil {
		return nil, err
	}

	item, err := passportdata.NewItem(passportdata.ItemCreateProps{
		OrganizationID: organizationID,
		UserID:         userID,
		Template:       t,
		Model:          model,
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	upi := item.CreateUniqueProductIdentifier("")

	if err := s.items.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item %s: %w", item.ID(), err)
	}
	if err := s.identifiers.Save(ctx, upi); err != nil {
		return nil, fmt.Errorf("save identifier %s: %w", upi.UUID, err)
	}

	s.emit(ctx, events.NewEvent(events.EventItemCreated, organizationID, item.ID(), item.TemplateID(), 0))
	if s.metrics != nil {
		s.metrics.ItemsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "item created",
		"item_id", item.ID(),
		"model_id", modelID,
		"organization_id", organizationID,
	)
	return item, nil
}

// GetItem loads an item owned by the calling organization.
func (s *Service) GetItem(ctx context.Context, organizationID, id string) (*passportdata.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(organizationID) {
		return nil, fmt.Errorf("item %s: %w", id, sentinel.ErrForbidden)
	}
	return item, nil
}

// ListItems returns the items of one model.
func (s *Service) ListItems(ctx context.Context, organizationID, modelID string) ([]*passportdata.Item, error) {
	if _, err := s.GetModel(ctx, organizationID, modelID); err != nil {
		return nil, err
	}
	return s.items.ListByModel(ctx, modelID)
}

// AddModelDataValues appends new values to a model, validates the whole
// collection, and persists only a clean result.
func (s *Service) AddModelDataValues(ctx context.Context, organizationID, modelID string, values []datamodel.DataValue) (*template.ValidationResult, error) {
	model, err := s.GetModel(ctx, organizationID, modelID)
	if err != nil {
		return nil, err
	}
	apply := func(c carrier) error { return c.AddDataValues(values...) }
	return s.writeValues(ctx, model, model.TemplateID(), apply, events.EventDataValuesAdded, len(values), func() error {
		return s.models.Save(ctx, model)
	})
}

// ModifyModelDataValues updates existing value slots on a model. Values
// addressing unoccupied slots are dropped, never created.
func (s *Service) ModifyModelDataValues(ctx context.Context, organizationID, modelID string, values []datamodel.DataValue) (*template.ValidationResult, error) {
	model, err := s.GetModel(ctx, organizationID, modelID)
	if err != nil {
		return nil, err
	}
	apply := func(c carrier) error { c.ModifyDataValues(values...); return nil }
	return s.writeValues(ctx, model, model.TemplateID(), apply, events.EventDataValuesModified, len(values), func() error {
		return s.models.Save(ctx, model)
	})
}

// AddItemDataValues appends new values to an item under the same
// validate-then-persist rule as models.
func (s *Service) AddItemDataValues(ctx context.Context, organizationID, itemID string, values []datamodel.DataValue) (*template.ValidationResult, error) {
	item, err := s.GetItem(ctx, organizationID, itemID)
	if err != nil {
		return nil, err
	}
	apply := func(c carrier) error { return c.AddDataValues(values...) }
	return s.writeValues(ctx, item, item.TemplateID(), apply, events.EventDataValuesAdded, len(values), func() error {
		return s.items.Save(ctx, item)
	})
}

// ModifyItemDataValues updates existing value slots on an item.
func (s *Service) ModifyItemDataValues(ctx context.Context, organizationID, itemID string, values []datamodel.DataValue) (*template.ValidationResult, error) {
	item, err := s.GetItem(ctx, organizationID, itemID)
	if err != nil {
		return nil, err
	}
	apply := func(c carrier) error { c.ModifyDataValues(values...); return nil }
	return s.writeValues(ctx, item, item.TemplateID(), apply, events.EventDataValuesModified, len(values), func() error {
		return s.items.Save(ctx, item)
	})
}

// CreateModelIdentifier mints an additional public identifier for a model.
// An external UUID can be adopted for pre-printed labels.
func (s *Service) CreateModelIdentifier(ctx context.Context, organizationID, modelID, externalUUID string) (identifier.UniqueProductIdentifier, error) {
	model, err := s.GetModel(ctx, organizationID, modelID)
	if err != nil {
		return identifier.UniqueProductIdentifier{}, err
	}
	upi := model.CreateUniqueProductIdentifier(externalUUID)
	if err := s.models.Save(ctx, model); err != nil {
		return identifier.UniqueProductIdentifier{}, fmt.Errorf("save model %s: %w", modelID, err)
	}
	if err := s.identifiers.Save(ctx, upi); err != nil {
		return identifier.UniqueProductIdentifier{}, fmt.Errorf("save identifier %s: %w", upi.UUID, err)
	}
	s.emit(ctx, events.NewEvent(events.EventIdentifierMinted, organizationID, modelID, model.TemplateID(), 0))
	return upi, nil
}

// CreateItemIdentifier mints an additional public identifier for an item.
func (s *Service) CreateItemIdentifier(ctx context.Context, organizationID, itemID, externalUUID string) (identifier.UniqueProductIdentifier, error) {
	item, err := s.GetItem(ctx, organizationID, itemID)
	if err != nil {
		return identifier.UniqueProductIdentifier{}, err
	}
	upi := item.CreateUniqueProductIdentifier(externalUUID)
	if err := s.items.Save(ctx, item); err != nil {
		return identifier.UniqueProductIdentifier{}, fmt.Errorf("save item %s: %w", itemID, err)
	}
	if err := s.identifiers.Save(ctx, upi); err != nil {
		return identifier.UniqueProductIdentifier{}, fmt.Errorf("save identifier %s: %w", upi.UUID, err)
	}
	s.emit(ctx, events.NewEvent(events.EventIdentifierMinted, organizationID, itemID, item.TemplateID(), 0))
	return upi, nil
}

// carrier is the slice of the aggregate surface writeValues needs.
type carrier interface {
	ID() string
	OwnedByOrganizationID() string
	Granularity() datamodel.Granularity
	DataValues() []datamodel.DataValue
	AddDataValues(values ...datamodel.DataValue) error
	ModifyDataValues(values ...datamodel.DataValue)
}

func (s *Service) writeValues(
	ctx context.Context,
	c carrier,
	templateID string,
	apply func(carrier) error,
	eventType events.EventType,
	valueCount int,
	save func() error,
) (*template.ValidationResult, error) {
	t, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if err := apply(c); err != nil {
		return nil, err
	}

	result := t.Validate(c.DataValues(), c.Granularity())
	if !result.IsValid() {
		if s.metrics != nil {
			s.metrics.ValidationFailures.Inc()
		}
		s.logger.InfoContext(ctx, "value write rejected by validation",
			"carrier_id", c.ID(),
			"errors", len(result.Errors()),
		)
		return result, nil
	}

	if err := save(); err != nil {
		return nil, fmt.Errorf("save carrier %s: %w", c.ID(), err)
	}

	s.emit(ctx, events.NewEvent(eventType, c.OwnedByOrganizationID(), c.ID(), templateID, valueCount))
	if s.metrics != nil {
		s.metrics.DataValuesWritten.Add(float64(valueCount))
	}
	return result, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "event publish failed",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
	}
}
