package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceport/internal/datamodel"
	"traceport/internal/events"
	idstore "traceport/internal/identifier/store"
	pdstore "traceport/internal/passportdata/store"
	"traceport/internal/template"
	tmplstore "traceport/internal/template/store"
	"traceport/pkg/platform/sentinel"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc         *Service
	templates   tmplstore.Store
	models      pdstore.ModelStore
	items       pdstore.ItemStore
	identifiers idstore.Store
	publisher   *recordingPublisher
	templateID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tmpl, err := template.LoadFromDb(template.TemplateDbProps{
		ID:             "template-phone",
		Name:           "Phone",
		Version:        "1.0.0",
		UserID:         "user-1",
		OrganizationID: "org-1",
		Sections: []template.SectionDbProps{
			{
				ID:   "section-specs",
				Name: "Specifications",
				Type: datamodel.SectionTypeGroup,
				DataFields: []template.DataFieldDbProps{
					{ID: "field-name", Name: "Product name", Type: datamodel.FieldTypeText, Granularity: datamodel.GranularityModel},
					{ID: "field-serial", Name: "Serial number", Type: datamodel.FieldTypeText, Granularity: datamodel.GranularityItem},
				},
			},
			{
				ID:          "section-materials",
				Name:        "Materials",
				Type:        datamodel.SectionTypeRepeatable,
				Granularity: datamodel.GranularityModel,
				DataFields: []template.DataFieldDbProps{
					{ID: "field-material", Name: "Material", Type: datamodel.FieldTypeText, Granularity: datamodel.GranularityModel},
				},
			},
		},
	})
	require.NoError(t, err)

	templates := tmplstore.NewInMemoryStore()
	require.NoError(t, templates.Save(context.Background(), tmpl))

	f := &fixture{
		templates:   templates,
		models:      pdstore.NewInMemoryModelStore(),
		items:       pdstore.NewInMemoryItemStore(),
		identifiers: idstore.NewInMemoryStore(),
		publisher:   &recordingPublisher{},
		templateID:  tmpl.ID(),
	}
	f.svc = New(f.models, f.items, f.templates, f.identifiers, WithPublisher(f.publisher))
	return f
}

func TestCreateModelPersistsAndMintsIdentifier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "Flagship")
	require.NoError(t, err)

	stored, err := f.models.FindByID(ctx, model.ID())
	require.NoError(t, err)
	assert.Equal(t, "Phone X", stored.Name())

	upis := model.UniqueProductIdentifiers()
	require.Len(t, upis, 1)
	resolved, err := f.identifiers.FindByUUID(ctx, upis[0].UUID)
	require.NoError(t, err)
	assert.Equal(t, model.ID(), resolved.ReferenceID)

	assert.Equal(t, []events.EventType{events.EventModelCreated}, f.publisher.types())
}

func TestCreateModelUnknownTemplate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateModel(context.Background(), "org-1", "user-1", "template-missing", "Phone X", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestGetModelEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "")
	require.NoError(t, err)

	_, err = f.svc.GetModel(ctx, "org-2", model.ID())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrForbidden)
}

func TestCreateItemUnderModel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "")
	require.NoError(t, err)

	item, err := f.svc.CreateItem(ctx, "org-1", "user-1", model.ID())
	require.NoError(t, err)
	assert.Equal(t, model.ID(), item.ModelID())

	stored, err := f.items.FindByID(ctx, item.ID())
	require.NoError(t, err)
	assert.Equal(t, item.ID(), stored.ID())

	listed, err := f.svc.ListItems(ctx, "org-1", model.ID())
	require.NoError(t, err)
	require.Len(t, listed, 1)

	assert.Equal(t,
		[]events.EventType{events.EventModelCreated, events.EventItemCreated},
		f.publisher.types())
}

func TestAddModelDataValuesPersistsCleanWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "")
	require.NoError(t, err)

	result, err := f.svc.AddModelDataValues(ctx, "org-1", model.ID(), []datamodel.DataValue{
		datamodel.NewDataValue("section-materials", "field-material", "Glass", 0),
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	stored, err := f.models.FindByID(ctx, model.ID())
	require.NoError(t, err)
	assert.Len(t, stored.DataValuesBySection("section-materials"), 1)
}

func TestAddModelDataValuesRejectsDirtyWriteWithoutPersisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "")
	require.NoError(t, err)

	result, err := f.svc.AddModelDataValues(ctx, "org-1", model.ID(), []datamodel.DataValue{
		datamodel.NewDataValue("section-materials", "field-material", 42, 0),
	})
	require.NoError(t, err)
	assert.False(t, result.IsValid())

	// The dirty collection never reached the store.
	stored, err := f.models.FindByID(ctx, model.ID())
	require.NoError(t, err)
	assert.Empty(t, stored.DataValuesBySection("section-materials"))
}

func TestAddModelDataValuesDuplicateSlotIsAnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "")
	require.NoError(t, err)

	// The model-level placeholder for field-name already occupies row 0.
	_, err = f.svc.AddModelDataValues(ctx, "org-1", model.ID(), []datamodel.DataValue{
		datamodel.NewDataValue("section-specs", "field-name", "Phone X", 0),
	})
	require.Error(t, err)
}

func TestModifyModelDataValuesUpdatesPlaceholder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "")
	require.NoError(t, err)

	result, err := f.svc.ModifyModelDataValues(ctx, "org-1", model.ID(), []datamodel.DataValue{
		datamodel.NewDataValue("section-specs", "field-name", "Phone X Pro", 0),
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	stored, err := f.models.FindByID(ctx, model.ID())
	require.NoError(t, err)
	specs := stored.DataValuesBySection("section-specs")
	require.Len(t, specs, 1)
	assert.Equal(t, "Phone X Pro", specs[0].Value)
}

func TestModifyItemDataValuesPersistsCleanWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "")
	require.NoError(t, err)
	item, err := f.svc.CreateItem(ctx, "org-1", "user-1", model.ID())
	require.NoError(t, err)

	result, err := f.svc.ModifyItemDataValues(ctx, "org-1", item.ID(), []datamodel.DataValue{
		datamodel.NewDataValue("section-specs", "field-serial", "SN-001", 0),
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid())

	stored, err := f.items.FindByID(ctx, item.ID())
	require.NoError(t, err)
	specs := stored.DataValuesBySection("section-specs")
	require.Len(t, specs, 1)
	assert.Equal(t, "SN-001", specs[0].Value)
}

func TestCreateModelIdentifierAdoptsExternalUUID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.svc.CreateModel(ctx, "org-1", "user-1", f.templateID, "Phone X", "")
	require.NoError(t, err)

	upi, err := f.svc.CreateModelIdentifier(ctx, "org-1", model.ID(), "11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", upi.UUID)

	resolved, err := f.identifiers.FindByUUID(ctx, upi.UUID)
	require.NoError(t, err)
	assert.Equal(t, model.ID(), resolved.ReferenceID)

	stored, err := f.models.FindByID(ctx, model.ID())
	require.NoError(t, err)
	assert.Len(t, stored.UniqueProductIdentifiers(), 2)
}
