package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceport/internal/datamodel"
	idstore "traceport/internal/identifier/store"
	"traceport/internal/passportdata"
	pdstore "traceport/internal/passportdata/store"
	"traceport/internal/template"
	tmplstore "traceport/internal/template/store"
	"traceport/pkg/platform/sentinel"
)

type fixture struct {
	svc       *Service
	modelUUID string
	itemUUID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

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
		},
	})
	require.NoError(t, err)

	model, err := passportdata.NewModel(passportdata.ModelCreateProps{
		Name:           "Phone X",
		Description:    "Flagship phone",
		OrganizationID: "org-1",
		UserID:         "user-1",
		Template:       tmpl,
	})
	require.NoError(t, err)
	model.ModifyDataValues(datamodel.NewDataValue("section-specs", "field-name", "Phone X", 0))
	modelUPI := model.CreateUniqueProductIdentifier("")

	item, err := passportdata.NewItem(passportdata.ItemCreateProps{
		OrganizationID: "org-1",
		UserID:         "user-1",
		Template:       tmpl,
		Model:          model,
	})
	require.NoError(t, err)
	item.ModifyDataValues(datamodel.NewDataValue("section-specs", "field-serial", "SN-001", 0))
	itemUPI := item.CreateUniqueProductIdentifier("")

	templates := tmplstore.NewInMemoryStore()
	models := pdstore.NewInMemoryModelStore()
	items := pdstore.NewInMemoryItemStore()
	identifiers := idstore.NewInMemoryStore()
	require.NoError(t, templates.Save(ctx, tmpl))
	require.NoError(t, models.Save(ctx, model))
	require.NoError(t, items.Save(ctx, item))
	require.NoError(t, identifiers.Save(ctx, modelUPI))
	require.NoError(t, identifiers.Save(ctx, itemUPI))

	return &fixture{
		svc:       New(identifiers, models, items, templates),
		modelUUID: modelUPI.UUID,
		itemUUID:  itemUPI.UUID,
	}
}

func TestGetResolvesModelToken(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Get(context.Background(), f.modelUUID)
	require.NoError(t, err)

	assert.Equal(t, f.modelUUID, view.ID)
	assert.Equal(t, "Phone X", view.Name)
	require.Len(t, view.Sections, 1)

	// Model-only resolution: the item-scoped serial key must not appear.
	require.Len(t, view.Sections[0].Rows, 1)
	row := view.Sections[0].Rows[0]
	assert.Equal(t, "Phone X", row["field-name"])
	_, present := row["field-serial"]
	assert.False(t, present)
}

func TestGetResolvesItemTokenWithMergedValues(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.Get(context.Background(), f.itemUUID)
	require.NoError(t, err)

	assert.Equal(t, f.itemUUID, view.ID)
	require.Len(t, view.Sections, 1)
	require.Len(t, view.Sections[0].Rows, 1)
	row := view.Sections[0].Rows[0]
	assert.Equal(t, "Phone X", row["field-name"])
	assert.Equal(t, "SN-001", row["field-serial"])
}

func TestGetUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestGetTreeResolvesToken(t *testing.T) {
	f := newFixture(t)

	view, err := f.svc.GetTree(context.Background(), f.itemUUID)
	require.NoError(t, err)

	assert.Equal(t, "Phone X", view.Name)
	require.Len(t, view.Nodes, 1)
	assert.Equal(t, "Specifications", view.Nodes[0].Name)
	require.Len(t, view.Nodes[0].Fields, 2)
}
