//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceport/internal/datamodel"
	"traceport/internal/template"
	"traceport/pkg/platform/sentinel"
	"traceport/pkg/testutil/containers"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := NewPostgresStore(pg.Pool)
	require.NoError(t, store.EnsureSchema(ctx))

	tmpl, err := template.LoadFromDb(template.TemplateDbProps{
		ID:             "template-1",
		Name:           "Battery",
		Version:        "1.0.0",
		UserID:         "user-1",
		OrganizationID: "org-1",
		Sections: []template.SectionDbProps{
			{
				ID:          "section-cells",
				Name:        "Cells",
				Type:        datamodel.SectionTypeRepeatable,
				Granularity: datamodel.GranularityItem,
				DataFields: []template.DataFieldDbProps{
					{ID: "field-voltage", Name: "Voltage", Type: datamodel.FieldTypeNumeric, Granularity: datamodel.GranularityItem},
				},
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, tmpl))

	loaded, err := store.FindByID(ctx, "template-1")
	require.NoError(t, err)
	assert.Equal(t, "Battery", loaded.Name())
	assert.Len(t, loaded.Sections(), 1)

	listed, err := store.ListByOrganization(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	_, err = store.FindByID(ctx, "template-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStoreUpsert(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := NewPostgresStore(pg.Pool)
	require.NoError(t, store.EnsureSchema(ctx))

	tmpl, err := template.LoadFromDb(template.TemplateDbProps{
		ID:             "template-1",
		Name:           "Battery",
		Version:        "1.0.0",
		UserID:         "user-1",
		OrganizationID: "org-1",
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, tmpl))

	tmpl.AssignMarketplaceResource("resource-9")
	require.NoError(t, store.Save(ctx, tmpl))

	loaded, err := store.FindByID(ctx, "template-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.MarketplaceResourceID())
	assert.Equal(t, "resource-9", *loaded.MarketplaceResourceID())
}
