//go:build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceport/internal/datamodel"
	idstore "traceport/internal/identifier/store"
	"traceport/internal/passportdata"
	pdstore "traceport/internal/passportdata/store"
	platformredis "traceport/internal/platform/redis"
	"traceport/internal/template"
	tmplstore "traceport/internal/template/store"
	"traceport/pkg/testutil/containers"
)

func TestPassportViewIsServedFromCache(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	cache, err := platformredis.New(rc.Addr)
	require.NoError(t, err)
	require.NotNil(t, cache)
	t.Cleanup(func() { _ = cache.Close() })

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
				},
			},
		},
	})
	require.NoError(t, err)

	model, err := passportdata.NewModel(passportdata.ModelCreateProps{
		Name:           "Phone X",
		OrganizationID: "org-1",
		UserID:         "user-1",
		Template:       tmpl,
	})
	require.NoError(t, err)
	upi := model.CreateUniqueProductIdentifier("")

	templates := tmplstore.NewInMemoryStore()
	models := pdstore.NewInMemoryModelStore()
	items := pdstore.NewInMemoryItemStore()
	identifiers := idstore.NewInMemoryStore()
	require.NoError(t, templates.Save(ctx, tmpl))
	require.NoError(t, models.Save(ctx, model))
	require.NoError(t, identifiers.Save(ctx, upi))

	svc := New(identifiers, models, items, templates, WithCache(cache, time.Minute))

	first, err := svc.Get(ctx, upi.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Phone X", first.Name)

	// Rename the stored model; the cached view must still serve the old name
	// until the TTL expires.
	model.Rename("Phone X Pro")
	require.NoError(t, models.Save(ctx, model))

	second, err := svc.Get(ctx, upi.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Phone X", second.Name)
}
