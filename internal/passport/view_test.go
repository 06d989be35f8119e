package passport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceport/internal/datamodel"
	"traceport/internal/passportdata"
	"traceport/internal/template"
)

func nestedTemplate(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.LoadFromDb(template.TemplateDbProps{
		ID:             "template-nested",
		Name:           "Nested",
		Version:        "1.0.0",
		UserID:         "user-1",
		OrganizationID: "org-1",
		Sections: []template.SectionDbProps{
			{
				ID:          "section-sustainability",
				Name:        "Sustainability",
				Type:        datamodel.SectionTypeGroup,
				SubSections: []string{"section-co2"},
				DataFields: []template.DataFieldDbProps{
					{ID: "field-score", Name: "Score", Type: datamodel.FieldTypeNumeric, Granularity: datamodel.GranularityModel},
				},
			},
			{
				ID:       "section-co2",
				Name:     "CO2 footprint",
				Type:     datamodel.SectionTypeGroup,
				ParentID: "section-sustainability",
				DataFields: []template.DataFieldDbProps{
					{ID: "field-co2", Name: "CO2", Type: datamodel.FieldTypeNumeric, Granularity: datamodel.GranularityModel},
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
			{
				ID:          "section-repairs",
				Name:        "Repairs",
				Type:        datamodel.SectionTypeRepeatable,
				Granularity: datamodel.GranularityItem,
				DataFields: []template.DataFieldDbProps{
					{ID: "field-repair", Name: "Repair note", Type: datamodel.FieldTypeText, Granularity: datamodel.GranularityItem},
				},
			},
		},
	})
	require.NoError(t, err)
	return tmpl
}

func TestTreeViewNestsSubSectionsUnderRoots(t *testing.T) {
	tmpl := nestedTemplate(t)
	model, err := passportdata.NewModel(passportdata.ModelCreateProps{
		Name:           "Nested product",
		OrganizationID: "org-1",
		UserID:         "user-1",
		Template:       tmpl,
	})
	require.NoError(t, err)

	model.ModifyDataValues(
		datamodel.NewDataValue("section-sustainability", "field-score", 87, 0),
		datamodel.NewDataValue("section-co2", "field-co2", 12.5, 0),
	)

	view, err := BuildTreeView(tmpl, model, nil)
	require.NoError(t, err)

	assert.Equal(t, "Nested product", view.Name)
	// Only the two roots appear at the top level; the nested group hangs off
	// its parent.
	require.Len(t, view.Nodes, 2)

	sustainability := view.Nodes[0]
	assert.Equal(t, "Sustainability", sustainability.Name)
	require.Len(t, sustainability.Fields, 1)
	assert.Equal(t, 87, sustainability.Fields[0].Value)
	require.Len(t, sustainability.Sections, 1)
	assert.Equal(t, "CO2 footprint", sustainability.Sections[0].Name)
	assert.Equal(t, 12.5, sustainability.Sections[0].Fields[0].Value)
}

func TestTreeViewEmptyRepeaterRendersOneBlankRow(t *testing.T) {
	tmpl := nestedTemplate(t)
	model, err := passportdata.NewModel(passportdata.ModelCreateProps{
		Name:           "Nested product",
		OrganizationID: "org-1",
		UserID:         "user-1",
		Template:       tmpl,
	})
	require.NoError(t, err)

	view, err := BuildTreeView(tmpl, model, nil)
	require.NoError(t, err)

	materials := view.Nodes[1]
	assert.Equal(t, "Materials", materials.Name)
	require.Len(t, materials.Rows, 1)
	require.Len(t, materials.Rows[0].Fields, 1)
	assert.Nil(t, materials.Rows[0].Fields[0].Value)
}

func TestTreeViewRepeaterRowsAreInclusive(t *testing.T) {
	tmpl := nestedTemplate(t)
	model, err := passportdata.NewModel(passportdata.ModelCreateProps{
		Name:           "Nested product",
		OrganizationID: "org-1",
		UserID:         "user-1",
		Template:       tmpl,
	})
	require.NoError(t, err)

	require.NoError(t, model.AddDataValues(
		datamodel.NewDataValue("section-materials", "field-material", "Glass", 0),
		datamodel.NewDataValue("section-materials", "field-material", "Steel", 1),
	))

	view, err := BuildTreeView(tmpl, model, nil)
	require.NoError(t, err)

	materials := view.Nodes[1]
	require.Len(t, materials.Rows, 2)
	assert.Equal(t, "Glass", materials.Rows[0].Fields[0].Value)
	assert.Equal(t, "Steel", materials.Rows[1].Fields[0].Value)
	// Repeated rows carry no section name of their own.
	assert.Empty(t, materials.Rows[0].Name)
}

func TestTreeViewModelOnlyDropsItemRoots(t *testing.T) {
	tmpl := nestedTemplate(t)
	model, err := passportdata.NewModel(passportdata.ModelCreateProps{
		Name:           "Nested product",
		OrganizationID: "org-1",
		UserID:         "user-1",
		Template:       tmpl,
	})
	require.NoError(t, err)
	item, err := passportdata.NewItem(passportdata.ItemCreateProps{
		OrganizationID: "org-1",
		UserID:         "user-1",
		Template:       tmpl,
		Model:          model,
	})
	require.NoError(t, err)

	modelOnly, err := BuildTreeView(tmpl, model, nil)
	require.NoError(t, err)
	for _, node := range modelOnly.Nodes {
		assert.NotEqual(t, "Repairs", node.Name)
	}

	withItem, err := BuildTreeView(tmpl, model, item)
	require.NoError(t, err)
	names := make([]string, 0, len(withItem.Nodes))
	for _, node := range withItem.Nodes {
		names = append(names, node.Name)
	}
	assert.Contains(t, names, "Repairs")
}
