// Package passport reconstitutes read-only passport views by merging a
// template with a model carrier and, optionally, an item carrier. Nothing in
// this package is a source of truth; views are rebuilt on demand from the
// carriers.
package passport

import (
	"traceport/internal/datamodel"
	"traceport/internal/identifier"
	"traceport/internal/passportdata"
	"traceport/internal/template"
)

// Row is the flat reconstruction of one row of a section: field id to payload.
// A visible field with no stored value appears with a nil payload; a field the
// caller may not see (item-scoped field in a model-only view) has no entry at
// all.
type Row map[string]any

// DataSection pairs a section's schema metadata with the rows reconstructed
// from the carriers.
type DataSection struct {
	Section    template.Section
	DataValues []Row
}

// NewDataSection merges the carriers' values for one section. item may be nil
// for a model-only view.
func NewDataSection(section template.Section, model *passportdata.Model, item *passportdata.Item) DataSection {
	pool := sectionValuePool(section, model, item)

	minRow, maxRow := 0, 0
	for i, v := range pool {
		if i == 0 || v.Row < minRow {
			minRow = v.Row
		}
		if v.Row+1 > maxRow {
			maxRow = v.Row + 1
		}
	}

	// Rows are emitted contiguously between the lowest and highest row present,
	// even when some rows are internally sparse. An empty pool emits no rows.
	rows := make([]Row, 0, maxRow-minRow)
	for rowIndex := minRow; rowIndex < maxRow; rowIndex++ {
		rows = append(rows, buildRow(section, valuesAtRow(pool, rowIndex), item != nil))
	}
	return DataSection{Section: section, DataValues: rows}
}

// sectionValuePool selects the candidate values for a section. A repeater's
// rows live on exactly one carrier, the one matching the section's own
// granularity. A group section merges both carriers, because its fields may
// individually live at either level.
func sectionValuePool(section template.Section, model *passportdata.Model, item *passportdata.Item) []datamodel.DataValue {
	if section.Type() == datamodel.SectionTypeRepeatable {
		if section.Granularity() == datamodel.GranularityModel {
			return model.DataValuesBySection(section.ID())
		}
		if item == nil {
			return nil
		}
		return item.DataValuesBySection(section.ID())
	}
	pool := model.DataValuesBySection(section.ID())
	if item != nil {
		pool = append(pool, item.DataValuesBySection(section.ID())...)
	}
	return pool
}

// buildRow maps every visible field of the section to its payload at this row.
// Item-scoped fields are visible only when an item carrier was supplied: a
// model-only view must not leak item keys even if a stray value exists.
func buildRow(section template.Section, rowValues []datamodel.DataValue, itemPresent bool) Row {
	row := Row{}
	for _, field := range section.DataFields() {
		if !itemPresent && field.Granularity() == datamodel.GranularityItem {
			continue
		}
		var payload any
		if v, ok := findValue(rowValues, field.ID()); ok {
			payload = v.Value
		}
		row[field.ID()] = payload
	}
	return row
}

func valuesAtRow(pool []datamodel.DataValue, row int) []datamodel.DataValue {
	var out []datamodel.DataValue
	for _, v := range pool {
		if v.Row == row {
			out = append(out, v)
		}
	}
	return out
}

func findValue(values []datamodel.DataValue, fieldID string) (datamodel.DataValue, bool) {
	for _, v := range values {
		if v.DataFieldID == fieldID {
			return v, true
		}
	}
	return datamodel.DataValue{}, false
}

// ProductPassport is the public, read-only reconstruction of one passport,
// keyed by the identifier token it was requested under.
type ProductPassport struct {
	ID           string
	Name         string
	Description  string
	DataSections []DataSection
}

// New assembles the passport for every template section in declaration order.
// Sub-sections are independent entries of the flat section list and appear
// where the template declares them; no tree walk happens here.
func New(t *template.Template, model *passportdata.Model, item *passportdata.Item, upi identifier.UniqueProductIdentifier) ProductPassport {
	sections := make([]DataSection, 0, len(t.Sections()))
	for _, section := range t.Sections() {
		sections = append(sections, NewDataSection(section, model, item))
	}
	return ProductPassport{
		ID:           upi.UUID,
		Name:         model.Name(),
		Description:  model.Description(),
		DataSections: sections,
	}
}
