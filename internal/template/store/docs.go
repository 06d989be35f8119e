// Package store persists templates as self-contained documents. The document
// shape is the exchange contract of the schema: string discriminators for
// section/field types and granularity levels, plus a schema-version marker
// that lets old documents be migrated forward deterministically on load.
package store

import (
	"traceport/internal/datamodel"
	"traceport/internal/template"
)

// SchemaVersion is the current template document version. Documents written
// before it may lack granularity levels on repeatable sections and may still
// carry the long-dropped layout sub-objects; both are handled on load.
const SchemaVersion = "1.0.3"

// DataFieldDoc is the stored shape of a data field.
type DataFieldDoc struct {
	ID               string         `json:"_id"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	Options          map[string]any `json:"options"`
	GranularityLevel string         `json:"granularityLevel,omitempty"`
}

// SectionDoc is the stored shape of a section.
type SectionDoc struct {
	ID               string         `json:"_id"`
	Name             string         `json:"name"`
	Type             string         `json:"type"`
	DataFields       []DataFieldDoc `json:"dataFields"`
	ParentID         string         `json:"parentId,omitempty"`
	SubSections      []string       `json:"subSections"`
	GranularityLevel string         `json:"granularityLevel,omitempty"`
}

// TemplateDoc is the stored shape of a whole template.
type TemplateDoc struct {
	ID                    string       `json:"_id"`
	SchemaVersion         string       `json:"_schemaVersion"`
	Name                  string       `json:"name"`
	Description           string       `json:"description"`
	Sectors               []string     `json:"sectors"`
	Version               string       `json:"version"`
	Sections              []SectionDoc `json:"sections"`
	CreatedByUserID       string       `json:"createdByUserId"`
	OwnedByOrganizationID string       `json:"ownedByOrganizationId"`
	MarketplaceResourceID *string      `json:"marketplaceResourceId"`
}

// Serialize flattens a template aggregate into its document shape.
func Serialize(t *template.Template) TemplateDoc {
	props := t.DbProps()
	sections := make([]SectionDoc, 0, len(props.Sections))
	for _, sp := range props.Sections {
		fields := make([]DataFieldDoc, 0, len(sp.DataFields))
		for _, fp := range sp.DataFields {
			fields = append(fields, DataFieldDoc{
				ID:               fp.ID,
				Name:             fp.Name,
				Type:             string(fp.Type),
				Options:          fp.Options,
				GranularityLevel: string(fp.Granularity),
			})
		}
		sections = append(sections, SectionDoc{
			ID:               sp.ID,
			Name:             sp.Name,
			Type:             string(sp.Type),
			DataFields:       fields,
			ParentID:         sp.ParentID,
			SubSections:      sp.SubSections,
			GranularityLevel: string(sp.Granularity),
		})
	}
	sectors := make([]string, 0, len(props.Sectors))
	for _, s := range props.Sectors {
		sectors = append(sectors, string(s))
	}
	return TemplateDoc{
		ID:                    props.ID,
		SchemaVersion:         SchemaVersion,
		Name:                  props.Name,
		Description:           props.Description,
		Sectors:               sectors,
		Version:               props.Version,
		Sections:              sections,
		CreatedByUserID:       props.UserID,
		OwnedByOrganizationID: props.OrganizationID,
		MarketplaceResourceID: props.MarketplaceResourceID,
	}
}

// Deserialize rebuilds the aggregate from a document, migrating legacy
// documents forward: a repeatable section with no stored granularity level
// resolves to Model, a group section with none stays unset, and a data field
// with none resolves to Model. The defaults are deterministic so repeated
// loads of the same document always agree.
func Deserialize(doc TemplateDoc) (*template.Template, error) {
	sections := make([]template.SectionDbProps, 0, len(doc.Sections))
	for _, sd := range doc.Sections {
		fields := make([]template.DataFieldDbProps, 0, len(sd.DataFields))
		for _, fd := range sd.DataFields {
			granularity := datamodel.Granularity(fd.GranularityLevel)
			if granularity == datamodel.GranularityUnset {
				granularity = datamodel.GranularityModel
			}
			fields = append(fields, template.DataFieldDbProps{
				ID:          fd.ID,
				Name:        fd.Name,
				Type:        datamodel.FieldType(fd.Type),
				Options:     fd.Options,
				Granularity: granularity,
			})
		}
		granularity := datamodel.Granularity(sd.GranularityLevel)
		if granularity == datamodel.GranularityUnset && sd.Type == string(datamodel.SectionTypeRepeatable) {
			granularity = datamodel.GranularityModel
		}
		sections = append(sections, template.SectionDbProps{
			ID:          sd.ID,
			Name:        sd.Name,
			Type:        datamodel.SectionType(sd.Type),
			ParentID:    sd.ParentID,
			SubSections: sd.SubSections,
			Granularity: granularity,
			DataFields:  fields,
		})
	}
	sectors := make([]datamodel.Sector, 0, len(doc.Sectors))
	for _, s := range doc.Sectors {
		sectors = append(sectors, datamodel.Sector(s))
	}
	return template.LoadFromDb(template.TemplateDbProps{
		ID:                    doc.ID,
		Name:                  doc.Name,
		Description:           doc.Description,
		Sectors:               sectors,
		Version:               doc.Version,
		UserID:                doc.CreatedByUserID,
		OrganizationID:        doc.OwnedByOrganizationID,
		Sections:              sections,
		MarketplaceResourceID: doc.MarketplaceResourceID,
	})
}
