// Package store persists model and item carriers as JSONB documents, and
// mirrors each carrier's identifier tokens into a lookup table so a public
// UUID can be resolved without scanning carrier documents.
package store

import (
	"traceport/internal/datamodel"
	"traceport/internal/identifier"
	"traceport/internal/passportdata"
)

// DataValueDoc is the stored shape of one value fact.
type DataValueDoc struct {
	Value         any    `json:"value"`
	DataSectionID string `json:"dataSectionId"`
	DataFieldID   string `json:"dataFieldId"`
	Row           int    `json:"row"`
}

// IdentifierDoc is the stored shape of an identifier token.
type IdentifierDoc struct {
	UUID        string `json:"uuid"`
	ReferenceID string `json:"referenceId"`
}

// ModelDoc is the stored shape of a model carrier.
type ModelDoc struct {
	ID                       string          `json:"_id"`
	Name                     string          `json:"name"`
	Description              string          `json:"description"`
	OwnedByOrganizationID    string          `json:"ownedByOrganizationId"`
	CreatedByUserID          string          `json:"createdByUserId"`
	TemplateID               string          `json:"templateId"`
	UniqueProductIdentifiers []IdentifierDoc `json:"uniqueProductIdentifiers"`
	DataValues               []DataValueDoc  `json:"dataValues"`
	MediaReferences          []string        `json:"mediaReferences"`
}

// ItemDoc is the stored shape of an item carrier.
type ItemDoc struct {
	ID                       string          `json:"_id"`
	OwnedByOrganizationID    string          `json:"ownedByOrganizationId"`
	CreatedByUserID          string          `json:"createdByUserId"`
	ModelID                  string          `json:"modelId"`
	TemplateID               string          `json:"templateId"`
	UniqueProductIdentifiers []IdentifierDoc `json:"uniqueProductIdentifiers"`
	DataValues               []DataValueDoc  `json:"dataValues"`
}

func serializeValues(values []datamodel.DataValue) []DataValueDoc {
	docs := make([]DataValueDoc, 0, len(values))
	for _, v := range values {
		docs = append(docs, DataValueDoc{
			Value:         v.Value,
			DataSectionID: v.DataSectionID,
			DataFieldID:   v.DataFieldID,
			Row:           v.Row,
		})
	}
	return docs
}

func deserializeValues(docs []DataValueDoc) []datamodel.DataValue {
	values := make([]datamodel.DataValue, 0, len(docs))
	for _, d := range docs {
		values = append(values, datamodel.NewDataValue(d.DataSectionID, d.DataFieldID, d.Value, d.Row))
	}
	return values
}

func serializeIdentifiers(upis []identifier.UniqueProductIdentifier) []IdentifierDoc {
	docs := make([]IdentifierDoc, 0, len(upis))
	for _, u := range upis {
		docs = append(docs, IdentifierDoc{UUID: u.UUID, ReferenceID: u.ReferenceID})
	}
	return docs
}

func deserializeIdentifiers(docs []IdentifierDoc) []identifier.UniqueProductIdentifier {
	upis := make([]identifier.UniqueProductIdentifier, 0, len(docs))
	for _, d := range docs {
		upis = append(upis, identifier.UniqueProductIdentifier{UUID: d.UUID, ReferenceID: d.ReferenceID})
	}
	return upis
}

// SerializeModel flattens a model carrier into its document shape.
func SerializeModel(m *passportdata.Model) ModelDoc {
	props := m.DbProps()
	return ModelDoc{
		ID:                       props.ID,
		Name:                     props.Name,
		Description:              props.Description,
		OwnedByOrganizationID:    props.OrganizationID,
		CreatedByUserID:          props.UserID,
		TemplateID:               props.TemplateID,
		UniqueProductIdentifiers: serializeIdentifiers(props.UniqueProductIdentifiers),
		DataValues:               serializeValues(props.DataValues),
		MediaReferences:          props.MediaReferences,
	}
}

// DeserializeModel rebuilds a model carrier verbatim from its document.
func DeserializeModel(doc ModelDoc) *passportdata.Model {
	return passportdata.LoadModelFromDb(passportdata.ModelDbProps{
		ID:                       doc.ID,
		Name:                     doc.Name,
		Description:              doc.Description,
		OrganizationID:           doc.OwnedByOrganizationID,
		UserID:                   doc.CreatedByUserID,
		TemplateID:               doc.TemplateID,
		UniqueProductIdentifiers: deserializeIdentifiers(doc.UniqueProductIdentifiers),
		DataValues:               deserializeValues(doc.DataValues),
		MediaReferences:          doc.MediaReferences,
	})
}

// SerializeItem flattens an item carrier into its document shape.
func SerializeItem(i *passportdata.Item) ItemDoc {
	props := i.DbProps()
	return ItemDoc{
		ID:                       props.ID,
		OwnedByOrganizationID:    props.OrganizationID,
		CreatedByUserID:          props.UserID,
		ModelID:                  props.ModelID,
		TemplateID:               props.TemplateID,
		UniqueProductIdentifiers: serializeIdentifiers(props.UniqueProductIdentifiers),
		DataValues:               serializeValues(props.DataValues),
	}
}

// DeserializeItem rebuilds an item carrier verbatim from its document.
func DeserializeItem(doc ItemDoc) *passportdata.Item {
	return passportdata.LoadItemFromDb(passportdata.ItemDbProps{
		ID:                       doc.ID,
		OrganizationID:           doc.OwnedByOrganizationID,
		UserID:                   doc.CreatedByUserID,
		ModelID:                  doc.ModelID,
		TemplateID:               doc.TemplateID,
		UniqueProductIdentifiers: deserializeIdentifiers(doc.UniqueProductIdentifiers),
		DataValues:               deserializeValues(doc.DataValues),
	})
}
