package datamodel

// DataValue is one row-indexed fact: the payload stored for a data field of a
// section at a given row. The payload is opaque to the schema tree; only the
// owning field's validator interprets it. A nil Value means "no value yet",
// which is a legal, validatable state.
//
// DataValue is immutable. Carriers replace values wholesale by their
// (section, field, row) identity instead of mutating payloads in place.
type DataValue struct {
	Value         any    `json:"value"`
	DataSectionID string `json:"dataSectionId"`
	DataFieldID   string `json:"dataFieldId"`
	Row           int    `json:"row"`
}

// NewDataValue builds a value fact for the given coordinates.
func NewDataValue(sectionID, fieldID string, value any, row int) DataValue {
	return DataValue{
		Value:         value,
		DataSectionID: sectionID,
		DataFieldID:   fieldID,
		Row:           row,
	}
}

// SameKey reports whether two values address the same (section, field, row)
// slot. Carriers use this identity for uniqueness and replacement.
func (d DataValue) SameKey(other DataValue) bool {
	return d.DataSectionID == other.DataSectionID &&
		d.DataFieldID == other.DataFieldID &&
		d.Row == other.Row
}
