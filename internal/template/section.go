package template

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"traceport/internal/datamodel"
)

// Section is a schema node owning data fields. The set of implementations is
// closed: GroupSection (entered once per carrier, row 0 by convention) and
// RepeaterSection (rows added explicitly, one per repeated entry).
//
// Sections reference each other by id only. The owning Template's flat section
// collection is the sole arena; ParentID and SubSections are edges into it,
// never ownership pointers.
type Section interface {
	ID() string
	Name() string
	Type() datamodel.SectionType
	ParentID() string
	SubSections() []string
	Granularity() datamodel.Granularity
	DataFields() []DataField
	// Validate checks all values addressed to this section, row by row. Fields
	// of other granularities are skipped; a row that exists but lacks a value
	// for an in-scope field yields a missing-value outcome. A section with no
	// rows at all yields no outcomes.
	Validate(version string, values []datamodel.DataValue, granularity datamodel.Granularity) []FieldValidationResult
	DbProps() SectionDbProps
}

// SectionDbProps is the plain, storage-facing shape of a section.
type SectionDbProps struct {
	ID          string
	Name        string
	Type        datamodel.SectionType
	ParentID    string
	SubSections []string
	Granularity datamodel.Granularity
	DataFields  []DataFieldDbProps
}

type sectionBase struct {
	id          string
	name        string
	sectionType datamodel.SectionType
	parentID    string
	subSections []string
	granularity datamodel.Granularity
	dataFields  []DataField
}

func (s *sectionBase) ID() string                         { return s.id }
func (s *sectionBase) Name() string                       { return s.name }
func (s *sectionBase) Type() datamodel.SectionType        { return s.sectionType }
func (s *sectionBase) ParentID() string                   { return s.parentID }
func (s *sectionBase) SubSections() []string              { return s.subSections }
func (s *sectionBase) Granularity() datamodel.Granularity { return s.granularity }
func (s *sectionBase) DataFields() []DataField            { return s.dataFields }

func (s *sectionBase) Validate(version string, values []datamodel.DataValue, granularity datamodel.Granularity) []FieldValidationResult {
	byRow := make(map[int][]datamodel.DataValue)
	for _, v := range values {
		if v.DataSectionID == s.id {
			byRow[v.Row] = append(byRow[v.Row], v)
		}
	}
	rows := make([]int, 0, len(byRow))
	for row := range byRow {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	var results []FieldValidationResult
	for _, row := range rows {
		rowValues := byRow[row]
		for _, field := range s.dataFields {
			if field.Granularity() != granularity {
				continue
			}
			value, found := findValueByFieldID(rowValues, field.ID())
			if found {
				results = append(results, field.Validate(version, value.Value))
			} else {
				results = append(results, missingField(field.ID(), field.Name(), row))
			}
		}
	}
	return results
}

func (s *sectionBase) DbProps() SectionDbProps {
	fields := make([]DataFieldDbProps, 0, len(s.dataFields))
	for _, f := range s.dataFields {
		fields = append(fields, f.DbProps())
	}
	return SectionDbProps{
		ID:          s.id,
		Name:        s.name,
		Type:        s.sectionType,
		ParentID:    s.parentID,
		SubSections: append([]string{}, s.subSections...),
		Granularity: s.granularity,
		DataFields:  fields,
	}
}

func findValueByFieldID(values []datamodel.DataValue, fieldID string) (datamodel.DataValue, bool) {
	for _, v := range values {
		if v.DataFieldID == fieldID {
			return v, true
		}
	}
	return datamodel.DataValue{}, false
}

// GroupSection groups fields that are entered together once. Its granularity
// may stay unset; fields inside it carry their own level.
type GroupSection struct{ sectionBase }

// RepeaterSection holds repeated entries of the same field set. Its
// granularity is required and pins which carrier owns its rows.
type RepeaterSection struct{ sectionBase }

func NewGroupSection(name string, granularity datamodel.Granularity) *GroupSection {
	return &GroupSection{sectionBase{
		id:          uuid.NewString(),
		name:        name,
		sectionType: datamodel.SectionTypeGroup,
		granularity: granularity,
	}}
}

func NewRepeaterSection(name string, granularity datamodel.Granularity) *RepeaterSection {
	return &RepeaterSection{sectionBase{
		id:          uuid.NewString(),
		name:        name,
		sectionType: datamodel.SectionTypeRepeatable,
		granularity: granularity,
	}}
}

// LoadSection reconstructs the concrete section type, and its owned fields,
// from stored props. An unknown discriminator is fatal.
func LoadSection(props SectionDbProps) (Section, error) {
	fields := make([]DataField, 0, len(props.DataFields))
	for _, fp := range props.DataFields {
		field, err := LoadDataField(fp)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", props.ID, err)
		}
		fields = append(fields, field)
	}
	base := sectionBase{
		id:          props.ID,
		name:        props.Name,
		sectionType: props.Type,
		parentID:    props.ParentID,
		subSections: append([]string{}, props.SubSections...),
		granularity: props.Granularity,
		dataFields:  fields,
	}
	switch props.Type {
	case datamodel.SectionTypeGroup:
		return &GroupSection{base}, nil
	case datamodel.SectionTypeRepeatable:
		return &RepeaterSection{base}, nil
	default:
		return nil, fmt.Errorf("section type %q: %w", props.Type, ErrNotSupported)
	}
}
