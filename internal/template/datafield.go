package template

import (
	"fmt"

	"github.com/google/uuid"

	"traceport/internal/datamodel"
)

// DataField is a typed leaf of the schema tree. The set of implementations is
// closed: TextField, NumericField, FileField and PassportLink. Each knows how
// to validate one opaque value; everything else about a field is plain
// metadata.
type DataField interface {
	ID() string
	Name() string
	Type() datamodel.FieldType
	// Options is an open key/value map of validation parameters. The schema
	// tree treats it as opaque; only the field's own validator may interpret
	// it.
	Options() map[string]any
	Granularity() datamodel.Granularity
	// Rename is the only mutation a field supports after creation.
	Rename(name string)
	// Validate checks a single candidate value. The template version is passed
	// through so validators can change behavior across schema versions; the
	// built-in validators do not use it yet.
	Validate(version string, value any) FieldValidationResult
	// DbProps returns the plain persistable shape of the field. Options are
	// deep-copied so a stored or copied template never aliases live state.
	DbProps() DataFieldDbProps
}

// DataFieldDbProps is the plain, storage-facing shape of a data field.
type DataFieldDbProps struct {
	ID          string
	Name        string
	Type        datamodel.FieldType
	Options     map[string]any
	Granularity datamodel.Granularity
}

type fieldBase struct {
	id          string
	name        string
	fieldType   datamodel.FieldType
	options     map[string]any
	granularity datamodel.Granularity
}

func newFieldBase(fieldType datamodel.FieldType, name string, options map[string]any, granularity datamodel.Granularity) fieldBase {
	return fieldBase{
		id:          uuid.NewString(),
		name:        name,
		fieldType:   fieldType,
		options:     copyOptions(options),
		granularity: granularity,
	}
}

func loadFieldBase(fieldType datamodel.FieldType, props DataFieldDbProps) fieldBase {
	return fieldBase{
		id:          props.ID,
		name:        props.Name,
		fieldType:   fieldType,
		options:     copyOptions(props.Options),
		granularity: props.Granularity,
	}
}

func (f *fieldBase) ID() string                         { return f.id }
func (f *fieldBase) Name() string                       { return f.name }
func (f *fieldBase) Type() datamodel.FieldType          { return f.fieldType }
func (f *fieldBase) Options() map[string]any            { return copyOptions(f.options) }
func (f *fieldBase) Granularity() datamodel.Granularity { return f.granularity }
func (f *fieldBase) Rename(name string)                 { f.name = name }

func (f *fieldBase) DbProps() DataFieldDbProps {
	return DataFieldDbProps{
		ID:          f.id,
		Name:        f.name,
		Type:        f.fieldType,
		Options:     copyOptions(f.options),
		Granularity: f.granularity,
	}
}

func copyOptions(options map[string]any) map[string]any {
	copied := make(map[string]any, len(options))
	for k, v := range options {
		copied[k] = v
	}
	return copied
}

// TextField holds free-form text.
type TextField struct{ fieldBase }

// NumericField holds a number.
type NumericField struct{ fieldBase }

// FileField holds a reference to an uploaded file.
type FileField struct{ fieldBase }

// PassportLink cross-references another product passport by its public
// identifier.
type PassportLink struct{ fieldBase }

func NewTextField(name string, options map[string]any, granularity datamodel.Granularity) *TextField {
	return &TextField{newFieldBase(datamodel.FieldTypeText, name, options, granularity)}
}

func NewNumericField(name string, options map[string]any, granularity datamodel.Granularity) *NumericField {
	return &NumericField{newFieldBase(datamodel.FieldTypeNumeric, name, options, granularity)}
}

func NewFileField(name string, options map[string]any, granularity datamodel.Granularity) *FileField {
	return &FileField{newFieldBase(datamodel.FieldTypeFile, name, options, granularity)}
}

func NewPassportLink(name string, options map[string]any, granularity datamodel.Granularity) *PassportLink {
	return &PassportLink{newFieldBase(datamodel.FieldTypePassportLink, name, options, granularity)}
}

func (f *TextField) Validate(_ string, value any) FieldValidationResult {
	return validateOptionalString(f.id, f.name, value)
}

func (f *FileField) Validate(_ string, value any) FieldValidationResult {
	return validateOptionalString(f.id, f.name, value)
}

func (f *PassportLink) Validate(_ string, value any) FieldValidationResult {
	return validateOptionalString(f.id, f.name, value)
}

func (f *NumericField) Validate(_ string, value any) FieldValidationResult {
	if value == nil || isNumber(value) {
		return validField(f.id, f.name)
	}
	return invalidField(f.id, f.name, fmt.Sprintf("expected number, received %T", value))
}

// LoadDataField reconstructs the concrete field type from its stored
// discriminator. An unknown discriminator is fatal to the reconstruction, not
// a validation failure.
func LoadDataField(props DataFieldDbProps) (DataField, error) {
	switch props.Type {
	case datamodel.FieldTypeText:
		return &TextField{loadFieldBase(datamodel.FieldTypeText, props)}, nil
	case datamodel.FieldTypeNumeric:
		return &NumericField{loadFieldBase(datamodel.FieldTypeNumeric, props)}, nil
	case datamodel.FieldTypeFile:
		return &FileField{loadFieldBase(datamodel.FieldTypeFile, props)}, nil
	case datamodel.FieldTypePassportLink:
		return &PassportLink{loadFieldBase(datamodel.FieldTypePassportLink, props)}, nil
	default:
		return nil, fmt.Errorf("data field type %q: %w", props.Type, ErrNotSupported)
	}
}

// validateOptionalString accepts an absent value or a string. Absence is
// allowed here; required-ness is a section-level concern.
func validateOptionalString(fieldID, fieldName string, value any) FieldValidationResult {
	if value == nil {
		return validField(fieldID, fieldName)
	}
	if _, ok := value.(string); ok {
		return validField(fieldID, fieldName)
	}
	return invalidField(fieldID, fieldName, fmt.Sprintf("expected string, received %T", value))
}

// isNumber covers the numeric kinds a JSON decoder or a caller may hand us.
func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
