package template

// FieldValidationResult is the outcome of checking one data field, either
// against a present value or against the absence of one. Row is only set when
// the outcome is tied to a specific row, such as a missing value in a
// repeatable section.
type FieldValidationResult struct {
	DataFieldID   string
	DataFieldName string
	IsValid       bool
	Row           *int
	ErrorMessage  string
}

func validField(fieldID, fieldName string) FieldValidationResult {
	return FieldValidationResult{DataFieldID: fieldID, DataFieldName: fieldName, IsValid: true}
}

func invalidField(fieldID, fieldName, message string) FieldValidationResult {
	return FieldValidationResult{DataFieldID: fieldID, DataFieldName: fieldName, IsValid: false, ErrorMessage: message}
}

func missingField(fieldID, fieldName string, row int) FieldValidationResult {
	return FieldValidationResult{
		DataFieldID:   fieldID,
		DataFieldName: fieldName,
		IsValid:       false,
		Row:           &row,
		ErrorMessage:  "Value for data field is missing",
	}
}

// ValidationResult accumulates per-field outcomes for a whole template run.
// It is a report, not an error: callers decide whether an invalid report
// rejects a save or renders inline.
type ValidationResult struct {
	valid   bool
	results []FieldValidationResult
}

func NewValidationResult() *ValidationResult {
	return &ValidationResult{valid: true}
}

// Add records one outcome. A single invalid outcome makes the whole report
// invalid.
func (v *ValidationResult) Add(result FieldValidationResult) {
	if !result.IsValid {
		v.valid = false
	}
	v.results = append(v.results, result)
}

func (v *ValidationResult) IsValid() bool { return v.valid }

// Results returns all outcomes in validation order.
func (v *ValidationResult) Results() []FieldValidationResult { return v.results }

// Errors returns only the failing outcomes.
func (v *ValidationResult) Errors() []FieldValidationResult {
	var errs []FieldValidationResult
	for _, r := range v.results {
		if !r.IsValid {
			errs = append(errs, r)
		}
	}
	return errs
}
