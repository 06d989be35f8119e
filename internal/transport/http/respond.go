// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and translate outcomes; business rules never live here.
package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"traceport/internal/passportdata"
	"traceport/internal/template"
	"traceport/pkg/platform/sentinel"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError centralizes domain error translation to HTTP responses so every
// handler returns the same JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sentinel.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, sentinel.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, sentinel.ErrConflict), errors.Is(err, passportdata.ErrDataValueExists):
		status = http.StatusConflict
	case errors.Is(err, passportdata.ErrTemplateMismatch),
		errors.Is(err, template.ErrNotSupported),
		errors.Is(err, template.ErrSectionNotFound):
		status = http.StatusBadRequest
	case errors.Is(err, sentinel.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// fieldResultDTO is the wire shape of one validation outcome.
type fieldResultDTO struct {
	DataFieldID   string `json:"dataFieldId"`
	DataFieldName string `json:"dataFieldName"`
	IsValid       bool   `json:"isValid"`
	Row           *int   `json:"row,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

type validationReportDTO struct {
	IsValid bool             `json:"isValid"`
	Results []fieldResultDTO `json:"results"`
}

func toValidationReport(result *template.ValidationResult) validationReportDTO {
	results := make([]fieldResultDTO, 0, len(result.Results()))
	for _, r := range result.Results() {
		results = append(results, fieldResultDTO{
			DataFieldID:   r.DataFieldID,
			DataFieldName: r.DataFieldName,
			IsValid:       r.IsValid,
			Row:           r.Row,
			ErrorMessage:  r.ErrorMessage,
		})
	}
	return validationReportDTO{IsValid: result.IsValid(), Results: results}
}

// writeValidationOutcome renders a write result: a clean report returns the
// given payload, a dirty one returns 400 with the full report and nothing
// persisted.
func writeValidationOutcome(w http.ResponseWriter, result *template.ValidationResult, status int, payload any) {
	if !result.IsValid() {
		writeJSON(w, http.StatusBadRequest, toValidationReport(result))
		return
	}
	writeJSON(w, status, payload)
}
