package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into API responses.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: aggregate or identifier token does not exist in the store
// - ErrConflict: write collides with an existing record
// - ErrUnavailable: backing store temporarily unreachable
// - ErrUnauthorized: caller credentials missing, invalid, or expired
// - ErrForbidden: caller authenticated but not owner of the aggregate
//
// Content problems (a value failing its field rule) are never errors; they
// travel as validation reports.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
