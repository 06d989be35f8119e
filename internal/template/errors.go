package template

import "errors"

// Structural errors raised by the schema tree. These indicate schema drift,
// corrupted documents, or integration bugs and must not be confused with
// validation failures, which are reported through ValidationResult instead of
// being returned as errors.
var (
	// ErrNotSupported signals an unknown section or data field discriminator
	// encountered while reconstructing a template from storage.
	ErrNotSupported = errors.New("not supported")

	// ErrSectionNotFound signals a dangling section id reference.
	ErrSectionNotFound = errors.New("section not found")
)
