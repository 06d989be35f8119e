// Package identifier holds the opaque external-reference tokens under which a
// passport is reachable from the outside, e.g. the UUID encoded in a printed
// QR code. One carrier may expose several tokens concurrently.
package identifier

import "github.com/google/uuid"

// UniqueProductIdentifier binds a public UUID to the carrier (model or item)
// it belongs to.
type UniqueProductIdentifier struct {
	UUID        string
	ReferenceID string
}

// New mints a token for the given carrier. When externalUUID is non-empty it
// is adopted as the public id, which supports pre-printed identifier batches.
func New(externalUUID, referenceID string) UniqueProductIdentifier {
	publicID := externalUUID
	if publicID == "" {
		publicID = uuid.NewString()
	}
	return UniqueProductIdentifier{UUID: publicID, ReferenceID: referenceID}
}
