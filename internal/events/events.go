// Package events publishes traceability events for passport data changes.
// Publication is best-effort and asynchronous to the write path: a failed
// publish is logged, never surfaced to the caller, because the store is the
// source of truth and events are a downstream feed.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType discriminates traceability events.
type EventType string

const (
	EventModelCreated       EventType = "model_created"
	EventItemCreated        EventType = "item_created"
	EventDataValuesAdded    EventType = "data_values_added"
	EventDataValuesModified EventType = "data_values_modified"
	EventIdentifierMinted   EventType = "identifier_minted"
)

// Event is one traceability fact about a carrier.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	OccurredAt     time.Time `json:"occurredAt"`
	OrganizationID string    `json:"organizationId"`
	CarrierID      string    `json:"carrierId"`
	TemplateID     string    `json:"templateId"`
	ValueCount     int       `json:"valueCount,omitempty"`
}

// NewEvent stamps identity and time onto an event.
func NewEvent(eventType EventType, organizationID, carrierID, templateID string, valueCount int) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		OccurredAt:     time.Now().UTC(),
		OrganizationID: organizationID,
		CarrierID:      carrierID,
		TemplateID:     templateID,
		ValueCount:     valueCount,
	}
}

// Publisher emits traceability events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// NoopPublisher drops all events. Used when no broker is configured and in
// tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close()                               {}
