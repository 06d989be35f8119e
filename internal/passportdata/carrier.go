// Package passportdata implements the mutable data-carrier aggregates that
// hold actual values against a template: Model (one per product model) and
// Item (one per physical unit). The carriers enforce the write invariants of
// the value collection; reads for rendering go through the passport package.
package passportdata

import (
	"errors"
	"fmt"

	"traceport/internal/datamodel"
	"traceport/internal/identifier"
	"traceport/internal/template"
)

var (
	// ErrDataValueExists rejects an additive write that targets an already
	// occupied (section, field, row) slot. Adding is the mechanism for new
	// repeatable rows and must never silently double one.
	ErrDataValueExists = errors.New("data value already exists")

	// ErrTemplateMismatch rejects creating an item against a model that was
	// built from a different template.
	ErrTemplateMismatch = errors.New("model and template do not match")
)

// Carrier is the shared core of Model and Item: identity, ownership, the
// template binding, the identifier tokens, and the owned value collection.
// The value slice is never handed out mutably; all writes go through
// AddDataValues and ModifyDataValues so the (section, field, row) uniqueness
// and the update-only rule cannot be bypassed.
type Carrier struct {
	id                       string
	ownedByOrganizationID    string
	createdByUserID          string
	templateID               string
	granularity              datamodel.Granularity
	uniqueProductIdentifiers []identifier.UniqueProductIdentifier
	dataValues               []datamodel.DataValue
}

func (c *Carrier) ID() string                         { return c.id }
func (c *Carrier) OwnedByOrganizationID() string      { return c.ownedByOrganizationID }
func (c *Carrier) CreatedByUserID() string            { return c.createdByUserID }
func (c *Carrier) TemplateID() string                 { return c.templateID }
func (c *Carrier) Granularity() datamodel.Granularity { return c.granularity }

func (c *Carrier) IsOwnedBy(organizationID string) bool {
	return c.ownedByOrganizationID == organizationID
}

// UniqueProductIdentifiers returns the identifier tokens minted for this
// carrier, oldest first.
func (c *Carrier) UniqueProductIdentifiers() []identifier.UniqueProductIdentifier {
	return append([]identifier.UniqueProductIdentifier{}, c.uniqueProductIdentifiers...)
}

// DataValues returns a copy of the owned value collection.
func (c *Carrier) DataValues() []datamodel.DataValue {
	return append([]datamodel.DataValue{}, c.dataValues...)
}

// DataValuesBySection returns all values addressed to one section.
func (c *Carrier) DataValuesBySection(sectionID string) []datamodel.DataValue {
	var out []datamodel.DataValue
	for _, v := range c.dataValues {
		if v.DataSectionID == sectionID {
			out = append(out, v)
		}
	}
	return out
}

// DataValuesBySectionRow narrows DataValuesBySection to a single row.
func (c *Carrier) DataValuesBySectionRow(sectionID string, row int) []datamodel.DataValue {
	var out []datamodel.DataValue
	for _, v := range c.dataValues {
		if v.DataSectionID == sectionID && v.Row == row {
			out = append(out, v)
		}
	}
	return out
}

// AddDataValues appends new value facts. It is strictly additive: any incoming
// value whose (section, field, row) slot is already occupied fails the whole
// batch before anything is applied.
func (c *Carrier) AddDataValues(values ...datamodel.DataValue) error {
	for _, incoming := range values {
		for _, existing := range c.dataValues {
			if existing.SameKey(incoming) {
				return fmt.Errorf("section %s, field %s, row %d: %w",
					incoming.DataSectionID, incoming.DataFieldID, incoming.Row, ErrDataValueExists)
			}
		}
	}
	c.dataValues = append(c.dataValues, values...)
	return nil
}

// ModifyDataValues replaces the payloads of existing values matched by
// (section, field, row). Incoming values with no matching slot are silently
// dropped: modification never creates rows.
func (c *Carrier) ModifyDataValues(values ...datamodel.DataValue) {
	for i, existing := range c.dataValues {
		for _, incoming := range values {
			if existing.SameKey(incoming) {
				c.dataValues[i] = datamodel.NewDataValue(
					existing.DataSectionID, existing.DataFieldID, incoming.Value, existing.Row)
			}
		}
	}
}

// CreateUniqueProductIdentifier mints a new identifier token referencing this
// carrier and records it. Pass an empty externalUUID to mint a fresh UUID.
func (c *Carrier) CreateUniqueProductIdentifier(externalUUID string) identifier.UniqueProductIdentifier {
	upi := identifier.New(externalUUID, c.id)
	c.uniqueProductIdentifiers = append(c.uniqueProductIdentifiers, upi)
	return upi
}

// initializeFromTemplate seeds the carrier with the template's placeholder
// values for this carrier's granularity. Called once at creation, never on
// load.
func (c *Carrier) initializeFromTemplate(t *template.Template) error {
	values, err := t.CreateInitialDataValues(c.granularity)
	if err != nil {
		return err
	}
	c.dataValues = values
	return nil
}
