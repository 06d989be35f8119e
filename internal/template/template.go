// Package template implements the versioned schema aggregate a product
// passport is built from: a flat arena of sections, each owning typed data
// fields, plus the validation engine and initial-value synthesis that carriers
// rely on.
package template

import (
	"fmt"

	"github.com/google/uuid"

	"traceport/internal/datamodel"
)

// Template is an organization-owned, versioned schema. It owns all its
// sections transitively; sections reference each other through the flat
// collection by id.
type Template struct {
	id                    string
	name                  string
	description           string
	sectors               []datamodel.Sector
	version               string
	createdByUserID       string
	ownedByOrganizationID string
	sections              []Section
	marketplaceResourceID *string
}

// TemplateDbProps is the plain shape a persistence adapter hands over when
// reconstructing a template.
type TemplateDbProps struct {
	ID                    string
	Name                  string
	Description           string
	Sectors               []datamodel.Sector
	Version               string
	UserID                string
	OrganizationID        string
	Sections              []SectionDbProps
	MarketplaceResourceID *string
}

// LoadFromDb reconstructs a template verbatim from persisted props. Section
// and field subtypes are rebuilt from their discriminators; an unknown
// discriminator fails the whole reconstruction.
func LoadFromDb(props TemplateDbProps) (*Template, error) {
	sections := make([]Section, 0, len(props.Sections))
	for _, sp := range props.Sections {
		section, err := LoadSection(sp)
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", props.ID, err)
		}
		sections = append(sections, section)
	}
	return &Template{
		id:                    props.ID,
		name:                  props.Name,
		description:           props.Description,
		sectors:               append([]datamodel.Sector{}, props.Sectors...),
		version:               props.Version,
		createdByUserID:       props.UserID,
		ownedByOrganizationID: props.OrganizationID,
		sections:              sections,
		marketplaceResourceID: props.MarketplaceResourceID,
	}, nil
}

func (t *Template) ID() string                        { return t.id }
func (t *Template) Name() string                      { return t.name }
func (t *Template) Description() string               { return t.description }
func (t *Template) Sectors() []datamodel.Sector       { return t.sectors }
func (t *Template) Version() string                   { return t.version }
func (t *Template) CreatedByUserID() string           { return t.createdByUserID }
func (t *Template) OwnedByOrganizationID() string     { return t.ownedByOrganizationID }
func (t *Template) Sections() []Section               { return t.sections }
func (t *Template) MarketplaceResourceID() *string    { return t.marketplaceResourceID }

func (t *Template) IsOwnedBy(organizationID string) bool {
	return t.ownedByOrganizationID == organizationID
}

// AssignMarketplaceResource marks this template as published to, or forked
// from, a marketplace resource.
func (t *Template) AssignMarketplaceResource(resourceID string) {
	t.marketplaceResourceID = &resourceID
}

func (t *Template) FindSectionByID(id string) (Section, bool) {
	for _, s := range t.sections {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

func (t *Template) FindSectionByIDOrFail(id string) (Section, error) {
	section, ok := t.FindSectionByID(id)
	if !ok {
		return nil, fmt.Errorf("section %s: %w", id, ErrSectionNotFound)
	}
	return section, nil
}

// Validate runs the section validators over the given values at one
// granularity. When includeSectionIDs is non-empty, only those sections are
// validated; this backs partial-form validation.
func (t *Template) Validate(values []datamodel.DataValue, granularity datamodel.Granularity, includeSectionIDs ...string) *ValidationResult {
	result := NewValidationResult()
	for _, section := range t.sections {
		if len(includeSectionIDs) > 0 && !containsID(includeSectionIDs, section.ID()) {
			continue
		}
		for _, outcome := range section.Validate(t.version, values, granularity) {
			result.Add(outcome)
		}
	}
	return result
}

// CreateInitialDataValues synthesizes one placeholder value (row 0, absent
// payload) for every field at the requested granularity that sits in a root
// group section or in a direct group child of one. Repeatable sections start
// empty and grow only through explicit row additions, and deeper nesting is
// reached lazily when rows are added, so neither takes part here.
func (t *Template) CreateInitialDataValues(granularity datamodel.Granularity) ([]datamodel.DataValue, error) {
	var rootGroups []Section
	for _, s := range t.sections {
		if s.ParentID() == "" && s.Type() == datamodel.SectionTypeGroup {
			rootGroups = append(rootGroups, s)
		}
	}
	relevant := append([]Section{}, rootGroups...)
	for _, root := range rootGroups {
		for _, childID := range root.SubSections() {
			child, err := t.FindSectionByIDOrFail(childID)
			if err != nil {
				return nil, err
			}
			if child.Type() == datamodel.SectionTypeGroup {
				relevant = append(relevant, child)
			}
		}
	}

	var values []datamodel.DataValue
	for _, section := range relevant {
		for _, field := range section.DataFields() {
			if field.Granularity() == granularity {
				values = append(values, datamodel.NewDataValue(section.ID(), field.ID(), nil, 0))
			}
		}
	}
	return values, nil
}

// Copy deep-clones the template under a fresh id for the given owner. The
// structure, version and marketplace provenance survive the copy; this is the
// fork operation behind remixing a shared schema.
func (t *Template) Copy(organizationID, userID string) (*Template, error) {
	sections := make([]SectionDbProps, 0, len(t.sections))
	for _, s := range t.sections {
		sections = append(sections, s.DbProps())
	}
	return LoadFromDb(TemplateDbProps{
		ID:                    uuid.NewString(),
		Name:                  t.name,
		Description:           t.description,
		Sectors:               append([]datamodel.Sector{}, t.sectors...),
		Version:               t.version,
		UserID:                userID,
		OrganizationID:        organizationID,
		Sections:              sections,
		MarketplaceResourceID: t.marketplaceResourceID,
	})
}

// DbProps returns the plain persistable shape of the whole aggregate.
func (t *Template) DbProps() TemplateDbProps {
	sections := make([]SectionDbProps, 0, len(t.sections))
	for _, s := range t.sections {
		sections = append(sections, s.DbProps())
	}
	return TemplateDbProps{
		ID:                    t.id,
		Name:                  t.name,
		Description:           t.description,
		Sectors:               append([]datamodel.Sector{}, t.sectors...),
		Version:               t.version,
		UserID:                t.createdByUserID,
		OrganizationID:        t.ownedByOrganizationID,
		Sections:              sections,
		MarketplaceResourceID: t.marketplaceResourceID,
	}
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
