package passportdata

import (
	"fmt"

	"github.com/google/uuid"

	"traceport/internal/datamodel"
	"traceport/internal/identifier"
	"traceport/internal/template"
)

// Item carries the data of one physical unit of a model. Its granularity is
// fixed to Item.
type Item struct {
	Carrier
	modelID string
}

// ItemCreateProps are the inputs for creating an item under a model.
type ItemCreateProps struct {
	OrganizationID string
	UserID         string
	Template       *template.Template
	Model          *Model
}

// ItemDbProps is the persisted shape of an item.
type ItemDbProps struct {
	ID                       string
	OrganizationID           string
	UserID                   string
	ModelID                  string
	TemplateID               string
	UniqueProductIdentifiers []identifier.UniqueProductIdentifier
	DataValues               []datamodel.DataValue
}

// NewItem creates an item under the given model. The model must have been
// created from the same template; a mismatch fails before any value is
// synthesized, because a carrier whose structure disagrees with its schema
// must never come into existence.
func NewItem(props ItemCreateProps) (*Item, error) {
	if props.Model.TemplateID() != props.Template.ID() {
		return nil, fmt.Errorf("model %s built from template %s, got %s: %w",
			props.Model.ID(), props.Model.TemplateID(), props.Template.ID(), ErrTemplateMismatch)
	}
	item := &Item{
		Carrier: Carrier{
			id:                    uuid.NewString(),
			ownedByOrganizationID: props.OrganizationID,
			createdByUserID:       props.UserID,
			templateID:            props.Template.ID(),
			granularity:           datamodel.GranularityItem,
		},
		modelID: props.Model.ID(),
	}
	if err := item.initializeFromTemplate(props.Template); err != nil {
		return nil, err
	}
	return item, nil
}

// LoadItemFromDb reconstructs an item verbatim; no value synthesis happens
// here.
func LoadItemFromDb(props ItemDbProps) *Item {
	return &Item{
		Carrier: Carrier{
			id:                       props.ID,
			ownedByOrganizationID:    props.OrganizationID,
			createdByUserID:          props.UserID,
			templateID:               props.TemplateID,
			granularity:              datamodel.GranularityItem,
			uniqueProductIdentifiers: append([]identifier.UniqueProductIdentifier{}, props.UniqueProductIdentifiers...),
			dataValues:               append([]datamodel.DataValue{}, props.DataValues...),
		},
		modelID: props.ModelID,
	}
}

func (i *Item) ModelID() string { return i.modelID }

// DbProps returns the persistable shape of the item.
func (i *Item) DbProps() ItemDbProps {
	return ItemDbProps{
		ID:                       i.id,
		OrganizationID:           i.ownedByOrganizationID,
		UserID:                   i.createdByUserID,
		ModelID:                  i.modelID,
		TemplateID:               i.templateID,
		UniqueProductIdentifiers: i.UniqueProductIdentifiers(),
		DataValues:               i.DataValues(),
	}
}
