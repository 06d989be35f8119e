package passportdata

import (
	"github.com/google/uuid"

	"traceport/internal/datamodel"
	"traceport/internal/identifier"
	"traceport/internal/template"
)

// Model carries the data shared by every unit of a product model. Its
// granularity is fixed to Model.
type Model struct {
	Carrier
	name            string
	description     string
	mediaReferences []string
}

// ModelCreateProps are the inputs for creating a fresh model from a template.
type ModelCreateProps struct {
	Name           string
	Description    string
	OrganizationID string
	UserID         string
	Template       *template.Template
}

// ModelDbProps is the persisted shape of a model.
type ModelDbProps struct {
	ID                       string
	Name                     string
	Description              string
	OrganizationID           string
	UserID                   string
	TemplateID               string
	UniqueProductIdentifiers []identifier.UniqueProductIdentifier
	DataValues               []datamodel.DataValue
	MediaReferences          []string
}

// NewModel creates a model bound to the given template and seeds it with the
// template's model-level placeholder values.
func NewModel(props ModelCreateProps) (*Model, error) {
	model := &Model{
		Carrier: Carrier{
			id:                    uuid.NewString(),
			ownedByOrganizationID: props.OrganizationID,
			createdByUserID:       props.UserID,
			templateID:            props.Template.ID(),
			granularity:           datamodel.GranularityModel,
		},
		name:        props.Name,
		description: props.Description,
	}
	if err := model.initializeFromTemplate(props.Template); err != nil {
		return nil, err
	}
	return model, nil
}

// LoadModelFromDb reconstructs a model verbatim; no value synthesis happens
// here.
func LoadModelFromDb(props ModelDbProps) *Model {
	return &Model{
		Carrier: Carrier{
			id:                       props.ID,
			ownedByOrganizationID:    props.OrganizationID,
			createdByUserID:          props.UserID,
			templateID:               props.TemplateID,
			granularity:              datamodel.GranularityModel,
			uniqueProductIdentifiers: append([]identifier.UniqueProductIdentifier{}, props.UniqueProductIdentifiers...),
			dataValues:               append([]datamodel.DataValue{}, props.DataValues...),
		},
		name:            props.Name,
		description:     props.Description,
		mediaReferences: append([]string{}, props.MediaReferences...),
	}
}

func (m *Model) Name() string        { return m.name }
func (m *Model) Description() string { return m.description }

func (m *Model) Rename(name string) { m.name = name }

func (m *Model) ModifyDescription(description string) { m.description = description }

// MediaReferences lists attached media file ids in attachment order.
func (m *Model) MediaReferences() []string {
	return append([]string{}, m.mediaReferences...)
}

// AddMediaReference attaches a media file id once; repeats are ignored.
func (m *Model) AddMediaReference(mediaFileID string) {
	for _, existing := range m.mediaReferences {
		if existing == mediaFileID {
			return
		}
	}
	m.mediaReferences = append(m.mediaReferences, mediaFileID)
}

// DbProps returns the persistable shape of the model.
func (m *Model) DbProps() ModelDbProps {
	return ModelDbProps{
		ID:                       m.id,
		Name:                     m.name,
		Description:              m.description,
		OrganizationID:           m.ownedByOrganizationID,
		UserID:                   m.createdByUserID,
		TemplateID:               m.templateID,
		UniqueProductIdentifiers: m.UniqueProductIdentifiers(),
		DataValues:               m.DataValues(),
		MediaReferences:          m.MediaReferences(),
	}
}
