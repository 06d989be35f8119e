package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceport/internal/auth"
	"traceport/internal/datamodel"
	idstore "traceport/internal/identifier/store"
	passportservice "traceport/internal/passport/service"
	pdservice "traceport/internal/passportdata/service"
	pdstore "traceport/internal/passportdata/store"
	"traceport/internal/platform/logger"
	"traceport/internal/template"
	tmplservice "traceport/internal/template/service"
	tmplstore "traceport/internal/template/store"
)

type testAPI struct {
	router    http.Handler
	token     string
	templates tmplstore.Store
	carriers  *pdservice.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := logger.New()
	templates := tmplstore.NewInMemoryStore()
	models := pdstore.NewInMemoryModelStore()
	items := pdstore.NewInMemoryItemStore()
	identifiers := idstore.NewInMemoryStore()

	templateSvc := tmplservice.New(templates, tmplservice.WithLogger(log))
	carrierSvc := pdservice.New(models, items, templates, identifiers, pdservice.WithLogger(log))
	passportSvc := passportservice.New(identifiers, models, items, templates, passportservice.WithLogger(log))

	tokens := auth.NewTokenService("test-signing-key", "traceport", "traceport-api")
	token, err := tokens.GenerateAccessToken("user-1", "org-1", time.Hour)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Templates:      NewTemplateHandler(templateSvc, log),
		Carriers:       NewPassportDataHandler(carrierSvc, log),
		Passports:      NewPassportHandler(passportSvc, log),
		TokenValidator: tokens,
		Logger:         log,
	})
	return &testAPI{router: router, token: token, templates: templates, carriers: carrierSvc}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) seedTemplate(t *testing.T) string {
	t.Helper()
	tmpl, err := template.LoadFromDb(template.TemplateDbProps{
		ID:             "template-phone",
		Name:           "Phone",
		Version:        "1.0.0",
		UserID:         "user-1",
		OrganizationID: "org-1",
		Sections: []template.SectionDbProps{
			{
				ID:   "section-specs",
				Name: "Specifications",
				Type: datamodel.SectionTypeGroup,
				DataFields: []template.DataFieldDbProps{
					{ID: "field-name", Name: "Product name", Type: datamodel.FieldTypeText, Granularity: datamodel.GranularityModel},
				},
			},
			{
				ID:          "section-materials",
				Name:        "Materials",
				Type:        datamodel.SectionTypeRepeatable,
				Granularity: datamodel.GranularityModel,
				DataFields: []template.DataFieldDbProps{
					{ID: "field-material", Name: "Material", Type: datamodel.FieldTypeText, Granularity: datamodel.GranularityModel},
				},
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, a.templates.Save(context.Background(), tmpl))
	return tmpl.ID()
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/templates", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/models", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAndFetchTemplate(t *testing.T) {
	api := newTestAPI(t)

	doc := tmplstore.TemplateDoc{
		Name:    "Phone",
		Version: "1.0.0",
		Sections: []tmplstore.SectionDoc{
			{
				ID:   "section-specs",
				Name: "Specifications",
				Type: string(datamodel.SectionTypeGroup),
				DataFields: []tmplstore.DataFieldDoc{
					{ID: "field-name", Name: "Product name", Type: string(datamodel.FieldTypeText), GranularityLevel: "model"},
				},
			},
		},
	}

	rec := api.do(t, http.MethodPost, "/templates", doc, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created tmplstore.TemplateDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "org-1", created.OwnedByOrganizationID)
	assert.Equal(t, tmplstore.SchemaVersion, created.SchemaVersion)

	rec = api.do(t, http.MethodGet, "/templates/"+created.ID, nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateTemplateRejectsUnknownFieldType(t *testing.T) {
	api := newTestAPI(t)

	doc := tmplstore.TemplateDoc{
		Name:    "Odd",
		Version: "1.0.0",
		Sections: []tmplstore.SectionDoc{
			{
				ID:   "section-1",
				Name: "Odd section",
				Type: string(datamodel.SectionTypeGroup),
				DataFields: []tmplstore.DataFieldDoc{
					{ID: "field-1", Name: "Odd field", Type: "HologramField"},
				},
			},
		},
	}

	rec := api.do(t, http.MethodPost, "/templates", doc, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelValueWriteFlow(t *testing.T) {
	api := newTestAPI(t)
	templateID := api.seedTemplate(t)

	rec := api.do(t, http.MethodPost, "/models", map[string]string{
		"name":       "Phone X",
		"templateId": templateID,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// A dirty write returns the report and persists nothing.
	rec = api.do(t, http.MethodPost, "/models/"+created.ID+"/data-values", map[string]any{
		"values": []map[string]any{
			{"value": 42, "dataSectionId": "section-materials", "dataFieldId": "field-material", "row": 0},
		},
	}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var report validationReportDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.False(t, report.IsValid)
	require.NotEmpty(t, report.Results)

	// The clean retry lands.
	rec = api.do(t, http.MethodPost, "/models/"+created.ID+"/data-values", map[string]any{
		"values": []map[string]any{
			{"value": "Glass", "dataSectionId": "section-materials", "dataFieldId": "field-material", "row": 0},
		},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	// Writing the same slot again is a conflict.
	rec = api.do(t, http.MethodPost, "/models/"+created.ID+"/data-values", map[string]any{
		"values": []map[string]any{
			{"value": "Steel", "dataSectionId": "section-materials", "dataFieldId": "field-material", "row": 0},
		},
	}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPublicPassportEndpoint(t *testing.T) {
	api := newTestAPI(t)
	templateID := api.seedTemplate(t)

	model, err := api.carriers.CreateModel(context.Background(), "org-1", "user-1", templateID, "Phone X", "Flagship")
	require.NoError(t, err)
	upi := model.UniqueProductIdentifiers()[0]

	rec := api.do(t, http.MethodGet, "/passports/"+upi.UUID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var view passportservice.PassportView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, upi.UUID, view.ID)
	assert.Equal(t, "Phone X", view.Name)

	rec = api.do(t, http.MethodGet, "/passports/"+upi.UUID+"/tree", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/passports/00000000-0000-0000-0000-000000000000", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
}
