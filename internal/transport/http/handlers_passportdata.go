package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"traceport/internal/datamodel"
	"traceport/internal/identifier"
	"traceport/internal/passportdata"
	"traceport/internal/platform/middleware"
	"traceport/internal/template"
)

// PassportDataService defines the carrier operations the HTTP layer needs.
type PassportDataService interface {
	CreateModel(ctx context.Context, organizationID, userID, templateID, name, description string) (*passportdata.Model, error)
	GetModel(ctx context.Context, organizationID, id string) (*passportdata.Model, error)
	ListModels(ctx context.Context, organizationID string) ([]*passportdata.Model, error)
	UpdateModel(ctx context.Context, organizationID, id, name, description string) (*passportdata.Model, error)
	AddModelMediaReference(ctx context.Context, organizationID, id, mediaFileID string) (*passportdata.Model, error)
	CreateItem(ctx context.Context, organizationID, userID, modelID string) (*passportdata.Item, error)
	GetItem(ctx context.Context, organizationID, id string) (*passportdata.Item, error)
	ListItems(ctx context.Context, organizationID, modelID string) ([]*passportdata.Item, error)
	AddModelDataValues(ctx context.Context, organizationID, modelID string, values []datamodel.DataValue) (*template.ValidationResult, error)
	ModifyModelDataValues(ctx context.Context, organizationID, modelID string, values []datamodel.DataValue) (*template.ValidationResult, error)
	AddItemDataValues(ctx context.Context, organizationID, itemID string, values []datamodel.DataValue) (*template.ValidationResult, error)
	ModifyItemDataValues(ctx context.Context, organizationID, itemID string, values []datamodel.DataValue) (*template.ValidationResult, error)
	CreateModelIdentifier(ctx context.Context, organizationID, modelID, externalUUID string) (identifier.UniqueProductIdentifier, error)
	CreateItemIdentifier(ctx context.Context, organizationID, itemID, externalUUID string) (identifier.UniqueProductIdentifier, error)
}

// PassportDataHandler handles model and item endpoints.
type PassportDataHandler struct {
	carriers PassportDataService
	logger   *slog.Logger
}

func NewPassportDataHandler(carriers PassportDataService, logger *slog.Logger) *PassportDataHandler {
	return &PassportDataHandler{carriers: carriers, logger: logger}
}

// Register mounts the carrier routes on an authenticated router.
func (h *PassportDataHandler) Register(r chi.Router) {
	r.Post("/models", h.handleCreateModel)
	r.Get("/models", h.handleListModels)
	r.Get("/models/{id}", h.handleGetModel)
	r.Patch("/models/{id}", h.handleUpdateModel)
	r.Post("/models/{id}/media", h.handleAddMedia)
	r.Post("/models/{id}/data-values", h.handleAddModelValues)
	r.Patch("/models/{id}/data-values", h.handleModifyModelValues)
	r.Post("/models/{id}/unique-product-identifiers", h.handleCreateModelIdentifier)
	r.Post("/models/{id}/items", h.handleCreateItem)
	r.Get("/models/{id}/items", h.handleListItems)
	r.Get("/items/{id}", h.handleGetItem)
	r.Post("/items/{id}/data-values", h.handleAddItemValues)
	r.Patch("/items/{id}/data-values", h.handleModifyItemValues)
	r.Post("/items/{id}/unique-product-identifiers", h.handleCreateItemIdentifier)
}

type identifierDTO struct {
	UUID        string `json:"uuid"`
	ReferenceID string `json:"referenceId"`
}

type modelResponse struct {
	ID                       string                `json:"id"`
	Name                     string                `json:"name"`
	Description              string                `json:"description"`
	TemplateID               string                `json:"templateId"`
	UniqueProductIdentifiers []identifierDTO       `json:"uniqueProductIdentifiers"`
	DataValues               []datamodel.DataValue `json:"dataValues"`
	MediaReferences          []string              `json:"mediaReferences"`
}

type itemResponse struct {
	ID                       string                `json:"id"`
	ModelID                  string                `json:"modelId"`
	TemplateID               string                `json:"templateId"`
	UniqueProductIdentifiers []identifierDTO       `json:"uniqueProductIdentifiers"`
	DataValues               []datamodel.DataValue `json:"dataValues"`
}

func toIdentifierDTOs(upis []identifier.UniqueProductIdentifier) []identifierDTO {
	out := make([]identifierDTO, 0, len(upis))
	for _, upi := range upis {
		out = append(out, identifierDTO{UUID: upi.UUID, ReferenceID: upi.ReferenceID})
	}
	return out
}

func toModelResponse(m *passportdata.Model) modelResponse {
	return modelResponse{
		ID:                       m.ID(),
		Name:                     m.Name(),
		Description:              m.Description(),
		TemplateID:               m.TemplateID(),
		UniqueProductIdentifiers: toIdentifierDTOs(m.UniqueProductIdentifiers()),
		DataValues:               m.DataValues(),
		MediaReferences:          m.MediaReferences(),
	}
}

func toItemResponse(i *passportdata.Item) itemResponse {
	return itemResponse{
		ID:                       i.ID(),
		ModelID:                  i.ModelID(),
		TemplateID:               i.TemplateID(),
		UniqueProductIdentifiers: toIdentifierDTOs(i.UniqueProductIdentifiers()),
		DataValues:               i.DataValues(),
	}
}

type dataValuesRequest struct {
	Values []datamodel.DataValue `json:"values"`
}

func (h *PassportDataHandler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *PassportDataHandler) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		TemplateID  string `json:"templateId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.TemplateID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and templateId are required"})
		return
	}

	model, err := h.carriers.CreateModel(ctx, middleware.GetOrganizationID(ctx), middleware.GetUserID(ctx),
		req.TemplateID, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toModelResponse(model))
}

func (h *PassportDataHandler) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.carriers.ListModels(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]modelResponse, 0, len(models))
	for _, m := range models {
		out = append(out, toModelResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PassportDataHandler) handleGetModel(w http.ResponseWriter, r *http.Request) {
	model, err := h.carriers.GetModel(r.Context(), middleware.GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toModelResponse(model))
}

func (h *PassportDataHandler) handleUpdateModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	model, err := h.carriers.UpdateModel(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toModelResponse(model))
}

func (h *PassportDataHandler) handleAddMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		MediaFileID string `json:"mediaFileId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.MediaFileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mediaFileId is required"})
		return
	}

	model, err := h.carriers.AddModelMediaReference(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.MediaFileID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toModelResponse(model))
}

func (h *PassportDataHandler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	item, err := h.carriers.CreateItem(ctx, middleware.GetOrganizationID(ctx), middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *PassportDataHandler) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.carriers.ListItems(r.Context(), middleware.GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toItemResponse(i))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *PassportDataHandler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.carriers.GetItem(r.Context(), middleware.GetOrganizationID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *PassportDataHandler) handleAddModelValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dataValuesRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.carriers.AddModelDataValues(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeValidationOutcome(w, result, http.StatusOK, toValidationReport(result))
}

func (h *PassportDataHandler) handleModifyModelValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dataValuesRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.carriers.ModifyModelDataValues(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeValidationOutcome(w, result, http.StatusOK, toValidationReport(result))
}

func (h *PassportDataHandler) handleAddItemValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dataValuesRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.carriers.AddItemDataValues(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeValidationOutcome(w, result, http.StatusOK, toValidationReport(result))
}

func (h *PassportDataHandler) handleModifyItemValues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dataValuesRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.carriers.ModifyItemDataValues(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.Values)
	if err != nil {
		writeError(w, err)
		return
	}
	writeValidationOutcome(w, result, http.StatusOK, toValidationReport(result))
}

func (h *PassportDataHandler) handleCreateModelIdentifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ExternalUUID string `json:"externalUuid"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	upi, err := h.carriers.CreateModelIdentifier(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.ExternalUUID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, identifierDTO{UUID: upi.UUID, ReferenceID: upi.ReferenceID})
}

func (h *PassportDataHandler) handleCreateItemIdentifier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ExternalUUID string `json:"externalUuid"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	upi, err := h.carriers.CreateItemIdentifier(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.ExternalUUID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, identifierDTO{UUID: upi.UUID, ReferenceID: upi.ReferenceID})
}
