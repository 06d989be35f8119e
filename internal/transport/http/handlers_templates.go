package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"traceport/internal/platform/middleware"
	"traceport/internal/template"
	"traceport/internal/template/store"
)

// TemplateService defines the template operations the HTTP layer needs.
type TemplateService interface {
	Create(ctx context.Context, organizationID, userID string, doc store.TemplateDoc) (*template.Template, error)
	Get(ctx context.Context, organizationID, id string) (*template.Template, error)
	List(ctx context.Context, organizationID string) ([]*template.Template, error)
	Copy(ctx context.Context, organizationID, userID, sourceID string) (*template.Template, error)
	AssignMarketplaceResource(ctx context.Context, organizationID, id, resourceID string) (*template.Template, error)
}

// TemplateHandler handles template catalog endpoints.
type TemplateHandler struct {
	templates TemplateService
	logger    *slog.Logger
}

func NewTemplateHandler(templates TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// Register mounts the template routes on an authenticated router.
func (h *TemplateHandler) Register(r chi.Router) {
	r.Post("/templates", h.handleCreate)
	r.Get("/templates", h.handleList)
	r.Get("/templates/{id}", h.handleGet)
	r.Post("/templates/{id}/copy", h.handleCopy)
	r.Post("/templates/{id}/marketplace", h.handleAssignMarketplace)
}

func (h *TemplateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var doc store.TemplateDoc
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		h.logger.WarnContext(ctx, "invalid template document",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	t, err := h.templates.Create(ctx, middleware.GetOrganizationID(ctx), middleware.GetUserID(ctx), doc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, store.Serialize(t))
}

func (h *TemplateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templates, err := h.templates.List(ctx, middleware.GetOrganizationID(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	docs := make([]store.TemplateDoc, 0, len(templates))
	for _, t := range templates {
		docs = append(docs, store.Serialize(t))
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *TemplateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := h.templates.Get(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store.Serialize(t))
}

func (h *TemplateHandler) handleCopy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, err := h.templates.Copy(ctx, middleware.GetOrganizationID(ctx), middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, store.Serialize(t))
}

func (h *TemplateHandler) handleAssignMarketplace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ResourceID string `json:"resourceId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResourceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	t, err := h.templates.AssignMarketplaceResource(ctx, middleware.GetOrganizationID(ctx), chi.URLParam(r, "id"), req.ResourceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, store.Serialize(t))
}
