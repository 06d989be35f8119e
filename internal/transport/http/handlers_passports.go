package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"traceport/internal/passport"
	passportservice "traceport/internal/passport/service"
)

// PassportService defines the public read operations the HTTP layer needs.
type PassportService interface {
	Get(ctx context.Context, uuid string) (passportservice.PassportView, error)
	GetTree(ctx context.Context, uuid string) (passport.TreeView, error)
}

// PassportHandler serves the anonymous passport read endpoints.
type PassportHandler struct {
	passports PassportService
	logger    *slog.Logger
}

func NewPassportHandler(passports PassportService, logger *slog.Logger) *PassportHandler {
	return &PassportHandler{passports: passports, logger: logger}
}

// Register mounts the public routes; no auth middleware runs here.
func (h *PassportHandler) Register(r chi.Router) {
	r.Get("/passports/{uuid}", h.handleGet)
	r.Get("/passports/{uuid}/tree", h.handleGetTree)
}

func (h *PassportHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.passports.Get(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *PassportHandler) handleGetTree(w http.ResponseWriter, r *http.Request) {
	view, err := h.passports.GetTree(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
