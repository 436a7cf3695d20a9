package handler

import (
	"context"
	"net/http"

	"github.com/dennisyang0219/lunch-water/internal/cutoff"
	"github.com/dennisyang0219/lunch-water/internal/service"
	"github.com/go-chi/chi/v5"
)

// SettingsServicer defines the settings methods used by admin screens.
// Satisfied by *service.SettingsService.
type SettingsServicer interface {
	Get(ctx context.Context) (service.Settings, error)
	SetActiveStore(ctx context.Context, name string) (service.Settings, error)
	SetCutoff(ctx context.Context, tod cutoff.TimeOfDay) (service.Settings, error)
}

// SettingsHandler handles admin settings endpoints.
type SettingsHandler struct {
	svc SettingsServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc SettingsServicer) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// RegisterRoutes registers settings endpoints on the given Chi router.
// Expected to be mounted at /admin/settings.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/active-store", h.SetActiveStore)
	r.Put("/cutoff", h.SetCutoff)
}

type activeStoreRequest struct {
	Name string `json:"name"`
}

type cutoffRequest struct {
	CutoffTime string `json:"cutoff_time"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Get(r.Context())
	if err != nil {
		writeServiceError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SetActiveStore designates today's store; an empty name clears it.
func (h *SettingsHandler) SetActiveStore(w http.ResponseWriter, r *http.Request) {
	var req activeStoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.svc.SetActiveStore(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, "set active store", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) SetCutoff(w http.ResponseWriter, r *http.Request) {
	var req cutoffRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tod, err := cutoff.ParseTimeOfDay(req.CutoffTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "cutoff_time"})
		return
	}

	settings, err := h.svc.SetCutoff(r.Context(), tod)
	if err != nil {
		writeServiceError(w, "set cutoff", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
