package handler

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"

	"github.com/dennisyang0219/lunch-water/internal/middleware"
	"github.com/dennisyang0219/lunch-water/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// OrderServicer defines the order repository methods used by admin screens.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Get(ctx context.Context, id uuid.UUID) (service.Order, error)
	ListAll(ctx context.Context) ([]service.Order, error)
	UpdateFlags(ctx context.Context, id uuid.UUID, u service.FlagUpdate) (service.Order, error)
	DeleteOrders(ctx context.Context, ids []uuid.UUID) (int64, error)
	PurgeMarked(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	Summary(ctx context.Context) (service.Summary, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

// OrderHandler handles admin order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /admin/orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Delete("/", h.ClearAll)
	r.Get("/summary", h.Summary)
	r.Get("/export.csv", h.Export)
	r.Post("/delete", h.Delete)
	r.Post("/purge", h.Purge)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.UpdateFlags)
}

// --- Request / Response types ---

type updateFlagsRequest struct {
	Paid         *bool   `json:"paid"`
	Selected     *bool   `json:"selected"`
	DeleteMarked *bool   `json:"delete_marked"`
	Note         *string `json:"note"`
}

type deleteOrdersRequest struct {
	IDs []string `json:"ids"`
}

type countResponse struct {
	Deleted int64 `json:"deleted"`
}

// --- Handlers ---

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// UpdateFlags toggles paid, selected or delete_marked, or edits the note.
func (h *OrderHandler) UpdateFlags(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateFlagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.UpdateFlags(r.Context(), id, service.FlagUpdate{
		Paid:         req.Paid,
		Selected:     req.Selected,
		DeleteMarked: req.DeleteMarked,
		Note:         req.Note,
	})
	if err != nil {
		writeServiceError(w, "update order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Delete marks and purges the listed orders in one step.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteOrdersRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, s := range req.IDs {
		id, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID: " + s})
			return
		}
		ids = append(ids, id)
	}

	n, err := h.svc.DeleteOrders(r.Context(), ids)
	if err != nil {
		writeServiceError(w, "delete orders", err)
		return
	}
	h.audit(r, "deleted %d orders", n)
	writeJSON(w, http.StatusOK, countResponse{Deleted: n})
}

// Purge removes every order whose delete flag is set.
func (h *OrderHandler) Purge(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.PurgeMarked(r.Context())
	if err != nil {
		writeServiceError(w, "purge orders", err)
		return
	}
	h.audit(r, "purged %d marked orders", n)
	writeJSON(w, http.StatusOK, countResponse{Deleted: n})
}

// ClearAll deletes every order. It requires ?confirm=true.
func (h *OrderHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "clearing all orders requires confirm=true"})
		return
	}

	n, err := h.svc.ClearAll(r.Context())
	if err != nil {
		writeServiceError(w, "clear orders", err)
		return
	}
	h.audit(r, "cleared all %d orders", n)
	writeJSON(w, http.StatusOK, countResponse{Deleted: n})
}

func (h *OrderHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeServiceError(w, "order summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Export downloads every order as lunch_orders.csv.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	// Buffer so a storage failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(r.Context(), &buf); err != nil {
		writeServiceError(w, "export orders", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("ERROR: write csv export: %v", err)
	}
}

func (h *OrderHandler) audit(r *http.Request, format string, args ...interface{}) {
	who := "unknown"
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		who = claims.Username
	}
	log.Printf("INFO: admin %s "+format, append([]interface{}{who}, args...)...)
}
