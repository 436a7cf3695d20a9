package handler

import (
	"context"
	"net/http"

	"github.com/dennisyang0219/lunch-water/internal/service"
	"github.com/go-chi/chi/v5"
)

// OrderingServicer defines the ordering workflow methods used by the public
// form. Satisfied by *service.OrderingService.
type OrderingServicer interface {
	StoreStatus(ctx context.Context) (service.Status, error)
	SubmitOrder(ctx context.Context, name, itemName string) (service.Order, error)
}

// MenuReader returns a store's menu. Satisfied by *service.MenuService.
type MenuReader interface {
	GetMenu(ctx context.Context, storeName string) ([]service.MenuItem, error)
}

// SubmitterOrders lists a submitter's own orders. Satisfied by
// *service.OrderService.
type SubmitterOrders interface {
	ListBy(ctx context.Context, name string) ([]service.Order, error)
	CountBy(ctx context.Context, name string) (int64, error)
}

// OrderingHandler serves the public order form.
type OrderingHandler struct {
	svc    OrderingServicer
	menus  MenuReader
	orders SubmitterOrders
}

// NewOrderingHandler creates a new OrderingHandler.
func NewOrderingHandler(svc OrderingServicer, menus MenuReader, orders SubmitterOrders) *OrderingHandler {
	return &OrderingHandler{svc: svc, menus: menus, orders: orders}
}

// RegisterRoutes registers public ordering endpoints on the given Chi router.
func (h *OrderingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.Status)
	r.Get("/stores/{name}/menu", h.Menu)
	r.Post("/orders", h.Submit)
	r.Get("/orders", h.ListMine)
}

// --- Request / Response types ---

type submitOrderRequest struct {
	Name     string `json:"name"`
	ItemName string `json:"item_name"`
}

type submitterOrdersResponse struct {
	Name   string          `json:"name"`
	Count  int64           `json:"count"`
	Orders []service.Order `json:"orders"`
}

// --- Handlers ---

// Status reports the active store, its menu and whether ordering is open.
func (h *OrderingHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.StoreStatus(r.Context())
	if err != nil {
		writeServiceError(w, "store status", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Menu returns the selectable items of one store.
func (h *OrderingHandler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menus.GetMenu(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, "get menu", err)
		return
	}
	writeJSON(w, http.StatusOK, service.Selectable(items))
}

// Submit places one order for the active store.
func (h *OrderingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.SubmitOrder(r.Context(), req.Name, req.ItemName)
	if err != nil {
		writeServiceError(w, "submit order", err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// ListMine returns the orders placed under ?name=.
func (h *OrderingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	orders, err := h.orders.ListBy(r.Context(), name)
	if err != nil {
		writeServiceError(w, "list orders by submitter", err)
		return
	}
	count, err := h.orders.CountBy(r.Context(), name)
	if err != nil {
		writeServiceError(w, "count orders", err)
		return
	}

	writeJSON(w, http.StatusOK, submitterOrdersResponse{Name: name, Count: count, Orders: orders})
}
