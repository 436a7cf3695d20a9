package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dennisyang0219/lunch-water/internal/menutext"
	"github.com/dennisyang0219/lunch-water/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// MenuServicer defines the store and menu methods used by admin screens.
// Satisfied by *service.MenuService.
type MenuServicer interface {
	ListStores(ctx context.Context) ([]service.Store, error)
	GetStore(ctx context.Context, name string) (service.Store, error)
	GetMenu(ctx context.Context, storeName string) ([]service.MenuItem, error)
	UpsertStore(ctx context.Context, in service.Store) (service.Store, bool, error)
	DeleteStore(ctx context.Context, name string) error
	ReplaceMenu(ctx context.Context, storeName string, items []service.MenuItemInput) ([]service.MenuItem, error)
}

// StoreHandler handles admin store and menu endpoints.
type StoreHandler struct {
	svc MenuServicer
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(svc MenuServicer) *StoreHandler {
	return &StoreHandler{svc: svc}
}

// RegisterRoutes registers store endpoints on the given Chi router.
// Expected to be mounted at /admin/stores.
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{name}", h.Get)
	r.Put("/{name}", h.Upsert)
	r.Delete("/{name}", h.Delete)
	r.Get("/{name}/menu", h.GetMenu)
	r.Put("/{name}/menu", h.ReplaceMenu)
	r.Post("/{name}/menu/import", h.ImportMenu)
}

// maxMenuText caps a pasted menu body.
const maxMenuText = 64 << 10

// --- Request / Response types ---

type upsertStoreRequest struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type upsertStoreResponse struct {
	service.Store
	Created bool `json:"created"`
}

// Price accepts a JSON number or a quoted decimal string.
type menuItemRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type replaceMenuRequest struct {
	Items []menuItemRequest `json:"items"`
}

type importMenuResponse struct {
	Items    []service.MenuItem `json:"items"`
	Warnings []string           `json:"warnings"`
}

// --- Handlers ---

func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.ListStores(r.Context())
	if err != nil {
		writeServiceError(w, "list stores", err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, err := h.svc.GetStore(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, "get store", err)
		return
	}
	writeJSON(w, http.StatusOK, store)
}

// Upsert creates the store named in the path or updates its contact details.
func (h *StoreHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertStoreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	store, created, err := h.svc.UpsertStore(r.Context(), service.Store{
		Name:    chi.URLParam(r, "name"),
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		writeServiceError(w, "upsert store", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, upsertStoreResponse{Store: store, Created: created})
}

func (h *StoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteStore(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeServiceError(w, "delete store", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// GetMenu returns the full menu, placeholder row included.
func (h *StoreHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.GetMenu(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeServiceError(w, "get menu", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ReplaceMenu saves the edited menu table.
func (h *StoreHandler) ReplaceMenu(w http.ResponseWriter, r *http.Request) {
	var req replaceMenuRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]service.MenuItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.MenuItemInput{Name: it.Name, Price: it.Price}
	}

	menu, err := h.svc.ReplaceMenu(r.Context(), chi.URLParam(r, "name"), items)
	if err != nil {
		writeServiceError(w, "replace menu", err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// ImportMenu replaces the menu from pasted plain text, one "name price" per
// line. Lines without a price are reported back as warnings.
func (h *StoreHandler) ImportMenu(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMenuText))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	parsed, err := menutext.Parse(string(body))
	if err != nil {
		if errors.Is(err, menutext.ErrNoItems) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "items"})
			return
		}
		writeServiceError(w, "parse menu", err)
		return
	}

	items := make([]service.MenuItemInput, len(parsed.Items))
	for i, it := range parsed.Items {
		items[i] = service.MenuItemInput{Name: it.Name, Price: it.Price}
	}

	menu, err := h.svc.ReplaceMenu(r.Context(), chi.URLParam(r, "name"), items)
	if err != nil {
		writeServiceError(w, "import menu", err)
		return
	}

	warnings := parsed.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusOK, importMenuResponse{Items: menu, Warnings: warnings})
}
