package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dennisyang0219/lunch-water/internal/auth"
	"github.com/dennisyang0219/lunch-water/internal/handler"
	"github.com/dennisyang0219/lunch-water/internal/middleware"
	"github.com/dennisyang0219/lunch-water/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Mock service ---

type mockOrderService struct {
	orders     map[uuid.UUID]service.Order
	cleared    bool
	exportErr  error
	lastUpdate service.FlagUpdate
}

func newMockOrderService() *mockOrderService {
	return &mockOrderService{orders: make(map[uuid.UUID]service.Order)}
}

func (m *mockOrderService) add(name, item string, price int64) service.Order {
	o := service.Order{
		ID:            uuid.New(),
		SubmitterName: name,
		StoreName:     "家鄉排骨便當",
		ItemName:      item,
		Price:         decimal.NewFromInt(price),
		CreatedAt:     time.Date(2026, 10, 16, 2, 0, 0, 0, time.UTC),
	}
	m.orders[o.ID] = o
	return o
}

func (m *mockOrderService) Get(_ context.Context, id uuid.UUID) (service.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return service.Order{}, service.ErrOrderNotFound
	}
	return o, nil
}

func (m *mockOrderService) ListAll(_ context.Context) ([]service.Order, error) {
	out := make([]service.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockOrderService) UpdateFlags(_ context.Context, id uuid.UUID, u service.FlagUpdate) (service.Order, error) {
	m.lastUpdate = u
	if u.Paid == nil && u.Selected == nil && u.DeleteMarked == nil && u.Note == nil {
		return service.Order{}, service.ErrNoFlagChanges
	}
	o, ok := m.orders[id]
	if !ok {
		return service.Order{}, service.ErrOrderNotFound
	}
	if u.Paid != nil {
		o.Paid = *u.Paid
	}
	if u.Selected != nil {
		o.Selected = *u.Selected
	}
	if u.DeleteMarked != nil {
		o.DeleteMarked = *u.DeleteMarked
	}
	if u.Note != nil {
		o.Note = *u.Note
	}
	m.orders[id] = o
	return o, nil
}

func (m *mockOrderService) DeleteOrders(_ context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, service.ErrNoOrderIDs
	}
	var n int64
	for _, id := range ids {
		if _, ok := m.orders[id]; ok {
			delete(m.orders, id)
			n++
		}
	}
	if n == 0 {
		return 0, service.ErrOrderNotFound
	}
	return n, nil
}

func (m *mockOrderService) PurgeMarked(_ context.Context) (int64, error) {
	var n int64
	for id, o := range m.orders {
		if o.DeleteMarked {
			delete(m.orders, id)
			n++
		}
	}
	return n, nil
}

func (m *mockOrderService) ClearAll(_ context.Context) (int64, error) {
	n := int64(len(m.orders))
	m.orders = make(map[uuid.UUID]service.Order)
	m.cleared = true
	return n, nil
}

func (m *mockOrderService) Summary(_ context.Context) (service.Summary, error) {
	s := service.Summary{OrderCount: int64(len(m.orders))}
	for _, o := range m.orders {
		s.TotalAmount = s.TotalAmount.Add(o.Price)
	}
	return s, nil
}

func (m *mockOrderService) ExportCSV(_ context.Context, w io.Writer) error {
	if m.exportErr != nil {
		return m.exportErr
	}
	_, err := io.WriteString(w, "id,submitter_name\n")
	return err
}

// --- Helpers ---

func setupOrderRouter(svc *mockOrderService) *chi.Mux {
	h := handler.NewOrderHandler(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.NewContext(req.Context(), &auth.Claims{AdminID: uuid.New(), Username: "admin"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/admin/orders", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestOrderList(t *testing.T) {
	svc := newMockOrderService()
	svc.add("Alice", "招牌排骨飯", 80)
	svc.add("Bob", "香酥雞腿飯", 90)
	r := setupOrderRouter(svc)

	rr := doRequest(t, r, "GET", "/admin/orders/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	var list []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("orders: got %d, want 2", len(list))
	}
}

func TestOrderGet(t *testing.T) {
	svc := newMockOrderService()
	o := svc.add("Alice", "招牌排骨飯", 80)
	r := setupOrderRouter(svc)

	rr := doRequest(t, r, "GET", "/admin/orders/"+o.ID.String(), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["id"] != o.ID.String() {
		t.Errorf("id: got %v, want %s", resp["id"], o.ID)
	}

	rr = doRequest(t, r, "GET", "/admin/orders/"+uuid.NewString(), nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown order: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestOrderUpdateFlags(t *testing.T) {
	svc := newMockOrderService()
	o := svc.add("Alice", "招牌排骨飯", 80)
	r := setupOrderRouter(svc)

	rr := doRequest(t, r, "PATCH", "/admin/orders/"+o.ID.String(), map[string]interface{}{
		"paid": true,
		"note": "少飯",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["paid"] != true {
		t.Errorf("paid: got %v, want true", resp["paid"])
	}
	if resp["note"] != "少飯" {
		t.Errorf("note: got %v", resp["note"])
	}
	if svc.lastUpdate.Selected != nil {
		t.Error("absent selected field should stay nil")
	}
}

func TestOrderUpdateFlags_Errors(t *testing.T) {
	svc := newMockOrderService()
	o := svc.add("Alice", "招牌排骨飯", 80)
	r := setupOrderRouter(svc)

	tests := []struct {
		name string
		path string
		body map[string]interface{}
		want int
	}{
		{"invalid id", "/admin/orders/not-a-uuid", map[string]interface{}{"paid": true}, http.StatusBadRequest},
		{"no changes", "/admin/orders/" + o.ID.String(), map[string]interface{}{}, http.StatusBadRequest},
		{"unknown order", "/admin/orders/" + uuid.NewString(), map[string]interface{}{"paid": true}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, r, "PATCH", tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestOrderDelete(t *testing.T) {
	svc := newMockOrderService()
	a := svc.add("Alice", "招牌排骨飯", 80)
	b := svc.add("Bob", "香酥雞腿飯", 90)
	keep := svc.add("Carol", "紅燒蹄膀飯", 100)
	r := setupOrderRouter(svc)

	rr := doRequest(t, r, "POST", "/admin/orders/delete", map[string]interface{}{
		"ids": []string{a.ID.String(), b.ID.String()},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["deleted"] != float64(2) {
		t.Errorf("deleted: got %v, want 2", resp["deleted"])
	}
	if _, ok := svc.orders[keep.ID]; !ok {
		t.Error("unlisted order should survive")
	}
}

func TestOrderDelete_Errors(t *testing.T) {
	r := setupOrderRouter(newMockOrderService())

	tests := []struct {
		name string
		ids  []string
		want int
	}{
		{"empty", []string{}, http.StatusBadRequest},
		{"bad id", []string{"nope"}, http.StatusBadRequest},
		{"unknown", []string{uuid.NewString()}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, r, "POST", "/admin/orders/delete", map[string]interface{}{"ids": tt.ids})
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestOrderPurge(t *testing.T) {
	svc := newMockOrderService()
	o := svc.add("Alice", "招牌排骨飯", 80)
	o.DeleteMarked = true
	svc.orders[o.ID] = o
	svc.add("Bob", "香酥雞腿飯", 90)
	r := setupOrderRouter(svc)

	rr := doRequest(t, r, "POST", "/admin/orders/purge", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["deleted"] != float64(1) {
		t.Errorf("deleted: got %v, want 1", resp["deleted"])
	}
	if len(svc.orders) != 1 {
		t.Errorf("remaining: got %d, want 1", len(svc.orders))
	}
}

func TestOrderClearAll_RequiresConfirm(t *testing.T) {
	svc := newMockOrderService()
	svc.add("Alice", "招牌排骨飯", 80)
	r := setupOrderRouter(svc)

	rr := doRequest(t, r, "DELETE", "/admin/orders/", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if svc.cleared {
		t.Fatal("orders cleared without confirmation")
	}

	rr = doRequest(t, r, "DELETE", "/admin/orders/?confirm=true", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("confirmed status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !svc.cleared || len(svc.orders) != 0 {
		t.Error("orders should be cleared")
	}
}

func TestOrderSummary(t *testing.T) {
	svc := newMockOrderService()
	svc.add("Alice", "招牌排骨飯", 80)
	svc.add("Bob", "香酥雞腿飯", 90)
	r := setupOrderRouter(svc)

	rr := doRequest(t, r, "GET", "/admin/orders/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeResponse(t, rr)
	if resp["order_count"] != float64(2) {
		t.Errorf("order_count: got %v, want 2", resp["order_count"])
	}
	if resp["total_amount"] != "170" {
		t.Errorf("total_amount: got %v, want \"170\"", resp["total_amount"])
	}
}

func TestOrderExport(t *testing.T) {
	r := setupOrderRouter(newMockOrderService())

	rr := doRequest(t, r, "GET", "/admin/orders/export.csv", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type: got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, service.ExportFilename) {
		t.Errorf("content disposition: got %q", cd)
	}
	if !strings.HasPrefix(rr.Body.String(), "id,submitter_name") {
		t.Errorf("body: got %q", rr.Body.String())
	}
}

func TestOrderExport_StorageUnavailable(t *testing.T) {
	svc := newMockOrderService()
	svc.exportErr = fmt.Errorf("list orders: %w", service.ErrStorageUnavailable)
	r := setupOrderRouter(svc)

	rr := doRequest(t, r, "GET", "/admin/orders/export.csv", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q, want application/json", ct)
	}
}
