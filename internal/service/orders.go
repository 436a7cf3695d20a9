package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/enum"
	"github.com/dennisyang0219/lunch-water/internal/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderStore defines the DB methods needed by the order repository.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context) ([]database.Order, error)
	ListOrdersBySubmitter(ctx context.Context, submitterName string) ([]database.Order, error)
	CountOrdersBySubmitter(ctx context.Context, submitterName string) (int64, error)
	UpdateOrderFlags(ctx context.Context, arg database.UpdateOrderFlagsParams) (database.Order, error)
	MarkOrdersDeleted(ctx context.Context, ids []uuid.UUID) (int64, error)
	PurgeOrders(ctx context.Context, ids []uuid.UUID) (int64, error)
	PurgeMarkedOrders(ctx context.Context) (int64, error)
	DeleteAllOrders(ctx context.Context) (int64, error)
	GetOrderSummary(ctx context.Context) (database.GetOrderSummaryRow, error)
	GetItemTally(ctx context.Context) ([]database.GetItemTallyRow, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// FlagUpdate is a partial update of an order's admin fields. Nil fields
// are left unchanged.
type FlagUpdate struct {
	Paid         *bool
	Selected     *bool
	DeleteMarked *bool
	Note         *string
}

// Summary aggregates all orders for the admin overview.
type Summary struct {
	OrderCount     int64           `json:"order_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	SelectedAmount decimal.Decimal `json:"selected_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	UnpaidCount    int64           `json:"unpaid_count"`
	Items          []ItemTally     `json:"items"`
}

// ItemTally counts orders of one item, for calling in the order.
type ItemTally struct {
	StoreName string          `json:"store_name"`
	ItemName  string          `json:"item_name"`
	Quantity  int64           `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// OrderService is the order repository used by admin screens.
type OrderService struct {
	pool     Pool
	newStore NewOrderStore
	loc      *time.Location
	events   events.Publisher
}

// NewOrderService creates a new OrderService. loc is used for exports.
func NewOrderService(pool Pool, newStore NewOrderStore, loc *time.Location, pub events.Publisher) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, loc: loc, events: pub}
}

// Append stores an order as given and returns it with id and created_at set.
func (s *OrderService) Append(ctx context.Context, o Order) (Order, error) {
	params, err := createOrderParams(o)
	if err != nil {
		return Order{}, err
	}
	row, err := s.newStore(s.pool).CreateOrder(ctx, params)
	if err != nil {
		return Order{}, storageError("create order", err)
	}
	created := orderFromDB(row)
	publish(ctx, s.events, enum.EventOrderCreated, created)
	return created, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	row, err := s.newStore(s.pool).GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, storageError("get order", err)
	}
	return orderFromDB(row), nil
}

// ListAll returns every order in submission order.
func (s *OrderService) ListAll(ctx context.Context) ([]Order, error) {
	rows, err := s.newStore(s.pool).ListOrders(ctx)
	if err != nil {
		return nil, storageError("list orders", err)
	}
	return ordersFromDB(rows), nil
}

// ListBy returns one submitter's orders in submission order.
func (s *OrderService) ListBy(ctx context.Context, name string) ([]Order, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	rows, err := s.newStore(s.pool).ListOrdersBySubmitter(ctx, name)
	if err != nil {
		return nil, storageError("list orders by submitter", err)
	}
	return ordersFromDB(rows), nil
}

// CountBy returns how many orders a submitter has placed.
func (s *OrderService) CountBy(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrEmptyName
	}
	n, err := s.newStore(s.pool).CountOrdersBySubmitter(ctx, name)
	if err != nil {
		return 0, storageError("count orders", err)
	}
	return n, nil
}

// UpdateFlags changes paid, selected, delete_marked and/or note of an order.
func (s *OrderService) UpdateFlags(ctx context.Context, id uuid.UUID, u FlagUpdate) (Order, error) {
	if u.Paid == nil && u.Selected == nil && u.DeleteMarked == nil && u.Note == nil {
		return Order{}, ErrNoFlagChanges
	}

	params := database.UpdateOrderFlagsParams{ID: id}
	if u.Paid != nil {
		params.Paid = pgtype.Bool{Bool: *u.Paid, Valid: true}
	}
	if u.Selected != nil {
		params.Selected = pgtype.Bool{Bool: *u.Selected, Valid: true}
	}
	if u.DeleteMarked != nil {
		params.DeleteMarked = pgtype.Bool{Bool: *u.DeleteMarked, Valid: true}
	}
	if u.Note != nil {
		params.Note = pgtype.Text{String: *u.Note, Valid: true}
	}

	row, err := s.newStore(s.pool).UpdateOrderFlags(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, storageError("update order", err)
	}
	updated := orderFromDB(row)
	publish(ctx, s.events, enum.EventOrdersChanged, map[string]any{"action": "updated", "order": updated})
	return updated, nil
}

// DeleteOrders marks the given orders deleted and purges them in one
// transaction. It returns the number of purged rows.
func (s *OrderService) DeleteOrders(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoOrderIDs
	}

	var purged int64
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		q := s.newStore(tx)
		marked, err := q.MarkOrdersDeleted(ctx, ids)
		if err != nil {
			return storageError("mark orders deleted", err)
		}
		if marked == 0 {
			return ErrOrderNotFound
		}
		purged, err = q.PurgeOrders(ctx, ids)
		if err != nil {
			return storageError("purge orders", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	publish(ctx, s.events, enum.EventOrdersChanged, map[string]any{"action": "deleted", "count": purged})
	return purged, nil
}

// PurgeMarked deletes every order whose delete flag is set.
func (s *OrderService) PurgeMarked(ctx context.Context) (int64, error) {
	n, err := s.newStore(s.pool).PurgeMarkedOrders(ctx)
	if err != nil {
		return 0, storageError("purge marked orders", err)
	}
	if n > 0 {
		publish(ctx, s.events, enum.EventOrdersChanged, map[string]any{"action": "deleted", "count": n})
	}
	return n, nil
}

// ClearAll irreversibly deletes every order.
func (s *OrderService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.newStore(s.pool).DeleteAllOrders(ctx)
	if err != nil {
		return 0, storageError("clear orders", err)
	}
	publish(ctx, s.events, enum.EventOrdersChanged, map[string]any{"action": "cleared", "count": n})
	return n, nil
}

// Summary returns totals and a per-item tally over all orders.
func (s *OrderService) Summary(ctx context.Context) (Summary, error) {
	q := s.newStore(s.pool)
	row, err := q.GetOrderSummary(ctx)
	if err != nil {
		return Summary{}, storageError("order summary", err)
	}
	tally, err := q.GetItemTally(ctx)
	if err != nil {
		return Summary{}, storageError("item tally", err)
	}

	items := make([]ItemTally, len(tally))
	for i, t := range tally {
		items[i] = ItemTally{
			StoreName: t.StoreName,
			ItemName:  t.ItemName,
			Quantity:  t.Quantity,
			Amount:    numericToDecimal(t.Amount),
		}
	}

	return Summary{
		OrderCount:     row.OrderCount,
		TotalAmount:    numericToDecimal(row.TotalAmount),
		SelectedAmount: numericToDecimal(row.SelectedAmount),
		PaidAmount:     numericToDecimal(row.PaidAmount),
		UnpaidCount:    row.UnpaidCount,
		Items:          items,
	}, nil
}

// ExportCSV writes every order to w as CSV.
func (s *OrderService) ExportCSV(ctx context.Context, w io.Writer) error {
	orders, err := s.ListAll(ctx)
	if err != nil {
		return err
	}
	return WriteOrdersCSV(w, orders, s.loc)
}

func createOrderParams(o Order) (database.CreateOrderParams, error) {
	name := strings.TrimSpace(o.SubmitterName)
	if name == "" {
		return database.CreateOrderParams{}, ErrEmptyName
	}
	item := strings.TrimSpace(o.ItemName)
	if item == "" || item == enum.PlaceholderItem {
		return database.CreateOrderParams{}, ErrNoItemSelected
	}
	if err := validatePrice(o.Price); err != nil {
		return database.CreateOrderParams{}, err
	}
	return database.CreateOrderParams{
		SubmitterName: name,
		StoreName:     o.StoreName,
		ItemName:      item,
		Price:         decimalToNumeric(o.Price),
		Paid:          o.Paid,
		Selected:      o.Selected,
		DeleteMarked:  o.DeleteMarked,
		Note:          o.Note,
	}, nil
}
