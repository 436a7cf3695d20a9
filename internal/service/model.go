package service

import (
	"strings"
	"time"

	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Store is a lunch vendor.
type Store struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// MenuItem is one orderable item of a store.
type MenuItem struct {
	ID        uuid.UUID       `json:"id"`
	StoreName string          `json:"store_name"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	SortOrder int32           `json:"sort_order"`
}

// IsPlaceholder reports whether the item only keeps an empty store visible.
func (m MenuItem) IsPlaceholder() bool {
	return m.Name == enum.PlaceholderItem
}

// MenuItemInput is one row of a menu being saved.
type MenuItemInput struct {
	Name  string
	Price decimal.Decimal
}

// Order is a submitted lunch order. Store, item and price are copies taken
// at submission time.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	SubmitterName string          `json:"submitter_name"`
	StoreName     string          `json:"store_name"`
	ItemName      string          `json:"item_name"`
	Price         decimal.Decimal `json:"price"`
	Paid          bool            `json:"paid"`
	Selected      bool            `json:"selected"`
	DeleteMarked  bool            `json:"delete_marked"`
	Note          string          `json:"note"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Selectable drops the placeholder row from a menu.
func Selectable(items []MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, it := range items {
		if !it.IsPlaceholder() {
			out = append(out, it)
		}
	}
	return out
}

func validatePrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativePrice
	}
	if !d.IsInteger() {
		return ErrFractionalPrice
	}
	return nil
}

func storeFromDB(s database.Store) Store {
	return Store{Name: s.Name, Address: s.Address.String, Phone: s.Phone.String}
}

func menuItemFromDB(m database.MenuItem) MenuItem {
	return MenuItem{
		ID:        m.ID,
		StoreName: m.StoreName,
		Name:      m.ItemName,
		Price:     numericToDecimal(m.Price),
		SortOrder: m.SortOrder,
	}
}

func menuItemsFromDB(rows []database.MenuItem) []MenuItem {
	out := make([]MenuItem, len(rows))
	for i, r := range rows {
		out[i] = menuItemFromDB(r)
	}
	return out
}

func orderFromDB(o database.Order) Order {
	return Order{
		ID:            o.ID,
		SubmitterName: o.SubmitterName,
		StoreName:     o.StoreName,
		ItemName:      o.ItemName,
		Price:         numericToDecimal(o.Price),
		Paid:          o.Paid,
		Selected:      o.Selected,
		DeleteMarked:  o.DeleteMarked,
		Note:          o.Note,
		CreatedAt:     o.CreatedAt,
	}
}

func ordersFromDB(rows []database.Order) []Order {
	out := make([]Order, len(rows))
	for i, r := range rows {
		out[i] = orderFromDB(r)
	}
	return out
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
