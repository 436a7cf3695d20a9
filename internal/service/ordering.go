package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/dennisyang0219/lunch-water/internal/cutoff"
	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/enum"
	"github.com/dennisyang0219/lunch-water/internal/events"
	"github.com/jackc/pgx/v5"
)

// OrderingStore defines the DB methods needed to accept a submission.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderingStore interface {
	GetSetting(ctx context.Context, key string) (database.Setting, error)
	GetStore(ctx context.Context, name string) (database.Store, error)
	ListMenuItemsByStore(ctx context.Context, storeName string) ([]database.MenuItem, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
}

// NewOrderingStore creates an OrderingStore from a DBTX (pool or tx).
type NewOrderingStore func(db database.DBTX) OrderingStore

// SettingsReader returns the current settings. Satisfied by *SettingsService.
type SettingsReader interface {
	Get(ctx context.Context) (Settings, error)
}

// MenuReader returns stores and menus. Satisfied by *MenuService.
type MenuReader interface {
	GetStore(ctx context.Context, name string) (Store, error)
	GetMenu(ctx context.Context, storeName string) ([]MenuItem, error)
}

// OrderingOptions configures the ordering workflow.
type OrderingOptions struct {
	Location      *time.Location
	DefaultCutoff cutoff.TimeOfDay
	// Now defaults to time.Now.
	Now func() time.Time
}

// Status is what a submitter sees before ordering.
type Status struct {
	ActiveStore string           `json:"active_store"`
	Store       *Store           `json:"store"`
	MenuItems   []MenuItem       `json:"menu_items"`
	CutoffTime  cutoff.TimeOfDay `json:"cutoff_time"`
	Deadline    time.Time        `json:"deadline"`
	Now         time.Time        `json:"now"`
	IsOpen      bool             `json:"is_open"`
	Reason      string           `json:"reason,omitempty"`
}

// OrderingService accepts lunch orders while ordering is open.
type OrderingService struct {
	pool          TxBeginner
	newStore      NewOrderingStore
	settings      SettingsReader
	menus         MenuReader
	loc           *time.Location
	defaultCutoff cutoff.TimeOfDay
	now           func() time.Time
	events        events.Publisher
}

// NewOrderingService creates a new OrderingService.
func NewOrderingService(pool TxBeginner, newStore NewOrderingStore, settings SettingsReader, menus MenuReader, opts OrderingOptions, pub events.Publisher) *OrderingService {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &OrderingService{
		pool:          pool,
		newStore:      newStore,
		settings:      settings,
		menus:         menus,
		loc:           loc,
		defaultCutoff: opts.DefaultCutoff,
		now:           now,
		events:        pub,
	}
}

// StoreStatus reports the active store, its selectable items and whether
// ordering is open right now.
func (s *OrderingService) StoreStatus(ctx context.Context) (Status, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return Status{}, err
	}

	now := s.now().In(s.loc)
	st := Status{
		ActiveStore: settings.ActiveStore,
		MenuItems:   []MenuItem{},
		CutoffTime:  settings.Cutoff,
		Deadline:    cutoff.Deadline(now, settings.Cutoff, s.loc),
		Now:         now,
	}

	if settings.ActiveStore != "" {
		store, err := s.menus.GetStore(ctx, settings.ActiveStore)
		switch {
		case errors.Is(err, ErrNotFound):
			log.Printf("WARN: active store %q no longer exists", settings.ActiveStore)
			st.ActiveStore = ""
		case err != nil:
			return Status{}, err
		default:
			items, err := s.menus.GetMenu(ctx, store.Name)
			if err != nil {
				return Status{}, err
			}
			st.Store = &store
			st.MenuItems = Selectable(items)
		}
	}

	st.Reason = closedReason(now, st.Deadline, st.Store != nil, len(st.MenuItems) > 0)
	st.IsOpen = st.Reason == ""
	return st, nil
}

// SubmitOrder records one order for name. The item's current price is
// copied onto the order in the same transaction that inserts it.
func (s *OrderingService) SubmitOrder(ctx context.Context, name, itemName string) (Order, error) {
	name = strings.TrimSpace(name)
	itemName = strings.TrimSpace(itemName)
	if name == "" {
		return Order{}, ErrEmptyName
	}
	if itemName == "" || itemName == enum.PlaceholderItem {
		return Order{}, ErrNoItemSelected
	}

	var created Order
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		q := s.newStore(tx)

		settings, err := loadSettings(ctx, q, s.defaultCutoff)
		if err != nil {
			return err
		}
		now := s.now().In(s.loc)
		deadline := cutoff.Deadline(now, settings.Cutoff, s.loc)
		if !now.Before(deadline) {
			return &ClosedError{Reason: enum.ClosedReasonCutoffPassed, Deadline: deadline}
		}
		if settings.ActiveStore == "" {
			return &ClosedError{Reason: enum.ClosedReasonNoActiveStore, Deadline: deadline}
		}

		store, err := q.GetStore(ctx, settings.ActiveStore)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return &ClosedError{Reason: enum.ClosedReasonNoActiveStore, Deadline: deadline}
			}
			return storageError("get store", err)
		}

		rows, err := q.ListMenuItemsByStore(ctx, store.Name)
		if err != nil {
			return storageError("list menu items", err)
		}
		items := Selectable(menuItemsFromDB(rows))
		if len(items) == 0 {
			return &ClosedError{Reason: enum.ClosedReasonEmptyMenu, Deadline: deadline}
		}

		var chosen *MenuItem
		for i := range items {
			if items[i].Name == itemName {
				chosen = &items[i]
				break
			}
		}
		if chosen == nil {
			return ErrItemNotOnMenu
		}

		row, err := q.CreateOrder(ctx, database.CreateOrderParams{
			SubmitterName: name,
			StoreName:     store.Name,
			ItemName:      chosen.Name,
			Price:         decimalToNumeric(chosen.Price),
		})
		if err != nil {
			return storageError("create order", err)
		}
		created = orderFromDB(row)
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	publish(ctx, s.events, enum.EventOrderCreated, created)
	return created, nil
}

// closedReason returns why ordering is closed, or "" if it is open. A passed
// cutoff wins over a missing store, which wins over an empty menu.
func closedReason(now, deadline time.Time, hasStore, hasItems bool) string {
	switch {
	case !now.Before(deadline):
		return enum.ClosedReasonCutoffPassed
	case !hasStore:
		return enum.ClosedReasonNoActiveStore
	case !hasItems:
		return enum.ClosedReasonEmptyMenu
	}
	return ""
}
