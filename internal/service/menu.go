package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dennisyang0219/lunch-water/internal/cache"
	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/enum"
	"github.com/dennisyang0219/lunch-water/internal/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// MenuStore defines the DB methods needed to manage stores and menus.
// Satisfied by *database.Queries (and its WithTx variant).
type MenuStore interface {
	ListStores(ctx context.Context) ([]database.Store, error)
	GetStore(ctx context.Context, name string) (database.Store, error)
	UpsertStore(ctx context.Context, arg database.UpsertStoreParams) (database.UpsertStoreRow, error)
	DeleteStore(ctx context.Context, name string) (string, error)
	ListMenuItemsByStore(ctx context.Context, storeName string) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
	ClearSettingIfValue(ctx context.Context, arg database.ClearSettingIfValueParams) (int64, error)
}

// NewMenuStore creates a MenuStore from a DBTX (pool or tx).
type NewMenuStore func(db database.DBTX) MenuStore

// MenuService manages stores and their menus.
type MenuService struct {
	pool     Pool
	newStore NewMenuStore
	cache    cache.Cache
	events   events.Publisher
}

// NewMenuService creates a new MenuService.
func NewMenuService(pool Pool, newStore NewMenuStore, c cache.Cache, pub events.Publisher) *MenuService {
	return &MenuService{pool: pool, newStore: newStore, cache: c, events: pub}
}

// ListStores returns all stores sorted by name.
func (s *MenuService) ListStores(ctx context.Context) ([]Store, error) {
	return readThrough(ctx, s.cache, storesCacheKey, func(ctx context.Context) ([]Store, error) {
		rows, err := s.newStore(s.pool).ListStores(ctx)
		if err != nil {
			return nil, storageError("list stores", err)
		}
		out := make([]Store, 0, len(rows))
		for _, r := range rows {
			if strings.TrimSpace(r.Name) == "" {
				continue
			}
			out = append(out, storeFromDB(r))
		}
		return out, nil
	})
}

// GetStore returns one store.
func (s *MenuService) GetStore(ctx context.Context, name string) (Store, error) {
	return readThrough(ctx, s.cache, storeCacheKey(name), func(ctx context.Context) (Store, error) {
		row, err := s.newStore(s.pool).GetStore(ctx, name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Store{}, ErrStoreNotFound
			}
			return Store{}, storageError("get store", err)
		}
		return storeFromDB(row), nil
	})
}

// GetMenu returns a store's menu in display order. A store without real
// items returns exactly one placeholder row.
func (s *MenuService) GetMenu(ctx context.Context, storeName string) ([]MenuItem, error) {
	return readThrough(ctx, s.cache, menuCacheKey(storeName), func(ctx context.Context) ([]MenuItem, error) {
		store := s.newStore(s.pool)
		if _, err := store.GetStore(ctx, storeName); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrStoreNotFound
			}
			return nil, storageError("get store", err)
		}
		rows, err := store.ListMenuItemsByStore(ctx, storeName)
		if err != nil {
			return nil, storageError("list menu items", err)
		}
		return menuItemsFromDB(rows), nil
	})
}

// UpsertStore creates a store (with a placeholder menu) or updates the
// address and phone of an existing one. created reports which happened.
func (s *MenuService) UpsertStore(ctx context.Context, in Store) (store Store, created bool, err error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Store{}, false, ErrEmptyStoreName
	}

	err = withTx(ctx, s.pool, func(tx pgx.Tx) error {
		q := s.newStore(tx)
		row, err := q.UpsertStore(ctx, database.UpsertStoreParams{
			Name:    name,
			Address: optionalText(in.Address),
			Phone:   optionalText(in.Phone),
		})
		if err != nil {
			return storageError("upsert store", err)
		}
		if row.Inserted {
			if _, err := q.CreateMenuItem(ctx, placeholderParams(name)); err != nil {
				return storageError("create placeholder item", err)
			}
		}
		store = Store{Name: row.Name, Address: row.Address.String, Phone: row.Phone.String}
		created = row.Inserted
		return nil
	})
	if err != nil {
		return Store{}, false, err
	}

	invalidate(ctx, s.cache, storesCacheKey, storeCacheKey(name), menuCacheKey(name))
	publish(ctx, s.events, enum.EventMenuChanged, map[string]string{"store": name, "action": "store_saved"})
	return store, created, nil
}

// DeleteStore removes a store and all its menu items. If it was the active
// store, the active store setting is cleared in the same transaction.
func (s *MenuService) DeleteStore(ctx context.Context, name string) error {
	var clearedActive bool
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		q := s.newStore(tx)
		if _, err := q.DeleteStore(ctx, name); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrStoreNotFound
			}
			return storageError("delete store", err)
		}
		n, err := q.ClearSettingIfValue(ctx, database.ClearSettingIfValueParams{
			Key:   enum.SettingActiveStore,
			Value: pgtype.Text{String: name, Valid: true},
		})
		if err != nil {
			return storageError("clear active store", err)
		}
		clearedActive = n > 0
		return nil
	})
	if err != nil {
		return err
	}

	keys := []string{storesCacheKey, storeCacheKey(name), menuCacheKey(name)}
	if clearedActive {
		keys = append(keys, settingsCacheKey)
	}
	invalidate(ctx, s.cache, keys...)

	publish(ctx, s.events, enum.EventMenuChanged, map[string]string{"store": name, "action": "store_deleted"})
	if clearedActive {
		publish(ctx, s.events, enum.EventSettingsChanged, map[string]string{"active_store": ""})
	}
	return nil
}

// ReplaceMenu makes items the complete menu of a store. Existing rows are
// updated in place, new ones inserted and missing ones deleted, all in one
// transaction. Blank and placeholder names are ignored. If nothing remains,
// the placeholder row is kept or re-created.
func (s *MenuService) ReplaceMenu(ctx context.Context, storeName string, items []MenuItemInput) ([]MenuItem, error) {
	desired, err := normalizeMenu(items)
	if err != nil {
		return nil, err
	}

	var result []database.MenuItem
	err = withTx(ctx, s.pool, func(tx pgx.Tx) error {
		q := s.newStore(tx)
		if _, err := q.GetStore(ctx, storeName); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrStoreNotFound
			}
			return storageError("get store", err)
		}

		existing, err := q.ListMenuItemsByStore(ctx, storeName)
		if err != nil {
			return storageError("list menu items", err)
		}
		byName := make(map[string]database.MenuItem, len(existing))
		for _, e := range existing {
			byName[e.ItemName] = e
		}

		keep := make(map[string]bool, len(desired)+1)
		for i, d := range desired {
			keep[d.Name] = true
			sortOrder := int32(i + 1)
			price := decimalToNumeric(d.Price)
			if cur, ok := byName[d.Name]; ok {
				if numericToDecimal(cur.Price).Equal(d.Price) && cur.SortOrder == sortOrder {
					continue
				}
				if _, err := q.UpdateMenuItem(ctx, database.UpdateMenuItemParams{
					ID:        cur.ID,
					Price:     price,
					SortOrder: sortOrder,
				}); err != nil {
					return storageError("update menu item", err)
				}
				continue
			}
			if _, err := q.CreateMenuItem(ctx, database.CreateMenuItemParams{
				StoreName: storeName,
				ItemName:  d.Name,
				Price:     price,
				SortOrder: sortOrder,
			}); err != nil {
				return storageError("create menu item", err)
			}
		}

		if len(desired) == 0 {
			keep[enum.PlaceholderItem] = true
			if _, ok := byName[enum.PlaceholderItem]; !ok {
				if _, err := q.CreateMenuItem(ctx, placeholderParams(storeName)); err != nil {
					return storageError("create placeholder item", err)
				}
			}
		}

		for _, e := range existing {
			if keep[e.ItemName] {
				continue
			}
			if err := q.DeleteMenuItem(ctx, e.ID); err != nil {
				return storageError("delete menu item", err)
			}
		}

		result, err = q.ListMenuItemsByStore(ctx, storeName)
		if err != nil {
			return storageError("list menu items", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, menuCacheKey(storeName))
	publish(ctx, s.events, enum.EventMenuChanged, map[string]string{"store": storeName, "action": "menu_saved"})
	return menuItemsFromDB(result), nil
}

// normalizeMenu trims names, drops blank and placeholder rows and validates
// prices and uniqueness.
func normalizeMenu(items []MenuItemInput) ([]MenuItemInput, error) {
	out := make([]MenuItemInput, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" || name == enum.PlaceholderItem {
			continue
		}
		if err := validatePrice(it.Price); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, duplicateItemError(name)
		}
		seen[name] = true
		out = append(out, MenuItemInput{Name: name, Price: it.Price})
	}
	return out, nil
}

func placeholderParams(storeName string) database.CreateMenuItemParams {
	return database.CreateMenuItemParams{
		StoreName: storeName,
		ItemName:  enum.PlaceholderItem,
		Price:     decimalToNumeric(decimal.Zero),
		SortOrder: 0,
	}
}
