package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dennisyang0219/lunch-water/internal/cache"
	"github.com/dennisyang0219/lunch-water/internal/cutoff"
	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
	committed   bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr == nil {
		m.committed = true
	}
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockPool implements Pool. Queries never reach it because the store
// factories below ignore the DBTX they are given.
type mockPool struct {
	tx  *mockTx
	err error
}

func newMockPool() *mockPool { return &mockPool{tx: &mockTx{}} }

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tx, nil
}
func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}

// fakeDB is an in-memory stand-in for *database.Queries. It satisfies
// MenuStore, OrderStore, SettingsStore and OrderingStore.
type fakeDB struct {
	mu       sync.Mutex
	stores   map[string]database.Store
	items    []database.MenuItem
	orders   []database.Order
	settings map[string]database.Setting
	seq      int64
	clock    time.Time

	// err, when set, is returned by every method.
	err error
	// createOrderCalls counts CreateOrder invocations.
	createOrderCalls int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		stores:   make(map[string]database.Store),
		settings: make(map[string]database.Setting),
		clock:    time.Date(2026, 10, 16, 2, 0, 0, 0, time.UTC),
	}
}

func (f *fakeDB) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeDB) menuStore(database.DBTX) MenuStore         { return f }
func (f *fakeDB) orderStore(database.DBTX) OrderStore       { return f }
func (f *fakeDB) orderingStore(database.DBTX) OrderingStore { return f }

// --- stores ---

func (f *fakeDB) ListStores(ctx context.Context) ([]database.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]database.Store, 0, len(f.stores))
	for _, s := range f.stores {
		if strings.TrimSpace(s.Name) != "" {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeDB) GetStore(ctx context.Context, name string) (database.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.Store{}, f.err
	}
	s, ok := f.stores[name]
	if !ok {
		return database.Store{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeDB) UpsertStore(ctx context.Context, arg database.UpsertStoreParams) (database.UpsertStoreRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.UpsertStoreRow{}, f.err
	}
	s, exists := f.stores[arg.Name]
	if !exists {
		s = database.Store{Name: arg.Name, CreatedAt: f.tick()}
	}
	s.Address = arg.Address
	s.Phone = arg.Phone
	f.stores[arg.Name] = s
	return database.UpsertStoreRow{
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		CreatedAt: s.CreatedAt,
		Inserted:  !exists,
	}, nil
}

func (f *fakeDB) DeleteStore(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if _, ok := f.stores[name]; !ok {
		return "", pgx.ErrNoRows
	}
	delete(f.stores, name)
	kept := f.items[:0]
	for _, it := range f.items {
		if it.StoreName != name {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return name, nil
}

// --- menu items ---

func (f *fakeDB) ListMenuItemsByStore(ctx context.Context, storeName string) ([]database.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []database.MenuItem
	for _, it := range f.items {
		if it.StoreName == storeName {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeDB) CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.MenuItem{}, f.err
	}
	for _, it := range f.items {
		if it.StoreName == arg.StoreName && it.ItemName == arg.ItemName {
			return database.MenuItem{}, errors.New("duplicate key value violates unique constraint")
		}
	}
	it := database.MenuItem{
		ID:        uuid.New(),
		StoreName: arg.StoreName,
		ItemName:  arg.ItemName,
		Price:     arg.Price,
		SortOrder: arg.SortOrder,
		CreatedAt: f.tick(),
	}
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeDB) UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.MenuItem{}, f.err
	}
	for i := range f.items {
		if f.items[i].ID == arg.ID {
			f.items[i].Price = arg.Price
			f.items[i].SortOrder = arg.SortOrder
			return f.items[i], nil
		}
	}
	return database.MenuItem{}, pgx.ErrNoRows
}

func (f *fakeDB) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- settings ---

func (f *fakeDB) GetSetting(ctx context.Context, key string) (database.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.Setting{}, f.err
	}
	s, ok := f.settings[key]
	if !ok {
		return database.Setting{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeDB) UpsertSetting(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.Setting{}, f.err
	}
	s := database.Setting{Key: arg.Key, Value: arg.Value, UpdatedAt: f.tick()}
	f.settings[arg.Key] = s
	return s, nil
}

func (f *fakeDB) ClearSettingIfValue(ctx context.Context, arg database.ClearSettingIfValueParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	s, ok := f.settings[arg.Key]
	if !ok || !s.Value.Valid || s.Value.String != arg.Value.String {
		return 0, nil
	}
	s.Value = pgtype.Text{}
	f.settings[arg.Key] = s
	return 1, nil
}

func (f *fakeDB) setSetting(key, value string) {
	f.settings[key] = database.Setting{Key: key, Value: pgtype.Text{String: value, Valid: true}}
}

// --- orders ---

func (f *fakeDB) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createOrderCalls++
	if f.err != nil {
		return database.Order{}, f.err
	}
	f.seq++
	o := database.Order{
		ID:            uuid.New(),
		Seq:           f.seq,
		SubmitterName: arg.SubmitterName,
		StoreName:     arg.StoreName,
		ItemName:      arg.ItemName,
		Price:         arg.Price,
		Paid:          arg.Paid,
		Selected:      arg.Selected,
		DeleteMarked:  arg.DeleteMarked,
		Note:          arg.Note,
		CreatedAt:     f.tick(),
	}
	f.orders = append(f.orders, o)
	return o, nil
}

func (f *fakeDB) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.Order{}, f.err
	}
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return database.Order{}, pgx.ErrNoRows
}

func (f *fakeDB) ListOrders(ctx context.Context) ([]database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]database.Order(nil), f.orders...), nil
}

func (f *fakeDB) ListOrdersBySubmitter(ctx context.Context, name string) ([]database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []database.Order
	for _, o := range f.orders {
		if o.SubmitterName == name {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeDB) CountOrdersBySubmitter(ctx context.Context, name string) (int64, error) {
	rows, err := f.ListOrdersBySubmitter(ctx, name)
	return int64(len(rows)), err
}

func (f *fakeDB) UpdateOrderFlags(ctx context.Context, arg database.UpdateOrderFlagsParams) (database.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.Order{}, f.err
	}
	for i := range f.orders {
		o := &f.orders[i]
		if o.ID != arg.ID {
			continue
		}
		if arg.Paid.Valid {
			o.Paid = arg.Paid.Bool
		}
		if arg.Selected.Valid {
			o.Selected = arg.Selected.Bool
		}
		if arg.DeleteMarked.Valid {
			o.DeleteMarked = arg.DeleteMarked.Bool
		}
		if arg.Note.Valid {
			o.Note = arg.Note.String
		}
		return *o, nil
	}
	return database.Order{}, pgx.ErrNoRows
}

func (f *fakeDB) MarkOrdersDeleted(ctx context.Context, ids []uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	want := idSet(ids)
	var n int64
	for i := range f.orders {
		if want[f.orders[i].ID] {
			f.orders[i].DeleteMarked = true
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) PurgeOrders(ctx context.Context, ids []uuid.UUID) (int64, error) {
	want := idSet(ids)
	return f.purge(func(o database.Order) bool { return want[o.ID] && o.DeleteMarked })
}

func (f *fakeDB) PurgeMarkedOrders(ctx context.Context) (int64, error) {
	return f.purge(func(o database.Order) bool { return o.DeleteMarked })
}

func (f *fakeDB) DeleteAllOrders(ctx context.Context) (int64, error) {
	return f.purge(func(database.Order) bool { return true })
}

func (f *fakeDB) purge(match func(database.Order) bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	kept := f.orders[:0]
	var n int64
	for _, o := range f.orders {
		if match(o) {
			n++
			continue
		}
		kept = append(kept, o)
	}
	f.orders = kept
	return n, nil
}

func (f *fakeDB) GetOrderSummary(ctx context.Context) (database.GetOrderSummaryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.GetOrderSummaryRow{}, f.err
	}
	total, selected, paid := decimal.Zero, decimal.Zero, decimal.Zero
	var unpaid int64
	for _, o := range f.orders {
		p := numericToDecimal(o.Price)
		total = total.Add(p)
		if o.Selected {
			selected = selected.Add(p)
		}
		if o.Paid {
			paid = paid.Add(p)
		} else {
			unpaid++
		}
	}
	return database.GetOrderSummaryRow{
		OrderCount:     int64(len(f.orders)),
		TotalAmount:    decimalToNumeric(total),
		SelectedAmount: decimalToNumeric(selected),
		PaidAmount:     decimalToNumeric(paid),
		UnpaidCount:    unpaid,
	}, nil
}

func (f *fakeDB) GetItemTally(ctx context.Context) ([]database.GetItemTallyRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	type key struct{ store, item string }
	qty := map[key]int64{}
	amt := map[key]decimal.Decimal{}
	var keys []key
	for _, o := range f.orders {
		k := key{o.StoreName, o.ItemName}
		if _, ok := qty[k]; !ok {
			keys = append(keys, k)
		}
		qty[k]++
		amt[k] = amt[k].Add(numericToDecimal(o.Price))
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].store != keys[j].store {
			return keys[i].store < keys[j].store
		}
		if qty[keys[i]] != qty[keys[j]] {
			return qty[keys[i]] > qty[keys[j]]
		}
		return keys[i].item < keys[j].item
	})
	out := make([]database.GetItemTallyRow, len(keys))
	for i, k := range keys {
		out[i] = database.GetItemTallyRow{
			StoreName: k.store,
			ItemName:  k.item,
			Quantity:  qty[k],
			Amount:    decimalToNumeric(amt[k]),
		}
	}
	return out, nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	m := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// fixture wires every service to one fakeDB, a memory cache and a fixed clock.
type fixture struct {
	db       *fakeDB
	pool     *mockPool
	cache    *cache.Memory
	pub      *recordingPublisher
	loc      *time.Location
	now      time.Time
	menus    *MenuService
	settings *SettingsService
	orders   *OrderService
	ordering *OrderingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	f := &fixture{
		db:    newFakeDB(),
		pool:  newMockPool(),
		cache: cache.NewMemory(),
		pub:   &recordingPublisher{},
		loc:   loc,
		now:   time.Date(2026, 10, 16, 10, 0, 0, 0, loc),
	}
	def := cutoff.MustParse("16:00")
	f.menus = NewMenuService(f.pool, f.db.menuStore, f.cache, f.pub)
	f.settings = NewSettingsService(f.db, def, f.cache, f.pub)
	f.orders = NewOrderService(f.pool, f.db.orderStore, loc, f.pub)
	f.ordering = NewOrderingService(f.pool, f.db.orderingStore, f.settings, f.menus, OrderingOptions{
		Location:      loc,
		DefaultCutoff: def,
		Now:           func() time.Time { return f.now },
	}, f.pub)
	return f
}

// at moves the fixture clock to hh:mm on the same day.
func (f *fixture) at(hour, minute int) {
	y, m, d := f.now.Date()
	f.now = time.Date(y, m, d, hour, minute, 0, 0, f.loc)
}

// seedStore creates a store with the given menu and makes it active.
func (f *fixture) seedStore(t *testing.T, name string, items ...MenuItemInput) {
	t.Helper()
	ctx := context.Background()
	if _, _, err := f.menus.UpsertStore(ctx, Store{Name: name}); err != nil {
		t.Fatalf("upsert store: %v", err)
	}
	if _, err := f.menus.ReplaceMenu(ctx, name, items); err != nil {
		t.Fatalf("replace menu: %v", err)
	}
	if _, err := f.settings.SetActiveStore(ctx, name); err != nil {
		t.Fatalf("set active store: %v", err)
	}
}

func item(name string, price int64) MenuItemInput {
	return MenuItemInput{Name: name, Price: decimal.NewFromInt(price)}
}
