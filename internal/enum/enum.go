package enum

// ── Settings keys (settings table) ──

const (
	SettingActiveStore = "active_store"
	SettingCutoffTime  = "cutoff_time"
)

// PlaceholderItem keeps a store with an empty menu visible. It is never a
// selectable choice.
const PlaceholderItem = "無"

// ── Ordering state ──

const (
	ClosedReasonCutoffPassed  = "cutoff_passed"
	ClosedReasonNoActiveStore = "no_active_store"
	ClosedReasonEmptyMenu     = "empty_menu"
)

// ── Event types ──

const (
	EventOrderCreated    = "order.created"
	EventOrdersChanged   = "orders.changed"
	EventMenuChanged     = "menu.changed"
	EventSettingsChanged = "settings.changed"
)
