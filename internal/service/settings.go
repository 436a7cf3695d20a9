package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/dennisyang0219/lunch-water/internal/cache"
	"github.com/dennisyang0219/lunch-water/internal/cutoff"
	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/enum"
	"github.com/dennisyang0219/lunch-water/internal/events"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Settings are today's ordering settings.
type Settings struct {
	// ActiveStore is empty when no store is configured. It may name a store
	// that has since been deleted.
	ActiveStore string           `json:"active_store"`
	Cutoff      cutoff.TimeOfDay `json:"cutoff_time"`
}

type settingGetter interface {
	GetSetting(ctx context.Context, key string) (database.Setting, error)
}

// SettingsStore defines the DB methods needed by the settings service.
// Satisfied by *database.Queries.
type SettingsStore interface {
	settingGetter
	UpsertSetting(ctx context.Context, arg database.UpsertSettingParams) (database.Setting, error)
	GetStore(ctx context.Context, name string) (database.Store, error)
}

// SettingsService reads and writes the active store and the cutoff time.
type SettingsService struct {
	store         SettingsStore
	defaultCutoff cutoff.TimeOfDay
	cache         cache.Cache
	events        events.Publisher
}

// NewSettingsService creates a new SettingsService. defaultCutoff applies
// until an administrator stores a cutoff.
func NewSettingsService(store SettingsStore, defaultCutoff cutoff.TimeOfDay, c cache.Cache, pub events.Publisher) *SettingsService {
	return &SettingsService{store: store, defaultCutoff: defaultCutoff, cache: c, events: pub}
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (Settings, error) {
	return readThrough(ctx, s.cache, settingsCacheKey, func(ctx context.Context) (Settings, error) {
		return loadSettings(ctx, s.store, s.defaultCutoff)
	})
}

// SetActiveStore designates today's store. An empty name clears it.
func (s *SettingsService) SetActiveStore(ctx context.Context, name string) (Settings, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		if _, err := s.store.GetStore(ctx, name); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Settings{}, ErrStoreNotFound
			}
			return Settings{}, storageError("get store", err)
		}
	}

	if _, err := s.store.UpsertSetting(ctx, database.UpsertSettingParams{
		Key:   enum.SettingActiveStore,
		Value: optionalText(name),
	}); err != nil {
		return Settings{}, storageError("save active store", err)
	}

	return s.afterWrite(ctx)
}

// SetCutoff stores the daily cutoff time.
func (s *SettingsService) SetCutoff(ctx context.Context, tod cutoff.TimeOfDay) (Settings, error) {
	if _, err := s.store.UpsertSetting(ctx, database.UpsertSettingParams{
		Key:   enum.SettingCutoffTime,
		Value: pgtype.Text{String: tod.String(), Valid: true},
	}); err != nil {
		return Settings{}, storageError("save cutoff", err)
	}

	return s.afterWrite(ctx)
}

func (s *SettingsService) afterWrite(ctx context.Context) (Settings, error) {
	invalidate(ctx, s.cache, settingsCacheKey)
	settings, err := s.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	publish(ctx, s.events, enum.EventSettingsChanged, settings)
	return settings, nil
}

// loadSettings reads both settings rows. Missing rows fall back to "no
// active store" and def; an unparsable stored cutoff also falls back to def.
func loadSettings(ctx context.Context, store settingGetter, def cutoff.TimeOfDay) (Settings, error) {
	out := Settings{Cutoff: def}

	active, err := store.GetSetting(ctx, enum.SettingActiveStore)
	switch {
	case err == nil:
		if active.Value.Valid {
			out.ActiveStore = active.Value.String
		}
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return Settings{}, storageError("get active store", err)
	}

	cut, err := store.GetSetting(ctx, enum.SettingCutoffTime)
	switch {
	case err == nil:
		if cut.Value.Valid {
			tod, perr := cutoff.ParseTimeOfDay(cut.Value.String)
			if perr != nil {
				log.Printf("WARN: stored cutoff %q is invalid, using %s", cut.Value.String, def)
			} else {
				out.Cutoff = tod
			}
		}
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return Settings{}, storageError("get cutoff", err)
	}

	return out, nil
}
