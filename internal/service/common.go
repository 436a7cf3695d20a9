package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/dennisyang0219/lunch-water/internal/cache"
	"github.com/dennisyang0219/lunch-water/internal/database"
	"github.com/dennisyang0219/lunch-water/internal/events"
	"github.com/jackc/pgx/v5"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pool runs plain queries and starts transactions. Satisfied by *pgxpool.Pool.
type Pool interface {
	database.DBTX
	TxBeginner
}

var (
	storesCacheKey   = cache.Key("stores", "")
	settingsCacheKey = cache.Key("settings", "")
)

func storeCacheKey(name string) string { return cache.Key("store", name) }
func menuCacheKey(name string) string  { return cache.Key("menu", name) }

// withTx runs fn in a transaction and commits if fn succeeds.
func withTx(ctx context.Context, pool TxBeginner, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return storageError("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError("commit tx", err)
	}
	return nil
}

// readThrough returns the cached value for key, or loads, caches and
// returns it. Cache failures fall back to the loader.
func readThrough[T any](ctx context.Context, c cache.Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if c != nil {
		raw, ok, err := c.Get(ctx, key)
		if err != nil {
			log.Printf("WARN: cache get %s: %v", key, err)
		} else if ok {
			var v T
			derr := json.Unmarshal([]byte(raw), &v)
			if derr == nil {
				return v, nil
			}
			log.Printf("WARN: cache decode %s: %v", key, derr)
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if c != nil {
		if b, err := json.Marshal(v); err == nil {
			if err := c.Set(ctx, key, string(b)); err != nil {
				log.Printf("WARN: cache set %s: %v", key, err)
			}
		}
	}
	return v, nil
}

func invalidate(ctx context.Context, c cache.Cache, keys ...string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, keys...); err != nil {
		log.Printf("ERROR: cache invalidate %v: %v", keys, err)
	}
}

func publish(ctx context.Context, p events.Publisher, typ string, payload any) {
	if p == nil {
		return
	}
	e, err := events.New(typ, payload)
	if err != nil {
		log.Printf("WARN: build event %s: %v", typ, err)
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Printf("WARN: publish %s: %v", typ, err)
	}
}
