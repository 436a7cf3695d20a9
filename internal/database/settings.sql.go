package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const clearSettingIfValue = `-- name: ClearSettingIfValue :execrows
UPDATE settings
SET value = NULL, updated_at = now()
WHERE key = $1 AND value = $2
`

type ClearSettingIfValueParams struct {
	Key   string      `json:"key"`
	Value pgtype.Text `json:"value"`
}

func (q *Queries) ClearSettingIfValue(ctx context.Context, arg ClearSettingIfValueParams) (int64, error) {
	result, err := q.db.Exec(ctx, clearSettingIfValue, arg.Key, arg.Value)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getSetting = `-- name: GetSetting :one
SELECT key, value, updated_at FROM settings
WHERE key = $1
`

func (q *Queries) GetSetting(ctx context.Context, key string) (Setting, error) {
	row := q.db.QueryRow(ctx, getSetting, key)
	var i Setting
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const upsertSetting = `-- name: UpsertSetting :one
INSERT INTO settings (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_at = now()
RETURNING key, value, updated_at
`

type UpsertSettingParams struct {
	Key   string      `json:"key"`
	Value pgtype.Text `json:"value"`
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) (Setting, error) {
	row := q.db.QueryRow(ctx, upsertSetting, arg.Key, arg.Value)
	var i Setting
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}
