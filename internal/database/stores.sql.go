package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const deleteStore = `-- name: DeleteStore :one
DELETE FROM stores
WHERE name = $1
RETURNING name
`

func (q *Queries) DeleteStore(ctx context.Context, name string) (string, error) {
	row := q.db.QueryRow(ctx, deleteStore, name)
	var deleted string
	err := row.Scan(&deleted)
	return deleted, err
}

const getStore = `-- name: GetStore :one
SELECT name, address, phone, created_at FROM stores
WHERE name = $1
`

func (q *Queries) GetStore(ctx context.Context, name string) (Store, error) {
	row := q.db.QueryRow(ctx, getStore, name)
	var i Store
	err := row.Scan(
		&i.Name,
		&i.Address,
		&i.Phone,
		&i.CreatedAt,
	)
	return i, err
}

const listStores = `-- name: ListStores :many
SELECT name, address, phone, created_at FROM stores
WHERE btrim(name) <> ''
ORDER BY name
`

func (q *Queries) ListStores(ctx context.Context) ([]Store, error) {
	rows, err := q.db.Query(ctx, listStores)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Store{}
	for rows.Next() {
		var i Store
		if err := rows.Scan(
			&i.Name,
			&i.Address,
			&i.Phone,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertStore = `-- name: UpsertStore :one
INSERT INTO stores (name, address, phone)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE
SET address = EXCLUDED.address,
    phone = EXCLUDED.phone
RETURNING name, address, phone, created_at, (xmax = 0)::boolean AS inserted
`

type UpsertStoreParams struct {
	Name    string      `json:"name"`
	Address pgtype.Text `json:"address"`
	Phone   pgtype.Text `json:"phone"`
}

type UpsertStoreRow struct {
	Name      string      `json:"name"`
	Address   pgtype.Text `json:"address"`
	Phone     pgtype.Text `json:"phone"`
	CreatedAt time.Time   `json:"created_at"`
	Inserted  bool        `json:"inserted"`
}

func (q *Queries) UpsertStore(ctx context.Context, arg UpsertStoreParams) (UpsertStoreRow, error) {
	row := q.db.QueryRow(ctx, upsertStore, arg.Name, arg.Address, arg.Phone)
	var i UpsertStoreRow
	err := row.Scan(
		&i.Name,
		&i.Address,
		&i.Phone,
		&i.CreatedAt,
		&i.Inserted,
	)
	return i, err
}
