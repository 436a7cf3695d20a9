package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (store_name, item_name, price, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING id, store_name, item_name, price, sort_order, created_at
`

type CreateMenuItemParams struct {
	StoreName string         `json:"store_name"`
	ItemName  string         `json:"item_name"`
	Price     pgtype.Numeric `json:"price"`
	SortOrder int32          `json:"sort_order"`
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.StoreName,
		arg.ItemName,
		arg.Price,
		arg.SortOrder,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.StoreName,
		&i.ItemName,
		&i.Price,
		&i.SortOrder,
		&i.CreatedAt,
	)
	return i, err
}

const deleteMenuItem = `-- name: DeleteMenuItem :exec
DELETE FROM menu_items
WHERE id = $1
`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteMenuItem, id)
	return err
}

const listMenuItemsByStore = `-- name: ListMenuItemsByStore :many
SELECT id, store_name, item_name, price, sort_order, created_at FROM menu_items
WHERE store_name = $1
ORDER BY sort_order, created_at
`

func (q *Queries) ListMenuItemsByStore(ctx context.Context, storeName string) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByStore, storeName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(
			&i.ID,
			&i.StoreName,
			&i.ItemName,
			&i.Price,
			&i.SortOrder,
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

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET price = $2, sort_order = $3
WHERE id = $1
RETURNING id, store_name, item_name, price, sort_order, created_at
`

type UpdateMenuItemParams struct {
	ID        uuid.UUID      `json:"id"`
	Price     pgtype.Numeric `json:"price"`
	SortOrder int32          `json:"sort_order"`
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem, arg.ID, arg.Price, arg.SortOrder)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.StoreName,
		&i.ItemName,
		&i.Price,
		&i.SortOrder,
		&i.CreatedAt,
	)
	return i, err
}
