package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const countOrdersBySubmitter = `-- name: CountOrdersBySubmitter :one
SELECT count(*) FROM orders
WHERE submitter_name = $1
`

func (q *Queries) CountOrdersBySubmitter(ctx context.Context, submitterName string) (int64, error) {
	row := q.db.QueryRow(ctx, countOrdersBySubmitter, submitterName)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (submitter_name, store_name, item_name, price, paid, selected, delete_marked, note)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, seq, submitter_name, store_name, item_name, price, paid, selected, delete_marked, note, created_at
`

type CreateOrderParams struct {
	SubmitterName string         `json:"submitter_name"`
	StoreName     string         `json:"store_name"`
	ItemName      string         `json:"item_name"`
	Price         pgtype.Numeric `json:"price"`
	Paid          bool           `json:"paid"`
	Selected      bool           `json:"selected"`
	DeleteMarked  bool           `json:"delete_marked"`
	Note          string         `json:"note"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.SubmitterName,
		arg.StoreName,
		arg.ItemName,
		arg.Price,
		arg.Paid,
		arg.Selected,
		arg.DeleteMarked,
		arg.Note,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.Seq,
		&i.SubmitterName,
		&i.StoreName,
		&i.ItemName,
		&i.Price,
		&i.Paid,
		&i.Selected,
		&i.DeleteMarked,
		&i.Note,
		&i.CreatedAt,
	)
	return i, err
}

const deleteAllOrders = `-- name: DeleteAllOrders :execrows
DELETE FROM orders
`

func (q *Queries) DeleteAllOrders(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAllOrders)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getItemTally = `-- name: GetItemTally :many
SELECT store_name, item_name, count(*)::bigint AS quantity, COALESCE(sum(price), 0)::numeric AS amount
FROM orders
GROUP BY store_name, item_name
ORDER BY store_name, quantity DESC, item_name
`

type GetItemTallyRow struct {
	StoreName string         `json:"store_name"`
	ItemName  string         `json:"item_name"`
	Quantity  int64          `json:"quantity"`
	Amount    pgtype.Numeric `json:"amount"`
}

func (q *Queries) GetItemTally(ctx context.Context) ([]GetItemTallyRow, error) {
	rows, err := q.db.Query(ctx, getItemTally)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetItemTallyRow{}
	for rows.Next() {
		var i GetItemTallyRow
		if err := rows.Scan(
			&i.StoreName,
			&i.ItemName,
			&i.Quantity,
			&i.Amount,
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

const getOrder = `-- name: GetOrder :one
SELECT id, seq, submitter_name, store_name, item_name, price, paid, selected, delete_marked, note, created_at FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.Seq,
		&i.SubmitterName,
		&i.StoreName,
		&i.ItemName,
		&i.Price,
		&i.Paid,
		&i.Selected,
		&i.DeleteMarked,
		&i.Note,
		&i.CreatedAt,
	)
	return i, err
}

const getOrderSummary = `-- name: GetOrderSummary :one
SELECT
    count(*)::bigint AS order_count,
    COALESCE(sum(price), 0)::numeric AS total_amount,
    COALESCE(sum(price) FILTER (WHERE selected), 0)::numeric AS selected_amount,
    COALESCE(sum(price) FILTER (WHERE paid), 0)::numeric AS paid_amount,
    count(*) FILTER (WHERE NOT paid)::bigint AS unpaid_count
FROM orders
`

type GetOrderSummaryRow struct {
	OrderCount     int64          `json:"order_count"`
	TotalAmount    pgtype.Numeric `json:"total_amount"`
	SelectedAmount pgtype.Numeric `json:"selected_amount"`
	PaidAmount     pgtype.Numeric `json:"paid_amount"`
	UnpaidCount    int64          `json:"unpaid_count"`
}

func (q *Queries) GetOrderSummary(ctx context.Context) (GetOrderSummaryRow, error) {
	row := q.db.QueryRow(ctx, getOrderSummary)
	var i GetOrderSummaryRow
	err := row.Scan(
		&i.OrderCount,
		&i.TotalAmount,
		&i.SelectedAmount,
		&i.PaidAmount,
		&i.UnpaidCount,
	)
	return i, err
}

const listOrders = `-- name: ListOrders :many
SELECT id, seq, submitter_name, store_name, item_name, price, paid, selected, delete_marked, note, created_at FROM orders
ORDER BY seq
`

func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.Seq,
			&i.SubmitterName,
			&i.StoreName,
			&i.ItemName,
			&i.Price,
			&i.Paid,
			&i.Selected,
			&i.DeleteMarked,
			&i.Note,
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

const listOrdersBySubmitter = `-- name: ListOrdersBySubmitter :many
SELECT id, seq, submitter_name, store_name, item_name, price, paid, selected, delete_marked, note, created_at FROM orders
WHERE submitter_name = $1
ORDER BY seq
`

func (q *Queries) ListOrdersBySubmitter(ctx context.Context, submitterName string) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersBySubmitter, submitterName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.Seq,
			&i.SubmitterName,
			&i.StoreName,
			&i.ItemName,
			&i.Price,
			&i.Paid,
			&i.Selected,
			&i.DeleteMarked,
			&i.Note,
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

const markOrdersDeleted = `-- name: MarkOrdersDeleted :execrows
UPDATE orders
SET delete_marked = true
WHERE id = ANY($1::uuid[])
`

func (q *Queries) MarkOrdersDeleted(ctx context.Context, ids []uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, markOrdersDeleted, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const purgeMarkedOrders = `-- name: PurgeMarkedOrders :execrows
DELETE FROM orders
WHERE delete_marked
`

func (q *Queries) PurgeMarkedOrders(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, purgeMarkedOrders)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const purgeOrders = `-- name: PurgeOrders :execrows
DELETE FROM orders
WHERE id = ANY($1::uuid[]) AND delete_marked
`

func (q *Queries) PurgeOrders(ctx context.Context, ids []uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, purgeOrders, ids)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateOrderFlags = `-- name: UpdateOrderFlags :one
UPDATE orders
SET paid = COALESCE($2, paid),
    selected = COALESCE($3, selected),
    delete_marked = COALESCE($4, delete_marked),
    note = COALESCE($5, note)
WHERE id = $1
RETURNING id, seq, submitter_name, store_name, item_name, price, paid, selected, delete_marked, note, created_at
`

type UpdateOrderFlagsParams struct {
	ID           uuid.UUID   `json:"id"`
	Paid         pgtype.Bool `json:"paid"`
	Selected     pgtype.Bool `json:"selected"`
	DeleteMarked pgtype.Bool `json:"delete_marked"`
	Note         pgtype.Text `json:"note"`
}

func (q *Queries) UpdateOrderFlags(ctx context.Context, arg UpdateOrderFlagsParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderFlags,
		arg.ID,
		arg.Paid,
		arg.Selected,
		arg.DeleteMarked,
		arg.Note,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.Seq,
		&i.SubmitterName,
		&i.StoreName,
		&i.ItemName,
		&i.Price,
		&i.Paid,
		&i.Selected,
		&i.DeleteMarked,
		&i.Note,
		&i.CreatedAt,
	)
	return i, err
}
