package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Admin struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
}

type MenuItem struct {
	ID        uuid.UUID      `json:"id"`
	StoreName string         `json:"store_name"`
	ItemName  string         `json:"item_name"`
	Price     pgtype.Numeric `json:"price"`
	SortOrder int32          `json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
}

type Order struct {
	ID            uuid.UUID      `json:"id"`
	Seq           int64          `json:"seq"`
	SubmitterName string         `json:"submitter_name"`
	StoreName     string         `json:"store_name"`
	ItemName      string         `json:"item_name"`
	Price         pgtype.Numeric `json:"price"`
	Paid          bool           `json:"paid"`
	Selected      bool           `json:"selected"`
	DeleteMarked  bool           `json:"delete_marked"`
	Note          string         `json:"note"`
	CreatedAt     time.Time      `json:"created_at"`
}

type Setting struct {
	Key       string      `json:"key"`
	Value     pgtype.Text `json:"value"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type Store struct {
	Name      string      `json:"name"`
	Address   pgtype.Text `json:"address"`
	Phone     pgtype.Text `json:"phone"`
	CreatedAt time.Time   `json:"created_at"`
}
