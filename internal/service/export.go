package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportFilename is the suggested download name for WriteOrdersCSV output.
const ExportFilename = "lunch_orders.csv"

var csvHeader = []string{
	"id", "submitter_name", "store_name", "item_name", "price",
	"paid", "selected", "delete_marked", "note", "created_at",
}

// WriteOrdersCSV writes orders as CSV with a header row. created_at is
// rendered RFC3339 in loc.
func WriteOrdersCSV(w io.Writer, orders []Order, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range orders {
		if err := cw.Write([]string{
			o.ID.String(),
			o.SubmitterName,
			o.StoreName,
			o.ItemName,
			o.Price.String(),
			strconv.FormatBool(o.Paid),
			strconv.FormatBool(o.Selected),
			strconv.FormatBool(o.DeleteMarked),
			o.Note,
			o.CreatedAt.In(loc).Format(time.RFC3339),
		}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
