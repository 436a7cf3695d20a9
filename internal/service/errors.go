package service

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ValidationError is a recoverable input problem. The caller corrects the
// input and tries again; nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation errors returned by the services.
var (
	ErrEmptyName       = &ValidationError{Field: "name", Message: "name is required"}
	ErrNoItemSelected  = &ValidationError{Field: "item_name", Message: "item_name is required"}
	ErrItemNotOnMenu   = &ValidationError{Field: "item_name", Message: "item is not on today's menu"}
	ErrNegativePrice   = &ValidationError{Field: "price", Message: "price must be >= 0"}
	ErrFractionalPrice = &ValidationError{Field: "price", Message: "price must be a whole number"}
	ErrEmptyStoreName  = &ValidationError{Field: "name", Message: "store name is required"}
	ErrNoOrderIDs      = &ValidationError{Field: "ids", Message: "ids are required"}
	ErrNoFlagChanges   = &ValidationError{Field: "body", Message: "at least one of paid, selected, delete_marked, note is required"}
)

func duplicateItemError(name string) error {
	return &ValidationError{Field: "items", Message: fmt.Sprintf("duplicate item %q", name)}
}

// Not-found errors. All of them match errors.Is(err, ErrNotFound).
var (
	ErrNotFound      = errors.New("not found")
	ErrStoreNotFound = fmt.Errorf("store %w", ErrNotFound)
	ErrOrderNotFound = fmt.Errorf("order %w", ErrNotFound)
)

// ErrStorageUnavailable marks failures to reach the database at all.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ClosedError is returned when a submission arrives while ordering is closed.
type ClosedError struct {
	Reason   string
	Deadline time.Time
}

func (e *ClosedError) Error() string { return "ordering is closed: " + e.Reason }

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// storageError wraps a database error with the failed operation, tagging
// connection-level failures with ErrStorageUnavailable.
func storageError(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
