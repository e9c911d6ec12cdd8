package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the backup engine. The HTTP layer maps
// these to status codes in middlewares.ErrorHandler.
var (
	// ErrUnauthorized means the request carried no usable identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the actor failed the authorization gate. No
	// table has been touched when this is returned.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced tenant or backup record does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrTenantBusy means another capture or restore currently holds
	// the tenant's advisory lock.
	ErrTenantBusy = errors.New("tenant has a backup operation in progress")

	// ErrUnknownVersion means the snapshot document declares a version
	// this engine does not understand. Rejected before any table work.
	ErrUnknownVersion = errors.New("unknown snapshot version")

	// ErrMalformedDocument means the snapshot payload is structurally
	// invalid. Rejected before any table work.
	ErrMalformedDocument = errors.New("malformed snapshot document")

	// ErrRecordNotRestorable means the backup record is not in the
	// completed state and cannot serve as a restore source.
	ErrRecordNotRestorable = errors.New("backup record is not restorable")

	// ErrUnknownTable means a requested table subset names a table the
	// manifest does not know.
	ErrUnknownTable = errors.New("table not in manifest")
)

// TableOperationError wraps a single table's read or write failure. It
// is recorded in the per-table report and never aborts the surrounding
// loop.
type TableOperationError struct {
	Table string
	Op    string // "read", "delete" or "insert"
	Err   error
}

func (e *TableOperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *TableOperationError) Unwrap() error {
	return e.Err
}
