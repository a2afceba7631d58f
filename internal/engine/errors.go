package engine

import (
	"errors"
	"fmt"
)

// ErrNothingToUndo is returned by UndoLast on an empty journal.
var ErrNothingToUndo = errors.New("nothing to undo")

// ValidationError reports a malformed request. No state is mutated.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InconsistentStateError reports an edit addressed to a vendor with no bid
// stub on the target line item. The vendor/line-item symmetry contract was
// violated upstream, so the operation fails rather than papering over it.
type InconsistentStateError struct {
	LineItemID string
	VendorID   string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("inconsistent state: line item %s has no bid for vendor %s", e.LineItemID, e.VendorID)
}

// NotFoundError reports an unknown line item or vendor id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// PersistenceError wraps a failure of the injected save collaborator. The
// ledger's dirty state is left untouched so the caller can retry.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
