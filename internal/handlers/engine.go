package handlers

import (
	"context"
	"iter"

	"bidlevel/internal/engine"
	"bidlevel/models"
)

// EngineInterface is the slice of the leveling engine the HTTP layer uses.
type EngineInterface interface {
	ListLineItems() []models.LineItem
	ListVendors() []models.Vendor

	EditCell(lineItemID, vendorID string, field models.BidField, value float64) (prev float64, applied bool, err error)
	EditNotes(lineItemID, vendorID, notes string) (prev string, applied bool, err error)
	ApplyBulkEdit(req engine.BulkEditRequest) (engine.BulkEditSummary, error)

	AddLineItem(spec engine.LineItemSpec) (models.LineItem, error)
	DuplicateLineItem(lineItemID string) (models.LineItem, error)
	RemoveLineItem(lineItemID string) error
	ToggleLock(lineItemID string) (bool, error)

	AddVendor(spec engine.VendorSpec) (models.Vendor, error)
	RemoveVendor(vendorID string) error

	Save(ctx context.Context) error
	ResetAll()
	UndoLast() (models.ChangeEntry, error)
	History(n int) iter.Seq[models.ChangeEntry]

	SetAutoCalculate(on bool)
	AutoCalculate() bool

	IngestBids(records []models.ImportedBid) (engine.ImportSummary, error)
}
