package engine

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"bidlevel/models"
)

// BulkEditRequest is a single user action applying one field operation
// across the Cartesian product of a line-item and a vendor selection.
// Operand arrives as entered text and is validated here.
type BulkEditRequest struct {
	LineItemIDs []string             `json:"lineItemIds"`
	VendorIDs   []string             `json:"vendorIds"`
	Field       models.BidField      `json:"field"`
	Operation   models.BulkOperation `json:"operation"`
	Operand     string               `json:"operand"`
}

// BulkEditSummary reports what a bulk edit actually touched. Locked line
// items in the selection are skipped, not counted.
type BulkEditSummary struct {
	ItemsAffected   int `json:"itemsAffected"`
	VendorsAffected int `json:"vendorsAffected"`
}

func (r *BulkEditRequest) validate() (float64, error) {
	if r.Field != models.FieldUnitPrice && r.Field != models.FieldTotalPrice {
		return 0, validationf("field %q is not bulk-editable", r.Field)
	}
	switch r.Operation {
	case models.OpReplace, models.OpMultiply, models.OpAdd:
	default:
		return 0, validationf("unknown operation %q", r.Operation)
	}
	if r.Operand == "" {
		return 0, validationf("operand is required")
	}
	operand, err := strconv.ParseFloat(r.Operand, 64)
	if err != nil || math.IsNaN(operand) || math.IsInf(operand, 0) {
		return 0, validationf("operand %q is not a finite number", r.Operand)
	}
	if len(r.LineItemIDs) == 0 {
		return 0, validationf("at least one line item must be selected")
	}
	if len(r.VendorIDs) == 0 {
		return 0, validationf("at least one vendor must be selected")
	}
	return operand, nil
}

// ApplyBulkEdit validates the request, expands it to per-cell edits and
// applies them atomically: no reader observes a partially applied batch.
// Unknown ids fail the whole request before any mutation.
func (l *Ledger) ApplyBulkEdit(req BulkEditRequest) (BulkEditSummary, error) {
	operand, err := req.validate()
	if err != nil {
		return BulkEditSummary{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	itemIDs := dedupe(req.LineItemIDs)
	vendorIDs := dedupe(req.VendorIDs)
	for _, id := range itemIDs {
		if l.findItem(id) == nil {
			return BulkEditSummary{}, &NotFoundError{Kind: "line item", ID: id}
		}
	}
	for _, id := range vendorIDs {
		if l.findVendor(id) == nil {
			return BulkEditSummary{}, &NotFoundError{Kind: "vendor", ID: id}
		}
	}

	var summary BulkEditSummary
	touchedVendors := make(map[string]bool)
	for _, itemID := range itemIDs {
		item := l.findItem(itemID)
		if item.Locked {
			continue
		}
		for _, vendorID := range vendorIDs {
			bid := findBid(item, vendorID)
			if bid == nil {
				return summary, &InconsistentStateError{LineItemID: itemID, VendorID: vendorID}
			}
			current := bid.UnitPrice
			if req.Field == models.FieldTotalPrice {
				current = bid.TotalPrice
			}
			newValue := operand
			switch req.Operation {
			case models.OpMultiply:
				newValue = current * operand
			case models.OpAdd:
				newValue = current + operand
			}
			prev := l.setPrice(item, bid, req.Field, newValue)
			l.journal.record(models.ChangeEntry{
				Timestamp:  time.Now(),
				Action:     models.ActionBidValueChange,
				LineItemID: itemID,
				VendorID:   vendorID,
				Field:      req.Field,
				PrevNumber: prev,
				NewNumber:  newValue,
			})
			touchedVendors[vendorID] = true
		}
		summary.ItemsAffected++
		l.recomputeItem(item)
	}
	summary.VendorsAffected = len(touchedVendors)
	l.rerank()
	l.emit(fmt.Sprintf("Updated %d items for %d vendors", summary.ItemsAffected, summary.VendorsAffected))
	return summary, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
