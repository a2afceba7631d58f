package engine

import (
	"fmt"
	"strings"

	"bidlevel/models"
)

// ImportSummary reports what an ingest created and filled in.
type ImportSummary struct {
	VendorsAdded int `json:"vendorsAdded"`
	ItemsAdded   int `json:"itemsAdded"`
	CellsSet     int `json:"cellsSet"`
}

// IngestBids folds already-parsed vendor submissions into the ledger by
// composing AddVendor, AddLineItem and EditCell. Line items are matched to
// existing ones by description (case-insensitive); unmatched ones are
// created. Prices land through the normal edit path, so the import is
// journaled and undoable like any other edit.
func (l *Ledger) IngestBids(records []models.ImportedBid) (ImportSummary, error) {
	var summary ImportSummary
	for _, rec := range records {
		quals := rec.Compliance
		vendor, err := l.AddVendor(VendorSpec{
			Name:           rec.VendorName,
			Qualifications: &quals,
		})
		if err != nil {
			return summary, fmt.Errorf("ingest %q: %w", rec.VendorName, err)
		}
		summary.VendorsAdded++

		for _, li := range rec.LineItems {
			itemID, created, err := l.ensureLineItem(li)
			if err != nil {
				return summary, fmt.Errorf("ingest %q: %w", rec.VendorName, err)
			}
			if created {
				summary.ItemsAdded++
			}
			if _, _, err := l.EditCell(itemID, vendor.ID, models.FieldUnitPrice, li.UnitPrice); err != nil {
				return summary, err
			}
			if _, _, err := l.EditCell(itemID, vendor.ID, models.FieldTotalPrice, li.TotalPrice); err != nil {
				return summary, err
			}
			summary.CellsSet += 2
			if li.Notes != "" {
				if _, _, err := l.EditNotes(itemID, vendor.ID, li.Notes); err != nil {
					return summary, err
				}
			}
		}
		if rec.Alternates > 0 {
			l.mu.Lock()
			if v := l.findVendor(vendor.ID); v != nil {
				v.AlternatesSubmitted = rec.Alternates
			}
			l.mu.Unlock()
		}
	}
	return summary, nil
}

func (l *Ledger) ensureLineItem(li models.ImportedLineItem) (id string, created bool, err error) {
	l.mu.Lock()
	for _, it := range l.items {
		if strings.EqualFold(it.Description, li.Description) {
			l.mu.Unlock()
			return it.ID, false, nil
		}
	}
	l.mu.Unlock()

	qty := li.Quantity
	if qty <= 0 {
		qty = 1
	}
	item, err := l.AddLineItem(LineItemSpec{
		Description: li.Description,
		Quantity:    qty,
		Unit:        li.Unit,
	})
	if err != nil {
		return "", false, err
	}
	return item.ID, true, nil
}
