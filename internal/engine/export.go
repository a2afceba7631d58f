package engine

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"bidlevel/models"
)

// ExportCSV renders a ledger snapshot as the leveling-sheet layout: one row
// per line item with per-vendor unit price, total price and variance against
// the engineer's estimate. The engine exposes the data; formatting beyond
// CSV is the export collaborator's problem.
func ExportCSV(items []models.LineItem, vendors []models.Vendor) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"Line Item", "CSI Code", "Description", "Quantity", "Unit", "Engineer Estimate"}
	for _, v := range vendors {
		header = append(header,
			v.Name+" - Unit Price",
			v.Name+" - Total Price",
			v.Name+" - vs. Estimate %")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, item := range items {
		row := []string{
			item.ID,
			item.CSICode,
			item.Description,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			item.Unit,
			strconv.FormatFloat(item.EngineerEstimate, 'f', -1, 64),
		}
		for _, v := range vendors {
			var unit, total, variance string
			for _, bid := range item.VendorBids {
				if bid.VendorID != v.ID {
					continue
				}
				unit = strconv.FormatFloat(bid.UnitPrice, 'f', -1, 64)
				total = strconv.FormatFloat(bid.TotalPrice, 'f', -1, 64)
				if item.EngineerEstimate > 0 {
					pct := (bid.TotalPrice - item.EngineerEstimate) / item.EngineerEstimate * 100
					variance = fmt.Sprintf("%.1f", pct)
				}
				break
			}
			row = append(row, unit, total, variance)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
