package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bidlevel/internal/engine"
	"bidlevel/models"
)

func TestBulkEditMultiply(t *testing.T) {
	f := newFixture(t)

	summary, err := f.l.ApplyBulkEdit(engine.BulkEditRequest{
		LineItemIDs: []string{f.it1.ID, f.it2.ID},
		VendorIDs:   []string{f.v1.ID, f.v2.ID},
		Field:       models.FieldUnitPrice,
		Operation:   models.OpMultiply,
		Operand:     "1.1",
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.ItemsAffected)
	require.Equal(t, 2, summary.VendorsAffected)

	require.InDelta(t, 106250*1.1, f.bid(t, f.it1.ID, f.v1.ID).UnitPrice, 1e-9)
	require.InDelta(t, 118750*1.1, f.bid(t, f.it1.ID, f.v2.ID).UnitPrice, 1e-9)
	require.InDelta(t, 14.5*1.1, f.bid(t, f.it2.ID, f.v1.ID).UnitPrice, 1e-9)
	require.InDelta(t, 16.0*1.1, f.bid(t, f.it2.ID, f.v2.ID).UnitPrice, 1e-9)
	for _, it := range f.l.ListLineItems() {
		require.True(t, it.Dirty)
		for _, b := range it.VendorBids {
			require.True(t, b.IsEdited)
		}
	}

	// Every cell edit is individually undoable.
	require.Equal(t, 4, f.l.HistoryLen())
}

func TestBulkEditReplaceAndAdd(t *testing.T) {
	f := newFixture(t)

	_, err := f.l.ApplyBulkEdit(engine.BulkEditRequest{
		LineItemIDs: []string{f.it2.ID},
		VendorIDs:   []string{f.v1.ID},
		Field:       models.FieldUnitPrice,
		Operation:   models.OpReplace,
		Operand:     "20",
	})
	require.NoError(t, err)
	require.Equal(t, 20.0, f.bid(t, f.it2.ID, f.v1.ID).UnitPrice)

	_, err = f.l.ApplyBulkEdit(engine.BulkEditRequest{
		LineItemIDs: []string{f.it2.ID},
		VendorIDs:   []string{f.v1.ID},
		Field:       models.FieldUnitPrice,
		Operation:   models.OpAdd,
		Operand:     "-5",
	})
	require.NoError(t, err)
	require.Equal(t, 15.0, f.bid(t, f.it2.ID, f.v1.ID).UnitPrice)
}

func TestBulkEditSkipsLockedItems(t *testing.T) {
	f := newFixture(t)
	_, err := f.l.ToggleLock(f.it1.ID)
	require.NoError(t, err)

	before := f.bid(t, f.it1.ID, f.v1.ID)
	summary, err := f.l.ApplyBulkEdit(engine.BulkEditRequest{
		LineItemIDs: []string{f.it1.ID, f.it2.ID},
		VendorIDs:   []string{f.v1.ID},
		Field:       models.FieldUnitPrice,
		Operation:   models.OpMultiply,
		Operand:     "2",
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.ItemsAffected)
	require.Equal(t, 1, summary.VendorsAffected)

	require.Equal(t, before.UnitPrice, f.bid(t, f.it1.ID, f.v1.ID).UnitPrice)
	require.Equal(t, 29.0, f.bid(t, f.it2.ID, f.v1.ID).UnitPrice)
	require.Equal(t, 1, f.l.HistoryLen())
}

func TestBulkEditDeduplicatesSelection(t *testing.T) {
	f := newFixture(t)

	summary, err := f.l.ApplyBulkEdit(engine.BulkEditRequest{
		LineItemIDs: []string{f.it2.ID, f.it2.ID},
		VendorIDs:   []string{f.v1.ID, f.v1.ID},
		Field:       models.FieldUnitPrice,
		Operation:   models.OpMultiply,
		Operand:     "2",
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.ItemsAffected)
	require.Equal(t, 1, summary.VendorsAffected)
	require.Equal(t, 29.0, f.bid(t, f.it2.ID, f.v1.ID).UnitPrice)
}

func TestBulkEditValidation(t *testing.T) {
	f := newFixture(t)
	base := engine.BulkEditRequest{
		LineItemIDs: []string{f.it1.ID},
		VendorIDs:   []string{f.v1.ID},
		Field:       models.FieldUnitPrice,
		Operation:   models.OpReplace,
		Operand:     "1",
	}

	cases := []struct {
		name   string
		mutate func(*engine.BulkEditRequest)
	}{
		{"notes field", func(r *engine.BulkEditRequest) { r.Field = models.FieldNotes }},
		{"unknown operation", func(r *engine.BulkEditRequest) { r.Operation = "divide" }},
		{"empty operand", func(r *engine.BulkEditRequest) { r.Operand = "" }},
		{"non numeric operand", func(r *engine.BulkEditRequest) { r.Operand = "abc" }},
		{"nan operand", func(r *engine.BulkEditRequest) { r.Operand = "NaN" }},
		{"no line items", func(r *engine.BulkEditRequest) { r.LineItemIDs = nil }},
		{"no vendors", func(r *engine.BulkEditRequest) { r.VendorIDs = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := f.l.ApplyBulkEdit(req)
			var verr *engine.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestBulkEditUnknownIDFailsBeforeMutation(t *testing.T) {
	f := newFixture(t)
	before := f.bid(t, f.it1.ID, f.v1.ID)

	_, err := f.l.ApplyBulkEdit(engine.BulkEditRequest{
		LineItemIDs: []string{f.it1.ID, "LI-missing"},
		VendorIDs:   []string{f.v1.ID},
		Field:       models.FieldUnitPrice,
		Operation:   models.OpMultiply,
		Operand:     "2",
	})
	var nf *engine.NotFoundError
	require.ErrorAs(t, err, &nf)

	require.Equal(t, before.UnitPrice, f.bid(t, f.it1.ID, f.v1.ID).UnitPrice)
	require.Equal(t, 0, f.l.HistoryLen())
}

func TestIngestBids(t *testing.T) {
	f := newFixture(t)

	summary, err := f.l.IngestBids([]models.ImportedBid{
		{
			VendorName: "Coastal Mechanical",
			Compliance: models.Qualifications{Bonding: true, Insurance: true, Experience: true, Licensing: true},
			Alternates: 2,
			LineItems: []models.ImportedLineItem{
				{Description: "Ductwork Installation", Quantity: 15000, Unit: "LF", UnitPrice: 15.2, TotalPrice: 228000},
				{Description: "Chilled Water Piping", Quantity: 8000, Unit: "LF", UnitPrice: 42, TotalPrice: 336000, Notes: "alt routing"},
			},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.VendorsAdded)
	require.Equal(t, 1, summary.ItemsAdded)
	require.Equal(t, 4, summary.CellsSet)

	vendors := f.l.ListVendors()
	require.Len(t, vendors, 3)
	var imported models.Vendor
	for _, v := range vendors {
		if v.Name == "Coastal Mechanical" {
			imported = v
		}
	}
	require.NotEmpty(t, imported.ID)
	require.Equal(t, 2, imported.AlternatesSubmitted)
	require.Equal(t, 228000.0+336000.0, imported.TotalBid)

	// The existing ductwork item was matched, not duplicated.
	items := f.l.ListLineItems()
	require.Len(t, items, 3)
	b := f.bid(t, f.it2.ID, imported.ID)
	require.Equal(t, 228000.0, b.TotalPrice)
	require.Equal(t, 15.2, b.UnitPrice)

	var piping models.LineItem
	for _, it := range items {
		if it.Description == "Chilled Water Piping" {
			piping = it
		}
	}
	require.NotEmpty(t, piping.ID)
	require.Equal(t, "alt routing", f.bid(t, piping.ID, imported.ID).Notes)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)

	data, err := engine.ExportCSV(f.l.ListLineItems(), f.l.ListVendors())
	require.NoError(t, err)

	out := string(data)
	require.Contains(t, out, "Line Item,CSI Code,Description,Quantity,Unit,Engineer Estimate")
	require.Contains(t, out, "Advanced MEP Solutions - Unit Price")
	require.Contains(t, out, "Premier HVAC Corp - vs. Estimate %")
	require.Contains(t, out, "HVAC System - Main Air Handling Units")
	require.Contains(t, out, "106250")
	// 425000 against a 450000 estimate is 5.6 percent under.
	require.Contains(t, out, "-5.6")
}
