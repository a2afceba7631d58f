package engine

import (
	"sort"

	"bidlevel/models"
)

// rankKey is the composite ordering key: quality plus price competitiveness,
// where a lower total bid monotonically raises the key. Vendors with no
// priced bids have no key and sort last.
func rankKey(v *models.Vendor, priceWeight float64) (float64, bool) {
	if v.TotalBid <= 0 {
		return 0, false
	}
	return v.CompositeScore + priceWeight/v.TotalBid, true
}

// rerank recomputes every vendor's total bid from the line items and
// reassigns ranks 1..N. It is idempotent: with no intervening mutation a
// second run changes nothing.
func (l *Ledger) rerank() {
	for _, v := range l.vendors {
		var total float64
		for _, item := range l.items {
			for i := range item.VendorBids {
				if item.VendorBids[i].VendorID == v.ID {
					total += item.VendorBids[i].TotalPrice
					break
				}
			}
		}
		if total != v.TotalBid {
			v.TotalBid = total
			v.HasUnsavedChanges = true
		}
	}

	sort.SliceStable(l.vendors, func(i, j int) bool {
		a, b := l.vendors[i], l.vendors[j]
		ka, aOK := rankKey(a, l.cfg.RankPriceWeight)
		kb, bOK := rankKey(b, l.cfg.RankPriceWeight)
		if aOK != bOK {
			return aOK
		}
		if ka != kb {
			return ka > kb
		}
		if a.TotalBid != b.TotalBid {
			return a.TotalBid < b.TotalBid
		}
		return a.ID < b.ID
	})

	for i, v := range l.vendors {
		rank := i + 1
		v.Rank = rank
		if rank != v.OriginalRank || v.TotalBid != v.OriginalTotalBid {
			v.HasUnsavedChanges = true
		}
	}
}
