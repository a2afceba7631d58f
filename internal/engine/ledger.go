package engine

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"

	"bidlevel/models"
)

// Config carries the tunable thresholds of the engine. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// OutlierStdDevs is the multiple of the standard deviation a bid must
	// exceed (strictly) to count as an outlier.
	OutlierStdDevs float64
	// RiskHighOutliers is the outlier count at which a line item is high risk.
	RiskHighOutliers int
	// RiskHighCoV and RiskMediumCoV are coefficient-of-variation cutoffs.
	RiskHighCoV   float64
	RiskMediumCoV float64
	// RankPriceWeight scales price competitiveness against the composite
	// score in the ranking key.
	RankPriceWeight float64
	// JournalLimit caps retained change entries. 0 means unbounded.
	JournalLimit int
}

func DefaultConfig() Config {
	return Config{
		OutlierStdDevs:   1.5,
		RiskHighOutliers: 2,
		RiskHighCoV:      0.12,
		RiskMediumCoV:    0.05,
		RankPriceWeight:  1_000_000,
		JournalLimit:     500,
	}
}

// Persister is the injected save collaborator: accept the current snapshot,
// return nil on success, a retryable error on failure.
type Persister interface {
	SaveSnapshot(ctx context.Context, items []models.LineItem, vendors []models.Vendor) error
}

// Notifier receives the human-readable event strings a host UI surfaces as
// toasts. May be nil.
type Notifier func(msg string)

// Ledger owns the authoritative leveling state: line items, vendor bids and
// vendors. It is the only component that mutates bid values, and every
// committed mutation synchronously recomputes statistics, risk, compliance,
// vendor totals and ranks before returning. The mutex makes each public
// operation atomic with respect to concurrent readers; the engine still
// assumes a single editor session.
type Ledger struct {
	mu        sync.Mutex
	cfg       Config
	items     []*models.LineItem
	vendors   []*models.Vendor
	journal   *journal
	persister Persister
	notify    Notifier
	autoCalc  bool
}

func NewLedger(cfg Config, persister Persister, notify Notifier) *Ledger {
	return &Ledger{
		cfg:       cfg,
		journal:   newJournal(cfg.JournalLimit),
		persister: persister,
		notify:    notify,
		autoCalc:  true,
	}
}

// Seed replaces the ledger state with a loaded snapshot and recomputes all
// derived fields. The snapshot's original-value fields are kept as the undo
// baseline.
func (l *Ledger) Seed(items []models.LineItem, vendors []models.Vendor) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make([]*models.LineItem, len(items))
	for i := range items {
		it := copyItem(&items[i])
		l.items[i] = &it
	}
	l.vendors = make([]*models.Vendor, len(vendors))
	for i := range vendors {
		v := vendors[i]
		l.vendors[i] = &v
	}
	for _, it := range l.items {
		l.recomputeItem(it)
	}
	l.rerank()
	l.journal.clear()
}

func (l *Ledger) SetAutoCalculate(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.autoCalc = on
}

func (l *Ledger) AutoCalculate() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.autoCalc
}

func (l *Ledger) findItem(id string) *models.LineItem {
	for _, it := range l.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (l *Ledger) findVendor(id string) *models.Vendor {
	for _, v := range l.vendors {
		if v.ID == id {
			return v
		}
	}
	return nil
}

func findBid(item *models.LineItem, vendorID string) *models.VendorBid {
	for i := range item.VendorBids {
		if item.VendorBids[i].VendorID == vendorID {
			return &item.VendorBids[i]
		}
	}
	return nil
}

// setPrice writes one priced field and, in auto-calculate mode, derives the
// paired field from the item quantity. Returns the field's prior value.
func (l *Ledger) setPrice(item *models.LineItem, bid *models.VendorBid, field models.BidField, value float64) float64 {
	var prev float64
	switch field {
	case models.FieldUnitPrice:
		prev = bid.UnitPrice
		bid.UnitPrice = value
		if l.autoCalc {
			bid.TotalPrice = value * item.Quantity
		}
	case models.FieldTotalPrice:
		prev = bid.TotalPrice
		bid.TotalPrice = value
		if l.autoCalc {
			if item.Quantity > 0 {
				bid.UnitPrice = value / item.Quantity
			} else {
				bid.UnitPrice = 0
			}
		}
	}
	bid.IsEdited = true
	item.Dirty = true
	return prev
}

// recomputeItem refreshes one line item's derived fields from its current
// bid values.
func (l *Ledger) recomputeItem(item *models.LineItem) {
	if len(item.VendorBids) == 0 {
		item.Statistics = models.Statistics{}
		item.Outliers = nil
		item.RiskLevel = models.RiskLow
		item.ComplianceStatus = models.ComplianceCompliant
		return
	}
	totals := make([]float64, len(item.VendorBids))
	for i := range item.VendorBids {
		totals[i] = item.VendorBids[i].TotalPrice
	}
	stats, err := Calculate(totals)
	if err != nil {
		return
	}
	item.Statistics = stats
	item.Outliers = DetectOutliers(item.VendorBids, stats, l.cfg.OutlierStdDevs)
	item.RiskLevel = ClassifyRisk(stats, item.Outliers, l.cfg)
	item.ComplianceStatus = ClassifyCompliance(item.VendorBids, l.withdrawn(), item.RiskLevel)
}

func (l *Ledger) withdrawn() map[string]bool {
	m := make(map[string]bool)
	for _, v := range l.vendors {
		if v.Status == models.VendorDisqualified {
			m[v.ID] = true
		}
	}
	return m
}

// EditCell applies a single priced-cell edit. A locked line item makes the
// edit a silent no-op (applied=false) so bulk edits over mixed selections
// can proceed. A missing bid stub is fatal.
func (l *Ledger) EditCell(lineItemID, vendorID string, field models.BidField, value float64) (prev float64, applied bool, err error) {
	if field != models.FieldUnitPrice && field != models.FieldTotalPrice {
		return 0, false, validationf("field %q is not a priced field", field)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.findItem(lineItemID)
	if item == nil {
		return 0, false, &NotFoundError{Kind: "line item", ID: lineItemID}
	}
	bid := findBid(item, vendorID)
	if bid == nil {
		return 0, false, &InconsistentStateError{LineItemID: lineItemID, VendorID: vendorID}
	}
	if item.Locked {
		if field == models.FieldUnitPrice {
			return bid.UnitPrice, false, nil
		}
		return bid.TotalPrice, false, nil
	}

	prev = l.setPrice(item, bid, field, value)
	l.journal.record(models.ChangeEntry{
		Timestamp:  time.Now(),
		Action:     models.ActionBidValueChange,
		LineItemID: lineItemID,
		VendorID:   vendorID,
		Field:      field,
		PrevNumber: prev,
		NewNumber:  value,
	})
	l.recomputeItem(item)
	l.rerank()
	return prev, true, nil
}

// EditNotes applies a notes edit under the same lock and symmetry rules as
// priced edits.
func (l *Ledger) EditNotes(lineItemID, vendorID, notes string) (prev string, applied bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.findItem(lineItemID)
	if item == nil {
		return "", false, &NotFoundError{Kind: "line item", ID: lineItemID}
	}
	bid := findBid(item, vendorID)
	if bid == nil {
		return "", false, &InconsistentStateError{LineItemID: lineItemID, VendorID: vendorID}
	}
	if item.Locked {
		return bid.Notes, false, nil
	}

	prev = bid.Notes
	bid.Notes = notes
	bid.IsEdited = true
	item.Dirty = true
	l.journal.record(models.ChangeEntry{
		Timestamp:  time.Now(),
		Action:     models.ActionBidValueChange,
		LineItemID: lineItemID,
		VendorID:   vendorID,
		Field:      models.FieldNotes,
		PrevText:   prev,
		NewText:    notes,
	})
	return prev, true, nil
}

// ToggleLock flips a line item's lock. Already-applied edits are unaffected.
func (l *Ledger) ToggleLock(lineItemID string) (locked bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.findItem(lineItemID)
	if item == nil {
		return false, &NotFoundError{Kind: "line item", ID: lineItemID}
	}
	item.Locked = !item.Locked
	return item.Locked, nil
}

// LineItemSpec describes a new line item.
type LineItemSpec struct {
	CSICode          string  `json:"csiCode"`
	Description      string  `json:"description"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	Category         string  `json:"category"`
	EngineerEstimate float64 `json:"engineerEstimate"`
}

// AddLineItem creates a line item with a zeroed bid stub for every active
// vendor, preserving the vendor/line-item symmetry invariant.
func (l *Ledger) AddLineItem(spec LineItemSpec) (models.LineItem, error) {
	if spec.Description == "" {
		return models.LineItem{}, validationf("description is required")
	}
	if spec.Quantity <= 0 {
		return models.LineItem{}, validationf("quantity must be positive")
	}
	if spec.Unit == "" {
		spec.Unit = "EA"
	}
	if spec.Category == "" {
		spec.Category = "General"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := &models.LineItem{
		ID:               newID("LI"),
		CSICode:          spec.CSICode,
		Description:      spec.Description,
		Quantity:         spec.Quantity,
		Unit:             spec.Unit,
		Category:         spec.Category,
		EngineerEstimate: spec.EngineerEstimate,
		Dirty:            true,
	}
	for _, v := range l.vendors {
		item.VendorBids = append(item.VendorBids, models.VendorBid{
			VendorID:       v.ID,
			VendorName:     v.Name,
			Qualifications: v.Qualifications,
		})
	}
	l.items = append(l.items, item)
	l.recomputeItem(item)
	l.rerank()
	return copyItem(item), nil
}

// DuplicateLineItem clones an item including its bids under a fresh id. The
// clone starts unedited.
func (l *Ledger) DuplicateLineItem(lineItemID string) (models.LineItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	src := l.findItem(lineItemID)
	if src == nil {
		return models.LineItem{}, &NotFoundError{Kind: "line item", ID: lineItemID}
	}
	clone := copyItem(src)
	clone.ID = newID("LI")
	clone.Description = src.Description + " (Copy)"
	clone.Dirty = true
	for i := range clone.VendorBids {
		clone.VendorBids[i].IsEdited = false
	}
	l.items = append(l.items, &clone)
	l.recomputeItem(&clone)
	l.rerank()
	return copyItem(&clone), nil
}

func (l *Ledger) RemoveLineItem(lineItemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.ID == lineItemID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.rerank()
			return nil
		}
	}
	return &NotFoundError{Kind: "line item", ID: lineItemID}
}

// VendorSpec describes a new vendor. Zero scores fall back to the standard
// new-bidder defaults.
type VendorSpec struct {
	Name            string                  `json:"name"`
	TechnicalScore  float64                 `json:"technicalScore"`
	CommercialScore float64                 `json:"commercialScore"`
	CompositeScore  float64                 `json:"compositeScore"`
	Status          models.VendorStatus     `json:"status"`
	Qualifications  *models.Qualifications  `json:"qualifications"`
	PastPerformance *models.PastPerformance `json:"pastPerformance"`
	SubmissionDate  string                  `json:"submissionDate"`
}

// AddVendor registers a vendor and inserts a zeroed bid stub into every
// existing line item.
func (l *Ledger) AddVendor(spec VendorSpec) (models.Vendor, error) {
	if spec.Name == "" {
		return models.Vendor{}, validationf("vendor name is required")
	}
	if spec.TechnicalScore == 0 {
		spec.TechnicalScore = 85
	}
	if spec.CommercialScore == 0 {
		spec.CommercialScore = 85
	}
	if spec.CompositeScore == 0 {
		spec.CompositeScore = (spec.TechnicalScore + spec.CommercialScore) / 2
	}
	if spec.Status == "" {
		spec.Status = models.VendorQualified
	}
	quals := models.Qualifications{Bonding: true, Insurance: true, Experience: true, Licensing: true}
	if spec.Qualifications != nil {
		quals = *spec.Qualifications
	}
	if spec.SubmissionDate == "" {
		spec.SubmissionDate = time.Now().Format("2006-01-02")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	v := &models.Vendor{
		ID:                newID("VEN"),
		Name:              spec.Name,
		TechnicalScore:    spec.TechnicalScore,
		CommercialScore:   spec.CommercialScore,
		CompositeScore:    spec.CompositeScore,
		Rank:              len(l.vendors) + 1,
		OriginalRank:      len(l.vendors) + 1,
		Status:            spec.Status,
		HasUnsavedChanges: true,
		Qualifications:    quals,
		SubmissionDate:    spec.SubmissionDate,
	}
	if spec.PastPerformance != nil {
		v.PastPerformance = *spec.PastPerformance
	}
	l.vendors = append(l.vendors, v)
	for _, it := range l.items {
		it.VendorBids = append(it.VendorBids, models.VendorBid{
			VendorID:       v.ID,
			VendorName:     v.Name,
			Qualifications: quals,
		})
		it.Dirty = true
		l.recomputeItem(it)
	}
	l.rerank()
	return *v, nil
}

// RemoveVendor deletes a vendor and strips its bids from every line item.
func (l *Ledger) RemoveVendor(vendorID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := -1
	for i, v := range l.vendors {
		if v.ID == vendorID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: "vendor", ID: vendorID}
	}
	l.vendors = append(l.vendors[:idx], l.vendors[idx+1:]...)
	for _, it := range l.items {
		for i := range it.VendorBids {
			if it.VendorBids[i].VendorID == vendorID {
				it.VendorBids = append(it.VendorBids[:i], it.VendorBids[i+1:]...)
				it.Dirty = true
				break
			}
		}
		l.recomputeItem(it)
	}
	l.rerank()
	return nil
}

// Save hands the current snapshot to the persistence collaborator and, on
// success, makes it the new baseline: originals are rewritten, edit flags
// cleared, and the journal emptied. On failure the dirty state is left
// untouched so the caller can retry.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.persister != nil {
		items, vendors := l.snapshot()
		if err := l.persister.SaveSnapshot(ctx, items, vendors); err != nil {
			return &PersistenceError{Err: err}
		}
	}

	for _, it := range l.items {
		it.Dirty = false
		for i := range it.VendorBids {
			b := &it.VendorBids[i]
			b.IsEdited = false
			b.OriginalUnitPrice = b.UnitPrice
			b.OriginalTotalPrice = b.TotalPrice
		}
	}
	for _, v := range l.vendors {
		v.OriginalTotalBid = v.TotalBid
		v.OriginalRank = v.Rank
		v.HasUnsavedChanges = false
	}
	l.journal.clear()
	l.emit("All bid leveling changes have been saved")
	return nil
}

// ResetAll restores every bid to its last-saved values, clears all edit
// flags and empties the journal.
func (l *Ledger) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		it.Dirty = false
		for i := range it.VendorBids {
			b := &it.VendorBids[i]
			b.UnitPrice = b.OriginalUnitPrice
			b.TotalPrice = b.OriginalTotalPrice
			b.IsEdited = false
		}
		l.recomputeItem(it)
	}
	l.rerank()
	for _, v := range l.vendors {
		v.HasUnsavedChanges = false
	}
	l.journal.clear()
	l.emit("All changes have been reset to original values")
}

// UndoLast pops the most recent journal entry and re-applies its previous
// value. The undo itself is not journaled, and it applies even if the target
// line item has been locked since the edit.
func (l *Ledger) UndoLast() (models.ChangeEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.journal.pop()
	if !ok {
		return models.ChangeEntry{}, ErrNothingToUndo
	}
	item := l.findItem(entry.LineItemID)
	if item == nil {
		return entry, &NotFoundError{Kind: "line item", ID: entry.LineItemID}
	}
	bid := findBid(item, entry.VendorID)
	if bid == nil {
		return entry, &InconsistentStateError{LineItemID: entry.LineItemID, VendorID: entry.VendorID}
	}

	if entry.Field == models.FieldNotes {
		bid.Notes = entry.PrevText
	} else {
		l.setPrice(item, bid, entry.Field, entry.PrevNumber)
		l.recomputeItem(item)
		l.rerank()
	}
	l.emit("Last change has been undone")
	return entry, nil
}

// History returns a restartable sequence of the n most recent journal
// entries, most recent first. n <= 0 means all retained entries.
func (l *Ledger) History(n int) iter.Seq[models.ChangeEntry] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return historySeq(l.journal.recent(n))
}

// HistoryLen reports how many entries remain undoable.
func (l *Ledger) HistoryLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.journal.len()
}

// ListLineItems returns a deep-copied snapshot for read-only consumers.
func (l *Ledger) ListLineItems() []models.LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	items, _ := l.snapshot()
	return items
}

// ListVendors returns a copied snapshot in rank order.
func (l *Ledger) ListVendors() []models.Vendor {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, vendors := l.snapshot()
	return vendors
}

func (l *Ledger) snapshot() ([]models.LineItem, []models.Vendor) {
	items := make([]models.LineItem, len(l.items))
	for i, it := range l.items {
		items[i] = copyItem(it)
	}
	vendors := make([]models.Vendor, len(l.vendors))
	for i, v := range l.vendors {
		vendors[i] = *v
	}
	return items, vendors
}

func (l *Ledger) emit(msg string) {
	if l.notify != nil {
		l.notify(msg)
	}
}

func copyItem(src *models.LineItem) models.LineItem {
	out := *src
	out.VendorBids = make([]models.VendorBid, len(src.VendorBids))
	copy(out.VendorBids, src.VendorBids)
	if src.Outliers != nil {
		out.Outliers = make([]string, len(src.Outliers))
		copy(out.Outliers, src.Outliers)
	}
	return out
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
