package models

import "time"

// Editable fields on a vendor bid.
type BidField string

const (
	FieldUnitPrice  BidField = "unitPrice"
	FieldTotalPrice BidField = "totalPrice"
	FieldNotes      BidField = "notes"
)

// Bulk edit operations.
type BulkOperation string

const (
	OpReplace  BulkOperation = "replace"
	OpMultiply BulkOperation = "multiply"
	OpAdd      BulkOperation = "add"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type ComplianceStatus string

const (
	ComplianceCompliant      ComplianceStatus = "compliant"
	ComplianceRequiresReview ComplianceStatus = "requires-review"
	ComplianceNonCompliant   ComplianceStatus = "non-compliant"
)

type VendorStatus string

const (
	VendorQualified    VendorStatus = "qualified"
	VendorDisqualified VendorStatus = "disqualified"
	VendorUnderReview  VendorStatus = "under-review"
)

// Qualification flags carried by vendors and copied onto their bid stubs.
// Bonding, insurance and licensing are required for a line item to count as
// compliant; experience is informational.
type Qualifications struct {
	Bonding    bool `db:"bonding" json:"bonding"`
	Insurance  bool `db:"insurance" json:"insurance"`
	Experience bool `db:"experience" json:"experience"`
	Licensing  bool `db:"licensing" json:"licensing"`
}

type PastPerformance struct {
	OnTimeDelivery   float64 `db:"on_time_delivery" json:"onTimeDelivery"`
	QualityRating    float64 `db:"quality_rating" json:"qualityRating"`
	BudgetCompliance float64 `db:"budget_compliance" json:"budgetCompliance"`
	SafetyRecord     float64 `db:"safety_record" json:"safetyRecord"`
}

// Population statistics over one line item's vendor bid totals.
type Statistics struct {
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	StandardDeviation float64 `json:"standardDeviation"`
	Variance          float64 `json:"variance"`
}

// VendorBid is one vendor's price for one line item.
type VendorBid struct {
	VendorID           string         `db:"vendor_id" json:"vendorId"`
	VendorName         string         `db:"vendor_name" json:"vendorName"`
	UnitPrice          float64        `db:"unit_price" json:"unitPrice"`
	TotalPrice         float64        `db:"total_price" json:"totalPrice"`
	Notes              string         `db:"notes" json:"notes"`
	IsAlternate        bool           `db:"is_alternate" json:"isAlternate"`
	HasException       bool           `db:"has_exception" json:"hasException"`
	IsEdited           bool           `db:"is_edited" json:"isEdited"`
	OriginalUnitPrice  float64        `db:"original_unit_price" json:"originalUnitPrice"`
	OriginalTotalPrice float64        `db:"original_total_price" json:"originalTotalPrice"`
	Qualifications     Qualifications `json:"qualifications"`
}

// LineItem is one scope-of-work item being bid by all active vendors.
// Statistics, Outliers, RiskLevel and ComplianceStatus are derived and kept
// consistent with the bid values after every mutation.
type LineItem struct {
	ID               string           `db:"id" json:"id"`
	CSICode          string           `db:"csi_code" json:"csiCode"`
	Description      string           `db:"description" json:"description"`
	Quantity         float64          `db:"quantity" json:"quantity"`
	Unit             string           `db:"unit" json:"unit"`
	Category         string           `db:"category" json:"category"`
	EngineerEstimate float64          `db:"engineer_estimate" json:"engineerEstimate"`
	Locked           bool             `db:"is_locked" json:"isLocked"`
	Dirty            bool             `db:"is_dirty" json:"hasUnsavedChanges"`
	VendorBids       []VendorBid      `json:"vendorBids"`
	Statistics       Statistics       `json:"statistics"`
	Outliers         []string         `json:"outliers"`
	RiskLevel        RiskLevel        `json:"riskLevel"`
	ComplianceStatus ComplianceStatus `json:"complianceStatus"`
}

// Vendor is a bidding entity aggregated across all line items.
type Vendor struct {
	ID                  string          `db:"id" json:"id"`
	Name                string          `db:"name" json:"name"`
	TotalBid            float64         `db:"total_bid" json:"totalBid"`
	OriginalTotalBid    float64         `db:"original_total_bid" json:"originalTotalBid"`
	TechnicalScore      float64         `db:"technical_score" json:"technicalScore"`
	CommercialScore     float64         `db:"commercial_score" json:"commercialScore"`
	CompositeScore      float64         `db:"composite_score" json:"compositeScore"`
	Rank                int             `db:"rank" json:"rank"`
	OriginalRank        int             `db:"original_rank" json:"originalRank"`
	Status              VendorStatus    `db:"status" json:"status"`
	HasUnsavedChanges   bool            `db:"has_unsaved_changes" json:"hasUnsavedChanges"`
	Qualifications      Qualifications  `json:"qualifications"`
	PastPerformance     PastPerformance `json:"pastPerformance"`
	AlternatesSubmitted int             `db:"alternates_submitted" json:"alternatesSubmitted"`
	ExceptionsNoted     int             `db:"exceptions_noted" json:"exceptionsNoted"`
	SubmissionDate      string          `db:"submission_date" json:"submissionDate"`
}

// ChangeEntry is one journaled bid mutation. For priced fields the previous
// and new values are numeric; for notes they are text. Field discriminates.
type ChangeEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	LineItemID string    `json:"lineItemId"`
	VendorID   string    `json:"vendorId"`
	Field      BidField  `json:"field"`
	PrevNumber float64   `json:"prevNumber,omitempty"`
	NewNumber  float64   `json:"newNumber,omitempty"`
	PrevText   string    `json:"prevText,omitempty"`
	NewText    string    `json:"newText,omitempty"`
}

// ActionBidValueChange is the only journaled action kind.
const ActionBidValueChange = "bid_value_change"

// ImportedBid is one already-parsed vendor submission handed to the engine
// by the upload collaborator. The engine never parses documents itself.
type ImportedBid struct {
	VendorName string             `json:"vendorName"`
	TotalBid   float64            `json:"totalBid"`
	LineItems  []ImportedLineItem `json:"lineItems"`
	Compliance Qualifications     `json:"compliance"`
	Alternates int                `json:"alternates"`
}

type ImportedLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
	Notes       string  `json:"notes"`
}
