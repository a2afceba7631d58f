package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bidlevel/models"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Flat scan targets; the engine's nested qualification and performance
// structs are split into columns here.
type vendorRow struct {
	ID                  string  `db:"id"`
	Name                string  `db:"name"`
	TotalBid            float64 `db:"total_bid"`
	TechnicalScore      float64 `db:"technical_score"`
	CommercialScore     float64 `db:"commercial_score"`
	CompositeScore      float64 `db:"composite_score"`
	Rank                int     `db:"rank"`
	Status              string  `db:"status"`
	Bonding             bool    `db:"bonding"`
	Insurance           bool    `db:"insurance"`
	Experience          bool    `db:"experience"`
	Licensing           bool    `db:"licensing"`
	OnTimeDelivery      float64 `db:"on_time_delivery"`
	QualityRating       float64 `db:"quality_rating"`
	BudgetCompliance    float64 `db:"budget_compliance"`
	SafetyRecord        float64 `db:"safety_record"`
	AlternatesSubmitted int     `db:"alternates_submitted"`
	ExceptionsNoted     int     `db:"exceptions_noted"`
	SubmissionDate      string  `db:"submission_date"`
}

type lineItemRow struct {
	ID               string  `db:"id"`
	CSICode          string  `db:"csi_code"`
	Description      string  `db:"description"`
	Quantity         float64 `db:"quantity"`
	Unit             string  `db:"unit"`
	Category         string  `db:"category"`
	EngineerEstimate float64 `db:"engineer_estimate"`
	Locked           bool    `db:"is_locked"`
	Position         int     `db:"position"`
}

type bidRow struct {
	LineItemID   string  `db:"line_item_id"`
	VendorID     string  `db:"vendor_id"`
	VendorName   string  `db:"vendor_name"`
	UnitPrice    float64 `db:"unit_price"`
	TotalPrice   float64 `db:"total_price"`
	Notes        string  `db:"notes"`
	IsAlternate  bool    `db:"is_alternate"`
	HasException bool    `db:"has_exception"`
	Bonding      bool    `db:"bonding"`
	Insurance    bool    `db:"insurance"`
	Experience   bool    `db:"experience"`
	Licensing    bool    `db:"licensing"`
}

// SaveSnapshot replaces the stored leveling sheet with the given snapshot in
// one transaction. Only current values are stored: a saved snapshot is the
// new baseline, so originals equal current on the next load. Safe to retry.
func (s *Storage) SaveSnapshot(ctx context.Context, items []models.LineItem, vendors []models.Vendor) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM vendor_bids`,
		`DELETE FROM line_items`,
		`DELETE FROM vendors`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, v := range vendors {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO vendors
                (id, name, total_bid, technical_score, commercial_score, composite_score,
                 rank, status, bonding, insurance, experience, licensing,
                 on_time_delivery, quality_rating, budget_compliance, safety_record,
                 alternates_submitted, exceptions_noted, submission_date)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			v.ID, v.Name, v.TotalBid, v.TechnicalScore, v.CommercialScore, v.CompositeScore,
			v.Rank, string(v.Status),
			v.Qualifications.Bonding, v.Qualifications.Insurance, v.Qualifications.Experience, v.Qualifications.Licensing,
			v.PastPerformance.OnTimeDelivery, v.PastPerformance.QualityRating,
			v.PastPerformance.BudgetCompliance, v.PastPerformance.SafetyRecord,
			v.AlternatesSubmitted, v.ExceptionsNoted, v.SubmissionDate)
		if err != nil {
			return fmt.Errorf("insert vendor %s: %w", v.ID, err)
		}
	}

	for pos, item := range items {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO line_items
                (id, csi_code, description, quantity, unit, category, engineer_estimate, is_locked, position)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			item.ID, item.CSICode, item.Description, item.Quantity, item.Unit,
			item.Category, item.EngineerEstimate, item.Locked, pos)
		if err != nil {
			return fmt.Errorf("insert line item %s: %w", item.ID, err)
		}
		for _, b := range item.VendorBids {
			_, err := tx.ExecContext(ctx, `
                INSERT INTO vendor_bids
                    (line_item_id, vendor_id, vendor_name, unit_price, total_price, notes,
                     is_alternate, has_exception, bonding, insurance, experience, licensing)
                VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
				item.ID, b.VendorID, b.VendorName, b.UnitPrice, b.TotalPrice, b.Notes,
				b.IsAlternate, b.HasException,
				b.Qualifications.Bonding, b.Qualifications.Insurance,
				b.Qualifications.Experience, b.Qualifications.Licensing)
			if err != nil {
				return fmt.Errorf("insert bid %s/%s: %w", item.ID, b.VendorID, err)
			}
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the stored leveling sheet. Original-value fields come
// back equal to current values: the store holds the last saved baseline.
func (s *Storage) LoadSnapshot(ctx context.Context) ([]models.LineItem, []models.Vendor, error) {
	var vrows []vendorRow
	err := s.db.SelectContext(ctx, &vrows, `
        SELECT id, name, total_bid, technical_score, commercial_score, composite_score,
               rank, status, bonding, insurance, experience, licensing,
               on_time_delivery, quality_rating, budget_compliance, safety_record,
               alternates_submitted, exceptions_noted, submission_date
        FROM vendors ORDER BY rank ASC`)
	if err != nil {
		return nil, nil, err
	}
	vendors := make([]models.Vendor, len(vrows))
	for i, r := range vrows {
		vendors[i] = models.Vendor{
			ID:               r.ID,
			Name:             r.Name,
			TotalBid:         r.TotalBid,
			OriginalTotalBid: r.TotalBid,
			TechnicalScore:   r.TechnicalScore,
			CommercialScore:  r.CommercialScore,
			CompositeScore:   r.CompositeScore,
			Rank:             r.Rank,
			OriginalRank:     r.Rank,
			Status:           models.VendorStatus(r.Status),
			Qualifications: models.Qualifications{
				Bonding: r.Bonding, Insurance: r.Insurance,
				Experience: r.Experience, Licensing: r.Licensing,
			},
			PastPerformance: models.PastPerformance{
				OnTimeDelivery: r.OnTimeDelivery, QualityRating: r.QualityRating,
				BudgetCompliance: r.BudgetCompliance, SafetyRecord: r.SafetyRecord,
			},
			AlternatesSubmitted: r.AlternatesSubmitted,
			ExceptionsNoted:     r.ExceptionsNoted,
			SubmissionDate:      r.SubmissionDate,
		}
	}

	var irows []lineItemRow
	err = s.db.SelectContext(ctx, &irows, `
        SELECT id, csi_code, description, quantity, unit, category, engineer_estimate, is_locked, position
        FROM line_items ORDER BY position ASC`)
	if err != nil {
		return nil, nil, err
	}

	var brows []bidRow
	err = s.db.SelectContext(ctx, &brows, `
        SELECT line_item_id, vendor_id, vendor_name, unit_price, total_price, notes,
               is_alternate, has_exception, bonding, insurance, experience, licensing
        FROM vendor_bids`)
	if err != nil {
		return nil, nil, err
	}
	bidsByItem := make(map[string][]models.VendorBid)
	for _, r := range brows {
		bidsByItem[r.LineItemID] = append(bidsByItem[r.LineItemID], models.VendorBid{
			VendorID:           r.VendorID,
			VendorName:         r.VendorName,
			UnitPrice:          r.UnitPrice,
			TotalPrice:         r.TotalPrice,
			Notes:              r.Notes,
			IsAlternate:        r.IsAlternate,
			HasException:       r.HasException,
			OriginalUnitPrice:  r.UnitPrice,
			OriginalTotalPrice: r.TotalPrice,
			Qualifications: models.Qualifications{
				Bonding: r.Bonding, Insurance: r.Insurance,
				Experience: r.Experience, Licensing: r.Licensing,
			},
		})
	}

	items := make([]models.LineItem, len(irows))
	for i, r := range irows {
		items[i] = models.LineItem{
			ID:               r.ID,
			CSICode:          r.CSICode,
			Description:      r.Description,
			Quantity:         r.Quantity,
			Unit:             r.Unit,
			Category:         r.Category,
			EngineerEstimate: r.EngineerEstimate,
			Locked:           r.Locked,
			VendorBids:       bidsByItem[r.ID],
		}
	}
	return items, vendors, nil
}
