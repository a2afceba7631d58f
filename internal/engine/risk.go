package engine

import "bidlevel/models"

// ClassifyRisk derives a line item's risk level from its bid statistics and
// outlier set. Thresholds come from Config, not literals; the defaults are
// in DefaultConfig.
func ClassifyRisk(stats models.Statistics, outliers []string, cfg Config) models.RiskLevel {
	var cov float64
	if stats.Mean > 0 {
		cov = stats.StandardDeviation / stats.Mean
	}
	switch {
	case len(outliers) >= cfg.RiskHighOutliers || cov > cfg.RiskHighCoV:
		return models.RiskHigh
	case len(outliers) > 0 || cov > cfg.RiskMediumCoV:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// ClassifyCompliance derives a line item's compliance status. A bid from a
// withdrawn vendor is ignored for the required-qualification check.
func ClassifyCompliance(bids []models.VendorBid, withdrawn map[string]bool, risk models.RiskLevel) models.ComplianceStatus {
	hasException := false
	for _, b := range bids {
		if b.HasException {
			hasException = true
		}
		if withdrawn[b.VendorID] {
			continue
		}
		q := b.Qualifications
		if !q.Bonding || !q.Insurance || !q.Licensing {
			return models.ComplianceNonCompliant
		}
	}
	if risk != models.RiskLow || hasException {
		return models.ComplianceRequiresReview
	}
	return models.ComplianceCompliant
}
