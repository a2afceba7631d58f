package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bidlevel/internal/engine"
	"bidlevel/models"
)

func TestCalculateBasics(t *testing.T) {
	stats, err := engine.Calculate([]float64{100, 200, 300})
	require.NoError(t, err)

	require.Equal(t, 200.0, stats.Mean)
	require.Equal(t, 200.0, stats.Median)
	require.Equal(t, 100.0, stats.Min)
	require.Equal(t, 300.0, stats.Max)
	require.InDelta(t, 6666.67, stats.Variance, 0.01)
	require.InDelta(t, 81.65, stats.StandardDeviation, 0.01)
}

func TestCalculateEvenMedian(t *testing.T) {
	stats, err := engine.Calculate([]float64{10, 20, 30, 40})
	require.NoError(t, err)
	require.Equal(t, 25.0, stats.Median)
}

func TestCalculateEmptyIsInvalid(t *testing.T) {
	_, err := engine.Calculate(nil)
	require.Error(t, err)
}

func bidsFor(totals map[string]float64) []models.VendorBid {
	var bids []models.VendorBid
	for id, total := range totals {
		bids = append(bids, models.VendorBid{VendorID: id, TotalPrice: total})
	}
	return bids
}

func TestDetectOutliersTightSpread(t *testing.T) {
	// The low-risk leveling fixture: no bid deviates beyond 1.5 sigma.
	values := []float64{425000, 475000, 490000, 425000}
	stats, err := engine.Calculate(values)
	require.NoError(t, err)

	bids := []models.VendorBid{
		{VendorID: "VEN-001", TotalPrice: 425000},
		{VendorID: "VEN-002", TotalPrice: 475000},
		{VendorID: "VEN-003", TotalPrice: 490000},
		{VendorID: "VEN-004", TotalPrice: 425000},
	}
	require.Empty(t, engine.DetectOutliers(bids, stats, 1.5))
}

func TestDetectOutliersFlagsExtremes(t *testing.T) {
	bids := bidsFor(map[string]float64{
		"VEN-001": 100,
		"VEN-002": 100,
		"VEN-003": 100,
		"VEN-004": 100,
		"VEN-005": 1000,
	})
	values := make([]float64, 0, len(bids))
	for _, b := range bids {
		values = append(values, b.TotalPrice)
	}
	stats, err := engine.Calculate(values)
	require.NoError(t, err)

	out := engine.DetectOutliers(bids, stats, 1.5)
	require.Equal(t, []string{"VEN-005"}, out)
}

func TestDetectOutliersThresholdIsStrict(t *testing.T) {
	// Two symmetric values sit exactly at 1.0 sigma from the mean; with a
	// 1.0 threshold neither qualifies.
	bids := []models.VendorBid{
		{VendorID: "a", TotalPrice: 100},
		{VendorID: "b", TotalPrice: 200},
	}
	stats, err := engine.Calculate([]float64{100, 200})
	require.NoError(t, err)
	require.Equal(t, 50.0, stats.StandardDeviation)

	require.Empty(t, engine.DetectOutliers(bids, stats, 1.0))
}

func TestDetectOutliersZeroSpread(t *testing.T) {
	bids := bidsFor(map[string]float64{"a": 100, "b": 100})
	stats, err := engine.Calculate([]float64{100, 100})
	require.NoError(t, err)
	require.Empty(t, engine.DetectOutliers(bids, stats, 1.5))
}

func TestClassifyRisk(t *testing.T) {
	cfg := engine.DefaultConfig()

	low := models.Statistics{Mean: 1000, StandardDeviation: 10}
	require.Equal(t, models.RiskLow, engine.ClassifyRisk(low, nil, cfg))

	midCoV := models.Statistics{Mean: 1000, StandardDeviation: 80}
	require.Equal(t, models.RiskMedium, engine.ClassifyRisk(midCoV, nil, cfg))

	require.Equal(t, models.RiskMedium, engine.ClassifyRisk(low, []string{"VEN-001"}, cfg))

	highCoV := models.Statistics{Mean: 1000, StandardDeviation: 150}
	require.Equal(t, models.RiskHigh, engine.ClassifyRisk(highCoV, nil, cfg))

	require.Equal(t, models.RiskHigh, engine.ClassifyRisk(low, []string{"VEN-001", "VEN-002"}, cfg))
}

func TestClassifyCompliance(t *testing.T) {
	ok := models.Qualifications{Bonding: true, Insurance: true, Experience: true, Licensing: true}
	noInsurance := ok
	noInsurance.Insurance = false

	compliant := []models.VendorBid{{VendorID: "a", Qualifications: ok}}
	require.Equal(t, models.ComplianceCompliant,
		engine.ClassifyCompliance(compliant, nil, models.RiskLow))

	gap := []models.VendorBid{{VendorID: "a", Qualifications: noInsurance}}
	require.Equal(t, models.ComplianceNonCompliant,
		engine.ClassifyCompliance(gap, nil, models.RiskLow))

	// A withdrawn vendor's qualification gap is ignored.
	require.Equal(t, models.ComplianceCompliant,
		engine.ClassifyCompliance(gap, map[string]bool{"a": true}, models.RiskLow))

	require.Equal(t, models.ComplianceRequiresReview,
		engine.ClassifyCompliance(compliant, nil, models.RiskMedium))

	withException := []models.VendorBid{{VendorID: "a", Qualifications: ok, HasException: true}}
	require.Equal(t, models.ComplianceRequiresReview,
		engine.ClassifyCompliance(withException, nil, models.RiskLow))
}
