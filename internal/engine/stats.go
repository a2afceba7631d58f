package engine

import (
	"errors"
	"math"
	"sort"

	"bidlevel/models"
)

var errNoBids = errors.New("statistics require at least one bid")

// Calculate computes population statistics over a line item's bid totals.
// Variance and standard deviation divide by N, matching how vendor totals
// are compared in leveling sheets.
func Calculate(values []float64) (models.Statistics, error) {
	n := len(values)
	if n == 0 {
		return models.Statistics{}, errNoBids
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return models.Statistics{
		Mean:              mean,
		Median:            median,
		Min:               sorted[0],
		Max:               sorted[n-1],
		StandardDeviation: math.Sqrt(variance),
		Variance:          variance,
	}, nil
}

// DetectOutliers returns the vendor ids whose bid total deviates from the
// mean by strictly more than threshold standard deviations. A bid sitting
// exactly at the threshold is not an outlier.
func DetectOutliers(bids []models.VendorBid, stats models.Statistics, threshold float64) []string {
	if stats.StandardDeviation == 0 {
		return nil
	}
	limit := threshold * stats.StandardDeviation
	var out []string
	for _, b := range bids {
		if math.Abs(b.TotalPrice-stats.Mean) > limit {
			out = append(out, b.VendorID)
		}
	}
	return out
}
