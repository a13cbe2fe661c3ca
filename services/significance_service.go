package services

import (
	"math"

	"gitlab.com/aoterocom/AOExperiments/helpers"
	"gitlab.com/aoterocom/AOExperiments/models"
)

// winnerAlpha is the two-tailed p-value below which a winner is named
const winnerAlpha = 0.05

// SignificanceService computes two-proportion z-tests over variant
// counters. It is pure: it never mutates its inputs, and swapping the two
// variants leaves |z| and the p-value unchanged.
type SignificanceService struct {
}

func NewSignificanceService() *SignificanceService {
	return &SignificanceService{}
}

// Evaluate compares the conversion rates of two variants. It returns nil
// while either variant is below the minimum sample size: no statistical
// computation happens on underpowered data. A zero standard error (both
// rates identical or degenerate) yields pValue 1 and no winner instead of
// NaN propagating into reports.
func (ss *SignificanceService) Evaluate(variantA string, variantB string, a models.VariantResult, b models.VariantResult, minSampleSize int64) *models.StatisticalResult {
	if a.Impressions < minSampleSize || b.Impressions < minSampleSize {
		return nil
	}

	rateA := float64(a.Conversions) / float64(a.Impressions)
	rateB := float64(b.Conversions) / float64(b.Impressions)

	result := &models.StatisticalResult{
		ControlRate: rateA,
		VariantRate: rateB,
	}
	if rateA > 0 {
		result.Improvement = (rateB - rateA) / rateA * 100.0
	}

	pooled := float64(a.Conversions+b.Conversions) / float64(a.Impressions+b.Impressions)
	standardError := math.Sqrt(pooled * (1.0 - pooled) *
		(1.0/float64(a.Impressions) + 1.0/float64(b.Impressions)))

	if standardError == 0 {
		result.PValue = 1.0
		result.Winner = models.NoSignificantDifference
		return result
	}

	z := math.Abs(rateA-rateB) / standardError
	pValue := 2.0 * (1.0 - helpers.NormalCDF(z))

	result.ZScore = z
	result.PValue = pValue
	result.Confidence = math.Round((1.0 - pValue) * 100.0)

	switch {
	case pValue >= winnerAlpha:
		result.Winner = models.NoSignificantDifference
	case rateB > rateA:
		result.Winner = variantB
	default:
		result.Winner = variantA
	}

	return result
}
