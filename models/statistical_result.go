package models

// NoSignificantDifference is the winner value when no variant can be
// distinguished from the others
const NoSignificantDifference = "no_significant_difference"

// StatisticalResult is the outcome of a two-proportion z-test between two
// variants. Winner names a variant id only when the test is conclusive.
type StatisticalResult struct {
	ControlRate float64 `json:"controlRate"`
	VariantRate float64 `json:"variantRate"`
	Improvement float64 `json:"improvement"`
	ZScore      float64 `json:"zScore"`
	PValue      float64 `json:"pValue"`
	Winner      string  `json:"winner"`
	Confidence  float64 `json:"confidence"`
}
