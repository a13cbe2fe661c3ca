package services

import (
	"fmt"
	"time"

	"gitlab.com/aoterocom/AOExperiments/helpers"
	"gitlab.com/aoterocom/AOExperiments/models"
)

// ReportService turns a completed experiment into an advisory report.
// Everything here is threshold-rule text; the statistical contract lives in
// SignificanceService.
type ReportService struct {
}

func NewReportService() *ReportService {
	return &ReportService{}
}

func (rs *ReportService) Generate(experiment *models.Experiment) *models.ExperimentReport {
	endDate := time.Now()
	if experiment.EndDate != nil {
		endDate = *experiment.EndDate
	}

	report := &models.ExperimentReport{
		ExperimentID:      experiment.ID,
		Name:              experiment.Name,
		Duration:          endDate.Sub(experiment.StartDate).Round(time.Second).String(),
		TotalParticipants: len(experiment.Participants),
		TotalImpressions:  experiment.TotalImpressions(),
		GeneratedAt:       time.Now(),
	}

	if experiment.StatisticalResult != nil {
		report.Winner = experiment.StatisticalResult.Winner
		report.Confidence = experiment.StatisticalResult.Confidence
	}

	report.Recommendations = rs.recommendations(experiment)
	report.Insights = rs.insights(experiment)
	report.NextSteps = rs.nextSteps(experiment)

	return report
}

func (rs *ReportService) recommendations(experiment *models.Experiment) []string {
	var recommendations []string
	statisticalResult := experiment.StatisticalResult

	switch {
	case statisticalResult == nil || statisticalResult.Winner == models.NoSignificantDifference:
		recommendations = append(recommendations,
			"No variant outperformed the others. Keep the control content")
		recommendations = append(recommendations,
			"Consider a bolder variant or a longer collection window")
	case statisticalResult.Winner == models.VariantControl:
		recommendations = append(recommendations,
			"The control variant held its ground. Keep the current content")
	default:
		if statisticalResult.Confidence > 95 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Deploy variant '%s' to all traffic", statisticalResult.Winner))
		} else {
			recommendations = append(recommendations, fmt.Sprintf(
				"Variant '%s' leads, but confidence is moderate. Validate with a follow-up run", statisticalResult.Winner))
		}
		if statisticalResult.Improvement > 20 {
			recommendations = append(recommendations, fmt.Sprintf(
				"The winning variant lifted conversion by %.1f%% over control", statisticalResult.Improvement))
		}
	}

	return recommendations
}

func (rs *ReportService) insights(experiment *models.Experiment) []string {
	var insights []string

	if experiment.TotalImpressions() > 1000 {
		insights = append(insights, "Large sample size strengthens the conclusion")
	}

	var rates []float64
	for _, variantID := range experiment.VariantIDs() {
		result, ok := experiment.Results[variantID]
		if !ok || result.Impressions == 0 {
			continue
		}
		rates = append(rates, float64(result.Conversions)/float64(result.Impressions))
	}
	if len(rates) >= 2 {
		mean := helpers.Mean(rates)
		if helpers.StdDev(rates, mean) < 0.01 {
			insights = append(insights, "Conversion rates are nearly identical across variants")
		}
	}

	for _, metric := range experiment.Metrics {
		for _, variantID := range experiment.VariantIDs() {
			result, ok := experiment.Results[variantID]
			if !ok {
				continue
			}
			if accumulator, ok := result.Metrics[metric]; ok && accumulator.Count > 0 {
				insights = append(insights, fmt.Sprintf(
					"Variant '%s' averaged %.2f on metric '%s' over %d samples",
					variantID, accumulator.Average, metric, accumulator.Count))
			}
		}
	}

	return insights
}

func (rs *ReportService) nextSteps(experiment *models.Experiment) []string {
	statisticalResult := experiment.StatisticalResult
	if statisticalResult != nil && statisticalResult.Winner != models.NoSignificantDifference {
		return []string{
			"Roll the winning content out to the live site",
			"Archive this experiment as historical evidence",
			"Draft the next experiment against the new baseline",
		}
	}
	return []string{
		"Review whether the variants differed enough to matter",
		"Re-run with a larger minimum sample size if traffic allows",
	}
}
