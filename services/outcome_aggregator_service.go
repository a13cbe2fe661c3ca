package services

import (
	"fmt"

	"gitlab.com/aoterocom/AOExperiments/models"
)

// OutcomeAggregatorService is the sole mutator of Experiment.Results.
// Calls for the same experiment must be serialized by the owning
// ExperimentService.
type OutcomeAggregatorService struct {
}

func NewOutcomeAggregatorService() *OutcomeAggregatorService {
	return &OutcomeAggregatorService{}
}

// Record counts one impression against the participant's variant, plus one
// conversion when the interaction is a conversion. Named metrics are folded
// into running total/count/average accumulators; metric names the experiment
// doesn't track are ignored. Identical interactions accumulate every time:
// deduplication is the caller's responsibility.
func (oas *OutcomeAggregatorService) Record(experiment *models.Experiment, participantID string, interaction models.Interaction) error {
	assignment, ok := experiment.Participants[participantID]
	if !ok {
		return fmt.Errorf("%w: participant %s on experiment %s", ErrUnassignedParticipant, participantID, experiment.ID)
	}

	result := experiment.ResultFor(assignment.Variant)
	result.Impressions++
	if interaction.Type == models.InteractionTypeConversion {
		result.Conversions++
	}

	for name, value := range interaction.Metrics {
		if !experiment.TracksMetric(name) {
			continue
		}
		if result.Metrics == nil {
			result.Metrics = map[string]*models.MetricAccumulator{}
		}
		accumulator, ok := result.Metrics[name]
		if !ok {
			accumulator = &models.MetricAccumulator{}
			result.Metrics[name] = accumulator
		}
		accumulator.Total += value
		accumulator.Count++
		accumulator.Average = accumulator.Total / float64(accumulator.Count)
	}

	return nil
}
