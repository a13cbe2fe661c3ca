package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aoterocom/AOExperiments/models"
)

func newAssignedExperiment() *models.Experiment {
	experiment := models.NewEmptyExperiment()
	experiment.ID = "record-test"
	experiment.Variants = map[string]models.Variant{
		"control": {Name: "Control"},
		"variant": {Name: "Variant"},
	}
	experiment.TrafficSplit = map[string]int{"control": 50, "variant": 50}
	experiment.Metrics = []string{"timeOnPage", "scrollDepth"}
	experiment.Participants["user-1"] = models.ParticipantAssignment{Variant: "variant", AssignedAt: time.Now()}
	return experiment
}

func TestRecordRequiresAssignment(t *testing.T) {
	aggregator := NewOutcomeAggregatorService()
	experiment := newAssignedExperiment()

	err := aggregator.Record(experiment, "stranger", models.Interaction{Type: models.InteractionTypeView})
	assert.True(t, errors.Is(err, ErrUnassignedParticipant))
}

func TestRecordImpressionsAndConversions(t *testing.T) {
	aggregator := NewOutcomeAggregatorService()
	experiment := newAssignedExperiment()

	require.NoError(t, aggregator.Record(experiment, "user-1", models.Interaction{Type: models.InteractionTypeView}))
	require.NoError(t, aggregator.Record(experiment, "user-1", models.Interaction{Type: models.InteractionTypeConversion}))

	result := experiment.Results["variant"]
	require.NotNil(t, result)
	assert.Equal(t, int64(2), result.Impressions)
	assert.Equal(t, int64(1), result.Conversions)
}

func TestRecordMetricAccumulators(t *testing.T) {
	aggregator := NewOutcomeAggregatorService()
	experiment := newAssignedExperiment()

	require.NoError(t, aggregator.Record(experiment, "user-1", models.Interaction{
		Type:    models.InteractionTypeView,
		Metrics: map[string]float64{"timeOnPage": 30},
	}))
	require.NoError(t, aggregator.Record(experiment, "user-1", models.Interaction{
		Type:    models.InteractionTypeView,
		Metrics: map[string]float64{"timeOnPage": 60},
	}))

	accumulator := experiment.Results["variant"].Metrics["timeOnPage"]
	require.NotNil(t, accumulator)
	assert.Equal(t, 90.0, accumulator.Total)
	assert.Equal(t, int64(2), accumulator.Count)
	assert.Equal(t, 45.0, accumulator.Average)
}

func TestRecordIgnoresUntrackedMetrics(t *testing.T) {
	aggregator := NewOutcomeAggregatorService()
	experiment := newAssignedExperiment()

	require.NoError(t, aggregator.Record(experiment, "user-1", models.Interaction{
		Type:    models.InteractionTypeView,
		Metrics: map[string]float64{"mouseSpeed": 12.5},
	}))

	_, ok := experiment.Results["variant"].Metrics["mouseSpeed"]
	assert.False(t, ok, "untracked metric names must be ignored, not recorded")
}

func TestRecordDoesNotDeduplicate(t *testing.T) {
	aggregator := NewOutcomeAggregatorService()
	experiment := newAssignedExperiment()

	interaction := models.Interaction{Type: models.InteractionTypeConversion}
	require.NoError(t, aggregator.Record(experiment, "user-1", interaction))
	require.NoError(t, aggregator.Record(experiment, "user-1", interaction))

	// Identical interactions count twice; dedup is the caller's job
	result := experiment.Results["variant"]
	assert.Equal(t, int64(2), result.Impressions)
	assert.Equal(t, int64(2), result.Conversions)
}
