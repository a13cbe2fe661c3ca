package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aoterocom/AOExperiments/models"
)

func TestEvaluateWorkedExample(t *testing.T) {
	evaluator := NewSignificanceService()

	control := models.VariantResult{Impressions: 150, Conversions: 30}
	variant := models.VariantResult{Impressions: 150, Conversions: 45}

	result := evaluator.Evaluate("control", "variant", control, variant, 100)
	require.NotNil(t, result)

	assert.InDelta(t, 0.20, result.ControlRate, 1e-9)
	assert.InDelta(t, 0.30, result.VariantRate, 1e-9)
	assert.InDelta(t, 50.0, result.Improvement, 1e-9)
	assert.InDelta(t, 2.00, result.ZScore, 1e-9)
	assert.InDelta(t, 0.0455, result.PValue, 5e-4)
	assert.Equal(t, "variant", result.Winner)
	assert.Equal(t, 95.0, result.Confidence)
}

func TestEvaluateSampleSizeGate(t *testing.T) {
	evaluator := NewSignificanceService()

	// Underpowered data returns no decision even when the rates would
	// otherwise be wildly significant
	small := models.VariantResult{Impressions: 99, Conversions: 0}
	large := models.VariantResult{Impressions: 1000, Conversions: 900}

	assert.Nil(t, evaluator.Evaluate("control", "variant", small, large, 100))
	assert.Nil(t, evaluator.Evaluate("control", "variant", large, small, 100))
	assert.NotNil(t, evaluator.Evaluate("control", "variant", large, large, 100))
}

func TestEvaluateSymmetry(t *testing.T) {
	evaluator := NewSignificanceService()

	a := models.VariantResult{Impressions: 400, Conversions: 60}
	b := models.VariantResult{Impressions: 380, Conversions: 95}

	forward := evaluator.Evaluate("control", "variant", a, b, 100)
	backward := evaluator.Evaluate("variant", "control", b, a, 100)
	require.NotNil(t, forward)
	require.NotNil(t, backward)

	assert.InDelta(t, forward.ZScore, backward.ZScore, 1e-12)
	assert.InDelta(t, forward.PValue, backward.PValue, 1e-12)
	// The winner is the higher-rate variant regardless of argument order
	assert.Equal(t, "variant", forward.Winner)
	assert.Equal(t, "variant", backward.Winner)
}

func TestEvaluateDegenerateZeroRates(t *testing.T) {
	evaluator := NewSignificanceService()

	a := models.VariantResult{Impressions: 200, Conversions: 0}
	b := models.VariantResult{Impressions: 200, Conversions: 0}

	result := evaluator.Evaluate("control", "variant", a, b, 100)
	require.NotNil(t, result)

	assert.Equal(t, 1.0, result.PValue)
	assert.Equal(t, models.NoSignificantDifference, result.Winner)
	assert.False(t, math.IsNaN(result.ZScore))
	assert.False(t, math.IsInf(result.ZScore, 0))
}

func TestEvaluateIdenticalRates(t *testing.T) {
	evaluator := NewSignificanceService()

	a := models.VariantResult{Impressions: 200, Conversions: 50}
	b := models.VariantResult{Impressions: 200, Conversions: 50}

	result := evaluator.Evaluate("control", "variant", a, b, 100)
	require.NotNil(t, result)

	assert.InDelta(t, 0.0, result.ZScore, 1e-9)
	assert.InDelta(t, 1.0, result.PValue, 1e-9)
	assert.Equal(t, models.NoSignificantDifference, result.Winner)
}

func TestEvaluateDoesNotMutateInputs(t *testing.T) {
	evaluator := NewSignificanceService()

	a := models.VariantResult{Impressions: 150, Conversions: 30}
	b := models.VariantResult{Impressions: 150, Conversions: 45}

	_ = evaluator.Evaluate("control", "variant", a, b, 100)

	assert.Equal(t, int64(150), a.Impressions)
	assert.Equal(t, int64(30), a.Conversions)
	assert.Equal(t, int64(45), b.Conversions)
}
