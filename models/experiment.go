package models

import (
	"sort"
	"time"
)

type ExperimentStatus string

const (
	ExperimentStatusActive    ExperimentStatus = "active"
	ExperimentStatusCompleted ExperimentStatus = "completed"
)

// VariantControl is the conventional id of the baseline variant
const VariantControl = "control"

// Experiment is the persisted unit of the engine: configuration, sticky
// participant assignments, per-variant counters, and the statistical
// conclusion once one exists. It maps 1:1 onto the JSON document in the
// store.
type Experiment struct {
	ID                    string                           `json:"id"`
	Name                  string                           `json:"name"`
	Variants              map[string]Variant               `json:"variants"`
	TrafficSplit          map[string]int                   `json:"trafficSplit"`
	Metrics               []string                         `json:"metrics"`
	MinSampleSize         int64                            `json:"minSampleSize"`
	SignificanceThreshold float64                          `json:"significanceThreshold"`
	Status                ExperimentStatus                 `json:"status"`
	StartDate             time.Time                        `json:"startDate"`
	EndDate               *time.Time                       `json:"endDate,omitempty"`
	Participants          map[string]ParticipantAssignment `json:"participants"`
	Results               map[string]*VariantResult        `json:"results"`
	StatisticalResult     *StatisticalResult               `json:"statisticalSignificance,omitempty"`
}

type Variant struct {
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
}

// ParticipantAssignment is append-only: once recorded, the variant for a
// participant never changes
type ParticipantAssignment struct {
	Variant    string    `json:"variant"`
	AssignedAt time.Time `json:"assignedAt"`
}

// VariantResult holds the monotonically non-decreasing counters for one
// variant
type VariantResult struct {
	Impressions int64                         `json:"impressions"`
	Conversions int64                         `json:"conversions"`
	Metrics     map[string]*MetricAccumulator `json:"metrics"`
}

type MetricAccumulator struct {
	Total   float64 `json:"total"`
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

func NewEmptyExperiment() *Experiment {
	return &Experiment{
		Variants:     map[string]Variant{},
		TrafficSplit: map[string]int{},
		Participants: map[string]ParticipantAssignment{},
		Results:      map[string]*VariantResult{},
	}
}

// VariantIDs returns the variant ids in sorted order. Assignment and pair
// evaluation both walk this order, so iteration is stable across runs.
func (e *Experiment) VariantIDs() []string {
	ids := make([]string, 0, len(e.Variants))
	for id := range e.Variants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResultFor returns the counters for a variant, creating them on first use
func (e *Experiment) ResultFor(variantID string) *VariantResult {
	if e.Results == nil {
		e.Results = map[string]*VariantResult{}
	}
	result, ok := e.Results[variantID]
	if !ok {
		result = &VariantResult{Metrics: map[string]*MetricAccumulator{}}
		e.Results[variantID] = result
	}
	return result
}

func (e *Experiment) TracksMetric(name string) bool {
	for _, metric := range e.Metrics {
		if metric == name {
			return true
		}
	}
	return false
}

func (e *Experiment) TotalImpressions() int64 {
	var total int64
	for _, result := range e.Results {
		total += result.Impressions
	}
	return total
}

// Copy returns a deep copy, safe to hand out while the original keeps
// mutating under its lock
func (e *Experiment) Copy() *Experiment {
	experimentCopy := *e

	experimentCopy.Variants = map[string]Variant{}
	for id, variant := range e.Variants {
		experimentCopy.Variants[id] = variant
	}

	experimentCopy.TrafficSplit = map[string]int{}
	for id, pct := range e.TrafficSplit {
		experimentCopy.TrafficSplit[id] = pct
	}

	experimentCopy.Metrics = append([]string(nil), e.Metrics...)

	experimentCopy.Participants = map[string]ParticipantAssignment{}
	for id, assignment := range e.Participants {
		experimentCopy.Participants[id] = assignment
	}

	experimentCopy.Results = map[string]*VariantResult{}
	for id, result := range e.Results {
		resultCopy := *result
		resultCopy.Metrics = map[string]*MetricAccumulator{}
		for name, accumulator := range result.Metrics {
			accumulatorCopy := *accumulator
			resultCopy.Metrics[name] = &accumulatorCopy
		}
		experimentCopy.Results[id] = &resultCopy
	}

	if e.EndDate != nil {
		endDate := *e.EndDate
		experimentCopy.EndDate = &endDate
	}
	if e.StatisticalResult != nil {
		statisticalResult := *e.StatisticalResult
		experimentCopy.StatisticalResult = &statisticalResult
	}

	return &experimentCopy
}
