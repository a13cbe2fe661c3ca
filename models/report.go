package models

import "time"

// ExperimentReport is the advisory document written alongside a completed
// experiment. None of it feeds back into the statistical contract.
type ExperimentReport struct {
	ExperimentID      string    `json:"experimentId"`
	Name              string    `json:"name"`
	Duration          string    `json:"duration"`
	TotalParticipants int       `json:"totalParticipants"`
	TotalImpressions  int64     `json:"totalImpressions"`
	Winner            string    `json:"winner"`
	Confidence        float64   `json:"confidence"`
	Recommendations   []string  `json:"recommendations"`
	Insights          []string  `json:"insights"`
	NextSteps         []string  `json:"nextSteps"`
	GeneratedAt       time.Time `json:"generatedAt"`
}
