package database

import "gorm.io/gorm"

// Experiment is the MySQL projection of a persisted experiment document.
// The full JSON document rides along in Document; the flat columns exist
// for querying history without unpacking JSON.
type Experiment struct {
	gorm.Model
	ExperimentID string  `json:"experimentId" gorm:"uniqueIndex;size:64"`
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	Winner       string  `json:"winner"`
	PValue       float64 `json:"pValue"`
	Confidence   float64 `json:"confidence"`
	Participants int     `json:"participants"`
	Impressions  int64   `json:"impressions"`
	Document     string  `json:"document"`
}

type Report struct {
	gorm.Model
	ExperimentID string  `json:"experimentId" gorm:"uniqueIndex;size:64"`
	Winner       string  `json:"winner"`
	Confidence   float64 `json:"confidence"`
	Document     string  `json:"document"`
}
