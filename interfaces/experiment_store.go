package interfaces

import (
	"errors"

	"gitlab.com/aoterocom/AOExperiments/models"
)

// ErrExperimentNotFound is returned by Load when no document exists for the id
var ErrExperimentNotFound = errors.New("experiment not found")

// ExperimentStore is the persistence port of the engine. Implementations own
// durability; the engine treats Save failures as retryable and never rolls
// back in-memory state because of them.
type ExperimentStore interface {
	Load(id string) (*models.Experiment, error)
	Save(experiment *models.Experiment) error
	SaveReport(report *models.ExperimentReport) error
	List() ([]*models.Experiment, error)
}
