package storage

import (
	"fmt"
	"sync"

	"gitlab.com/aoterocom/AOExperiments/interfaces"
	"gitlab.com/aoterocom/AOExperiments/models"
)

// MemoryStore is an in-memory ExperimentStore for tests and simulations
type MemoryStore struct {
	experiments map[string]*models.Experiment
	reports     map[string]*models.ExperimentReport
	mu          sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		experiments: map[string]*models.Experiment{},
		reports:     map[string]*models.ExperimentReport{},
	}
}

func (ms *MemoryStore) Load(id string) (*models.Experiment, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	experiment, ok := ms.experiments[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrExperimentNotFound, id)
	}
	return experiment.Copy(), nil
}

func (ms *MemoryStore) Save(experiment *models.Experiment) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.experiments[experiment.ID] = experiment.Copy()
	return nil
}

func (ms *MemoryStore) SaveReport(report *models.ExperimentReport) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	reportCopy := *report
	ms.reports[report.ExperimentID] = &reportCopy
	return nil
}

func (ms *MemoryStore) List() ([]*models.Experiment, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var experiments []*models.Experiment
	for _, experiment := range ms.experiments {
		experiments = append(experiments, experiment.Copy())
	}
	return experiments, nil
}

// Report exposes a stored report for assertions in tests
func (ms *MemoryStore) Report(experimentID string) *models.ExperimentReport {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.reports[experimentID]
}
