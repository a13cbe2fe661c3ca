package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/aoterocom/AOExperiments/helpers"
	"gitlab.com/aoterocom/AOExperiments/interfaces"
	"gitlab.com/aoterocom/AOExperiments/models"
)

const reportSuffix = "_report"

// FileStore keeps one JSON document per experiment under dataDir
// (<id>.json, reports as <id>_report.json). Writes go through a temp file
// and a rename, so a crash never leaves a half-written document behind.
type FileStore struct {
	dataDir string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("couldn't create data directory %s: %w", dataDir, err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

func (fs *FileStore) Load(id string) (*models.Experiment, error) {
	data, err := os.ReadFile(fs.experimentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrExperimentNotFound, id)
		}
		return nil, err
	}

	var experiment models.Experiment
	if err := json.Unmarshal(data, &experiment); err != nil {
		return nil, fmt.Errorf("malformed experiment document %s: %w", id, err)
	}
	return &experiment, nil
}

func (fs *FileStore) Save(experiment *models.Experiment) error {
	return fs.writeDocument(fs.experimentPath(experiment.ID), experiment)
}

func (fs *FileStore) SaveReport(report *models.ExperimentReport) error {
	return fs.writeDocument(fs.reportPath(report.ExperimentID), report)
}

// List scans the data directory. Malformed documents are skipped with a
// warning so one corrupt file can't block startup recovery.
func (fs *FileStore) List() ([]*models.Experiment, error) {
	entries, err := os.ReadDir(fs.dataDir)
	if err != nil {
		return nil, err
	}

	var experiments []*models.Experiment
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") ||
			strings.HasSuffix(strings.TrimSuffix(name, ".json"), reportSuffix) {
			continue
		}

		id := strings.TrimSuffix(name, ".json")
		experiment, err := fs.Load(id)
		if err != nil {
			helpers.Logger.Warnln(fmt.Sprintf("skipping unreadable experiment document %s: %s", name, err.Error()))
			continue
		}
		experiments = append(experiments, experiment)
	}
	return experiments, nil
}

func (fs *FileStore) writeDocument(path string, document interface{}) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (fs *FileStore) experimentPath(id string) string {
	return filepath.Join(fs.dataDir, id+".json")
}

func (fs *FileStore) reportPath(id string) string {
	return filepath.Join(fs.dataDir, id+reportSuffix+".json")
}
