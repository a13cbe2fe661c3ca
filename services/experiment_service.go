package services

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gitlab.com/aoterocom/AOExperiments/database"
	"gitlab.com/aoterocom/AOExperiments/helpers"
	"gitlab.com/aoterocom/AOExperiments/interfaces"
	"gitlab.com/aoterocom/AOExperiments/models"
)

// ExperimentService owns the experiment lifecycle: creation, sticky
// assignment, outcome recording, significance evaluation after every
// interaction, and completion. All mutation of one experiment is serialized
// through its per-experiment lock; evaluation runs inside the same critical
// section as the write that triggered it, so the stopping decision can never
// race another write.
type ExperimentService struct {
	Store    interfaces.ExperimentStore
	Assigner *VariantAssignerService

	aggregator      *OutcomeAggregatorService
	evaluator       *SignificanceService
	reporter        *ReportService
	databaseService *database.DBService

	experiments map[string]*models.Experiment
	locks       map[string]*sync.Mutex
	mu          sync.Mutex

	defaultMinSampleSize         int64
	defaultSignificanceThreshold float64
	saveRetries                  int
	saveBackoff                  time.Duration
}

func NewExperimentService(store interfaces.ExperimentStore, databaseService *database.DBService) *ExperimentService {
	defaultMinSampleSize, err := strconv.ParseInt(os.Getenv("defaultMinSampleSize"), 10, 64)
	if err != nil || defaultMinSampleSize <= 0 {
		defaultMinSampleSize = 100
	}
	defaultSignificanceThreshold, err := strconv.ParseFloat(os.Getenv("defaultSignificanceThreshold"), 64)
	if err != nil || defaultSignificanceThreshold <= 0 || defaultSignificanceThreshold >= 1 {
		defaultSignificanceThreshold = 0.95
	}

	es := &ExperimentService{
		Store:                        store,
		Assigner:                     NewVariantAssignerService(),
		aggregator:                   NewOutcomeAggregatorService(),
		evaluator:                    NewSignificanceService(),
		reporter:                     NewReportService(),
		databaseService:              databaseService,
		experiments:                  map[string]*models.Experiment{},
		locks:                        map[string]*sync.Mutex{},
		defaultMinSampleSize:         defaultMinSampleSize,
		defaultSignificanceThreshold: defaultSignificanceThreshold,
		saveRetries:                  3,
		saveBackoff:                  500 * time.Millisecond,
	}

	es.recoverExperiments()
	return es
}

// recoverExperiments reloads persisted experiments on startup. Store errors
// are logged, never fatal: a broken document must not take the engine down.
func (es *ExperimentService) recoverExperiments() {
	experiments, err := es.Store.List()
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("couldn't scan the experiment store: %s", err.Error()))
		return
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	for _, experiment := range experiments {
		es.experiments[experiment.ID] = experiment
		es.locks[experiment.ID] = &sync.Mutex{}
	}
	if len(experiments) > 0 {
		helpers.Logger.Infoln(fmt.Sprintf("🧪 Recovered %d experiment(s) from the store", len(experiments)))
	}
}

// Create validates and registers a new experiment. The traffic split must
// cover exactly the declared variants and sum to 100; this is the only place
// the split is validated, so assignment never fails on it later.
func (es *ExperimentService) Create(experiment *models.Experiment) (*models.Experiment, error) {
	if experiment == nil {
		return nil, fmt.Errorf("%w: nil experiment", ErrInvalidExperiment)
	}
	if len(experiment.Variants) < 2 {
		return nil, fmt.Errorf("%w: at least two variants required", ErrInvalidExperiment)
	}

	splitTotal := 0
	for variantID, pct := range experiment.TrafficSplit {
		if _, ok := experiment.Variants[variantID]; !ok {
			return nil, fmt.Errorf("%w: traffic split references unknown variant %q", ErrInvalidExperiment, variantID)
		}
		if pct < 0 {
			return nil, fmt.Errorf("%w: negative traffic percentage for variant %q", ErrInvalidExperiment, variantID)
		}
		splitTotal += pct
	}
	for variantID := range experiment.Variants {
		if _, ok := experiment.TrafficSplit[variantID]; !ok {
			return nil, fmt.Errorf("%w: variant %q missing from traffic split", ErrInvalidExperiment, variantID)
		}
	}
	if splitTotal != 100 {
		return nil, fmt.Errorf("%w: traffic split sums to %d, must be 100", ErrInvalidExperiment, splitTotal)
	}

	seen := map[string]bool{}
	for _, metric := range experiment.Metrics {
		if metric == "" {
			return nil, fmt.Errorf("%w: empty metric name", ErrInvalidExperiment)
		}
		if seen[metric] {
			return nil, fmt.Errorf("%w: duplicated metric %q", ErrInvalidExperiment, metric)
		}
		seen[metric] = true
	}

	if experiment.ID == "" {
		experiment.ID = uuid.NewString()
	}
	if experiment.MinSampleSize <= 0 {
		experiment.MinSampleSize = es.defaultMinSampleSize
	}
	if experiment.SignificanceThreshold <= 0 || experiment.SignificanceThreshold >= 1 {
		experiment.SignificanceThreshold = es.defaultSignificanceThreshold
	}
	if experiment.StartDate.IsZero() {
		experiment.StartDate = time.Now()
	}
	experiment.Status = models.ExperimentStatusActive
	if experiment.Participants == nil {
		experiment.Participants = map[string]models.ParticipantAssignment{}
	}
	if experiment.Results == nil {
		experiment.Results = map[string]*models.VariantResult{}
	}
	for variantID := range experiment.Variants {
		experiment.ResultFor(variantID)
	}

	// Same projection discipline as GetResults: the engine owns its private
	// copy, the caller keeps theirs and gets a snapshot back
	registered := experiment.Copy()

	es.mu.Lock()
	if _, exists := es.experiments[registered.ID]; exists {
		es.mu.Unlock()
		return nil, fmt.Errorf("%w: experiment %q already exists", ErrInvalidExperiment, registered.ID)
	}
	es.experiments[registered.ID] = registered
	es.locks[registered.ID] = &sync.Mutex{}
	es.mu.Unlock()

	es.persist(registered)
	helpers.Logger.Infoln(fmt.Sprintf("🧪 Experiment '%s' (%s) created with %d variants",
		registered.Name, registered.ID, len(registered.Variants)))

	return registered.Copy(), nil
}

// RecordInteraction is the single write path: assign (sticky), record,
// then evaluate the stopping rule, all under the experiment lock.
// Interactions against a completed experiment are rejected with
// ErrExperimentClosed; a frozen report must not keep accumulating.
func (es *ExperimentService) RecordInteraction(experimentID string, participantID string, interaction models.Interaction) error {
	experiment, lock, err := es.experimentFor(experimentID)
	if err != nil {
		return err
	}

	lock.Lock()
	defer lock.Unlock()

	if experiment.Status == models.ExperimentStatusCompleted {
		return fmt.Errorf("%w: %s", ErrExperimentClosed, experimentID)
	}

	if _, err := es.Assigner.Assign(experiment, participantID); err != nil {
		return err
	}
	if err := es.aggregator.Record(experiment, participantID, interaction); err != nil {
		return err
	}

	if result := es.evaluatePairs(experiment, experiment.MinSampleSize); result != nil &&
		result.PValue < 1.0-experiment.SignificanceThreshold {
		es.complete(experiment, result)
		return nil
	}

	es.persist(experiment)
	return nil
}

// GetResults returns a deep-copied snapshot; the live aggregates are never
// exposed outside the aggregator
func (es *ExperimentService) GetResults(experimentID string) (*models.Experiment, error) {
	experiment, lock, err := es.experimentFor(experimentID)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()
	return experiment.Copy(), nil
}

// ListExperiments returns snapshots of every known experiment
func (es *ExperimentService) ListExperiments() []*models.Experiment {
	es.mu.Lock()
	ids := make([]string, 0, len(es.experiments))
	for id := range es.experiments {
		ids = append(ids, id)
	}
	es.mu.Unlock()

	var experiments []*models.Experiment
	for _, id := range ids {
		if experiment, err := es.GetResults(id); err == nil {
			experiments = append(experiments, experiment)
		}
	}
	return experiments
}

// ExpireStale force-completes experiments that ran past maxDuration without
// reaching significance. Evaluation honors the experiment's sample-size gate;
// when no pair clears it the result reports no significant difference rather
// than a winner computed from underpowered data.
func (es *ExperimentService) ExpireStale(maxDuration time.Duration) {
	deadline := time.Now().Add(-maxDuration)

	for _, snapshot := range es.ListExperiments() {
		if snapshot.Status != models.ExperimentStatusActive || snapshot.StartDate.After(deadline) {
			continue
		}

		experiment, lock, err := es.experimentFor(snapshot.ID)
		if err != nil {
			continue
		}
		lock.Lock()
		if experiment.Status != models.ExperimentStatusActive {
			lock.Unlock()
			continue
		}

		result := es.evaluatePairs(experiment, experiment.MinSampleSize)
		if result == nil {
			result = &models.StatisticalResult{PValue: 1.0, Winner: models.NoSignificantDifference}
		}
		helpers.Logger.Warnln(fmt.Sprintf("experiment %s expired after %s without a conclusive result",
			experiment.ID, maxDuration))
		es.complete(experiment, result)
		lock.Unlock()
	}
}

// evaluatePairs runs the z-test over every unordered variant pair, control
// first within a pair when present, and returns the strongest result
// (lowest p-value); the caller applies the stopping threshold
func (es *ExperimentService) evaluatePairs(experiment *models.Experiment, minSampleSize int64) *models.StatisticalResult {
	variantIDs := experiment.VariantIDs()

	var best *models.StatisticalResult
	for i := 0; i < len(variantIDs); i++ {
		for j := i + 1; j < len(variantIDs); j++ {
			variantA, variantB := variantIDs[i], variantIDs[j]
			if variantB == models.VariantControl {
				variantA, variantB = variantB, variantA
			}

			resultA, okA := experiment.Results[variantA]
			resultB, okB := experiment.Results[variantB]
			if !okA || !okB {
				continue
			}

			result := es.evaluator.Evaluate(variantA, variantB, *resultA, *resultB, minSampleSize)
			if result == nil {
				continue
			}
			if best == nil || result.PValue < best.PValue {
				best = result
			}
		}
	}
	return best
}

// complete freezes the experiment and emits the report. Memory first, then
// persistence: a store failure is retried and logged but never rolls back
// the statistical conclusion.
func (es *ExperimentService) complete(experiment *models.Experiment, result *models.StatisticalResult) {
	endDate := time.Now()
	experiment.Status = models.ExperimentStatusCompleted
	experiment.EndDate = &endDate
	experiment.StatisticalResult = result

	helpers.Logger.Infoln(fmt.Sprintf("🏁 Experiment '%s' completed. Winner: %s (p=%.4f, confidence %.0f%%)",
		experiment.Name, result.Winner, result.PValue, result.Confidence))

	es.persist(experiment)

	report := es.reporter.Generate(experiment)
	if err := es.withRetries(func() error { return es.Store.SaveReport(report) }); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("couldn't persist report for experiment %s: %s", experiment.ID, err.Error()))
	}

	if es.databaseService != nil {
		es.databaseService.RecordExperiment(experiment)
		es.databaseService.RecordReport(report)
	}
}

func (es *ExperimentService) experimentFor(experimentID string) (*models.Experiment, *sync.Mutex, error) {
	es.mu.Lock()
	if experiment, ok := es.experiments[experimentID]; ok {
		lock := es.locks[experimentID]
		es.mu.Unlock()
		return experiment, lock, nil
	}
	es.mu.Unlock()

	experiment, err := es.Store.Load(experimentID)
	if err != nil {
		return nil, nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	if cached, ok := es.experiments[experimentID]; ok {
		return cached, es.locks[experimentID], nil
	}
	es.experiments[experimentID] = experiment
	es.locks[experimentID] = &sync.Mutex{}
	return experiment, es.locks[experimentID], nil
}

func (es *ExperimentService) persist(experiment *models.Experiment) {
	snapshot := experiment.Copy()
	if err := es.withRetries(func() error { return es.Store.Save(snapshot) }); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("couldn't persist experiment %s: %s", experiment.ID, err.Error()))
	}
}

func (es *ExperimentService) withRetries(operation func() error) error {
	var err error
	for attempt := 0; attempt <= es.saveRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(es.saveBackoff * time.Duration(attempt))
		}
		if err = operation(); err == nil {
			return nil
		}
	}
	return err
}
