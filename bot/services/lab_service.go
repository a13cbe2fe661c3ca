package aoexperiments

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"
	"gitlab.com/aoterocom/AOExperiments/helpers"
	"gitlab.com/aoterocom/AOExperiments/models"
	"gitlab.com/aoterocom/AOExperiments/services"
)

// LabService is the long-running owner of the engine. Evaluation already
// happens synchronously on every recorded interaction; the periodic sweep
// only expires experiments that never reach significance and logs a
// heartbeat for experiments fed by external writers.
type LabService struct {
	experimentService *services.ExperimentService

	evaluationInterval time.Duration
	maxDuration        time.Duration
}

func NewLab(experimentService *services.ExperimentService) LabService {
	return LabService{
		experimentService: experimentService,
	}
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

func (ls *LabService) Start() {

	// Get .env file lab variables. Durations accept day suffixes ("90d")
	var err error
	ls.evaluationInterval, err = str2duration.ParseDuration(os.Getenv("evaluationInterval"))
	if err != nil || ls.evaluationInterval <= 0 {
		ls.evaluationInterval = 30 * time.Second
	}
	ls.maxDuration, err = str2duration.ParseDuration(os.Getenv("maxExperimentDuration"))
	if err != nil || ls.maxDuration <= 0 {
		ls.maxDuration = 30 * 24 * time.Hour
	}

	helpers.Logger.Infoln(fmt.Sprintf("🧪 Experiment lab sweeping every %s, expiring after %s",
		ls.evaluationInterval, ls.maxDuration))

	// Infinite loop
	for {
		ls.experimentService.ExpireStale(ls.maxDuration)

		activeCount := 0
		completedCount := 0
		for _, experiment := range ls.experimentService.ListExperiments() {
			if experiment.Status == models.ExperimentStatusActive {
				activeCount++
			} else {
				completedCount++
			}
		}
		helpers.Logger.Debugln(fmt.Sprintf("lab sweep: %d active, %d completed", activeCount, completedCount))

		time.Sleep(ls.evaluationInterval)
	}
}
