package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"gitlab.com/aoterocom/AOExperiments/models"
)

// VariantAssignerService maps participants to variants. Assignments are
// sticky: once a participant is in Experiment.Participants, the recorded
// variant is returned forever.
type VariantAssignerService struct {
	rng *rand.Rand
	mu  sync.Mutex
}

func NewVariantAssignerService() *VariantAssignerService {
	return &VariantAssignerService{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSeededVariantAssignerService returns an assigner with a deterministic
// draw sequence, for simulations and tests
func NewSeededVariantAssignerService(seed int64) *VariantAssignerService {
	return &VariantAssignerService{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Assign returns the participant's variant, drawing a new one on first
// contact. The draw walks the traffic split in stable variant-id order,
// accumulating cumulative percentage boundaries, so the realized
// distribution converges to the configured split. The new assignment is
// recorded on the experiment before returning.
func (vas *VariantAssignerService) Assign(experiment *models.Experiment, participantID string) (string, error) {
	if assignment, ok := experiment.Participants[participantID]; ok {
		return assignment.Variant, nil
	}

	// Guarded at creation time, kept here for experiments loaded from
	// outside the engine
	if len(experiment.TrafficSplit) == 0 {
		return "", fmt.Errorf("%w: empty traffic split", ErrInvalidExperiment)
	}

	vas.mu.Lock()
	draw := vas.rng.Float64() * 100.0
	vas.mu.Unlock()

	variantIDs := experiment.VariantIDs()
	assigned := variantIDs[len(variantIDs)-1]
	cumulative := 0.0
	for _, variantID := range variantIDs {
		cumulative += float64(experiment.TrafficSplit[variantID])
		if draw < cumulative {
			assigned = variantID
			break
		}
	}

	if experiment.Participants == nil {
		experiment.Participants = map[string]models.ParticipantAssignment{}
	}
	experiment.Participants[participantID] = models.ParticipantAssignment{
		Variant:    assigned,
		AssignedAt: time.Now(),
	}

	return assigned, nil
}
