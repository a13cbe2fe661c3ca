package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"gitlab.com/aoterocom/AOExperiments/models"
	"gitlab.com/aoterocom/AOExperiments/services"
	"gitlab.com/aoterocom/AOExperiments/storage"
)

// Feeds Bernoulli traffic with known true rates into a fresh engine until
// the stopping rule fires. Handy for eyeballing how many participants a
// given effect size needs.
func main() {

	store := storage.NewMemoryStore()
	experimentService := services.NewExperimentService(store, nil)
	experimentService.Assigner = services.NewSeededVariantAssignerService(42)

	experiment := models.NewEmptyExperiment()
	experiment.Name = "Hero section copy"
	experiment.Variants = map[string]models.Variant{
		"control": {Name: "Current headline", Content: "Full-stack engineer"},
		"variant": {Name: "Outcome headline", Content: "I ship products people use"},
	}
	experiment.TrafficSplit = map[string]int{"control": 50, "variant": 50}
	experiment.Metrics = []string{"timeOnPage"}
	experiment.MinSampleSize = 150

	experiment, err := experimentService.Create(experiment)
	if err != nil {
		fmt.Println("couldn't create the experiment:", err)
		os.Exit(1)
	}

	trueRates := map[string]float64{"control": 0.20, "variant": 0.30}
	rng := rand.New(rand.NewSource(42))

	participants := 0
	for i := 0; i < 20000; i++ {
		participantID := fmt.Sprintf("visitor-%d", i)

		err := experimentService.RecordInteraction(experiment.ID, participantID, models.Interaction{
			Type:    models.InteractionTypeView,
			Metrics: map[string]float64{"timeOnPage": 20 + rng.Float64()*100},
		})
		if errors.Is(err, services.ErrExperimentClosed) {
			break
		}
		participants++

		snapshot, _ := experimentService.GetResults(experiment.ID)
		variant := snapshot.Participants[participantID].Variant
		if rng.Float64() < trueRates[variant] {
			err = experimentService.RecordInteraction(experiment.ID, participantID, models.Interaction{
				Type: models.InteractionTypeConversion,
			})
			if errors.Is(err, services.ErrExperimentClosed) {
				break
			}
		}

		if snapshot.Status == models.ExperimentStatusCompleted {
			break
		}
	}

	final, _ := experimentService.GetResults(experiment.ID)
	fmt.Printf("status: %s after %d participants\n", final.Status, participants)
	for _, variantID := range final.VariantIDs() {
		result := final.Results[variantID]
		fmt.Printf("%s: %d impressions, %d conversions (%.2f%%)\n", variantID,
			result.Impressions, result.Conversions,
			100*float64(result.Conversions)/float64(result.Impressions))
	}
	if final.StatisticalResult != nil {
		fmt.Printf("winner: %s z=%.2f p=%.4f confidence=%.0f%%\n",
			final.StatisticalResult.Winner, final.StatisticalResult.ZScore,
			final.StatisticalResult.PValue, final.StatisticalResult.Confidence)
	}
	if report := store.Report(experiment.ID); report != nil {
		fmt.Println("recommendations:")
		for _, recommendation := range report.Recommendations {
			fmt.Println("  -", recommendation)
		}
	}
}
