package ui

import (
	"fmt"
	"time"

	"github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"gitlab.com/aoterocom/AOExperiments/helpers"
	"gitlab.com/aoterocom/AOExperiments/models"
	"gitlab.com/aoterocom/AOExperiments/services"
)

type UserInterface struct {
	ExperimentService *services.ExperimentService
	logList           *[]string
}

func (ui *UserInterface) SetExperimentService(experimentService *services.ExperimentService) {
	ui.ExperimentService = experimentService
}

func (ui *UserInterface) SetLogList(logList *[]string) {
	ui.logList = logList
}

func (ui *UserInterface) Run() {
	if err := termui.Init(); err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("failed to initialize termui: %v", err))
		return
	}
	defer termui.Close()

	uiEvents := termui.PollEvents()
	ticker := time.NewTicker(time.Second).C
	for {
		select {
		case e := <-uiEvents:
			switch e.ID {
			case "q", "<C-c>":
				helpers.Logger.Infoln("Exited by keyboard interrupt")
				return
			}
		case <-ticker:
			ui.UpdateUI()
		}
	}
}

func (ui *UserInterface) UpdateUI() {
	experiments := ui.ExperimentService.ListExperiments()

	experimentsTable := widgets.NewTable()
	experimentsTable.Block.Title = "Experiments"
	experimentsTable.TitleStyle.Fg = termui.ColorYellow
	experimentsTable.BorderStyle.Fg = termui.ColorYellow
	experimentsTable.RowSeparator = false
	experimentsTable.Rows = [][]string{{"Experiment", "Status", "Variant", "Impressions", "Conversions", "Rate"}}

	activeCount := 0
	completedCount := 0
	var lastCompleted *models.Experiment
	for _, experiment := range experiments {
		if experiment.Status == models.ExperimentStatusActive {
			activeCount++
		} else {
			completedCount++
			if lastCompleted == nil || (experiment.EndDate != nil && lastCompleted.EndDate != nil &&
				experiment.EndDate.After(*lastCompleted.EndDate)) {
				lastCompleted = experiment
			}
		}

		for _, variantID := range experiment.VariantIDs() {
			result, ok := experiment.Results[variantID]
			if !ok {
				continue
			}
			rate := 0.0
			if result.Impressions > 0 {
				rate = float64(result.Conversions) / float64(result.Impressions)
			}
			experimentsTable.Rows = append(experimentsTable.Rows, []string{
				experiment.Name,
				string(experiment.Status),
				variantID,
				fmt.Sprintf("%d", result.Impressions),
				fmt.Sprintf("%d", result.Conversions),
				fmt.Sprintf("%.2f%%", rate*100.0),
			})
		}
	}
	experimentsTable.SetRect(0, 0, 100, 18)

	statusParagraph := widgets.NewParagraph()
	statusParagraph.Block.Title = "Engine Status"
	statusParagraph.Text = fmt.Sprintf("Active: %d\n", activeCount)
	statusParagraph.Text += fmt.Sprintf("Completed: %d\n", completedCount)
	if lastCompleted != nil && lastCompleted.StatisticalResult != nil {
		statusParagraph.Text += fmt.Sprintf("[Last winner: %s](fg:blue)\n", lastCompleted.StatisticalResult.Winner)
		statusParagraph.Text += fmt.Sprintf("p-value: %.4f\n", lastCompleted.StatisticalResult.PValue)
		statusParagraph.Text += fmt.Sprintf("Confidence: %.0f%%\n", lastCompleted.StatisticalResult.Confidence)
	}
	statusParagraph.SetRect(100, 0, 134, 9)

	operationsList := widgets.NewList()
	operationsList.Block.Title = "Operations"
	if ui.logList != nil {
		operationsList.Rows = *ui.logList
	}
	operationsList.SetRect(0, 18, 134, 28)

	operationsList.ScrollBottom()
	termui.Render(experimentsTable, statusParagraph, operationsList)
}
