package database

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	database "gitlab.com/aoterocom/AOExperiments/database/models"
	"gitlab.com/aoterocom/AOExperiments/helpers"
	"gitlab.com/aoterocom/AOExperiments/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DBService mirrors experiment history into MySQL when
// enableDatabaseRecording is set. The file store stays the source of truth;
// this is the queryable archive.
type DBService struct {
	DB *gorm.DB
}

func NewDBService(dbHost string, dbPort string, dbName string, dbUser string, dbPass string) (*DBService, error) {
	dsn := dbUser + ":" + dbPass + "@tcp(" + dbHost + ":" + dbPort + ")/" + dbName + "?charset=utf8mb4&parseTime=True&loc=Local"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	dbs := &DBService{
		DB: db,
	}

	err = dbs.DB.AutoMigrate(&database.Experiment{}, &database.Report{})
	if err != nil {
		return nil, err
	}

	return dbs, nil
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

// RecordExperiment upserts the experiment row keyed by experiment id, so
// repeated saves of the same experiment overwrite instead of duplicating
func (dbs *DBService) RecordExperiment(experiment *models.Experiment) {
	document, err := json.Marshal(experiment)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("couldn't serialize experiment %s for the database: %s", experiment.ID, err.Error()))
		return
	}

	dbExperiment := database.Experiment{
		ExperimentID: experiment.ID,
		Name:         experiment.Name,
		Status:       string(experiment.Status),
		Participants: len(experiment.Participants),
		Impressions:  experiment.TotalImpressions(),
		Document:     string(document),
	}
	if experiment.StatisticalResult != nil {
		dbExperiment.Winner = experiment.StatisticalResult.Winner
		dbExperiment.PValue = experiment.StatisticalResult.PValue
		dbExperiment.Confidence = experiment.StatisticalResult.Confidence
	}

	// Update columns to new value on conflict
	tx := dbs.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "experiment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "status", "winner", "p_value",
			"confidence", "participants", "impressions", "document"}),
	}).Create(&dbExperiment)
	if tx.Error != nil {
		helpers.Logger.Errorln(fmt.Sprintf("couldn't record experiment %s: %s", experiment.ID, tx.Error.Error()))
	}
}

func (dbs *DBService) RecordReport(report *models.ExperimentReport) {
	document, err := json.Marshal(report)
	if err != nil {
		helpers.Logger.Errorln(fmt.Sprintf("couldn't serialize report for experiment %s: %s", report.ExperimentID, err.Error()))
		return
	}

	dbReport := database.Report{
		ExperimentID: report.ExperimentID,
		Winner:       report.Winner,
		Confidence:   report.Confidence,
		Document:     string(document),
	}

	tx := dbs.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "experiment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"winner", "confidence", "document"}),
	}).Create(&dbReport)
	if tx.Error != nil {
		helpers.Logger.Errorln(fmt.Sprintf("couldn't record report for experiment %s: %s", report.ExperimentID, tx.Error.Error()))
	}
}
