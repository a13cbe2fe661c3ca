package bot

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	lab "gitlab.com/aoterocom/AOExperiments/bot/services"
	"gitlab.com/aoterocom/AOExperiments/database"
	"gitlab.com/aoterocom/AOExperiments/helpers"
	"gitlab.com/aoterocom/AOExperiments/services"
	"gitlab.com/aoterocom/AOExperiments/storage"
	"gitlab.com/aoterocom/AOExperiments/ui"
)

type Bot struct {
}

func init() {
	cwd, _ := os.Getwd()
	_ = godotenv.Load(cwd + "/conf.env")
}

func (b *Bot) Run(c *cli.Context) {
	logList := []string{}
	if c.Bool("dashboard") {
		helpers.Logger.SetLogList(&logList)
	}

	helpers.Logger.Infoln("🧪 Experiment lab started")

	dataDir := c.String("data-dir")
	if dataDir == "" {
		dataDir = os.Getenv("dataDir")
	}
	if dataDir == "" {
		dataDir = "./experiments"
	}

	store, err := storage.NewFileStore(dataDir)
	if err != nil {
		helpers.Logger.Fatalln("error: couldn't initialize the experiment store: " + err.Error())
	}

	var databaseService *database.DBService
	databaseIsEnabled, _ := strconv.ParseBool(os.Getenv("enableDatabaseRecording"))

	if databaseIsEnabled == true {
		databaseService, err = database.NewDBService(os.Getenv("databaseHost"), os.Getenv("databasePort"), os.Getenv("databaseName"),
			os.Getenv("databaseUser"), os.Getenv("databasePassword"))
		if err != nil {
			helpers.Logger.Errorln(err)
			log.Errorln(err)
			os.Exit(1)
		}
	}

	experimentService := services.NewExperimentService(store, databaseService)
	labService := lab.NewLab(experimentService)

	if c.Bool("dashboard") {
		go labService.Start()

		userInterface := ui.UserInterface{}
		userInterface.SetExperimentService(experimentService)
		userInterface.SetLogList(&logList)
		userInterface.Run()
		return
	}

	labService.Start()
}
