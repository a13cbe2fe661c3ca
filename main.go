package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AOExperiments/bot"
)

func main() {
	app := &cli.App{
		Name:  "AOExperiments",
		Usage: "online controlled-experiment engine for content variants",
		Commands: []*cli.Command{
			{
				Name:  "lab",
				Usage: "run the experiment engine against the document store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "directory holding the experiment JSON documents",
					},
					&cli.BoolFlag{
						Name:  "dashboard",
						Usage: "render the live terminal dashboard",
					},
				},
				Action: func(c *cli.Context) error {
					b := bot.Bot{}
					b.Run(c)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}
