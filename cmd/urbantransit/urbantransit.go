package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/api"
	"github.com/travigo/urbantransit/pkg/config"
	"github.com/travigo/urbantransit/pkg/reference"
	"github.com/urfave/cli/v2"

	_ "time/tzdata"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if os.Getenv("URBANTRANSIT_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("URBANTRANSIT_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "urbantransit",
		Description: "Route composition and live vehicle positions for an urban transit network",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			api.RegisterRouteCLI(),
			api.RegisterLiveCLI(),
			api.RegisterTopologyCLI(),
			reference.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
