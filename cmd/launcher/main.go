package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mihira-vl/launcher/internal/cli"
	"github.com/mihira-vl/launcher/internal/config"
)

func main() {
	c := config.New()
	configureLogging(c)
	displayAppname(c.GetAppName())
	cli.Execute()
}

func configureLogging(c config.Config) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if c.GetEnv() == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
