package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/dattu/paperback/cmd/paperback/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Error().Err(err).Msg("paperback failed")
		os.Exit(1)
	}
}
