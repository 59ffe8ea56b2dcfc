package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"ordinal-quest-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Err(err).Msg("ordinal-quest exited")
		os.Exit(1)
	}
}
