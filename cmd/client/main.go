package main

import (
	"github.com/rs/zerolog/log"

	"todoapp/config"
	"todoapp/di"
	"todoapp/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http, err := di.InitializeClient()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize client application")
	}

	http.Serve()
}
