package main

import (
	"todoapp/config"
	"todoapp/di"
	"todoapp/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
