package handler

import (
	"net/http"

	"todoapp/config"
	"todoapp/di"
	"todoapp/shared/logger"
)

func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	di.InitializeService().Handler().ServeHTTP(w, r)
}
