package server

import (
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/app"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AppConfig carries the measurement configuration; nil uses defaults.
	AppConfig *app.Config

	// Logger is optional; nil constructs a stdout logger.
	Logger logging.Logger
}
