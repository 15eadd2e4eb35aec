// Command carbonserver starts the carbon calculator HTTP API.
// Usage: go run ./cmd/carbonserver [flags]
package main

import (
	"flag"
	"log"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/app"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/measurer"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/server"
)

func main() {
	listenAddr := flag.String("listen", ":8080", "HTTP listen address")
	historyPath := flag.String("history", "carbon.db", "SQLite file for persisted reports (empty=no persistence)")
	preferBrowser := flag.Bool("browser", true, "Prefer the headless-browser backend by default")
	flag.Parse()

	measurer.RegisterDefaultBackends()

	appCfg := app.DefaultConfig()
	appCfg.HistoryPath = *historyPath
	appCfg.PreferBrowser = *preferBrowser

	logger := logging.NewStdoutLogger("carbonserver")

	srv, err := server.NewServer(server.Config{
		ListenAddr: *listenAddr,
		AppConfig:  appCfg,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer srv.Close()

	logger.Info("listening", logging.Field{Key: "addr", Value: *listenAddr})
	if err := srv.HTTPServer().ListenAndServe(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
