// Command carbon measures the data transfer and CO₂ footprint of a web page,
// comparing a first visit against a return visit with a warm browser cache.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/app"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/cli"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/history"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/measurer"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/report"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	args, err := cli.ParseArgs(argv)
	if err != nil {
		return err
	}

	measurer.RegisterDefaultBackends()

	cfg := app.DefaultConfig()
	cfg.PreferBrowser = args.Browser
	if args.Timeout > 0 {
		cfg.MeasureTimeout = args.Timeout
	}
	if args.Concurrency > 0 {
		cfg.Measurer.HTTP.MaxConcurrency = args.Concurrency
	}

	logger := logging.NewStdoutLogger("carbon")

	var recorder app.Recorder
	if args.HistoryPath != "" {
		store, err := history.NewStore(history.Config{Path: args.HistoryPath}, logger)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		defer store.Close()
		recorder = store
	}

	orch := app.NewOrchestrator(cfg, recorder, logger)

	outcome, err := orch.Run(context.Background(), args.URL, args.Browser)
	if errors.Is(err, app.ErrPageUnreachable) {
		return fmt.Errorf("could not measure %s: %w", args.URL, err)
	}
	if err != nil {
		return err
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome.Report)
	}

	printReport(outcome)
	return nil
}

func printReport(outcome *app.Outcome) {
	rep := outcome.Report

	fmt.Printf("Page:  %s\n", rep.URL)
	fmt.Printf("Mode:  %s", rep.Mode)
	if outcome.Downgraded {
		fmt.Print(" (browser unavailable, used HTTP approximation)")
	}
	fmt.Println()
	fmt.Println()

	printVisit("First visit", rep.FirstVisit)
	fmt.Println()
	printVisit("Return visit", rep.ReturnVisit)

	if outcome.HistoryID != "" {
		fmt.Printf("\nSaved to history as %s\n", outcome.HistoryID)
	}
}

func printVisit(label string, v report.VisitReport) {
	fmt.Printf("%s:\n", label)
	fmt.Printf("  Transfer: %.2f MB (%d bytes)\n", v.MB, v.Bytes)
	fmt.Printf("  Energy:   %.6f kWh\n", v.EnergyKWh)
	fmt.Printf("  CO2:      %.2f g\n", v.CO2Grams)
	fmt.Printf("  Grade:    %s (%s)\n", v.Grade, report.GradeDescription(v.Grade))
}
