package app

import (
	"time"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/measurer"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/urlutil"
)

// Config contains the runtime configuration shared across modules.
type Config struct {
	// Measurer holds both backend configurations.
	Measurer measurer.Config

	// PreferBrowser attempts the headless-browser backend first by default;
	// individual requests may override it.
	PreferBrowser bool

	// MeasureTimeout bounds a whole measurement (both visits, either mode).
	MeasureTimeout time.Duration

	// HistoryPath is the SQLite file for persisted reports. Empty disables
	// persistence.
	HistoryPath string

	// URLOpts controls canonicalization of input URLs.
	URLOpts urlutil.Options
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Measurer:       measurer.DefaultConfig(),
		PreferBrowser:  true,
		MeasureTimeout: 3 * time.Minute,
		HistoryPath:    "",
		URLOpts: urlutil.Options{
			DefaultScheme: "https",
		},
	}
}
