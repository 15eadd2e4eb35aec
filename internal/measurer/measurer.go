// Package measurer contains the two measurement backends that turn a page
// URL into first-visit and return-visit byte totals: a headless-browser
// backend that observes real network traffic across two navigations, and an
// HTTP backend that approximates the return visit from Cache-Control
// semantics.
package measurer

import (
	"context"
	"errors"
	"time"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/model"
)

// Measurer produces a full dual-visit measurement for one URL.
type Measurer interface {
	Measure(ctx context.Context, pageURL string) (*model.MeasurementResult, error)

	Close() error
}

// ErrRootDocument marks a failure to retrieve the page's entry document.
// Individual asset failures are absorbed; this one is fatal to the attempt.
var ErrRootDocument = errors.New("root document fetch failed")

const (
	BackendHTTP     = "http"
	BackendChromedp = "chromedp"
)

// HTTPConfig configures the header-driven approximation backend.
type HTTPConfig struct {
	// MaxConcurrency bounds the per-resource sizing fan-out.
	MaxConcurrency int

	// RequestTimeout bounds each individual probe or fetch.
	RequestTimeout time.Duration

	UserAgent string
}

// BrowserConfig configures the chromedp backend.
type BrowserConfig struct {
	Headless bool

	// ChromePath optionally points at a chrome/chromium binary; empty lets
	// chromedp resolve one itself.
	ChromePath string

	NoSandbox bool

	// PageTimeout bounds a single navigation including its network-idle wait.
	PageTimeout time.Duration

	// IdleAfter is how long the network must stay quiet before a navigation
	// is considered finished.
	IdleAfter time.Duration
}

// Config aggregates both backend configurations so the registry can build
// either one from the same value.
type Config struct {
	HTTP    HTTPConfig
	Browser BrowserConfig
}

// DefaultConfig returns sensible defaults for both backends.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			MaxConcurrency: 4,
			RequestTimeout: 30 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:    true,
			PageTimeout: 60 * time.Second,
			IdleAfter:   2 * time.Second,
		},
	}
}
