package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

// Args are the command-line arguments for a single measurement run.
type Args struct {
	// URL is the page to measure (required).
	URL string

	// Browser requests the headless-browser backend; false goes straight to
	// the HTTP approximation.
	Browser bool

	// Timeout bounds the whole measurement; 0 means "use config default".
	Timeout time.Duration

	// Concurrency overrides the HTTP backend fan-out for this run; 0 means
	// "use config default".
	Concurrency int

	// JSON emits the full report as JSON instead of the human summary.
	JSON bool

	// HistoryPath enables report persistence when non-empty.
	HistoryPath string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns Args. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*Args, error) {
	fs := flag.NewFlagSet("carbon", flag.ContinueOnError)
	var (
		url         = fs.String("url", "", "Page URL to measure (required)")
		browser     = fs.Bool("browser", true, "Measure with a headless browser, falling back to HTTP approximation on failure")
		timeout     = fs.Duration("timeout", 0, "Overall measurement timeout (0=use default)")
		concurrency = fs.Int("concurrency", 0, "HTTP backend asset-sizing concurrency (0=use default)")
		jsonOut     = fs.Bool("json", false, "Print the full report as JSON")
		historyPath = fs.String("history", "", "SQLite file to persist reports to (empty=no persistence)")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*url) == "" {
		return nil, fmt.Errorf("missing required -url argument")
	}

	return &Args{
		URL:         *url,
		Browser:     *browser,
		Timeout:     *timeout,
		Concurrency: *concurrency,
		JSON:        *jsonOut,
		HistoryPath: *historyPath,
		RawArgs:     args,
	}, nil
}
