package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/history"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/measurer"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/model"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/report"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/urlutil"
)

// ErrPageUnreachable marks a total failure: the page could not be measured by
// any available mode.
var ErrPageUnreachable = errors.New("page unreachable")

// Recorder persists finished reports. Satisfied by *history.Store; nil
// disables persistence.
type Recorder interface {
	Save(ctx context.Context, rep *report.Report, res *model.MeasurementResult) (*history.Entry, error)
}

// Outcome is the result of one orchestrated measurement run.
type Outcome struct {
	Result *model.MeasurementResult `json:"result"`
	Report *report.Report           `json:"report"`

	// Downgraded is true when browser mode was requested but the run fell
	// back to the HTTP approximation.
	Downgraded bool `json:"downgraded"`

	// HistoryID is set when the report was persisted.
	HistoryID string `json:"history_id,omitempty"`
}

// Orchestrator owns mode selection and fallback: it attempts the browser
// backend when preferred and silently downgrades to the HTTP backend on any
// browser failure. It also runs measurements as cancelable background jobs.
type Orchestrator struct {
	cfg      *Config
	logger   logging.Logger
	recorder Recorder

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
}

// NewOrchestrator ties together config, an optional recorder and logger.
func NewOrchestrator(cfg *Config, recorder Recorder, logger logging.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		cfg:      cfg,
		logger:   logging.OrDiscard(logger).With(logging.Field{Key: "component", Value: "orchestrator"}),
		recorder: recorder,
	}
}

// Run measures one URL synchronously. preferBrowser attempts the chromedp
// backend first; any browser failure is absorbed as a mode downgrade, never
// surfaced as an error. A failure of the HTTP backend too is the total
// failure ErrPageUnreachable.
func (o *Orchestrator) Run(ctx context.Context, rawURL string, preferBrowser bool) (*Outcome, error) {
	pageURL, err := urlutil.Canonicalize(rawURL, o.cfg.URLOpts)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	if o.cfg.MeasureTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.MeasureTimeout)
		defer cancel()
	}

	downgraded := false
	var res *model.MeasurementResult

	if preferBrowser {
		res, err = o.measureWith(ctx, measurer.BackendChromedp, pageURL)
		if err != nil {
			// Mode downgrade, not an error: report it and carry on.
			o.logger.Warn("browser measurement failed, falling back to http mode",
				logging.Field{Key: "url", Value: pageURL},
				logging.Field{Key: "error", Value: err.Error()})
			downgraded = true
			res = nil
		}
	}

	if res == nil {
		res, err = o.measureWith(ctx, measurer.BackendHTTP, pageURL)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPageUnreachable, err)
		}
	}

	outcome := &Outcome{
		Result:     res,
		Report:     report.Build(res, downgraded),
		Downgraded: downgraded,
	}

	if o.recorder != nil {
		saved, err := o.recorder.Save(ctx, outcome.Report, res)
		if err != nil {
			// Persistence is best-effort; the measurement itself succeeded.
			o.logger.Warn("failed to persist measurement report",
				logging.Field{Key: "url", Value: pageURL},
				logging.Field{Key: "error", Value: err.Error()})
		} else if saved != nil {
			outcome.HistoryID = saved.ID
		}
	}

	return outcome, nil
}

// measureWith constructs the named backend, runs it once and releases it.
// The backend instance is exclusively owned by this invocation.
func (o *Orchestrator) measureWith(ctx context.Context, backend, pageURL string) (*model.MeasurementResult, error) {
	m, err := measurer.New(backend, o.cfg.Measurer, o.logger)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	started := time.Now()
	res, err := m.Measure(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	o.logger.Info("measurement complete",
		logging.Field{Key: "url", Value: pageURL},
		logging.Field{Key: "mode", Value: string(res.Mode)},
		logging.Field{Key: "first_bytes", Value: res.FirstVisit.TotalBytes},
		logging.Field{Key: "return_bytes", Value: res.ReturnVisit.TotalBytes},
		logging.Field{Key: "elapsed", Value: time.Since(started).String()})

	return res, nil
}
