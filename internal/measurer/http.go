package measurer

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/cachepolicy"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/discoverer"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/model"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/sizer"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/webclient"
)

// safetyFloorDivisor caps how far below the first visit the heuristic may
// push the return visit: never less than a tenth of the cold-cache bytes.
const safetyFloorDivisor = 10

// HTTPMeasurer approximates both visits with plain HTTP requests: the first
// visit is the root document plus every statically referenced asset, the
// return visit keeps only the assets the cache heuristic expects to be
// re-downloaded.
type HTTPMeasurer struct {
	wc     webclient.WebClient
	disc   *discoverer.Discoverer
	sz     *sizer.Sizer
	maxFan int
	logger logging.Logger
}

var _ Measurer = (*HTTPMeasurer)(nil)

// NewHTTPMeasurer builds the HTTP backend. wc may be nil, in which case a
// default net/http webclient is constructed from cfg.
func NewHTTPMeasurer(cfg HTTPConfig, logger logging.Logger, wc webclient.WebClient) (*HTTPMeasurer, error) {
	componentLogger := logging.OrDiscard(logger).With(logging.Field{Key: "component", Value: "http-measurer"})

	if wc == nil {
		var err error
		wc, err = webclient.NewNetHTTPClient(webclient.Config{
			Timeout:   cfg.RequestTimeout,
			UserAgent: cfg.UserAgent,
		}, componentLogger, nil)
		if err != nil {
			return nil, fmt.Errorf("new webclient: %w", err)
		}
	}

	maxFan := cfg.MaxConcurrency
	if maxFan <= 0 {
		maxFan = 4
	}

	return &HTTPMeasurer{
		wc:     wc,
		disc:   discoverer.New(componentLogger),
		sz:     sizer.New(wc, componentLogger),
		maxFan: maxFan,
		logger: componentLogger,
	}, nil
}

// sizedAsset is one asset after the probe→fetch sizing attempt. A failed
// asset keeps zero bytes and nil headers.
type sizedAsset struct {
	url     string
	bytes   int64
	headers http.Header
}

// Measure fetches the root document, sizes every discovered asset and derives
// both visit totals. It fails only when the root document itself cannot be
// retrieved.
func (m *HTTPMeasurer) Measure(ctx context.Context, pageURL string) (*model.MeasurementResult, error) {
	resp, err := m.wc.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootDocument, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d for %s", ErrRootDocument, resp.StatusCode, pageURL)
	}
	rootBytes := int64(len(resp.Body))

	assetURLs, err := m.disc.Discover(pageURL, resp.Body)
	if err != nil {
		// an unparseable document still has a measurable root
		m.logger.Warn("asset discovery failed, measuring root document only",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "error", Value: err.Error()})
		assetURLs = nil
	}

	assets := m.sizeAll(ctx, assetURLs)

	firstResources := make([]model.Resource, 0, len(assets)+1)
	firstResources = append(firstResources, model.Resource{
		URL:         pageURL,
		ByteSize:    rootBytes,
		Headers:     resp.Headers,
		SourceVisit: model.VisitFirst,
	})
	firstTotal := rootBytes
	for _, a := range assets {
		firstResources = append(firstResources, model.Resource{
			URL:         a.url,
			ByteSize:    a.bytes,
			Headers:     a.headers,
			SourceVisit: model.VisitFirst,
		})
		firstTotal += a.bytes
	}

	// The root document is never subject to the cache heuristic: a return
	// visit always re-requests the HTML entry point.
	returnResources := []model.Resource{{
		URL:         pageURL,
		ByteSize:    rootBytes,
		Headers:     resp.Headers,
		SourceVisit: model.VisitReturn,
	}}
	returnTotal := rootBytes
	for _, a := range assets {
		if !cachepolicy.WouldRefetch(a.headers) {
			continue
		}
		returnResources = append(returnResources, model.Resource{
			URL:         a.url,
			ByteSize:    a.bytes,
			Headers:     a.headers,
			SourceVisit: model.VisitReturn,
		})
		returnTotal += a.bytes
	}

	if floor := firstTotal / safetyFloorDivisor; returnTotal < floor {
		m.logger.Debug("raising return-visit total to safety floor",
			logging.Field{Key: "url", Value: pageURL},
			logging.Field{Key: "naive_total", Value: returnTotal},
			logging.Field{Key: "floor", Value: floor})
		returnTotal = floor
	}

	return &model.MeasurementResult{
		URL:  pageURL,
		Mode: model.ModeHTTP,
		FirstVisit: model.VisitMeasurement{
			TotalBytes: firstTotal,
			Resources:  firstResources,
			Mode:       model.ModeHTTP,
		},
		ReturnVisit: model.VisitMeasurement{
			TotalBytes: returnTotal,
			Resources:  returnResources,
			Mode:       model.ModeHTTP,
		},
	}, nil
}

// sizeAll sizes every asset with a bounded fan-out. Results keep discovery
// order regardless of completion order, so output is deterministic. A failed
// asset contributes zero bytes instead of aborting the measurement.
func (m *HTTPMeasurer) sizeAll(ctx context.Context, urls []string) []sizedAsset {
	results := make([]sizedAsset, len(urls))
	for i, u := range urls {
		results[i] = sizedAsset{url: u}
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, m.maxFan)

	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			bytes, headers, err := m.sz.Size(ctx, u)
			if err != nil {
				m.logger.Warn("asset could not be sized, counting zero bytes",
					logging.Field{Key: "url", Value: u},
					logging.Field{Key: "error", Value: err.Error()})
				return
			}

			results[i].bytes = bytes
			results[i].headers = headers
		}(i, u)
	}

	wg.Wait()
	return results
}

func (m *HTTPMeasurer) Close() error {
	return m.wc.Close()
}
