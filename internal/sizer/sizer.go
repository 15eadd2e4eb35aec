// Package sizer determines the transfer size of a single resource. It probes
// with a metadata-only HEAD request first and only downloads the payload when
// the server declares no usable length.
package sizer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/webclient"
)

type Sizer struct {
	wc     webclient.WebClient
	logger logging.Logger
}

func New(wc webclient.WebClient, logger logging.Logger) *Sizer {
	return &Sizer{
		wc:     wc,
		logger: logging.OrDiscard(logger),
	}
}

// Size returns the byte size and response headers for url. Strategy: a HEAD
// probe first; if that yields no usable Content-Length (absent, zero, or the
// probe was rejected), fall back to a full GET and measure the payload.
// There are no retries beyond this single probe→fallback sequence.
func (s *Sizer) Size(ctx context.Context, url string) (int64, http.Header, error) {
	probe, err := s.wc.Head(ctx, url)
	if err == nil && probe.StatusCode < 400 && probe.ContentLength > 0 {
		return probe.ContentLength, probe.Headers, nil
	}
	if err != nil {
		s.logger.Debug("head probe failed, falling back to full fetch",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
	}

	resp, err := s.wc.Get(ctx, url)
	if err != nil {
		return 0, nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode >= 400 && len(resp.Body) == 0 {
		return 0, nil, fmt.Errorf("fetch %s: status %d with no retrievable body", url, resp.StatusCode)
	}

	return int64(len(resp.Body)), resp.Headers, nil
}
