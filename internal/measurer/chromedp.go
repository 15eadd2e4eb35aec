package measurer

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/model"
)

// ChromeDPMeasurer drives a real headless browser through two page loads in
// one persistent session. The first navigation starts cold; the second reuses
// whatever the browser actually cached, so no heuristic is applied.
type ChromeDPMeasurer struct {
	cfg    BrowserConfig
	logger logging.Logger
}

var _ Measurer = (*ChromeDPMeasurer)(nil)

func NewChromeDPMeasurer(cfg BrowserConfig, logger logging.Logger) (*ChromeDPMeasurer, error) {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = DefaultConfig().Browser.PageTimeout
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = DefaultConfig().Browser.IdleAfter
	}

	return &ChromeDPMeasurer{
		cfg:    cfg,
		logger: logging.OrDiscard(logger).With(logging.Field{Key: "component", Value: "chromedp-measurer"}),
	}, nil
}

// Measure launches an isolated browser session, navigates twice to pageURL
// and sums the network bytes of each navigation. Any launch or navigation
// failure fails the whole measurement; a partial browser measurement is not
// comparable to the HTTP-mode output.
func (m *ChromeDPMeasurer) Measure(ctx context.Context, pageURL string) (*model.MeasurementResult, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	)
	if m.cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if m.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(m.cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// One session for both navigations: the second load must see the cache
	// state the first one left behind.
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	firstTotal, firstResources, err := m.navigate(browserCtx, pageURL, model.VisitFirst)
	if err != nil {
		return nil, fmt.Errorf("first navigation to %s: %w", pageURL, err)
	}
	m.logger.Debug("first visit measured",
		logging.Field{Key: "url", Value: pageURL},
		logging.Field{Key: "bytes", Value: firstTotal})

	returnTotal, returnResources, err := m.navigate(browserCtx, pageURL, model.VisitReturn)
	if err != nil {
		return nil, fmt.Errorf("return navigation to %s: %w", pageURL, err)
	}
	m.logger.Debug("return visit measured",
		logging.Field{Key: "url", Value: pageURL},
		logging.Field{Key: "bytes", Value: returnTotal})

	return &model.MeasurementResult{
		URL:  pageURL,
		Mode: model.ModeBrowser,
		FirstVisit: model.VisitMeasurement{
			TotalBytes: firstTotal,
			Resources:  firstResources,
			Mode:       model.ModeBrowser,
		},
		ReturnVisit: model.VisitMeasurement{
			TotalBytes: returnTotal,
			Resources:  returnResources,
			Mode:       model.ModeBrowser,
		},
	}, nil
}

// responseInfo accumulates the size signals for one network response.
type responseInfo struct {
	url      string
	headers  http.Header
	declared int64 // Content-Length header value
	observed int64 // bytes actually seen on the wire
}

// navigate performs one page load and accounts every network response that
// belongs to it, preferring the declared Content-Length and falling back to
// the observed encoded length when absent. Responses served from the
// browser's cache cost no network bytes and are skipped.
func (m *ChromeDPMeasurer) navigate(ctx context.Context, pageURL string, visit model.Visit) (int64, []model.Resource, error) {
	navCtx, cancel := context.WithTimeout(ctx, m.cfg.PageTimeout)
	defer cancel()

	var mu sync.Mutex
	responses := make(map[network.RequestID]*responseInfo)

	chromedp.ListenTarget(navCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			if e.Response == nil {
				return
			}
			u := e.Response.URL
			if strings.HasPrefix(u, "data:") || strings.HasPrefix(u, "about:") {
				return
			}
			if e.Response.FromDiskCache || e.Response.FromPrefetchCache {
				return
			}
			info := &responseInfo{
				url:     u,
				headers: cdpHeaders(e.Response.Headers),
			}
			if cl := info.headers.Get("Content-Length"); cl != "" {
				if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > 0 {
					info.declared = n
				}
			}
			mu.Lock()
			responses[e.RequestID] = info
			mu.Unlock()

		case *network.EventLoadingFinished:
			mu.Lock()
			if info, ok := responses[e.RequestID]; ok {
				info.observed = int64(e.EncodedDataLength)
			}
			mu.Unlock()

		case *network.EventRequestServedFromCache:
			mu.Lock()
			delete(responses, e.RequestID)
			mu.Unlock()
		}
	})

	idleCh := waitNetworkIdle(navCtx, m.cfg.IdleAfter)

	if err := chromedp.Run(navCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
	); err != nil {
		return 0, nil, err
	}

	select {
	case <-idleCh:
	case <-navCtx.Done():
		return 0, nil, navCtx.Err()
	}

	mu.Lock()
	defer mu.Unlock()

	var total int64
	resources := make([]model.Resource, 0, len(responses))
	for _, info := range responses {
		size := info.declared
		if size <= 0 {
			size = info.observed
		}
		if size < 0 {
			size = 0
		}
		total += size
		resources = append(resources, model.Resource{
			URL:         info.url,
			ByteSize:    size,
			Headers:     info.headers,
			SourceVisit: visit,
		})
	}

	// map iteration order is random; keep the output reproducible
	sort.Slice(resources, func(i, j int) bool { return resources[i].URL < resources[j].URL })

	return total, resources, nil
}

func (m *ChromeDPMeasurer) Close() error {
	return nil
}

// cdpHeaders converts CDP's loosely typed header map into http.Header so the
// rest of the engine gets case-insensitive lookups.
func cdpHeaders(h network.Headers) http.Header {
	out := http.Header{}
	for k, v := range h {
		out.Set(k, fmt.Sprint(v))
	}
	return out
}
