package measurer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
)

// BackendConstructor constructs a Measurer given the config and logger.
type BackendConstructor func(cfg Config, logger logging.Logger) (Measurer, error)

var (
	mu       sync.RWMutex
	registry = map[string]BackendConstructor{}
)

// RegisterBackend registers a named backend constructor. Name is lower-cased
// internally. Calling RegisterBackend with the same name overwrites the
// previous constructor.
func RegisterBackend(name string, ctor BackendConstructor) {
	if name == "" || ctor == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = ctor
}

// New constructs the named measurement backend. It returns an error if the
// backend has not been registered. An empty name defaults to the HTTP backend.
func New(backend string, cfg Config, logger logging.Logger) (Measurer, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend == "" {
		backend = BackendHTTP
	}

	mu.RLock()
	ctor, ok := registry[backend]
	mu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("measurer backend %q not registered: available backends=%v", backend, ListBackends())
	}

	m, err := ctor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to construct measurer backend %q: %w", backend, err)
	}
	if m == nil {
		return nil, errors.New("measurer constructor returned nil")
	}
	return m, nil
}

// ListBackends returns the list of registered backend names.
func ListBackends() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}

// RegisterDefaultBackends registers the default http and chromedp backends.
// Call this early in main() to make backends available to New.
func RegisterDefaultBackends() {
	RegisterBackend(BackendHTTP, func(cfg Config, logger logging.Logger) (Measurer, error) {
		return NewHTTPMeasurer(cfg.HTTP, logger, nil)
	})

	RegisterBackend(BackendChromedp, func(cfg Config, logger logging.Logger) (Measurer, error) {
		return NewChromeDPMeasurer(cfg.Browser, logger)
	})
}
