// Package demosite serves a small local website whose assets carry a mix of
// Cache-Control policies and known payload sizes. Pointing the carbon
// calculator at it gives predictable first-visit and return-visit totals.
package demosite

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// Asset is one static resource with a fixed size and cache policy.
type Asset struct {
	// Path under which the asset is served.
	Path string

	// ContentType of the payload.
	ContentType string

	// Size is the payload length in bytes.
	Size int

	// CacheControl is sent verbatim; empty omits the header.
	CacheControl string

	// Description explains what measurement behavior the asset demonstrates.
	Description string
}

// DefaultAssets covers the cache-policy branches the calculator distinguishes.
func DefaultAssets() []Asset {
	return []Asset{
		{
			Path:         "/static/app.js",
			ContentType:  "application/javascript",
			Size:         30000,
			CacheControl: "max-age=604800",
			Description:  "long max-age, cached on return visits",
		},
		{
			Path:         "/static/style.css",
			ContentType:  "text/css",
			Size:         10000,
			CacheControl: "max-age=86400",
			Description:  "max-age exactly one day, cached on return visits",
		},
		{
			Path:         "/static/hero.png",
			ContentType:  "image/png",
			Size:         250000,
			CacheControl: "max-age=3600",
			Description:  "short max-age, refetched on return visits",
		},
		{
			Path:         "/static/live.js",
			ContentType:  "application/javascript",
			Size:         5000,
			CacheControl: "no-store",
			Description:  "never cached",
		},
		{
			Path:         "/static/tracker.js",
			ContentType:  "application/javascript",
			Size:         8000,
			CacheControl: "no-cache, max-age=31536000",
			Description:  "forcing directive wins over a long max-age",
		},
		{
			Path:        "/static/legacy.js",
			ContentType: "application/javascript",
			Size:        12000,
			Description: "no Cache-Control header, refetched on return visits",
		},
	}
}

// Site serves the demo page and its assets.
type Site struct {
	cfg    Config
	assets map[string]Asset
	mu     sync.RWMutex
	hits   map[string]int
}

// New creates a demo site with the default asset set.
func New(cfg Config) *Site {
	assets := make(map[string]Asset)
	for _, a := range DefaultAssets() {
		assets[a.Path] = a
	}
	return &Site{
		cfg:    cfg,
		assets: assets,
		hits:   make(map[string]int),
	}
}

// Handler builds the site's http.Handler; useful for httptest in addition to
// Start.
func (s *Site) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/static/", s.assetHandler)
	mux.HandleFunc("/demo/hits", s.hitsHandler)
	return mux
}

// Start serves the site on the configured port, blocking until the server
// stops.
func (s *Site) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo site at http://localhost%s\n", addr)
	fmt.Printf("Asset hit counts at http://localhost%s/demo/hits\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Site) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.countHit("/")

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
  <title>Carbon Calculator Demo Site</title>
  <link rel="stylesheet" href="/static/style.css">
</head>
<body>
  <h1>Demo page with mixed cache policies</h1>
  <img src="/static/hero.png" alt="hero">
  <ul>
`)
	for _, a := range DefaultAssets() {
		fmt.Fprintf(&b, "    <li>%s: %d bytes, Cache-Control: %q (%s)</li>\n",
			a.Path, a.Size, a.CacheControl, a.Description)
	}
	b.WriteString(`  </ul>
  <script src="/static/app.js"></script>
  <script src="/static/live.js"></script>
  <script src="/static/tracker.js"></script>
  <script src="/static/legacy.js"></script>
</body>
</html>`)

	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Site) assetHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	asset, ok := s.assets[r.URL.Path]
	s.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	s.countHit(r.URL.Path)

	w.Header().Set("Content-Type", asset.ContentType)
	if asset.CacheControl != "" {
		w.Header().Set("Cache-Control", asset.CacheControl)
	}
	w.Header().Set("Content-Length", fmt.Sprint(asset.Size))
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(payload(asset))
}

// hitsHandler reports how many times each path was fetched, which shows
// which assets a return visit actually re-downloaded.
func (s *Site) hitsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/plain")
	for _, a := range DefaultAssets() {
		fmt.Fprintf(w, "%s\t%d\n", a.Path, s.hits[a.Path])
	}
	fmt.Fprintf(w, "/\t%d\n", s.hits["/"])
}

func (s *Site) countHit(path string) {
	s.mu.Lock()
	s.hits[path]++
	s.mu.Unlock()
}

// payload generates a deterministic body of exactly asset.Size bytes.
func payload(a Asset) []byte {
	b := make([]byte, a.Size)
	fill := []byte("/* " + a.Path + " */ ")
	for i := range b {
		b[i] = fill[i%len(fill)]
	}
	return b
}
