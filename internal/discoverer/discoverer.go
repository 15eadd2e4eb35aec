// Package discoverer extracts the static resource references of an HTML
// document: image sources, script sources, stylesheet links and media
// sources, including nested <source> elements. It performs no network I/O.
package discoverer

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
)

// resource-bearing attribute lookups, in document evaluation order
var selectors = []struct {
	selector string
	attr     string
}{
	{"img[src]", "src"},
	{"script[src]", "src"},
	{"link[rel='stylesheet'][href]", "href"},
	{"video[src]", "src"},
	{"video[poster]", "poster"},
	{"audio[src]", "src"},
	{"source[src]", "src"},
}

type Discoverer struct {
	logger logging.Logger
}

func New(logger logging.Logger) *Discoverer {
	return &Discoverer{logger: logging.OrDiscard(logger)}
}

// Discover parses html and returns the absolute URLs of every statically
// referenced asset, resolved against baseURL. Malformed candidate URLs are
// skipped silently; they never fail the discovery. The result is
// deduplicated and kept in first-seen document order so repeated runs over
// identical input produce identical output.
func (d *Discoverer) Discover(baseURL string, html []byte) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %s: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]struct{})
	var results []string

	add := func(raw string) {
		resolved, ok := d.resolve(base, raw)
		if !ok {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		results = append(results, resolved)
	}

	for _, s := range selectors {
		attr := s.attr
		doc.Find(s.selector).Each(func(_ int, sel *goquery.Selection) {
			if v, ok := sel.Attr(attr); ok {
				add(v)
			}
		})
	}

	return results, nil
}

// resolve turns a raw attribute value into an absolute http(s) URL string.
func (d *Discoverer) resolve(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		d.logger.Debug("skipping malformed asset url",
			logging.Field{Key: "url", Value: raw},
			logging.Field{Key: "error", Value: err.Error()})
		return "", false
	}

	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		// data:, javascript:, about: and friends carry no network cost here
		return "", false
	}
	if abs.Host == "" {
		return "", false
	}

	return abs.String(), true
}
