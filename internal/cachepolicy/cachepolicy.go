// Package cachepolicy decides whether a resource would be fetched again on a
// return visit, based solely on its Cache-Control response header. It is an
// approximation, not a browser-accurate cache model: forcing directives are
// always consulted before any numeric max-age.
package cachepolicy

import (
	"net/http"
	"strconv"
	"strings"
)

// PresumedFreshSeconds is the minimum max-age (one day) for which a resource
// is presumed to still be cached when the visitor comes back.
const PresumedFreshSeconds = 86400

// directives that force revalidation or forbid reuse outright
var forcingDirectives = []string{"no-cache", "no-store", "must-revalidate"}

// WouldRefetch reports whether a return visit is expected to re-download the
// resource described by headers. The decision order is fixed:
//
//  1. no-cache, no-store, must-revalidate or max-age=0 → refetch
//  2. max-age ≥ one day → presumed cached
//  3. max-age < one day → refetch
//  4. no usable Cache-Control signal → refetch (conservative default)
func WouldRefetch(headers http.Header) bool {
	if headers == nil {
		return true
	}

	cc := strings.ToLower(headers.Get("Cache-Control"))
	if cc == "" {
		return true
	}

	for _, directive := range forcingDirectives {
		if strings.Contains(cc, directive) {
			return true
		}
	}

	if maxAge, ok := parseMaxAge(cc); ok {
		return maxAge < PresumedFreshSeconds
	}

	return true
}

// parseMaxAge extracts the max-age directive value from a lower-cased
// Cache-Control string. Returns ok=false when the directive is absent or its
// value is not a non-negative integer.
func parseMaxAge(cc string) (int, bool) {
	for _, part := range strings.Split(cc, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "max-age=") {
			continue
		}
		value := strings.TrimPrefix(part, "max-age=")
		value = strings.Trim(value, `"`)
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return 0, false
		}
		return seconds, true
	}
	return 0, false
}
