package urlutil_test

import (
	"errors"
	"testing"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/urlutil"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	opts := urlutil.Options{DefaultScheme: "https"}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "https://example.com/page", "https://example.com/page"},
		{"schemeless gets default", "example.com/page", "https://example.com/page"},
		{"uppercase scheme and host", "HTTPS://EXAMPLE.COM/Page", "https://example.com/Page"},
		{"default https port stripped", "https://example.com:443/x", "https://example.com/x"},
		{"default http port stripped", "http://example.com:80/x", "http://example.com/x"},
		{"custom port kept", "https://example.com:8443/x", "https://example.com:8443/x"},
		{"fragment stripped", "https://example.com/x#section", "https://example.com/x"},
		{"query preserved", "https://example.com/x?a=1&b=2", "https://example.com/x?a=1&b=2"},
		{"surrounding whitespace", "  https://example.com  ", "https://example.com"},
		{"idn host to punycode", "https://bücher.de/katalog", "https://xn--bcher-kva.de/katalog"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := urlutil.Canonicalize(tt.in, opts)
			if err != nil {
				t.Fatalf("Canonicalize(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeErrors(t *testing.T) {
	t.Parallel()

	opts := urlutil.Options{DefaultScheme: "https"}

	if _, err := urlutil.Canonicalize("", opts); !errors.Is(err, urlutil.ErrEmptyURL) {
		t.Errorf("empty input: got %v, want ErrEmptyURL", err)
	}
	if _, err := urlutil.Canonicalize("   ", opts); !errors.Is(err, urlutil.ErrEmptyURL) {
		t.Errorf("blank input: got %v, want ErrEmptyURL", err)
	}
	if _, err := urlutil.Canonicalize("ftp://example.com", opts); err == nil {
		t.Error("ftp scheme accepted, want error")
	}
	// Without a default scheme, schemeless input has no host.
	if _, err := urlutil.Canonicalize("example.com", urlutil.Options{}); !errors.Is(err, urlutil.ErrMissingHost) {
		t.Errorf("schemeless without default: got %v, want ErrMissingHost", err)
	}
}
