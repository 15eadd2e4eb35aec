package discoverer_test

import (
	"reflect"
	"testing"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/discoverer"
)

func TestDiscoverExtractsAllAssetKinds(t *testing.T) {
	t.Parallel()

	html := []byte(`<!DOCTYPE html>
<html>
<head>
  <link rel="stylesheet" href="/css/site.css">
  <link rel="icon" href="/favicon.ico">
  <script src="https://cdn.example.net/lib.js"></script>
</head>
<body>
  <img src="images/logo.png">
  <video src="/media/intro.mp4" poster="/media/poster.jpg"></video>
  <audio src="/media/theme.ogg"></audio>
  <video><source src="/media/alt.webm"></video>
  <script>console.log("inline, no src")</script>
</body>
</html>`)

	d := discoverer.New(nil)
	got, err := d.Discover("https://example.com/articles/page.html", html)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{
		"https://example.com/articles/images/logo.png",
		"https://cdn.example.net/lib.js",
		"https://example.com/css/site.css",
		"https://example.com/media/intro.mp4",
		"https://example.com/media/poster.jpg",
		"https://example.com/media/theme.ogg",
		"https://example.com/media/alt.webm",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover = %v, want %v", got, want)
	}
}

func TestDiscoverDeduplicates(t *testing.T) {
	t.Parallel()

	html := []byte(`
<img src="/a.png">
<img src="/a.png">
<img src="a.png">
<script src="/a.png"></script>`)

	d := discoverer.New(nil)
	got, err := d.Discover("https://example.com/", html)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 1 || got[0] != "https://example.com/a.png" {
		t.Errorf("Discover = %v, want single https://example.com/a.png", got)
	}
}

func TestDiscoverSkipsNonNetworkSchemes(t *testing.T) {
	t.Parallel()

	html := []byte(`
<img src="data:image/png;base64,iVBORw0KGgo=">
<img src="javascript:void(0)">
<img src="">
<img src="/real.png">`)

	d := discoverer.New(nil)
	got, err := d.Discover("https://example.com/", html)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"https://example.com/real.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover = %v, want %v", got, want)
	}
}

func TestDiscoverMalformedCandidatesAreSkipped(t *testing.T) {
	t.Parallel()

	html := []byte(`
<img src="http://exa mple.com/broken.png">
<img src="/fine.png">`)

	d := discoverer.New(nil)
	got, err := d.Discover("https://example.com/", html)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"https://example.com/fine.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Discover = %v, want %v", got, want)
	}
}

func TestDiscoverBadBaseURL(t *testing.T) {
	t.Parallel()

	d := discoverer.New(nil)
	if _, err := d.Discover("http://exa mple.com", []byte("<img src='/a.png'>")); err == nil {
		t.Error("expected error for unparseable base URL")
	}
}

func TestDiscoverIsStableAcrossRuns(t *testing.T) {
	t.Parallel()

	html := []byte(`
<img src="/one.png"><img src="/two.png">
<script src="/three.js"></script>
<link rel="stylesheet" href="/four.css">`)

	d := discoverer.New(nil)
	first, err := d.Discover("https://example.com/", html)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := d.Discover("https://example.com/", html)
		if err != nil {
			t.Fatalf("Discover: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced %v, first run produced %v", i, again, first)
		}
	}
}
