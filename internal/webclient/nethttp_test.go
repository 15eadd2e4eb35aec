package webclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/webclient"
)

func TestGetReturnsBodyAndHeaders(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=86400")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "hello page")
	}))
	defer ts.Close()

	client, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, ts.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer client.Close()

	resp, err := client.Get(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != "hello page" {
		t.Errorf("body = %q, want %q", resp.Body, "hello page")
	}
	if resp.Headers.Get("Cache-Control") != "max-age=86400" {
		t.Errorf("Cache-Control = %q", resp.Headers.Get("Cache-Control"))
	}
	if resp.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestHeadSkipsBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.Header().Set("Content-Length", "4096")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, ts.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer client.Close()

	resp, err := client.Head(context.Background(), ts.URL+"/asset.bin")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if len(resp.Body) != 0 {
		t.Errorf("HEAD response carried a body of %d bytes", len(resp.Body))
	}
	if resp.ContentLength != 4096 {
		t.Errorf("ContentLength = %d, want 4096", resp.ContentLength)
	}
}

func TestDoForwardsHeadersAndUserAgent(t *testing.T) {
	t.Parallel()

	var gotAccept, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	client, err := webclient.NewNetHTTPClient(webclient.Config{UserAgent: "carbon-test/1.0"}, nil, ts.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer client.Close()

	headers := http.Header{}
	headers.Set("Accept", "text/html")
	_, err = client.Do(context.Background(), &webclient.Request{
		Method:  "GET",
		URL:     ts.URL,
		Headers: headers,
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAccept != "text/html" {
		t.Errorf("Accept = %q, want text/html", gotAccept)
	}
	if gotUA != "carbon-test/1.0" {
		t.Errorf("User-Agent = %q, want carbon-test/1.0", gotUA)
	}
}

func TestDoNilRequest(t *testing.T) {
	t.Parallel()

	client, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer client.Close()

	if _, err := client.Do(context.Background(), nil); err == nil {
		t.Error("expected error for nil request")
	}
}

func TestDoRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer ts.Close()

	client, err := webclient.NewNetHTTPClient(webclient.Config{}, nil, ts.Client())
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := client.Get(ctx, ts.URL)
		errCh <- err
	}()

	<-started
	cancel()

	if err := <-errCh; err == nil {
		t.Error("expected error after context cancellation")
	}
}
