package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/app"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/measurer"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/model"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/server"
)

type stubBackend struct {
	mode model.Mode
}

func (s stubBackend) Measure(ctx context.Context, pageURL string) (*model.MeasurementResult, error) {
	return &model.MeasurementResult{
		URL:         pageURL,
		Mode:        s.mode,
		FirstVisit:  model.VisitMeasurement{TotalBytes: 80000, Mode: s.mode},
		ReturnVisit: model.VisitMeasurement{TotalBytes: 8000, Mode: s.mode},
	}, nil
}

func (stubBackend) Close() error { return nil }

func registerStubBackends() {
	measurer.RegisterBackend(measurer.BackendChromedp, func(cfg measurer.Config, logger logging.Logger) (measurer.Measurer, error) {
		return stubBackend{mode: model.ModeBrowser}, nil
	})
	measurer.RegisterBackend(measurer.BackendHTTP, func(cfg measurer.Config, logger logging.Logger) (measurer.Measurer, error) {
		return stubBackend{mode: model.ModeHTTP}, nil
	})
}

func newTestServer(t *testing.T, historyPath string) (*server.Server, *httptest.Server) {
	t.Helper()
	registerStubBackends()

	appCfg := app.DefaultConfig()
	appCfg.HistoryPath = historyPath

	srv, err := server.NewServer(server.Config{
		ListenAddr: ":0",
		AppConfig:  appCfg,
		Logger:     logging.Discard{},
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func waitForDone(t *testing.T, baseURL, jobID string) app.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/measurements/" + jobID)
		if err != nil {
			t.Fatalf("GET job: %v", err)
		}
		var job app.Job
		decodeJSON(t, resp, &job)
		if job.Status == app.JobDone || job.Status == app.JobFailed {
			return job
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("job never finished")
	return app.Job{}
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var health map[string]string
	decodeJSON(t, resp, &health)
	if health["status"] != "ok" {
		t.Errorf("health = %v", health)
	}
}

func TestStartMeasurementJob(t *testing.T) {
	_, ts := newTestServer(t, "")

	resp := postJSON(t, ts.URL+"/measurements", map[string]any{"url": "https://example.com"})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var job app.Job
	decodeJSON(t, resp, &job)
	if job.ID == "" {
		t.Fatal("job has no ID")
	}

	final := waitForDone(t, ts.URL, job.ID)
	if final.Status != app.JobDone {
		t.Fatalf("status = %q (error %q), want done", final.Status, final.Error)
	}
	if final.Outcome == nil || final.Outcome.Report == nil {
		t.Fatal("finished job carries no report")
	}
	if final.Outcome.Result.Mode != model.ModeBrowser {
		t.Errorf("mode = %q, want browser (server default prefers browser)", final.Outcome.Result.Mode)
	}
}

func TestStartMeasurementPreferBrowserOverride(t *testing.T) {
	_, ts := newTestServer(t, "")

	preferBrowser := false
	resp := postJSON(t, ts.URL+"/measurements", map[string]any{
		"url":            "https://example.com",
		"prefer_browser": &preferBrowser,
	})
	var job app.Job
	decodeJSON(t, resp, &job)

	final := waitForDone(t, ts.URL, job.ID)
	if final.Outcome.Result.Mode != model.ModeHTTP {
		t.Errorf("mode = %q, want http after override", final.Outcome.Result.Mode)
	}
}

func TestStartMeasurementRejectsBadRequests(t *testing.T) {
	_, ts := newTestServer(t, "")

	resp := postJSON(t, ts.URL+"/measurements", map[string]any{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing url: status = %d, want 400", resp.StatusCode)
	}

	r, err := http.Post(ts.URL+"/measurements", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid json: status = %d, want 400", r.StatusCode)
	}
}

func TestListMeasurements(t *testing.T) {
	_, ts := newTestServer(t, "")

	resp := postJSON(t, ts.URL+"/measurements", map[string]any{"url": "https://example.com"})
	var job app.Job
	decodeJSON(t, resp, &job)
	waitForDone(t, ts.URL, job.ID)

	listResp, err := http.Get(ts.URL + "/measurements")
	if err != nil {
		t.Fatalf("GET /measurements: %v", err)
	}
	var jobs []app.Job
	decodeJSON(t, listResp, &jobs)
	if len(jobs) == 0 {
		t.Fatal("expected at least one job in the list")
	}
}

func TestGetUnknownJob(t *testing.T) {
	_, ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/measurements/no-such-job")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCancelUnknownJob(t *testing.T) {
	_, ts := newTestServer(t, "")

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/measurements/no-such-job", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHistoryDisabledWithoutStore(t *testing.T) {
	_, ts := newTestServer(t, "")

	for _, path := range []string{"/history", "/history/some-id", "/history/compare?base=a&head=b"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("GET %s: status = %d, want 503", path, resp.StatusCode)
		}
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "server.db")
	_, ts := newTestServer(t, dbPath)

	// Two runs of the same page land in history.
	for i := 0; i < 2; i++ {
		resp := postJSON(t, ts.URL+"/measurements", map[string]any{"url": "https://example.com"})
		var job app.Job
		decodeJSON(t, resp, &job)
		final := waitForDone(t, ts.URL, job.ID)
		if final.Outcome.HistoryID == "" {
			t.Fatal("finished job was not persisted")
		}
	}

	listResp, err := http.Get(ts.URL + "/history?url=https://example.com")
	if err != nil {
		t.Fatalf("GET /history: %v", err)
	}
	var entries []map[string]any
	decodeJSON(t, listResp, &entries)
	if len(entries) != 2 {
		t.Fatalf("history has %d entries, want 2", len(entries))
	}

	id, _ := entries[0]["id"].(string)
	oneResp, err := http.Get(ts.URL + "/history/" + id)
	if err != nil {
		t.Fatalf("GET /history/{id}: %v", err)
	}
	oneResp.Body.Close()
	if oneResp.StatusCode != http.StatusOK {
		t.Errorf("GET one entry: status = %d, want 200", oneResp.StatusCode)
	}

	baseID, _ := entries[1]["id"].(string)
	cmpResp, err := http.Get(ts.URL + "/history/compare?base=" + baseID + "&head=" + id)
	if err != nil {
		t.Fatalf("GET /history/compare: %v", err)
	}
	cmpResp.Body.Close()
	if cmpResp.StatusCode != http.StatusOK {
		t.Errorf("compare: status = %d, want 200", cmpResp.StatusCode)
	}
}

func TestCompareRequiresBothIDs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "server.db")
	_, ts := newTestServer(t, dbPath)

	resp, err := http.Get(ts.URL + "/history/compare?base=only")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCORSHeaders(t *testing.T) {
	_, ts := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS origin header missing")
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/measurements", nil)
	preflight, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS: %v", err)
	}
	preflight.Body.Close()
	if preflight.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", preflight.StatusCode)
	}
	if !strings.Contains(preflight.Header.Get("Access-Control-Allow-Methods"), "POST") {
		t.Error("preflight does not allow POST")
	}
}

func TestWebsocketStreamsJobEvents(t *testing.T) {
	_, ts := newTestServer(t, "")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/measurements?url=https://example.com"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// First frame is the job snapshot.
	var job app.Job
	if err := conn.ReadJSON(&job); err != nil {
		t.Fatalf("read job frame: %v", err)
	}
	if job.ID == "" {
		t.Fatal("job frame has no ID")
	}

	// Then events until the channel closes; the last one is the result.
	var last app.JobEvent
	for {
		var ev app.JobEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		last = ev
	}
	if last.Type != app.JobEventResult || last.Status != app.JobDone {
		t.Errorf("final event = %+v, want done result", last)
	}
	if last.Outcome == nil {
		t.Error("final event carries no outcome")
	}
}
