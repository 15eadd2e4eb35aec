package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tys-adventure/nsc-carbon-footprint-calculator/docs" // swagger spec
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/app"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/history"
	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
)

// Server is the HTTP + WebSocket API surface for the carbon calculator.
type Server struct {
	cfg          Config
	orchestrator *app.Orchestrator
	store        *history.Store
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
}

// NewServer creates a new Server with its own Orchestrator.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	var store *history.Store
	var recorder app.Recorder
	if cfg.AppConfig.HistoryPath != "" {
		var err error
		store, err = history.NewStore(history.Config{Path: cfg.AppConfig.HistoryPath}, logger)
		if err != nil {
			return nil, err
		}
		recorder = store
	}

	orch := app.NewOrchestrator(cfg.AppConfig, recorder, logger)

	r := chi.NewRouter()
	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		store:        store,
		router:       r,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *app.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/measurements", s.optionsHandler("GET, POST"))
	r.Options("/measurements/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/history", s.optionsHandler("GET"))
	r.Options("/history/compare", s.optionsHandler("GET"))
	r.Options("/history/{id}", s.optionsHandler("GET"))

	// Measurement jobs
	r.Post("/measurements", s.handleStartMeasurement)
	r.Get("/measurements", s.handleListMeasurements)
	r.Get("/measurements/{jobID}", s.handleGetMeasurement)
	r.Delete("/measurements/{jobID}", s.handleCancelMeasurement)

	// WebSocket: start a measurement and stream its progress
	r.Get("/ws/measurements", s.handleMeasurementWS)

	// Persisted reports
	r.Get("/history", s.handleListHistory)
	r.Get("/history/compare", s.handleCompareHistory)
	r.Get("/history/{id}", s.handleGetHistory)

	r.Get("/healthz", s.handleHealth)

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the orchestrator and underlying resources.
func (s *Server) Close() {
	if s.orchestrator != nil {
		_ = s.orchestrator.Shutdown(nil)
	}
	if s.store != nil {
		_ = s.store.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

// handleStartMeasurement starts a background measurement job.
//
// @Summary Start a measurement job
// @Accept json
// @Produce json
// @Param request body StartMeasurementRequest true "page to measure"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Router /measurements [post]
func (s *Server) handleStartMeasurement(w http.ResponseWriter, r *http.Request) {
	var body StartMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	preferBrowser := s.cfg.AppConfig.PreferBrowser
	if body.PreferBrowser != nil {
		preferBrowser = *body.PreferBrowser
	}

	job, err := s.orchestrator.StartMeasureJob(body.URL, preferBrowser)
	if err != nil {
		s.logger.Warn("starting measurement job", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("started measurement job",
		logging.Field{Key: "job_id", Value: job.ID},
		logging.Field{Key: "url", Value: body.URL})
	writeJSON(w, http.StatusAccepted, job)
}

// handleListMeasurements lists all known jobs, newest first.
//
// @Summary List measurement jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /measurements [get]
func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.ListJobs())
}

// handleGetMeasurement returns one job including its outcome once done.
//
// @Summary Get a measurement job
// @Produce json
// @Param jobID path string true "job ID"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /measurements/{jobID} [get]
func (s *Server) handleGetMeasurement(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelMeasurement cancels a running job.
//
// @Summary Cancel a measurement job
// @Produce json
// @Param jobID path string true "job ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /measurements/{jobID} [delete]
func (s *Server) handleCancelMeasurement(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if !s.orchestrator.CancelJob(jobID) {
		writeError(w, http.StatusNotFound, "no cancelable job")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMeasurementWS starts a measurement from query parameters and streams
// job events over a websocket until the job finishes.
func (s *Server) handleMeasurementWS(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	preferBrowser := s.cfg.AppConfig.PreferBrowser
	if b := r.URL.Query().Get("browser"); b != "" {
		preferBrowser = b == "true" || b == "1"
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	job, err := s.orchestrator.StartMeasureJob(pageURL, preferBrowser)
	if err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started measurement job over websocket", logging.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(job)

	events := s.orchestrator.JobEvents(job.ID)
	if events == nil {
		return
	}
	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
}

// handleListHistory lists persisted reports.
//
// @Summary List persisted measurement reports
// @Produce json
// @Param url query string false "filter by exact canonical URL"
// @Param limit query int false "maximum entries"
// @Success 200 {array} history.Entry
// @Failure 503 {object} ErrorResponse
// @Router /history [get]
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history persistence disabled")
		return
	}

	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := s.store.List(r.Context(), r.URL.Query().Get("url"), limit)
	if err != nil {
		s.logger.Warn("listing history", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetHistory returns one persisted report.
//
// @Summary Get a persisted measurement report
// @Produce json
// @Param id path string true "entry ID"
// @Success 200 {object} history.Entry
// @Failure 404 {object} ErrorResponse
// @Router /history/{id} [get]
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history persistence disabled")
		return
	}

	entry, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "measurement not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleCompareHistory diffs two persisted reports of the same page.
//
// @Summary Compare two persisted reports
// @Produce json
// @Param base query string true "base entry ID"
// @Param head query string true "head entry ID"
// @Success 200 {object} history.Comparison
// @Failure 400 {object} ErrorResponse
// @Router /history/compare [get]
func (s *Server) handleCompareHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history persistence disabled")
		return
	}

	baseID := r.URL.Query().Get("base")
	headID := r.URL.Query().Get("head")
	if baseID == "" || headID == "" {
		writeError(w, http.StatusBadRequest, "base and head query parameters are required")
		return
	}

	cmp, err := s.store.Compare(r.Context(), baseID, headID)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// handleHealth reports liveness.
//
// @Summary Health check
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
