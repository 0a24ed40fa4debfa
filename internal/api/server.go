// Package api exposes the simulator over HTTP and WebSocket.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/observability"
	"montecarlo-lab/internal/orchestrator"
	"montecarlo-lab/internal/reporting"
	"montecarlo-lab/internal/storage"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options for creating Server.
type Options struct {
	Orchestrator *orchestrator.Orchestrator
	Scenarios    storage.ScenarioStore
	Runs         storage.RunSummaryStore // optional, /api/runs answers 503 without it

	WS WSConfig

	Logger *log.Logger // nil means silent
}

// Server is the HTTP API server that connects the orchestrator and the stores.
type Server struct {
	orch      *orchestrator.Orchestrator
	scenarios storage.ScenarioStore
	runs      storage.RunSummaryStore
	reports   *reporting.Generator
	ws        WSConfig
	upgrader  websocket.Upgrader
	logger    *log.Logger
	now       func() time.Time
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	wsCfg := opts.WS
	if wsCfg == (WSConfig{}) {
		wsCfg = DefaultWSConfig()
	}
	return &Server{
		orch:      opts.Orchestrator,
		scenarios: opts.Scenarios,
		runs:      opts.Runs,
		reports:   reporting.NewGenerator(opts.Runs),
		ws:        wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: opts.Logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Handler returns the HTTP handler with all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("POST /api/simulate", s.handleSimulate)
	mux.HandleFunc("GET /api/scenarios", s.handleListScenarios)
	mux.HandleFunc("POST /api/scenarios", s.handleSaveScenario)
	mux.HandleFunc("GET /api/scenarios/{id}", s.handleGetScenario)
	mux.HandleFunc("DELETE /api/scenarios/{id}", s.handleDeleteScenario)
	mux.HandleFunc("POST /api/scenarios/{id}/run", s.handleRunScenario)
	mux.HandleFunc("GET /api/runs", s.handleRecentRuns)
	mux.HandleFunc("GET /ws/simulate", s.handleWSSimulate)
	return metricsMiddleware(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleSimulate runs one simulation. The format query parameter selects
// json (default), markdown, csv or final_values.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	p := domain.DefaultParams()
	if err := decodeBody(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	format := r.URL.Query().Get("format")
	if !validFormat(format) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
		return
	}

	result, err := s.orch.Run(r.Context(), p)
	if err != nil {
		s.logf("Simulation error: %v", err)
		writeStoreError(w, err)
		return
	}
	s.writeResult(r.Context(), w, result, format)
}

func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	runs, err := s.runs.GetRecent(r.Context(), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, runs)
}

func validFormat(format string) bool {
	switch format {
	case "", "json", "markdown", "csv", "final_values":
		return true
	}
	return false
}

func (s *Server) writeResult(ctx context.Context, w http.ResponseWriter, result *domain.Result, format string) {
	switch format {
	case "markdown", "csv":
		report, err := s.reports.Generate(ctx, result)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if format == "markdown" {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.Write([]byte(reporting.RenderMarkdown(report)))
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(reporting.RenderSummaryCSV(report)))
	case "final_values":
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(reporting.RenderFinalValuesCSV(result.FinalValues)))
	default:
		writeJSON(w, result)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSONStatus(w, code, map[string]string{"error": msg})
}

// writeStoreError maps domain and storage errors onto status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParams), errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// metricsMiddleware counts requests per matched route pattern and status.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(rec.code))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.code = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
