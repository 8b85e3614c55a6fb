package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tablewatch"
	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/registry"
	"github.com/go-chi/chi/v5"
)

// Catalog is the read and materialize surface of the loaded definitions.
type Catalog interface {
	Units() []domain.ProcessingUnit
	Unit(name string) (domain.ProcessingUnit, bool)
	External() []domain.ExternalSpec
	Materialize(ctx context.Context, name string) (string, error)
}

// Ticker drives the sensor. Manual ticks share the scheduler's serialization.
type Ticker interface {
	TickNow(ctx context.Context) (domain.Evaluation, error)
	Last() (domain.Evaluation, bool)
	Ticks() int64
}

// Server serves the status API.
type Server struct {
	Catalog Catalog
	Ticker  Ticker
	Streams *StreamManager
	Metrics http.Handler

	logger *slog.Logger
}

// Option configures the handler built by NewHandler.
type Option func(*Server)

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithStreams sets the stream manager backing GET /events.
// The same manager's Hooks must be installed on the sensor for events to flow.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger sets a custom structured logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the definitions and their scheduler.
func NewHandler(catalog Catalog, ticker Ticker, opts ...Option) http.Handler {
	s := &Server{
		Catalog: catalog,
		Ticker:  ticker,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/status", s.GetStatus)
	r.Post("/tick", s.Tick)
	r.Get("/events", s.SubscribeEvents)
	r.Route("/units", func(r chi.Router) {
		r.Get("/", s.ListUnits)
		r.Get("/{name}", s.GetUnit)
		r.Post("/{name}/materialize", s.MaterializeUnit)
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Ticks int64              `json:"ticks"`
	Last  *domain.Evaluation `json:"last,omitempty"`
}

// UnitsResponse is the body of GET /units.
type UnitsResponse struct {
	Units    []domain.ProcessingUnit `json:"units"`
	External []domain.ExternalSpec   `json:"external"`
}

// MaterializeResponse is the body of POST /units/{name}/materialize.
type MaterializeResponse struct {
	Unit   string `json:"unit"`
	Output string `json:"output"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "tablewatch-http",
		"version": strings.TrimSpace(tablewatch.Version),
	})
}

// GetStatus handles the GET /status request.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Ticks: s.Ticker.Ticks()}
	if last, ok := s.Ticker.Last(); ok {
		resp.Last = &last
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Tick handles the POST /tick request.
func (s *Server) Tick(w http.ResponseWriter, r *http.Request) {
	eval, err := s.Ticker.TickNow(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Tick error: %v", err), http.StatusConflict)
		s.logger.Warn("Tick rejected", "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, eval)
}

// ListUnits handles the GET /units request.
func (s *Server) ListUnits(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, UnitsResponse{
		Units:    s.Catalog.Units(),
		External: s.Catalog.External(),
	})
}

// GetUnit handles the GET /units/{name} request.
func (s *Server) GetUnit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	u, ok := s.Catalog.Unit(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unit %q not found", name), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, u)
}

// MaterializeUnit handles the POST /units/{name}/materialize request.
func (s *Server) MaterializeUnit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	out, err := s.Catalog.Materialize(r.Context(), name)
	if err != nil {
		if errors.Is(err, registry.ErrUnitNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Materialize error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Materialize failed", "unit", name, "error", err)
		return
	}
	s.writeJSON(w, http.StatusOK, MaterializeResponse{Unit: name, Output: out})
}

// SubscribeEvents handles the GET /events request (SSE).
// Each message is one JSON evaluation, sent as the sensor finishes a tick.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: evaluation\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

// NewServer wraps handler in an http.Server with the timeouts used by the CLI.
// WriteTimeout is left unset so /events streams stay open.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
