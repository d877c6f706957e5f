package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/volunteer-map-page/internal/page"
	"github.com/couchcryptid/volunteer-map-page/internal/registration"
)

const maxCallbackBody = 64 << 10

// PageFactory creates an unmounted page for a new page load.
type PageFactory func(id string) *page.Shell

// Server serves the volunteer page plus health, readiness, and metrics.
type Server struct {
	httpServer    *http.Server
	newPage       PageFactory
	pages         *page.Registry
	renderTimeout time.Duration
	logger        *slog.Logger
}

// NewServer wires the page routes and the operational endpoints.
func NewServer(addr string, newPage PageFactory, pages *page.Registry, ready sharedobs.ReadinessChecker, renderTimeout time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withLogging(logger, mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		newPage:       newPage,
		pages:         pages,
		renderTimeout: renderTimeout,
		logger:        logger,
	}

	mux.HandleFunc("GET /{$}", s.handleNewPage)
	mux.HandleFunc("GET /pages/{id}", s.handlePage)
	mux.HandleFunc("GET /pages/{id}/map", s.handleMap)
	mux.HandleFunc("POST /pages/{id}/registration-result", s.handleRegistrationResult)
	mux.HandleFunc("GET /om-oss", s.handleStatic(page.WriteAboutHTML))
	mux.HandleFunc("GET /i-media", s.handleStatic(page.WritePressHTML))

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleNewPage is one page load: mount a fresh page, give both fetches up to
// the render timeout, then render whatever state has been reached.
func (s *Server) handleNewPage(w http.ResponseWriter, r *http.Request) {
	shell := s.newPage(page.NewID())
	// The page outlives this request; the registration callback arrives later.
	shell.Mount(context.WithoutCancel(r.Context()))
	s.pages.Put(shell)

	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()
	if err := shell.Wait(ctx); err != nil {
		s.logger.Debug("rendering before fetches finished", "page_id", shell.ID(), "error", err)
	}

	s.renderHTML(w, shell)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	shell, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.renderHTML(w, shell)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	shell, ok := s.lookup(w, r)
	if !ok {
		return
	}
	v, err := shell.MapView()
	if err != nil {
		s.logger.Error("map render failed", "page_id", shell.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "map unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type registrationResponse struct {
	Outcome string `json:"outcome"`
	Message string `json:"message"`
	Applied bool   `json:"applied"`
}

func (s *Server) handleRegistrationResult(w http.ResponseWriter, r *http.Request) {
	shell, ok := s.lookup(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		s.logger.Warn("reading registration result", "page_id", shell.ID(), "error", err)
	}
	outcome, applied := shell.OnRegistrationResult(registration.DecodePayload(body))

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		v, err := shell.Render()
		if err != nil {
			s.logger.Error("page render failed", "page_id", shell.ID(), "error", err)
			http.Error(w, "page unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.WriteRegistrationHTML(w, v); err != nil {
			s.logger.Error("write registration html", "page_id", shell.ID(), "error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, registrationResponse{
		Outcome: outcome.Kind.String(),
		Message: outcome.Message,
		Applied: applied,
	})
}

func (s *Server) handleStatic(write func(io.Writer) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := write(w); err != nil {
			s.logger.Error("write static page", "path", r.URL.Path, "error", err)
		}
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*page.Shell, bool) {
	id := r.PathValue("id")
	shell, ok := s.pages.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "page not found"})
		return nil, false
	}
	return shell, true
}

func (s *Server) renderHTML(w http.ResponseWriter, shell *page.Shell) {
	v, err := shell.Render()
	if err != nil {
		s.logger.Error("page render failed", "page_id", shell.ID(), "error", err)
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.WriteHTML(w, v); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("write page html", "page_id", shell.ID(), "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
