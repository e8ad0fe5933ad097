// Package server exposes the corpus views over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/matsen/citeline/internal/views"
	"github.com/matsen/citeline/internal/viz"
	"github.com/sirupsen/logrus"
)

//go:embed templates/index.html
var templateFS embed.FS

// API paths.
const (
	CitationsPath    = "/api/citations"
	TimeSeriesPath   = "/api/timeseries"
	PublicationsPath = "/api/publications"
	GraphPath        = "/api/graph"
	HealthPath       = "/healthz"
)

// Views computes the documents served by the API.
type Views interface {
	Citations(ctx context.Context) (views.CitationGraph, error)
	Timeline(ctx context.Context, search string) ([]views.NormalizedArticle, error)
	TimeSeries(ctx context.Context, search string) (views.Series, error)
}

// Config holds server settings.
type Config struct {
	Listen           string
	RateLimit        float64 // Requests per second per client; <= 0 disables
	RateBurst        int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	TimelineHeadline string
	DefaultVirus     string
}

// Server serves the corpus views.
type Server struct {
	views   Views
	cfg     Config
	logger  logrus.FieldLogger
	limiter *Limiter
	index   *template.Template
}

// New returns a Server over v. A nil logger uses the logrus standard logger.
func New(v Views, cfg Config, logger logrus.FieldLogger) (*Server, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}
	return &Server{
		views:   v,
		cfg:     cfg,
		logger:  logger,
		limiter: NewLimiter(cfg.RateLimit, cfg.RateBurst),
		index:   index,
	}, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	mux.HandleFunc("GET "+CitationsPath, s.handleCitations)
	mux.HandleFunc("GET "+TimeSeriesPath, s.handleTimeSeries)
	mux.HandleFunc("GET "+PublicationsPath, s.handlePublications)
	mux.HandleFunc("GET "+GraphPath, s.handleGraph)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /{virus}", s.handleIndex)

	return s.withAccessLog(s.withRateLimit(mux))
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go s.sweepLimiter(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("listen", s.cfg.Listen).Info("serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", s.cfg.Listen, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// sweepLimiter drops idle rate-limit buckets every interval.
func (s *Server) sweepLimiter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := s.limiter.Sweep(t.Add(-interval)); n > 0 {
				s.logger.WithField("clients", n).Debug("dropped idle rate limiters")
			}
		}
	}
}

type indexPage struct {
	Virus           string
	Headline        string
	CitationsURL    string
	TimeSeriesURL   string
	PublicationsURL string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	virus := r.PathValue("virus")
	if virus == "" {
		virus = s.cfg.DefaultVirus
	}

	page := indexPage{
		Virus:           virus,
		Headline:        s.cfg.TimelineHeadline,
		CitationsURL:    CitationsPath,
		TimeSeriesURL:   TimeSeriesPath,
		PublicationsURL: PublicationsPath,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, page); err != nil {
		s.logger.WithError(err).Error("rendering index")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	graph, err := s.views.Citations(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

// handleGraph serves the citation graph as Cytoscape.js elements.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.views.Citations(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viz.BuildGraph(graph).Elements())
}

// handleTimeSeries ignores the disease parameter; every virus shares one corpus.
func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.views.TimeSeries(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handlePublications(w http.ResponseWriter, r *http.Request) {
	timeline, err := s.views.Timeline(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderTimeline(s.cfg.TimelineHeadline, timeline))
}

// fail logs a view error and answers with a 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithError(err).WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"request_id": w.Header().Get(RequestIDHeader),
	}).Error("view failed")
	writeError(w, http.StatusInternalServerError, err.Error())
}
