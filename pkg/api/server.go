package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/cuemby/tally/pkg/aggregate"
	"github.com/cuemby/tally/pkg/log"
	"github.com/cuemby/tally/pkg/metrics"
	"github.com/cuemby/tally/pkg/report"
	"github.com/cuemby/tally/pkg/tracker"
	"github.com/cuemby/tally/pkg/types"
	"github.com/rs/zerolog"
)

// Reader is the read side of the tracker served over HTTP
type Reader interface {
	Subjects() []types.Subject
	FindSubject(ref string) (types.Subject, bool)
	Overview() ([]aggregate.Summary, aggregate.Summary)
	SubjectDetail(id string) (tracker.Detail, bool)
	Today(now time.Time) []aggregate.DayStatus
	Limits() types.Limits
	Now() time.Time
}

// Server serves health, metrics and read-only JSON reports
type Server struct {
	reader Reader
	mux    *http.ServeMux
	logger zerolog.Logger

	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a server reading from r
func NewServer(r Reader) *Server {
	mux := http.NewServeMux()
	s := &Server{
		reader: r,
		mux:    mux,
		logger: log.WithComponent("api"),
	}

	// Probes and metrics
	mux.Handle("GET /health", metrics.HealthHandler())
	mux.Handle("GET /ready", metrics.ReadyHandler())
	mux.Handle("GET /live", metrics.LivenessHandler())
	mux.Handle("/metrics", metrics.Handler())

	// Reports
	mux.HandleFunc("GET /v1/overview", s.overviewHandler)
	mux.HandleFunc("GET /v1/subjects", s.subjectsHandler)
	mux.HandleFunc("GET /v1/subjects/{ref}", s.subjectHandler)
	mux.HandleFunc("GET /v1/today", s.todayHandler)
	mux.HandleFunc("GET /v1/limits", s.limitsHandler)

	return s
}

// Start listens on addr until Stop is called
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Handler returns the HTTP handler for embedding in other servers
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) overviewHandler(w http.ResponseWriter, r *http.Request) {
	summaries, overall := s.reader.Overview()
	s.render(w, func(rr *report.Renderer) error {
		return rr.Overview(summaries, overall, s.reader.Limits())
	})
}

func (s *Server) subjectsHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, func(rr *report.Renderer) error {
		return rr.Subjects(s.reader.Subjects())
	})
}

func (s *Server) subjectHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := s.reader.FindSubject(r.PathValue("ref"))
	if !ok {
		http.Error(w, "subject not found", http.StatusNotFound)
		return
	}
	detail, ok := s.reader.SubjectDetail(subject.ID)
	if !ok {
		http.Error(w, "subject not found", http.StatusNotFound)
		return
	}
	s.render(w, func(rr *report.Renderer) error {
		return rr.Detail(detail)
	})
}

func (s *Server) todayHandler(w http.ResponseWriter, r *http.Request) {
	now := s.reader.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := types.ParseDate(d)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		now = parsed
	}
	statuses := s.reader.Today(now)
	s.render(w, func(rr *report.Renderer) error {
		return rr.Today(types.FormatDate(now), int(now.Weekday()), statuses)
	})
}

func (s *Server) limitsHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, func(rr *report.Renderer) error {
		return rr.Limits(s.reader.Limits())
	})
}

func (s *Server) render(w http.ResponseWriter, fn func(*report.Renderer) error) {
	w.Header().Set("Content-Type", "application/json")
	if err := fn(report.New(w, report.FormatJSON)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}
