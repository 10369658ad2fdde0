// Package api exposes the HTTP interface for the annotation job
// service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seqcenter/annoserve/internal/job"
	"github.com/seqcenter/annoserve/internal/metrics"
)

// JobService is the slice of the job lifecycle the HTTP layer needs.
type JobService interface {
	Init(name string, replicons job.RepliconTableType) (job.Credentials, job.UploadLinks, error)
	Start(ctx context.Context, creds job.Credentials, cfg job.JobConfig, origin string) error
	List(pairs []job.Credentials) job.ListResult
	Delete(ctx context.Context, creds job.Credentials) error
	Results(creds job.Credentials) (job.Results, error)
	Logs(ctx context.Context, creds job.Credentials) (string, error)
	Version() job.Version
}

// Server wires HTTP handlers to the job service.
type Server struct {
	router  chi.Router
	service JobService
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(service JobService, logger *zap.Logger) *Server {
	s := &Server{
		service: service,
		logger:  logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(60 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/job", func(r chi.Router) {
			r.Post("/init", s.initJob)
			r.Post("/list", s.listJobs)
			r.Post("/start", s.startJob)
			r.Post("/result", s.jobResult)
			r.Post("/logs", s.jobLogs)
		})
		r.Delete("/delete", s.deleteJob)
		r.Get("/version", s.version)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// Readiness is implied by a running process: startup fails hard
	// when the engine is unreachable.
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}
