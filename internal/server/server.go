package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
)

// Monitor is the engine surface served over HTTP.
type Monitor interface {
	GetHealthStatus() model.HealthStatus
	GetMetrics() model.MonitoringMetrics
	GetActiveAlerts() []model.CostAlert
	GetAlertHistory() []model.CostAlert
	AcknowledgeAlert(id string) (model.CostAlert, error)
	ResolveAlert(id string) (model.CostAlert, error)
	GetThresholds() []model.AlertThreshold
	AddThreshold(t model.AlertThreshold) error
	UpdateThreshold(id string, patch model.ThresholdPatch) (model.AlertThreshold, error)
	RemoveThreshold(id string) error
}

// Server provides the health, metrics and control API.
type Server struct {
	monitor Monitor
	router  chi.Router
	logger  *slog.Logger
}

// NewServer creates an API server. promHandler, when non-nil, is mounted
// at /metrics.
func NewServer(m Monitor, promHandler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		monitor: m,
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.routes(promHandler)
	return s
}

func (s *Server) routes(promHandler http.Handler) {
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleLiveness)
	if promHandler != nil {
		r.Method(http.MethodGet, "/metrics", promHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Get("/alerts", s.handleActiveAlerts)
		r.Get("/alerts/history", s.handleAlertHistory)
		r.Post("/alerts/{id}/acknowledge", s.handleAcknowledge)
		r.Post("/alerts/{id}/resolve", s.handleResolve)

		r.Get("/thresholds", s.handleListThresholds)
		r.Post("/thresholds", s.handleAddThreshold)
		r.Patch("/thresholds/{id}", s.handleUpdateThreshold)
		r.Delete("/thresholds/{id}", s.handleRemoveThreshold)
	})
}

// Handler returns the HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := s.monitor.GetHealthStatus()
	code := http.StatusOK
	if status.Status == model.HealthCritical {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, status)
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.monitor.GetMetrics())
}

func (s *Server) handleActiveAlerts(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.monitor.GetActiveAlerts())
}

func (s *Server) handleAlertHistory(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.monitor.GetAlertHistory())
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	alert, err := s.monitor.AcknowledgeAlert(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	alert, err := s.monitor.ResolveAlert(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

func (s *Server) handleListThresholds(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.monitor.GetThresholds())
}

func (s *Server) handleAddThreshold(w http.ResponseWriter, r *http.Request) {
	var t model.AlertThreshold
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.monitor.AddThreshold(t); err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var patch model.ThresholdPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t, err := s.monitor.UpdateThreshold(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleRemoveThreshold(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.RemoveThreshold(chi.URLParam(r, "id")); err != nil {
		s.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, monitor.ErrAlertNotFound), errors.Is(err, monitor.ErrThresholdNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, monitor.ErrThresholdExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrInvalid):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
