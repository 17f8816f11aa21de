// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/hrdash/internal/app"
	"github.com/okian/hrdash/internal/adapters/render"
	"github.com/okian/hrdash/internal/domain/predictor"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictDependencies
	InsightsDependencies
	ChartDependencies
	StatsProvider
}

// Server wires HTTP routes for the JSON API, charts and metrics.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	predictHandler  *PredictHandler
	insightsHandler *InsightsHandler
	chartHandler    *ChartHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		predictHandler:  NewPredictHandler(deps),
		insightsHandler: NewInsightsHandler(deps),
		chartHandler:    NewChartHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/charts/{file}", MetricsMiddleware(s.chartHandler.HandleChart, "charts"))

	mux.HandleFunc("/api/v1/predict", MetricsMiddleware(RequestIDMiddleware(s.predictHandler.HandlePredict), "predict"))
	mux.HandleFunc("/api/v1/choices", MetricsMiddleware(s.insightsHandler.HandleChoices, "choices"))
	mux.HandleFunc("/api/v1/overview", MetricsMiddleware(s.insightsHandler.HandleOverview, "overview"))
	mux.HandleFunc("/api/v1/departments", MetricsMiddleware(s.insightsHandler.HandleDepartments, "departments"))
	mux.HandleFunc("/api/v1/salaries", MetricsMiddleware(s.insightsHandler.HandleSalaries, "salaries"))
	mux.HandleFunc("/api/v1/diversity", MetricsMiddleware(s.insightsHandler.HandleDiversity, "diversity"))
	mux.HandleFunc("/api/v1/hiring", MetricsMiddleware(s.insightsHandler.HandleHiring, "hiring"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// StatusFor maps an error onto an HTTP status and a stable error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidRequest), errors.Is(err, render.ErrInvalidSize):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, predictor.ErrModelLoad):
		return http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, predictor.ErrInference):
		return http.StatusUnprocessableEntity, "inference_failed"
	case errors.Is(err, service.ErrUnknownChart):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, render.ErrEmptyChart):
		return http.StatusNotFound, "no_data"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_ready"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeFailure(w http.ResponseWriter, err error) {
	status, code := StatusFor(err)
	writeError(w, status, code, err)
}
