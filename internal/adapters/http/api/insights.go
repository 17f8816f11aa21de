package api

import (
	"context"
	"net/http"

	service "github.com/okian/hrdash/internal/app"
	"github.com/okian/hrdash/internal/domain/analytics"
)

// InsightsDependencies defines the read side behind the dashboard pages.
type InsightsDependencies interface {
	Choices(ctx context.Context) (service.Choices, error)
	Overview(ctx context.Context) (analytics.Overview, error)
	Departments(ctx context.Context) (analytics.Departments, error)
	Salaries(ctx context.Context) (analytics.Salaries, error)
	Diversity(ctx context.Context) (analytics.Diversity, error)
	Hiring(ctx context.Context) (analytics.Hiring, error)
}

// InsightsHandler serves the page aggregates as JSON.
type InsightsHandler struct {
	deps InsightsDependencies
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(deps InsightsDependencies) *InsightsHandler {
	return &InsightsHandler{deps: deps}
}

// serveGet answers GET requests with the result of load.
func serveGet[T any](w http.ResponseWriter, r *http.Request, load func(context.Context) (T, error)) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeFailure(w, ErrMethodNotAllowed)
		return
	}
	v, err := load(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleChoices handles GET /api/v1/choices requests.
func (h *InsightsHandler) HandleChoices(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.deps.Choices)
}

// HandleOverview handles GET /api/v1/overview requests.
func (h *InsightsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.deps.Overview)
}

// HandleDepartments handles GET /api/v1/departments requests.
func (h *InsightsHandler) HandleDepartments(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.deps.Departments)
}

// HandleSalaries handles GET /api/v1/salaries requests.
func (h *InsightsHandler) HandleSalaries(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.deps.Salaries)
}

// HandleDiversity handles GET /api/v1/diversity requests.
func (h *InsightsHandler) HandleDiversity(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.deps.Diversity)
}

// HandleHiring handles GET /api/v1/hiring requests.
func (h *InsightsHandler) HandleHiring(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.deps.Hiring)
}
