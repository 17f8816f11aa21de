package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ChartDependencies renders charts by id.
type ChartDependencies interface {
	Chart(ctx context.Context, id string, width, height int) ([]byte, error)
}

// ChartHandler serves rendered PNG charts.
type ChartHandler struct {
	deps ChartDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleChart handles GET /charts/{id}.png requests. Optional w and h query
// parameters override the default size.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeFailure(w, ErrMethodNotAllowed)
		return
	}
	file := r.PathValue("file")
	id, ok := strings.CutSuffix(file, ".png")
	if !ok || id == "" {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("no chart at %s", r.URL.Path))
		return
	}
	width, err := sizeParam(r, "w")
	if err != nil {
		writeFailure(w, err)
		return
	}
	height, err := sizeParam(r, "h")
	if err != nil {
		writeFailure(w, err)
		return
	}

	png, err := h.deps.Chart(r.Context(), id, width, height)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(png)
	}
}

func sizeParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrBadRequest, name)
	}
	return n, nil
}
