package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/hrdash/internal/domain/model"
	"github.com/okian/hrdash/pkg/logger"
)

const maxPredictBody = 1 << 16

// PredictDependencies defines the interface for scoring requests.
type PredictDependencies interface {
	Predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResult, error)
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

type predictResponse struct {
	Label           model.RiskLabel `json:"label"`
	Display         string          `json:"display"`
	Probability     float64         `json:"probability"`
	ProbabilityText string          `json:"probability_text"`
	RequestID       string          `json:"request_id"`
}

// HandlePredict handles POST /api/v1/predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeFailure(w, ErrMethodNotAllowed)
		return
	}

	var req model.PredictionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPredictBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	ctx := r.Context()
	id := RequestIDFromContext(ctx)
	res, err := h.deps.Predict(ctx, req)
	if err != nil {
		logger.Get().Debug(ctx, "predict rejected", logger.String("request_id", id), logger.Error(err))
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Label:           res.Label,
		Display:         res.Label.Display(),
		Probability:     res.Probability,
		ProbabilityText: res.ProbabilityText(),
		RequestID:       id,
	})
}
