package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/hrdash/internal/domain/features"
	"github.com/okian/hrdash/internal/domain/model"
	"github.com/okian/hrdash/internal/domain/predictor"
	"github.com/okian/hrdash/pkg/logger"
	"github.com/okian/hrdash/pkg/metrics"
)

// ValidateRequest checks the ranges the prediction form enforces. Category
// membership is left to the model, which rejects values it was not fitted on.
func ValidateRequest(req model.PredictionRequest) error {
	var problems []string
	if strings.TrimSpace(req.Gender) == "" {
		problems = append(problems, "gender is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(req.Department) == "" {
		problems = append(problems, "department is required")
	}
	for _, v := range []float64{req.Salary, req.SalaryPctChange, req.DepartmentTenure, req.TitleTenure} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, "numbers must be finite")
			break
		}
	}
	if req.Salary < 0 {
		problems = append(problems, "salary must not be negative")
	}
	if req.DepartmentTenure < model.MinTenure || req.DepartmentTenure > model.MaxTenure {
		problems = append(problems, fmt.Sprintf("department tenure must be within [%g, %g]", model.MinTenure, model.MaxTenure))
	}
	if req.TitleTenure < model.MinTenure || req.TitleTenure > model.MaxTenure {
		problems = append(problems, fmt.Sprintf("title tenure must be within [%g, %g]", model.MinTenure, model.MaxTenure))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(problems, "; "))
	}
	return nil
}

// errorKind labels a prediction failure for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, predictor.ErrModelLoad):
		return "model_load"
	case errors.Is(err, predictor.ErrInference):
		return "inference"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}

// Predict scores one request: validate, assemble the feature record, load the
// model if needed and classify.
func (s *Service) Predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResult, error) {
	start := time.Now()
	res, err := s.predict(ctx, req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordPredictionLatency(elapsed)

	if err != nil {
		s.predictErr.Add(1)
		kind := errorKind(err)
		metrics.RecordPredictionError(kind)
		metrics.RecordErrorByComponent("predictor", kind)
		metrics.RecordErrorLatency("predictor", kind, elapsed)
		s.log().Warn(ctx, "prediction failed", logger.String("kind", kind), logger.Error(err))
		return model.PredictionResult{}, err
	}

	s.predicted.Add(1)
	metrics.RecordPrediction(string(res.Label))
	s.log().Debug(ctx, "prediction served",
		logger.String("label", string(res.Label)),
		logger.Float64("probability", res.Probability),
		logger.Float64("ms", elapsed),
	)
	return res, nil
}

func (s *Service) predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResult, error) {
	if err := ValidateRequest(req); err != nil {
		return model.PredictionResult{}, err
	}
	loader, err := s.modelLoader()
	if err != nil {
		return model.PredictionResult{}, err
	}
	m, err := loader.Get(ctx)
	if err != nil {
		return model.PredictionResult{}, err
	}
	return predictor.NewAdapter(m).Classify(ctx, features.FromRequest(req))
}

func (s *Service) modelLoader() (*predictor.Loader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.models, nil
}

// ModelReady loads the model if needed and reports the load error, if any.
// Pages use it to show the model banner before any input is submitted.
func (s *Service) ModelReady(ctx context.Context) error {
	loader, err := s.modelLoader()
	if err != nil {
		return err
	}
	_, err = loader.Get(ctx)
	return err
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}
