package smoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hrdash/internal/domain/model"
	"github.com/okian/hrdash/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete smoke run.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	client := NewHTTPClient(config.BaseURL, config.Timeout)

	logger.Get().Info(ctx, "starting hrdash smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("predictions", config.Predictions),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	choices, err := fetchChoices(ctx, client)
	if err != nil {
		return fmt.Errorf("choices retrieval failed: %w", err)
	}

	outcomes, err := GenerateRequests(ctx, choices, config.Predictions)
	if err != nil {
		return fmt.Errorf("request generation failed: %w", err)
	}
	stats.RequestsGenerated = len(outcomes)

	if err := submitPredictions(ctx, client, config, outcomes, stats); err != nil {
		return fmt.Errorf("prediction submission failed: %w", err)
	}

	surfaceErr := checkSurfaces(ctx, client, stats)

	if err := saveResults(ctx, config, outcomes); err != nil {
		logger.Get().Warn(ctx, "failed to save results to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	var failed error
	if stats.PredictionsFailed > 0 {
		failed = fmt.Errorf("%w: %d of %d predictions failed", ErrVerification, stats.PredictionsFailed, stats.RequestsGenerated)
	}
	if surfaceErr != nil {
		surfaceErr = fmt.Errorf("surface check failed: %w", surfaceErr)
	}
	if err := errors.Join(failed, surfaceErr); err != nil {
		return err
	}
	logger.Get().Info(ctx, "smoke run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	status, _, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if status != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func fetchChoices(ctx context.Context, client *HTTPClient) (Choices, error) {
	var c Choices
	status, body, err := client.Get(ctx, "/api/v1/choices")
	if err != nil {
		return c, err
	}
	if status != StatusOK {
		return c, fmt.Errorf("choices returned status %d: %s", status, body)
	}
	if err := json.Unmarshal(body, &c); err != nil {
		return c, fmt.Errorf("decode choices: %w", err)
	}
	return c, nil
}

// submitPredictions sends every request with at most config.Workers in flight
// and fills in each outcome.
func submitPredictions(ctx context.Context, client *HTTPClient, config *Config, outcomes []Outcome, stats *Stats) error {
	log.Printf("📤 Submitting %d predictions with %d workers...", len(outcomes), config.Workers)

	var ok, failed, high atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(config.Workers, 1))

	for i := range outcomes {
		o := &outcomes[i]
		g.Go(func() error {
			predictOne(gctx, client, o)
			if err := VerifyPrediction(*o); err != nil {
				failed.Add(1)
				if o.Error == "" {
					o.Error = err.Error()
				}
				if config.Verbose {
					log.Printf("❌ %s: %v", o.RequestID, err)
				}
				return nil
			}
			ok.Add(1)
			if o.Result.Label == model.HighRisk {
				high.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stats.PredictionsOK = int(ok.Load())
	stats.PredictionsFailed = int(failed.Load())
	stats.HighRisk = int(high.Load())

	log.Printf(`✅ Prediction submission completed:
   Successful: %d
   High risk: %d
   Failed: %d
`, stats.PredictionsOK, stats.HighRisk, stats.PredictionsFailed)
	return nil
}

func predictOne(ctx context.Context, client *HTTPClient, o *Outcome) {
	status, body, err := client.PostJSON(ctx, "/api/v1/predict", o.RequestID, o.Request)
	o.Status = status
	if err != nil {
		o.Error = err.Error()
		return
	}
	if status != StatusOK {
		o.Error = string(body)
		return
	}
	var p Prediction
	if err := json.Unmarshal(body, &p); err != nil {
		o.Error = "decode: " + err.Error()
		return
	}
	o.Result = &p
}

// checkSurfaces fetches every JSON aggregate, chart and page once.
func checkSurfaces(ctx context.Context, client *HTTPClient, stats *Stats) error {
	var errs []error
	for _, path := range Endpoints {
		status, body, err := client.Get(ctx, path)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		case status != StatusOK:
			errs = append(errs, fmt.Errorf("%s: status %d", path, status))
		case !json.Valid(body):
			errs = append(errs, fmt.Errorf("%s: %w: invalid json", path, ErrVerification))
		default:
			stats.EndpointsChecked++
		}
	}
	for _, path := range Pages {
		status, _, err := client.Get(ctx, path)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		case status != StatusOK:
			errs = append(errs, fmt.Errorf("%s: status %d", path, status))
		default:
			stats.EndpointsChecked++
		}
	}
	for _, id := range Charts {
		path := "/charts/" + id + ".png"
		status, body, err := client.Get(ctx, path)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		case status != StatusOK:
			errs = append(errs, fmt.Errorf("%s: status %d", path, status))
		default:
			if err := VerifyPNG(body); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				continue
			}
			stats.ChartsChecked++
		}
	}
	return errors.Join(errs...)
}

// saveResults writes requests and their outcomes to a JSON file.
func saveResults(ctx context.Context, config *Config, outcomes []Outcome) error {
	if len(outcomes) == 0 {
		return fmt.Errorf("no results to save")
	}

	filename := config.OutputFile
	if filename == "" {
		filename = "smoke_results_" + time.Now().Format("20060102_150405") + ".json"
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	logger.Get().Info(ctx, "results saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, perSecond float64
	if stats.RequestsGenerated > 0 {
		successRate = float64(stats.PredictionsOK) / float64(stats.RequestsGenerated) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.RequestsGenerated) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("predictionsOK", stats.PredictionsOK),
		logger.Int("predictionsFailed", stats.PredictionsFailed),
		logger.Int("highRisk", stats.HighRisk),
		logger.Int("endpointsChecked", stats.EndpointsChecked),
		logger.Int("chartsChecked", stats.ChartsChecked),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("predictionsPerSecond", perSecond))
}
