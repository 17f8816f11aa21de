package smoke

import (
	"time"

	"github.com/okian/hrdash/internal/domain/model"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Predictions int           // Number of prediction requests to send
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for requests and results
	LogFile     string        // Log file for run output
	Verbose     bool
}

// Choices mirrors the choices endpoint payload.
type Choices struct {
	Genders     []string `json:"genders"`
	Titles      []string `json:"titles"`
	Departments []string `json:"departments"`
}

// Prediction mirrors the predict endpoint payload.
type Prediction struct {
	Label           model.RiskLabel `json:"label"`
	Display         string          `json:"display"`
	Probability     float64         `json:"probability"`
	ProbabilityText string          `json:"probability_text"`
	RequestID       string          `json:"request_id"`
}

// Outcome pairs one submitted request with what came back.
type Outcome struct {
	RequestID string                  `json:"request_id"`
	Request   model.PredictionRequest `json:"request"`
	Status    int                     `json:"status"`
	Result    *Prediction             `json:"result,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	RequestsGenerated int
	PredictionsOK     int
	PredictionsFailed int
	HighRisk          int
	EndpointsChecked  int
	ChartsChecked     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
