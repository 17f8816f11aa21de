package model

import (
	"fmt"
	"math"
)

// Gender values offered by the prediction form.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// Genders lists the fixed gender choices in display order.
func Genders() []string {
	return []string{GenderMale, GenderFemale}
}

// Tenure slider bounds, in years.
const (
	MinTenure = 0.0
	MaxTenure = 25.0
)

// PredictionRequest carries the form inputs of one predict action.
type PredictionRequest struct {
	Gender           string  `json:"gender"`
	Title            string  `json:"title"`
	Department       string  `json:"dept_name"`
	Salary           float64 `json:"salary_amount"`
	SalaryPctChange  float64 `json:"salary_percentage_change"`
	DepartmentTenure float64 `json:"department_tenure"`
	TitleTenure      float64 `json:"title_tenure"`
}

// RiskLabel is the binary attrition outcome.
type RiskLabel string

const (
	HighRisk RiskLabel = "HighRisk"
	LowRisk  RiskLabel = "LowRisk"
)

// Display returns the human wording used on the prediction page.
func (l RiskLabel) Display() string {
	if l == HighRisk {
		return "High Risk"
	}
	return "Low Risk"
}

// PredictionResult is the outcome of classifying one request.
type PredictionResult struct {
	Label       RiskLabel `json:"label"`
	Probability float64   `json:"probability"` // positive-class posterior in [0,1]
}

// ProbabilityText formats the probability as a percentage with two decimals, e.g. "38.00%".
func (r PredictionResult) ProbabilityText() string {
	return fmt.Sprintf("%.2f%%", r.Probability*100)
}

// RoundedPercent is the probability as a percentage rounded to two decimals.
func (r PredictionResult) RoundedPercent() float64 {
	return math.Round(r.Probability*10000) / 100
}
