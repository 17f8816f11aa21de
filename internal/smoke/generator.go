package smoke

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/hrdash/internal/domain/model"
	"github.com/okian/hrdash/pkg/logger"
)

// Constants for random number generation.
const randomFloatDivisor = 1000000

// Ranges the generated requests are drawn from.
const (
	salaryMin      = 30000.0
	salaryRange    = 120000.0
	pctChangeMin   = -5.0
	pctChangeRange = 20.0
)

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// pick returns a random element of values.
func pick(values []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(values))))
	return values[n.Int64()]
}

// round1 keeps one decimal, like the tenure sliders.
func round1(v float64) float64 {
	return float64(int64(v*10)) / 10
}

// GenerateRequests draws n prediction requests from the offered choices.
func GenerateRequests(ctx context.Context, choices Choices, n int) ([]Outcome, error) {
	if len(choices.Genders) == 0 || len(choices.Titles) == 0 || len(choices.Departments) == 0 {
		return nil, fmt.Errorf("choices are incomplete: %d genders, %d titles, %d departments",
			len(choices.Genders), len(choices.Titles), len(choices.Departments))
	}
	logger.Get().Info(ctx, "generating prediction requests", logger.Int("count", n))

	out := make([]Outcome, n)
	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = Outcome{
			RequestID: uuid.NewString(),
			Request: model.PredictionRequest{
				Gender:           pick(choices.Genders),
				Title:            pick(choices.Titles),
				Department:       pick(choices.Departments),
				Salary:           float64(int64(salaryMin + getRandomFloat()*salaryRange)),
				SalaryPctChange:  round1(pctChangeMin + getRandomFloat()*pctChangeRange),
				DepartmentTenure: round1(model.MinTenure + getRandomFloat()*(model.MaxTenure-model.MinTenure)),
				TitleTenure:      round1(model.MinTenure + getRandomFloat()*(model.MaxTenure-model.MinTenure)),
			},
		}
	}
	return out, nil
}
