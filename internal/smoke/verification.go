package smoke

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	"github.com/okian/hrdash/internal/domain/model"
)

// ErrVerification marks a response that does not hold up.
var ErrVerification = errors.New("verification failed")

// VerifyPrediction checks a predict response against the request it answers.
func VerifyPrediction(o Outcome) error {
	if o.Status != StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrVerification, o.Status, o.Error)
	}
	p := o.Result
	if p == nil {
		return fmt.Errorf("%w: empty result", ErrVerification)
	}
	if p.Label != model.HighRisk && p.Label != model.LowRisk {
		return fmt.Errorf("%w: unknown label %q", ErrVerification, p.Label)
	}
	if p.Display != p.Label.Display() {
		return fmt.Errorf("%w: display %q does not match label %q", ErrVerification, p.Display, p.Label)
	}
	if p.Probability < 0 || p.Probability > 1 {
		return fmt.Errorf("%w: probability %v out of range", ErrVerification, p.Probability)
	}
	if want := (model.PredictionResult{Probability: p.Probability}).ProbabilityText(); p.ProbabilityText != want {
		return fmt.Errorf("%w: probability text %q, want %q", ErrVerification, p.ProbabilityText, want)
	}
	if o.RequestID != "" && p.RequestID != o.RequestID {
		return fmt.Errorf("%w: request id %q not echoed (got %q)", ErrVerification, o.RequestID, p.RequestID)
	}
	return nil
}

// VerifyPNG checks that body decodes as a PNG header with a usable size.
func VerifyPNG(body []byte) error {
	cfg, err := png.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: not a png: %w", ErrVerification, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrVerification, cfg.Width, cfg.Height)
	}
	return nil
}
