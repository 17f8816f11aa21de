package model_test

import (
	"fmt"
	"testing"

	"github.com/okian/hrdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPredictionResult(t *testing.T) {
	Convey("Given prediction results", t, func() {
		Convey("The probability text has two decimals and a percent sign", func() {
			So(model.PredictionResult{Label: model.LowRisk, Probability: 0.38}.ProbabilityText(), ShouldEqual, "38.00%")
			So(model.PredictionResult{Label: model.HighRisk, Probability: 0.87654}.ProbabilityText(), ShouldEqual, "87.65%")
			So(model.PredictionResult{Probability: 0}.ProbabilityText(), ShouldEqual, "0.00%")
			So(model.PredictionResult{Probability: 1}.ProbabilityText(), ShouldEqual, "100.00%")
		})

		Convey("The text matches the rounded percentage", func() {
			for _, p := range []float64{0.1234, 0.5, 0.99999, 0.00049} {
				r := model.PredictionResult{Probability: p}
				So(r.ProbabilityText(), ShouldEqual, fmt.Sprintf("%.2f%%", r.RoundedPercent()))
			}
		})

		Convey("Labels have display wording", func() {
			So(model.HighRisk.Display(), ShouldEqual, "High Risk")
			So(model.LowRisk.Display(), ShouldEqual, "Low Risk")
		})

		Convey("Genders are the fixed form choices", func() {
			So(model.Genders(), ShouldResemble, []string{"Male", "Female"})
		})
	})
}
