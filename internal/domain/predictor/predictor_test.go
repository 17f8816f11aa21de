package predictor_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/okian/hrdash/internal/domain/features"
	"github.com/okian/hrdash/internal/domain/model"
	"github.com/okian/hrdash/internal/domain/predictor"
	. "github.com/smartystreets/goconvey/convey"
)

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func scenario() features.Record {
	return features.Assemble(model.GenderFemale, "Senior Engineer", "R&D", 95000, 3.5, 4.0, 2.0)
}

func TestClassifyGradientBoosting(t *testing.T) {
	Convey("Given the gradient boosting fixture", t, func() {
		m, err := predictor.LoadFile("testdata/gradient_boosting.json")
		So(err, ShouldBeNil)
		adapter := predictor.NewAdapter(m)
		ctx := context.Background()

		Convey("When classifying the reference employee", func() {
			res, err := adapter.Classify(ctx, scenario())

			Convey("Then the result is well formed and matches the ensemble sum", func() {
				So(err, ShouldBeNil)
				// base -0.5, salary>60k & pct>2 -> -1.2, tenure>1 -> -0.5, female -> +0.1
				So(res.Probability, ShouldAlmostEqual, sigmoid(-2.1), 1e-12)
				So(res.Label, ShouldEqual, model.LowRisk)
				So(res.ProbabilityText(), ShouldEqual, fmt.Sprintf("%.2f%%", math.Round(res.Probability*10000)/100))
				So(res.ProbabilityText(), ShouldEqual, "10.91%")
			})
		})

		Convey("When classifying a short-tenured low earner", func() {
			rec := features.Assemble(model.GenderMale, "Engineer", "Sales", 40000, 1, 0.5, 0.5)
			res, err := adapter.Classify(ctx, rec)

			Convey("Then the label is HighRisk", func() {
				So(err, ShouldBeNil)
				So(res.Probability, ShouldAlmostEqual, sigmoid(2.0), 1e-12)
				So(res.Label, ShouldEqual, model.HighRisk)
			})
		})

		Convey("When classifying zero salary and zero tenure", func() {
			res, err := adapter.Classify(ctx, features.Assemble(model.GenderMale, "Staff", "Finance", 0, 0, 0, 0))

			Convey("Then the record is accepted", func() {
				So(err, ShouldBeNil)
				So(res.Probability, ShouldBeBetweenOrEqual, 0.0, 1.0)
			})
		})

		Convey("Label and probability agree for a grid of inputs", func() {
			for _, salary := range []float64{0, 30000, 60000, 60001, 150000} {
				for _, pct := range []float64{-5, 0, 2, 2.01, 12} {
					for _, tenure := range []float64{0, 1, 1.5, 25} {
						for _, g := range model.Genders() {
							res, err := adapter.Classify(ctx, features.Assemble(g, "Manager", "Development", salary, pct, tenure, tenure))
							So(err, ShouldBeNil)
							So(res.Probability, ShouldBeBetweenOrEqual, 0.0, 1.0)
							So(res.Label == model.HighRisk, ShouldEqual, res.Probability > 0.5)
						}
					}
				}
			}
		})

		Convey("Separate label and probability calls agree with one evaluation", func() {
			label, err := m.PredictLabel(scenario())
			So(err, ShouldBeNil)
			p, err := m.PredictProbability(scenario())
			So(err, ShouldBeNil)
			So(label, ShouldEqual, predictor.ClassStay)
			So(p, ShouldAlmostEqual, sigmoid(-2.1), 1e-12)
		})
	})
}

func TestClassifyLogisticRegression(t *testing.T) {
	Convey("Given the logistic regression fixture", t, func() {
		m, err := predictor.LoadFile("testdata/logistic_regression.json")
		So(err, ShouldBeNil)

		Convey("When classifying the reference employee", func() {
			res, err := predictor.NewAdapter(m).Classify(context.Background(), scenario())

			Convey("Then the probability is the sigmoid of the linear score", func() {
				So(err, ShouldBeNil)
				So(res.Probability, ShouldAlmostEqual, sigmoid(-1.35), 1e-9)
				So(res.Label, ShouldEqual, model.LowRisk)
			})

			Convey("And repeated calls return identical results", func() {
				again, err := predictor.NewAdapter(m).Classify(context.Background(), scenario())
				So(err, ShouldBeNil)
				So(again, ShouldResemble, res)
			})
		})
	})
}

func TestClassifySchemaErrors(t *testing.T) {
	Convey("Given a loaded model", t, func() {
		m, err := predictor.LoadFile("testdata/gradient_boosting.json")
		So(err, ShouldBeNil)
		adapter := predictor.NewAdapter(m)
		ctx := context.Background()

		Convey("A missing field is a schema mismatch", func() {
			rec := scenario()
			delete(rec, features.TitleTenure)
			_, err := adapter.Classify(ctx, rec)
			So(errors.Is(err, predictor.ErrInference), ShouldBeTrue)
			So(errors.Is(err, predictor.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "title_tenure")
		})

		Convey("An extra field is a schema mismatch", func() {
			rec := scenario()
			rec["company_tenure"] = 3.0
			_, err := adapter.Classify(ctx, rec)
			So(errors.Is(err, predictor.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "company_tenure")
		})

		Convey("A mistyped field is a schema mismatch", func() {
			rec := scenario()
			rec[features.SalaryAmount] = "95000"
			_, err := adapter.Classify(ctx, rec)
			So(errors.Is(err, predictor.ErrSchemaMismatch), ShouldBeTrue)

			rec = scenario()
			rec[features.Gender] = 1
			_, err = adapter.Classify(ctx, rec)
			So(errors.Is(err, predictor.ErrSchemaMismatch), ShouldBeTrue)
		})

		Convey("An unseen department is an inference error", func() {
			rec := features.Assemble(model.GenderMale, "Engineer", "Legal", 50000, 1, 1, 1)
			_, err := adapter.Classify(ctx, rec)
			So(errors.Is(err, predictor.ErrInference), ShouldBeTrue)
			So(errors.Is(err, predictor.ErrUnknownCategory), ShouldBeTrue)
		})

		Convey("A non-finite numeric value is an inference error", func() {
			rec := scenario()
			rec[features.SalaryAmount] = math.Inf(1)
			_, err := adapter.Classify(ctx, rec)
			So(errors.Is(err, predictor.ErrInference), ShouldBeTrue)
		})

		Convey("A cancelled context is reported without evaluating", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := adapter.Classify(cctx, scenario())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

// splitModel implements Model without Evaluator.
type splitModel struct {
	label int
	proba float64
	err   error
}

func (s splitModel) PredictLabel(features.Record) (int, error)          { return s.label, s.err }
func (s splitModel) PredictProbability(features.Record) (float64, error) { return s.proba, s.err }

func TestAdapterWithOpaqueModel(t *testing.T) {
	Convey("Given models exposing only the two capabilities", t, func() {
		ctx := context.Background()

		Convey("Class 1 maps to HighRisk and probability is copied verbatim", func() {
			res, err := predictor.NewAdapter(splitModel{label: 1, proba: 0.8123}).Classify(ctx, scenario())
			So(err, ShouldBeNil)
			So(res.Label, ShouldEqual, model.HighRisk)
			So(res.Probability, ShouldEqual, 0.8123)
		})

		Convey("Class 0 maps to LowRisk", func() {
			res, err := predictor.NewAdapter(splitModel{label: 0, proba: 0.12}).Classify(ctx, scenario())
			So(err, ShouldBeNil)
			So(res.Label, ShouldEqual, model.LowRisk)
		})

		Convey("An unexpected class is an inference error", func() {
			_, err := predictor.NewAdapter(splitModel{label: 2, proba: 0.5}).Classify(ctx, scenario())
			So(errors.Is(err, predictor.ErrInference), ShouldBeTrue)
		})

		Convey("A probability outside [0,1] is an inference error", func() {
			_, err := predictor.NewAdapter(splitModel{label: 1, proba: 1.2}).Classify(ctx, scenario())
			So(errors.Is(err, predictor.ErrInference), ShouldBeTrue)
			_, err = predictor.NewAdapter(splitModel{label: 1, proba: math.NaN()}).Classify(ctx, scenario())
			So(errors.Is(err, predictor.ErrInference), ShouldBeTrue)
		})

		Convey("Model errors propagate", func() {
			boom := errors.New("boom")
			_, err := predictor.NewAdapter(splitModel{err: boom}).Classify(ctx, scenario())
			So(errors.Is(err, boom), ShouldBeTrue)
		})

		Convey("A nil model is a model load error", func() {
			_, err := predictor.NewAdapter(nil).Classify(ctx, scenario())
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
		})
	})
}
