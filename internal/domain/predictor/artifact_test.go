package predictor_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/hrdash/internal/domain/predictor"
	. "github.com/smartystreets/goconvey/convey"
)

const validSchema = `"schema": [
  {"name": "salary_amount", "kind": "numeric"},
  {"name": "gender", "kind": "categorical", "categories": ["Female", "Male"]}
]`

func decode(body string) (predictor.Model, error) {
	return predictor.Decode(strings.NewReader(body))
}

func TestDecodeArtifact(t *testing.T) {
	Convey("Given model artifacts", t, func() {
		Convey("A missing file is a model load error", func() {
			_, err := predictor.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})

		Convey("Garbage bytes are a model load error", func() {
			path := filepath.Join(t.TempDir(), "model.json")
			So(os.WriteFile(path, []byte("\x80\x04\x95 pickle"), 0o600), ShouldBeNil)
			_, err := predictor.LoadFile(path)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, path)
		})

		Convey("An unknown format is rejected", func() {
			_, err := decode(`{"format": "random_forest", ` + validSchema + `}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
			So(errors.Is(err, predictor.ErrUnsupportedFormat), ShouldBeTrue)
		})

		Convey("A format without its section is rejected", func() {
			_, err := decode(`{"format": "gradient_boosting", ` + validSchema + `}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
		})

		Convey("Unknown top-level fields are rejected", func() {
			_, err := decode(`{"format": "logistic_regression", "version": 3, ` + validSchema + `,
				"logistic_regression": {"intercept": 0, "weights": {"salary_amount": 1}}}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
		})

		Convey("An empty schema is rejected", func() {
			_, err := decode(`{"format": "logistic_regression", "schema": [],
				"logistic_regression": {"intercept": 0, "weights": {"x": 1}}}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
		})

		Convey("A categorical column without categories is rejected", func() {
			_, err := decode(`{"format": "logistic_regression",
				"schema": [{"name": "gender", "kind": "categorical"}],
				"logistic_regression": {"intercept": 0, "weights": {"gender=Male": 1}}}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
		})

		Convey("A threshold outside (0,1) is rejected", func() {
			_, err := decode(`{"format": "logistic_regression", "threshold": 1.5, ` + validSchema + `,
				"logistic_regression": {"intercept": 0, "weights": {"salary_amount": 1}}}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
		})

		Convey("Weights on columns outside the schema are rejected", func() {
			_, err := decode(`{"format": "logistic_regression", ` + validSchema + `,
				"logistic_regression": {"intercept": 0, "weights": {"gender=Other": 1}}}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
		})

		Convey("Trees whose children point backwards are rejected", func() {
			_, err := decode(`{"format": "gradient_boosting", ` + validSchema + `,
				"gradient_boosting": {"base_score": 0, "learning_rate": 0.1, "trees": [
					{"nodes": [{"feature": "salary_amount", "threshold": 1, "left": 0, "right": 1}, {"leaf": true, "value": 1}]}
				]}}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "invalid children")
		})

		Convey("Trees splitting on unknown columns are rejected", func() {
			_, err := decode(`{"format": "gradient_boosting", ` + validSchema + `,
				"gradient_boosting": {"base_score": 0, "learning_rate": 0.1, "trees": [
					{"nodes": [{"feature": "age", "threshold": 1, "left": 1, "right": 2}, {"leaf": true}, {"leaf": true}]}
				]}}`)
			So(errors.Is(err, predictor.ErrModelLoad), ShouldBeTrue)
		})

		Convey("A minimal valid ensemble decodes", func() {
			m, err := decode(`{"format": "gradient_boosting", ` + validSchema + `,
				"gradient_boosting": {"base_score": 0.2, "learning_rate": 0.1, "trees": [{"nodes": [{"leaf": true, "value": 0.3}]}]}}`)
			So(err, ShouldBeNil)
			So(m, ShouldHaveSameTypeAs, &predictor.GradientBoosting{})
		})
	})
}
