package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/hrdash/internal/adapters/http/api"
	"github.com/okian/hrdash/internal/adapters/render"
	service "github.com/okian/hrdash/internal/app"
	"github.com/okian/hrdash/internal/domain/analytics"
	"github.com/okian/hrdash/internal/domain/model"
	"github.com/okian/hrdash/internal/domain/predictor"
	"github.com/okian/hrdash/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeDeps records calls and returns canned answers.
type fakeDeps struct {
	predictErr error
	lastReq    model.PredictionRequest
	chartErr   error
	chartSize  [2]int
}

func (f *fakeDeps) Predict(_ context.Context, req model.PredictionRequest) (model.PredictionResult, error) {
	f.lastReq = req
	if f.predictErr != nil {
		return model.PredictionResult{}, f.predictErr
	}
	return model.PredictionResult{Label: model.HighRisk, Probability: 0.38}, nil
}

func (f *fakeDeps) Choices(context.Context) (service.Choices, error) {
	return service.Choices{Genders: model.Genders(), Titles: []string{"Engineer"}, Departments: []string{"R&D"}}, nil
}

func (f *fakeDeps) Overview(context.Context) (analytics.Overview, error) {
	return analytics.Overview{Headcount: []analytics.Count{{Key: "Sales", Count: 3}}}, nil
}

func (f *fakeDeps) Departments(context.Context) (analytics.Departments, error) {
	return analytics.Departments{}, service.ErrNotStarted
}

func (f *fakeDeps) Salaries(context.Context) (analytics.Salaries, error) {
	return analytics.Salaries{}, nil
}

func (f *fakeDeps) Diversity(context.Context) (analytics.Diversity, error) {
	return analytics.Diversity{}, nil
}

func (f *fakeDeps) Hiring(context.Context) (analytics.Hiring, error) {
	return analytics.Hiring{HiresPerYear: []analytics.YearCount{{Year: 1986, Count: 2}}}, nil
}

func (f *fakeDeps) Chart(_ context.Context, id string, width, height int) ([]byte, error) {
	f.chartSize = [2]int{width, height}
	if f.chartErr != nil {
		return nil, f.chartErr
	}
	if id != "headcount" {
		return nil, fmt.Errorf("%w: %q", service.ErrUnknownChart, id)
	}
	return []byte("\x89PNG fake"), nil
}

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return out
}

const validPredict = `{"gender":"Female","title":"Senior Engineer","dept_name":"R&D","salary_amount":95000,
"salary_percentage_change":3.5,"department_tenure":4,"title_tenure":2}`

func TestPredictEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &fakeDeps{}
		mux := newMux(deps)

		Convey("A valid request returns the label and formatted probability", func() {
			rec := do(mux, http.MethodPost, "/api/v1/predict", validPredict)
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decodeBody(rec)
			So(body["label"], ShouldEqual, "HighRisk")
			So(body["display"], ShouldEqual, "High Risk")
			So(body["probability"], ShouldEqual, 0.38)
			So(body["probability_text"], ShouldEqual, "38.00%")
			So(body["request_id"], ShouldNotBeEmpty)
			So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, body["request_id"])
			So(deps.lastReq.Department, ShouldEqual, "R&D")
			So(deps.lastReq.Salary, ShouldEqual, 95000.0)
		})

		Convey("An inbound request id is echoed", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", strings.NewReader(validPredict))
			req.Header.Set(api.RequestIDHeader, "abc-123")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			So(decodeBody(rec)["request_id"], ShouldEqual, "abc-123")
		})

		Convey("Malformed JSON is a bad request", func() {
			rec := do(mux, http.MethodPost, "/api/v1/predict", `{"gender":`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(rec)["code"], ShouldEqual, "bad_request")
		})

		Convey("Unknown fields are rejected", func() {
			rec := do(mux, http.MethodPost, "/api/v1/predict", `{"age": 30}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET is not allowed", func() {
			rec := do(mux, http.MethodGet, "/api/v1/predict", "")
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(rec.Header().Get("Allow"), ShouldEqual, http.MethodPost)
		})

		Convey("Model load failures map to 503", func() {
			deps.predictErr = fmt.Errorf("%w: open retention_model.json", predictor.ErrModelLoad)
			rec := do(mux, http.MethodPost, "/api/v1/predict", validPredict)
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeBody(rec)["code"], ShouldEqual, "model_unavailable")
		})

		Convey("Inference failures map to 422", func() {
			deps.predictErr = errors.Join(predictor.ErrInference, predictor.ErrUnknownCategory)
			rec := do(mux, http.MethodPost, "/api/v1/predict", validPredict)
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decodeBody(rec)["code"], ShouldEqual, "inference_failed")
		})

		Convey("Validation failures map to 400", func() {
			deps.predictErr = fmt.Errorf("%w: salary must not be negative", service.ErrInvalidRequest)
			rec := do(mux, http.MethodPost, "/api/v1/predict", validPredict)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(rec)["message"], ShouldContainSubstring, "salary")
		})
	})
}

func TestInsightEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux := newMux(&fakeDeps{})

		Convey("Choices list the fixed genders and dataset values", func() {
			rec := do(mux, http.MethodGet, "/api/v1/choices", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var c service.Choices
			So(json.Unmarshal(rec.Body.Bytes(), &c), ShouldBeNil)
			So(c.Genders, ShouldResemble, []string{"Male", "Female"})
			So(c.Departments, ShouldResemble, []string{"R&D"})
		})

		Convey("Page aggregates are served as JSON", func() {
			rec := do(mux, http.MethodGet, "/api/v1/overview", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"headcount_by_department":[{"key":"Sales","count":3}]`)

			rec = do(mux, http.MethodGet, "/api/v1/hiring", "")
			So(rec.Body.String(), ShouldContainSubstring, `"year":1986`)

			for _, path := range []string{"/api/v1/salaries", "/api/v1/diversity"} {
				So(do(mux, http.MethodGet, path, "").Code, ShouldEqual, http.StatusOK)
			}
		})

		Convey("A service that is not ready answers 503", func() {
			rec := do(mux, http.MethodGet, "/api/v1/departments", "")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeBody(rec)["code"], ShouldEqual, "not_ready")
		})

		Convey("Writes are not allowed", func() {
			So(do(mux, http.MethodPost, "/api/v1/overview", "{}").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Stats are served", func() {
			rec := do(mux, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(rec)["started"], ShouldEqual, true)
		})

		Convey("Metrics are exposed on healthz", func() {
			_ = do(mux, http.MethodGet, "/stats", "")
			rec := do(mux, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "hrdash_dashboard_http_requests_total")
		})
	})
}

func TestChartEndpoint(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &fakeDeps{}
		mux := newMux(deps)

		Convey("A known chart is served as PNG", func() {
			rec := do(mux, http.MethodGet, "/charts/headcount.png", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(rec.Body.String(), ShouldStartWith, "\x89PNG")
			So(deps.chartSize, ShouldResemble, [2]int{0, 0})
		})

		Convey("Size parameters are forwarded", func() {
			rec := do(mux, http.MethodGet, "/charts/headcount.png?w=640&h=360", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.chartSize, ShouldResemble, [2]int{640, 360})
		})

		Convey("Bad size parameters are rejected", func() {
			So(do(mux, http.MethodGet, "/charts/headcount.png?w=wide", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/charts/headcount.png?h=-5", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Unknown charts and non-PNG names are 404", func() {
			So(do(mux, http.MethodGet, "/charts/pie.png", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/charts/headcount.svg", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Empty charts are 404 with a distinct code", func() {
			deps.chartErr = fmt.Errorf("render salary_growth: %w", render.ErrEmptyChart)
			rec := do(mux, http.MethodGet, "/charts/headcount.png", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(decodeBody(rec)["code"], ShouldEqual, "no_data")
		})
	})
}

func TestStatusFor(t *testing.T) {
	Convey("Unclassified errors are internal", t, func() {
		status, code := api.StatusFor(errors.New("boom"))
		So(status, ShouldEqual, http.StatusInternalServerError)
		So(code, ShouldEqual, "internal_error")
	})
}
