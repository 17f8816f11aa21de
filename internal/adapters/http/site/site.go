// Package site serves the server-rendered dashboard pages.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/hrdash/internal/adapters/http/api"
	service "github.com/okian/hrdash/internal/app"
	"github.com/okian/hrdash/internal/domain/analytics"
	"github.com/okian/hrdash/internal/domain/model"
	"github.com/okian/hrdash/internal/domain/predictor"
	"github.com/okian/hrdash/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Form defaults for the attrition page.
const (
	DefaultSalary           = 50000.0
	DefaultSalaryPctChange  = 5.0
	DefaultDepartmentTenure = 3.0
	DefaultTitleTenure      = 2.0
)

const maxFormBytes = 16 << 10

// Dependencies is the service surface the pages read from.
type Dependencies interface {
	Choices(ctx context.Context) (service.Choices, error)
	Predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResult, error)
	ModelReady(ctx context.Context) error
	Overview(ctx context.Context) (analytics.Overview, error)
	Departments(ctx context.Context) (analytics.Departments, error)
	Salaries(ctx context.Context) (analytics.Salaries, error)
	Diversity(ctx context.Context) (analytics.Diversity, error)
	Hiring(ctx context.Context) (analytics.Hiring, error)
}

type navItem struct {
	Path   string
	Label  string
	Active bool
}

type page struct {
	path  string
	label string
	title string
}

var pages = []page{
	{"/overview", "Overview", "Workforce Overview"},
	{"/attrition", "Attrition Prediction", "Attrition Risk Prediction (Gradient Boosting Model)"},
	{"/departments", "Department Insights", "Departmental Tenure Trends"},
	{"/salaries", "Salary Insights", "Salary Analytics"},
	{"/diversity", "Diversity Metrics", "Gender Diversity Metrics"},
	{"/hiring", "Hiring Trends", "Hiring Trends Over Time"},
}

type view struct {
	Title string
	Nav   []navItem
	Data  any
}

type attritionView struct {
	Choices    service.Choices
	Form       model.PredictionRequest
	Result     *model.PredictionResult
	ErrorTitle string
	Error      string
	MinTenure  float64
	MaxTenure  float64
}

// Handler renders the dashboard pages.
type Handler struct {
	deps      Dependencies
	templates map[string]*template.Template
	printer   *message.Printer
	log       logger.Logger
}

// NewHandler parses the embedded templates.
func NewHandler(deps Dependencies) (*Handler, error) {
	h := &Handler{
		deps:      deps,
		templates: make(map[string]*template.Template, len(pages)),
		printer:   message.NewPrinter(language.English),
		log:       logger.Named("site"),
	}
	funcs := template.FuncMap{
		"money":   func(v float64) string { return h.printer.Sprintf("%.2f", v) },
		"num1":    func(v float64) string { return h.printer.Sprintf("%.1f", v) },
		"num2":    func(v float64) string { return h.printer.Sprintf("%.2f", v) },
		"count":   func(v int) string { return h.printer.Sprintf("%d", v) },
		"decimal": func(d decimal.Decimal) string { return h.printer.Sprintf("%.2f", d.InexactFloat64()) },
		"raw":     func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	}
	for _, p := range pages {
		name := strings.TrimPrefix(p.path, "/")
		t, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		h.templates[p.path] = t
	}
	return h, nil
}

// Register attaches the page routes and static assets to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("nil mux")
	}
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/overview", http.StatusFound)
	})

	mux.HandleFunc("/overview", api.MetricsMiddleware(pageHandler(h, "/overview", h.deps.Overview), "page_overview"))
	mux.HandleFunc("/departments", api.MetricsMiddleware(pageHandler(h, "/departments", h.deps.Departments), "page_departments"))
	mux.HandleFunc("/salaries", api.MetricsMiddleware(pageHandler(h, "/salaries", h.deps.Salaries), "page_salaries"))
	mux.HandleFunc("/diversity", api.MetricsMiddleware(pageHandler(h, "/diversity", h.deps.Diversity), "page_diversity"))
	mux.HandleFunc("/hiring", api.MetricsMiddleware(pageHandler(h, "/hiring", h.deps.Hiring), "page_hiring"))
	mux.HandleFunc("/attrition", api.MetricsMiddleware(h.HandleAttrition, "page_attrition"))
}

// pageHandler renders a read-only insights page from one aggregate.
func pageHandler[T any](h *Handler, path string, get func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		data, err := get(r.Context())
		if err != nil {
			status, _ := api.StatusFor(err)
			h.log.Error(r.Context(), "page data unavailable", logger.String("page", path), logger.Error(err))
			http.Error(w, err.Error(), status)
			return
		}
		h.render(w, r, http.StatusOK, path, data)
	}
}

// HandleAttrition shows the prediction form and scores submitted values.
func (h *Handler) HandleAttrition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v := attritionView{
		Form: model.PredictionRequest{
			Salary:           DefaultSalary,
			SalaryPctChange:  DefaultSalaryPctChange,
			DepartmentTenure: DefaultDepartmentTenure,
			TitleTenure:      DefaultTitleTenure,
		},
		MinTenure: model.MinTenure,
		MaxTenure: model.MaxTenure,
	}

	choices, err := h.deps.Choices(ctx)
	if err != nil {
		status, _ := api.StatusFor(err)
		http.Error(w, err.Error(), status)
		return
	}
	v.Choices = choices
	if len(choices.Genders) > 0 {
		v.Form.Gender = choices.Genders[0]
	}
	if len(choices.Titles) > 0 {
		v.Form.Title = choices.Titles[0]
	}
	if len(choices.Departments) > 0 {
		v.Form.Department = choices.Departments[0]
	}

	status := http.StatusOK
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if err := h.deps.ModelReady(ctx); err != nil {
			status = h.fail(ctx, &v, err)
		}
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		req, err := parseForm(r, v.Form)
		v.Form = req
		if err != nil {
			status = h.fail(ctx, &v, err)
			break
		}
		res, err := h.deps.Predict(ctx, req)
		if err != nil {
			status = h.fail(ctx, &v, err)
			break
		}
		v.Result = &res
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	h.render(w, r, status, "/attrition", v)
}

// fail records err on the view as a banner and returns the page status.
func (h *Handler) fail(ctx context.Context, v *attritionView, err error) int {
	status, code := api.StatusFor(err)
	switch {
	case errors.Is(err, predictor.ErrModelLoad):
		v.ErrorTitle = "Model could not be loaded"
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, api.ErrBadRequest):
		v.ErrorTitle = "Invalid input"
	case errors.Is(err, predictor.ErrInference):
		v.ErrorTitle = "Prediction failed"
	default:
		v.ErrorTitle = "Error"
	}
	v.Error = err.Error()
	h.log.Warn(ctx, "attrition page error", logger.String("code", code), logger.Error(err))
	return status
}

// parseForm reads the prediction fields, keeping defaults for omitted numbers.
func parseForm(r *http.Request, defaults model.PredictionRequest) (model.PredictionRequest, error) {
	req := defaults
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("%w: %w", api.ErrBadRequest, err)
	}
	req.Gender = strings.TrimSpace(r.PostForm.Get("gender"))
	req.Title = strings.TrimSpace(r.PostForm.Get("title"))
	req.Department = strings.TrimSpace(r.PostForm.Get("dept_name"))

	var bad []string
	number := func(field string, dst *float64) {
		raw := strings.TrimSpace(r.PostForm.Get(field))
		if raw == "" {
			return
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			bad = append(bad, field)
			return
		}
		*dst = f
	}
	number("salary_amount", &req.Salary)
	number("salary_percentage_change", &req.SalaryPctChange)
	number("department_tenure", &req.DepartmentTenure)
	number("title_tenure", &req.TitleTenure)
	if len(bad) > 0 {
		return req, fmt.Errorf("%w: not a number: %s", api.ErrBadRequest, strings.Join(bad, ", "))
	}
	return req, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, path string, data any) {
	t, ok := h.templates[path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	v := view{Data: data}
	for _, p := range pages {
		v.Nav = append(v.Nav, navItem{Path: p.path, Label: p.label, Active: p.path == path})
		if p.path == path {
			v.Title = p.title
		}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		h.log.Error(r.Context(), "render page", logger.String("page", path), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}
