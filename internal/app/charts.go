package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/okian/hrdash/internal/adapters/mq/queue"
	"github.com/okian/hrdash/internal/adapters/render"
	"github.com/okian/hrdash/internal/domain/analytics"
	"github.com/okian/hrdash/internal/domain/model"
)

// Chart ids served under /charts/{id}.png.
const (
	ChartHeadcount          = "headcount"
	ChartTopEarners         = "top_earners"
	ChartDepartmentTenure   = "department_tenure"
	ChartTitleTenure        = "title_tenure"
	ChartSalaryHistogram    = "salary_histogram"
	ChartSalaryBox          = "salary_box"
	ChartSalaryByDeptTitle  = "salary_by_department_title"
	ChartSalaryGrowth       = "salary_growth"
	ChartGenderByDepartment = "gender_by_department"
	ChartTitleByGender      = "title_by_gender"
	ChartHiresPerYear       = "hires_per_year"
)

// ChartIDs lists every chart the service can render.
func ChartIDs() []string {
	return []string{
		ChartHeadcount, ChartTopEarners,
		ChartDepartmentTenure, ChartTitleTenure,
		ChartSalaryHistogram, ChartSalaryBox, ChartSalaryByDeptTitle, ChartSalaryGrowth,
		ChartGenderByDepartment, ChartTitleByGender,
		ChartHiresPerYear,
	}
}

// Chart returns the PNG for id. A zero size selects the configured default.
func (s *Service) Chart(_ context.Context, id string, width, height int) ([]byte, error) {
	if _, err := s.dataReady(); err != nil {
		return nil, err
	}
	return s.renderChart(id, width, height)
}

// Prerender renders a queued chart into the cache.
func (s *Service) Prerender(ctx context.Context, job queue.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.renderChart(job.ChartID, job.Width, job.Height)
	return err
}

func (s *Service) renderChart(id string, width, height int) ([]byte, error) {
	build, ok := s.chartBuilder(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, id)
	}
	return s.renderer.Render(id, width, height, build)
}

func (s *Service) chartBuilder(id string) (func() render.Chart, bool) {
	switch id {
	case ChartHeadcount:
		return func() render.Chart { return headcountChart(s.overview().Headcount) }, true
	case ChartTopEarners:
		return func() render.Chart { return topEarnersChart(s.overview().TopEarners) }, true
	case ChartDepartmentTenure:
		return func() render.Chart {
			return meanChart(render.KindBar, "Average Tenure per Department", "Department", "Years", s.departments().DepartmentTenure)
		}, true
	case ChartTitleTenure:
		return func() render.Chart {
			return meanChart(render.KindHBar, "Average Company Tenure by Title", "Years", "", s.departments().TitleTenure)
		}, true
	case ChartSalaryHistogram:
		return func() render.Chart { return histogramChart(s.salaries().Histogram) }, true
	case ChartSalaryBox:
		return func() render.Chart { return boxChart(s.salaries().ByDepartment) }, true
	case ChartSalaryByDeptTitle:
		return func() render.Chart {
			rows := s.salaries().ByDeptTitle
			pairs := make([]pairValue, len(rows))
			for i, r := range rows {
				pairs[i] = pairValue{group: r.Group, sub: r.Sub, value: r.Mean}
			}
			return groupedChart("Avg Salary by Department and Title", "Department", "Salary", pairs)
		}, true
	case ChartSalaryGrowth:
		return func() render.Chart { return salaryGrowthChart(s.salaries().GrowthOverTime) }, true
	case ChartGenderByDepartment:
		return func() render.Chart {
			return groupedChart("Gender by Department", "Department", "Count", countPairs(s.diversity().GenderByDepartment))
		}, true
	case ChartTitleByGender:
		return func() render.Chart {
			return groupedChart("Title by Gender", "Title", "Count", countPairs(s.diversity().TitleByGender))
		}, true
	case ChartHiresPerYear:
		return func() render.Chart { return hiresChart(s.hiring().HiresPerYear) }, true
	default:
		return nil, false
	}
}

func headcountChart(counts []analytics.Count) render.Chart {
	c := render.Chart{Kind: render.KindBar, Title: "Total Employees by Department", XLabel: "Department", YLabel: "Count"}
	values := make([]float64, len(counts))
	for i, n := range counts {
		c.Categories = append(c.Categories, n.Key)
		values[i] = float64(n.Count)
	}
	c.Series = []render.Series{{Name: "Count", Values: values}}
	return c
}

func topEarnersChart(rows []model.EmployeeSnapshotRecord) render.Chart {
	c := render.Chart{Kind: render.KindHBar, Title: "Top Highest Paid Employees per Department", XLabel: "Salary"}
	values := make([]float64, len(rows))
	for i, r := range rows {
		c.Categories = append(c.Categories, r.DeptName+" "+r.EmployeeID)
		values[i] = r.SalaryAmount
	}
	c.Series = []render.Series{{Name: "Salary", Values: values}}
	return c
}

func meanChart(kind render.Kind, title, xLabel, yLabel string, means []analytics.Mean) render.Chart {
	c := render.Chart{Kind: kind, Title: title, XLabel: xLabel, YLabel: yLabel}
	values := make([]float64, len(means))
	for i, m := range means {
		c.Categories = append(c.Categories, m.Key)
		values[i] = m.Mean
	}
	c.Series = []render.Series{{Name: yLabel, Values: values}}
	return c
}

func histogramChart(bins []analytics.Bin) render.Chart {
	c := render.Chart{Kind: render.KindHistogram, Title: "Salary Distribution", XLabel: "Salary", YLabel: "Count"}
	values := make([]float64, len(bins))
	for i, b := range bins {
		c.Categories = append(c.Categories, strconv.FormatFloat(b.Lower/1000, 'f', 0, 64)+"k")
		values[i] = float64(b.Count)
	}
	c.Series = []render.Series{{Name: "Count", Values: values}}
	return c
}

func boxChart(boxes []analytics.BoxSummary) render.Chart {
	c := render.Chart{Kind: render.KindBox, Title: "Salary by Department", XLabel: "Department", YLabel: "Salary"}
	for _, b := range boxes {
		c.Categories = append(c.Categories, b.Group)
		c.Boxes = append(c.Boxes, render.Box{Min: b.Min, Q1: b.Q1, Median: b.Median, Q3: b.Q3, Max: b.Max})
	}
	return c
}

func salaryGrowthChart(years []analytics.YearAmount) render.Chart {
	c := render.Chart{Kind: render.KindLine, Title: "Average Salary Growth Over Time", XLabel: "Year", YLabel: "Amount"}
	values := make([]float64, len(years))
	for i, y := range years {
		c.Categories = append(c.Categories, strconv.Itoa(y.Year))
		values[i] = y.Mean.InexactFloat64()
	}
	c.Series = []render.Series{{Name: "Amount", Values: values}}
	return c
}

func hiresChart(years []analytics.YearCount) render.Chart {
	c := render.Chart{Kind: render.KindLine, Title: "Employees Hired per Year", XLabel: "Hire Year", YLabel: "Employees"}
	values := make([]float64, len(years))
	for i, y := range years {
		c.Categories = append(c.Categories, strconv.Itoa(y.Year))
		values[i] = float64(y.Count)
	}
	c.Series = []render.Series{{Name: "Employees", Values: values}}
	return c
}

type pairValue struct {
	group, sub string
	value      float64
}

func countPairs(rows []analytics.PairCount) []pairValue {
	out := make([]pairValue, len(rows))
	for i, r := range rows {
		out[i] = pairValue{group: r.Group, sub: r.Sub, value: float64(r.Count)}
	}
	return out
}

// groupedChart pivots (group, sub) values into one series per sub with a
// zero where a pair is absent.
func groupedChart(title, xLabel, yLabel string, pairs []pairValue) render.Chart {
	var groups, subs []string
	for _, p := range pairs {
		if !slices.Contains(groups, p.group) {
			groups = append(groups, p.group)
		}
		if !slices.Contains(subs, p.sub) {
			subs = append(subs, p.sub)
		}
	}
	slices.Sort(groups)
	slices.Sort(subs)

	series := make([]render.Series, len(subs))
	for i, sub := range subs {
		series[i] = render.Series{Name: sub, Values: make([]float64, len(groups))}
	}
	for _, p := range pairs {
		gi := slices.Index(groups, p.group)
		si := slices.Index(subs, p.sub)
		series[si].Values[gi] = p.value
	}
	return render.Chart{
		Kind:       render.KindGroupedBar,
		Title:      title,
		XLabel:     xLabel,
		YLabel:     yLabel,
		Categories: groups,
		Series:     series,
	}
}
