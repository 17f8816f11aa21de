// Package analytics computes the grouped aggregates shown on the dashboard pages.
// Every function is pure and leaves its input untouched.
package analytics

import (
	"cmp"
	"math"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/okian/hrdash/internal/domain/model"
)

// Count is the number of rows sharing a key.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Mean is the average of a value over rows sharing a key.
type Mean struct {
	Key  string  `json:"key"`
	Mean float64 `json:"mean"`
}

// PairCount is the number of rows sharing a (group, sub) pair.
type PairCount struct {
	Group string `json:"group"`
	Sub   string `json:"sub"`
	Count int    `json:"count"`
}

// PairMean is the average of a value over rows sharing a (group, sub) pair.
type PairMean struct {
	Group string  `json:"group"`
	Sub   string  `json:"sub"`
	Mean  float64 `json:"mean"`
}

// Bin is one histogram bucket covering [Lower, Upper); the last bin is closed.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// BoxSummary is the five-number summary of a group.
type BoxSummary struct {
	Group  string  `json:"group"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// YearAmount is the mean amount for one calendar year.
type YearAmount struct {
	Year int             `json:"year"`
	Mean decimal.Decimal `json:"mean"`
}

// YearCount is the number of events in one calendar year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// HeadcountByDepartment counts snapshot rows per department, largest first.
// Ties are broken by department name.
func HeadcountByDepartment(rows []model.EmployeeSnapshotRecord) []Count {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.DeptName]++
	}
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// TopEarners returns up to n rows per department, departments in ascending
// order and salaries descending within each.
func TopEarners(rows []model.EmployeeSnapshotRecord, n int) []model.EmployeeSnapshotRecord {
	if n <= 0 {
		return nil
	}
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b model.EmployeeSnapshotRecord) int {
		if c := cmp.Compare(a.DeptName, b.DeptName); c != 0 {
			return c
		}
		return cmp.Compare(b.SalaryAmount, a.SalaryAmount)
	})
	out := make([]model.EmployeeSnapshotRecord, 0)
	taken := 0
	for i, r := range sorted {
		if i > 0 && sorted[i-1].DeptName != r.DeptName {
			taken = 0
		}
		if taken < n {
			out = append(out, r)
			taken++
		}
	}
	return out
}

// meanBy averages value over rows grouped by key, sorted by key.
func meanBy(rows []model.EmployeeSnapshotRecord, key func(model.EmployeeSnapshotRecord) string, value func(model.EmployeeSnapshotRecord) float64) []Mean {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[string]*acc)
	for _, r := range rows {
		k := key(r)
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.sum += value(r)
		a.n++
	}
	out := make([]Mean, 0, len(groups))
	for k, a := range groups {
		out = append(out, Mean{Key: k, Mean: a.sum / float64(a.n)})
	}
	slices.SortFunc(out, func(a, b Mean) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// MeanDepartmentTenure averages department tenure per department.
func MeanDepartmentTenure(rows []model.EmployeeSnapshotRecord) []Mean {
	return meanBy(rows,
		func(r model.EmployeeSnapshotRecord) string { return r.DeptName },
		func(r model.EmployeeSnapshotRecord) float64 { return r.DepartmentTenure })
}

// MeanCompanyTenureByTitle averages company tenure per title.
func MeanCompanyTenureByTitle(rows []model.EmployeeSnapshotRecord) []Mean {
	return meanBy(rows,
		func(r model.EmployeeSnapshotRecord) string { return r.Title },
		func(r model.EmployeeSnapshotRecord) float64 { return r.CompanyTenure })
}

// SalaryHistogram splits the salary range into equal-width bins.
func SalaryHistogram(rows []model.EmployeeSnapshotRecord, bins int) []Bin {
	if len(rows) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		lo = min(lo, r.SalaryAmount)
		hi = max(hi, r.SalaryAmount)
	}
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(rows)}}
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi
	for _, r := range rows {
		i := int((r.SalaryAmount - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	i := int(math.Floor(pos))
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(i)
	return sorted[i] + (sorted[i+1]-sorted[i])*frac
}

// SalaryBoxByDepartment summarizes the salary distribution of each department.
func SalaryBoxByDepartment(rows []model.EmployeeSnapshotRecord) []BoxSummary {
	groups := make(map[string][]float64)
	for _, r := range rows {
		groups[r.DeptName] = append(groups[r.DeptName], r.SalaryAmount)
	}
	out := make([]BoxSummary, 0, len(groups))
	for dept, vals := range groups {
		slices.Sort(vals)
		out = append(out, BoxSummary{
			Group:  dept,
			Count:  len(vals),
			Min:    vals[0],
			Q1:     quantile(vals, 0.25),
			Median: quantile(vals, 0.5),
			Q3:     quantile(vals, 0.75),
			Max:    vals[len(vals)-1],
		})
	}
	slices.SortFunc(out, func(a, b BoxSummary) int { return cmp.Compare(a.Group, b.Group) })
	return out
}

type pairKey struct{ group, sub string }

func comparePairs(ag, as, bg, bs string) int {
	if c := cmp.Compare(ag, bg); c != 0 {
		return c
	}
	return cmp.Compare(as, bs)
}

// MeanSalaryByDepartmentTitle averages salary per (department, title).
func MeanSalaryByDepartmentTitle(rows []model.EmployeeSnapshotRecord) []PairMean {
	sums := make(map[pairKey]float64)
	counts := make(map[pairKey]int)
	for _, r := range rows {
		k := pairKey{r.DeptName, r.Title}
		sums[k] += r.SalaryAmount
		counts[k]++
	}
	out := make([]PairMean, 0, len(sums))
	for k, s := range sums {
		out = append(out, PairMean{Group: k.group, Sub: k.sub, Mean: s / float64(counts[k])})
	}
	slices.SortFunc(out, func(a, b PairMean) int { return comparePairs(a.Group, a.Sub, b.Group, b.Sub) })
	return out
}

func countPairs(rows []model.EmployeeSnapshotRecord, key func(model.EmployeeSnapshotRecord) pairKey) []PairCount {
	counts := make(map[pairKey]int)
	for _, r := range rows {
		counts[key(r)]++
	}
	out := make([]PairCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, PairCount{Group: k.group, Sub: k.sub, Count: n})
	}
	slices.SortFunc(out, func(a, b PairCount) int { return comparePairs(a.Group, a.Sub, b.Group, b.Sub) })
	return out
}

// GenderByDepartment counts rows per (department, gender).
func GenderByDepartment(rows []model.EmployeeSnapshotRecord) []PairCount {
	return countPairs(rows, func(r model.EmployeeSnapshotRecord) pairKey { return pairKey{r.DeptName, r.Gender} })
}

// TitleByGender counts rows per (title, gender).
func TitleByGender(rows []model.EmployeeSnapshotRecord) []PairCount {
	return countPairs(rows, func(r model.EmployeeSnapshotRecord) pairKey { return pairKey{r.Title, r.Gender} })
}

// MeanSalaryByYear averages salary history amounts per calendar year of the
// period start, years ascending.
func MeanSalaryByYear(rows []model.SalaryRecord) []YearAmount {
	sums := make(map[int]decimal.Decimal)
	counts := make(map[int]int64)
	for _, r := range rows {
		y := r.FromDate.Year()
		sums[y] = sums[y].Add(r.Amount)
		counts[y]++
	}
	out := make([]YearAmount, 0, len(sums))
	for y, s := range sums {
		out = append(out, YearAmount{Year: y, Mean: s.Div(decimal.NewFromInt(counts[y]))})
	}
	slices.SortFunc(out, func(a, b YearAmount) int { return cmp.Compare(a.Year, b.Year) })
	return out
}

// HiresPerYear counts roster hires per calendar year, years ascending.
// Rows without a hire date are skipped.
func HiresPerYear(rows []model.RosterRecord) []YearCount {
	counts := make(map[int]int)
	for _, r := range rows {
		if r.HireDate.IsZero() {
			continue
		}
		counts[r.HireDate.Year()]++
	}
	out := make([]YearCount, 0, len(counts))
	for y, n := range counts {
		out = append(out, YearCount{Year: y, Count: n})
	}
	slices.SortFunc(out, func(a, b YearCount) int { return cmp.Compare(a.Year, b.Year) })
	return out
}
