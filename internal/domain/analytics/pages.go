package analytics

import "github.com/okian/hrdash/internal/domain/model"

// Source is the read side of the loaded dataset.
type Source interface {
	Snapshot() []model.EmployeeSnapshotRecord
	Roster() []model.RosterRecord
	Salaries() []model.SalaryRecord
	Head(n int) []model.EmployeeSnapshotRecord
}

// HeadRows is the number of snapshot rows previewed on the overview page.
const HeadRows = 5

// Overview feeds the workforce overview page.
type Overview struct {
	Head       []model.EmployeeSnapshotRecord `json:"head"`
	Headcount  []Count                        `json:"headcount_by_department"`
	TopEarners []model.EmployeeSnapshotRecord `json:"top_earners"`
}

// Departments feeds the department insights page.
type Departments struct {
	DepartmentTenure []Mean `json:"mean_department_tenure"`
	TitleTenure      []Mean `json:"mean_company_tenure_by_title"`
}

// Salaries feeds the salary insights page.
type Salaries struct {
	Histogram      []Bin        `json:"histogram"`
	ByDepartment   []BoxSummary `json:"by_department"`
	ByDeptTitle    []PairMean   `json:"mean_by_department_title"`
	GrowthOverTime []YearAmount `json:"mean_by_year"`
}

// Diversity feeds the diversity metrics page.
type Diversity struct {
	GenderByDepartment []PairCount `json:"gender_by_department"`
	TitleByGender      []PairCount `json:"title_by_gender"`
}

// Hiring feeds the hiring trends page.
type Hiring struct {
	HiresPerYear []YearCount `json:"hires_per_year"`
}

// BuildOverview computes the overview aggregates with topN earners per department.
func BuildOverview(src Source, topN int) Overview {
	rows := src.Snapshot()
	return Overview{
		Head:       src.Head(HeadRows),
		Headcount:  HeadcountByDepartment(rows),
		TopEarners: TopEarners(rows, topN),
	}
}

// BuildDepartments computes the department insights aggregates.
func BuildDepartments(src Source) Departments {
	rows := src.Snapshot()
	return Departments{
		DepartmentTenure: MeanDepartmentTenure(rows),
		TitleTenure:      MeanCompanyTenureByTitle(rows),
	}
}

// BuildSalaries computes the salary insights aggregates using bins histogram buckets.
func BuildSalaries(src Source, bins int) Salaries {
	rows := src.Snapshot()
	return Salaries{
		Histogram:      SalaryHistogram(rows, bins),
		ByDepartment:   SalaryBoxByDepartment(rows),
		ByDeptTitle:    MeanSalaryByDepartmentTitle(rows),
		GrowthOverTime: MeanSalaryByYear(src.Salaries()),
	}
}

// BuildDiversity computes the diversity aggregates.
func BuildDiversity(src Source) Diversity {
	rows := src.Snapshot()
	return Diversity{
		GenderByDepartment: GenderByDepartment(rows),
		TitleByGender:      TitleByGender(rows),
	}
}

// BuildHiring computes the hiring trend aggregates.
func BuildHiring(src Source) Hiring {
	return Hiring{HiresPerYear: HiresPerYear(src.Roster())}
}
