package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hrdash/internal/domain/model"
)

func emp(id, dept, title, gender string, salary, deptTenure, companyTenure float64) model.EmployeeSnapshotRecord {
	return model.EmployeeSnapshotRecord{
		EmployeeID: id, DeptName: dept, Title: title, Gender: gender,
		SalaryAmount: salary, DepartmentTenure: deptTenure, CompanyTenure: companyTenure,
	}
}

func sampleRows() []model.EmployeeSnapshotRecord {
	return []model.EmployeeSnapshotRecord{
		emp("1", "Sales", "Staff", "F", 50000, 2, 4),
		emp("2", "Development", "Engineer", "M", 70000, 4, 6),
		emp("3", "Development", "Engineer", "F", 90000, 6, 8),
		emp("4", "Sales", "Manager", "M", 80000, 10, 12),
		emp("5", "Development", "Senior Engineer", "M", 110000, 8, 10),
		emp("6", "Finance", "Staff", "F", 60000, 1, 2),
	}
}

type fakeSource struct {
	rows     []model.EmployeeSnapshotRecord
	roster   []model.RosterRecord
	salaries []model.SalaryRecord
}

func (f fakeSource) Snapshot() []model.EmployeeSnapshotRecord { return f.rows }
func (f fakeSource) Roster() []model.RosterRecord             { return f.roster }
func (f fakeSource) Salaries() []model.SalaryRecord           { return f.salaries }
func (f fakeSource) Head(n int) []model.EmployeeSnapshotRecord {
	return f.rows[:min(n, len(f.rows))]
}

func TestCounts(t *testing.T) {
	Convey("Given snapshot rows", t, func() {
		rows := sampleRows()

		Convey("Headcount is ordered by size then name", func() {
			So(HeadcountByDepartment(rows), ShouldResemble, []Count{
				{Key: "Development", Count: 3},
				{Key: "Sales", Count: 2},
				{Key: "Finance", Count: 1},
			})
		})

		Convey("Gender counts are grouped per department", func() {
			So(GenderByDepartment(rows), ShouldResemble, []PairCount{
				{Group: "Development", Sub: "F", Count: 1},
				{Group: "Development", Sub: "M", Count: 2},
				{Group: "Finance", Sub: "F", Count: 1},
				{Group: "Sales", Sub: "F", Count: 1},
				{Group: "Sales", Sub: "M", Count: 1},
			})
		})

		Convey("Title counts are grouped per gender", func() {
			got := TitleByGender(rows)
			So(got[0], ShouldResemble, PairCount{Group: "Engineer", Sub: "F", Count: 1})
			So(got[len(got)-1], ShouldResemble, PairCount{Group: "Staff", Sub: "F", Count: 2})
		})

		Convey("The input order is untouched", func() {
			_ = TopEarners(rows, 1)
			So(rows[0].EmployeeID, ShouldEqual, "1")
		})
	})
}

func TestTopEarners(t *testing.T) {
	Convey("Given snapshot rows", t, func() {
		rows := sampleRows()

		Convey("The top two per department are sorted by department then salary", func() {
			got := TopEarners(rows, 2)
			ids := make([]string, len(got))
			for i, r := range got {
				ids[i] = r.EmployeeID
			}
			So(ids, ShouldResemble, []string{"5", "3", "6", "4", "1"})
		})

		Convey("A non-positive limit yields nothing", func() {
			So(TopEarners(rows, 0), ShouldBeNil)
		})
	})
}

func TestMeans(t *testing.T) {
	Convey("Given snapshot rows", t, func() {
		rows := sampleRows()

		Convey("Department tenure is averaged per department", func() {
			So(MeanDepartmentTenure(rows), ShouldResemble, []Mean{
				{Key: "Development", Mean: 6},
				{Key: "Finance", Mean: 1},
				{Key: "Sales", Mean: 6},
			})
		})

		Convey("Company tenure is averaged per title", func() {
			got := MeanCompanyTenureByTitle(rows)
			So(got[0], ShouldResemble, Mean{Key: "Engineer", Mean: 7})
			So(got[3], ShouldResemble, Mean{Key: "Staff", Mean: 3})
		})

		Convey("Salary is averaged per department and title", func() {
			got := MeanSalaryByDepartmentTitle(rows)
			So(got[0], ShouldResemble, PairMean{Group: "Development", Sub: "Engineer", Mean: 80000})
			So(len(got), ShouldEqual, 5)
		})
	})
}

func TestSalaryDistribution(t *testing.T) {
	Convey("Given snapshot rows", t, func() {
		rows := sampleRows()

		Convey("The histogram covers every row", func() {
			bins := SalaryHistogram(rows, 6)
			So(len(bins), ShouldEqual, 6)
			So(bins[0].Lower, ShouldEqual, 50000.0)
			So(bins[5].Upper, ShouldEqual, 110000.0)
			total := 0
			for _, b := range bins {
				total += b.Count
			}
			So(total, ShouldEqual, len(rows))
			So(bins[5].Count, ShouldEqual, 1)
		})

		Convey("A constant salary collapses to one bin", func() {
			bins := SalaryHistogram(rows[:1], 40)
			So(bins, ShouldResemble, []Bin{{Lower: 50000, Upper: 50000, Count: 1}})
		})

		Convey("No rows yield no bins", func() {
			So(SalaryHistogram(nil, 40), ShouldBeNil)
		})

		Convey("The box summary interpolates quartiles", func() {
			got := SalaryBoxByDepartment(rows)
			So(got[0], ShouldResemble, BoxSummary{
				Group: "Development", Count: 3,
				Min: 70000, Q1: 80000, Median: 90000, Q3: 100000, Max: 110000,
			})
			So(got[1].Min, ShouldEqual, got[1].Max)
		})
	})
}

func TestYearly(t *testing.T) {
	Convey("Given dated rows", t, func() {
		day := func(y int) time.Time { return time.Date(y, 3, 1, 0, 0, 0, 0, time.UTC) }

		Convey("Salary history is averaged per start year", func() {
			got := MeanSalaryByYear([]model.SalaryRecord{
				{Amount: decimal.NewFromInt(100), FromDate: day(2001)},
				{Amount: decimal.RequireFromString("200.5"), FromDate: day(2000)},
				{Amount: decimal.NewFromInt(101), FromDate: day(2001)},
			})
			So(len(got), ShouldEqual, 2)
			So(got[0].Year, ShouldEqual, 2000)
			So(got[0].Mean.Equal(decimal.RequireFromString("200.5")), ShouldBeTrue)
			So(got[1].Mean.Equal(decimal.RequireFromString("100.5")), ShouldBeTrue)
		})

		Convey("Hires are counted per year and undated rows skipped", func() {
			got := HiresPerYear([]model.RosterRecord{
				{HireDate: day(1990)}, {HireDate: day(1986)}, {HireDate: day(1990)}, {},
			})
			So(got, ShouldResemble, []YearCount{{Year: 1986, Count: 1}, {Year: 1990, Count: 2}})
		})
	})
}

func TestBuildPages(t *testing.T) {
	Convey("Given a source", t, func() {
		src := fakeSource{rows: sampleRows()}

		Convey("The overview previews five rows", func() {
			o := BuildOverview(src, 10)
			So(len(o.Head), ShouldEqual, HeadRows)
			So(len(o.TopEarners), ShouldEqual, 6)
			So(o.Headcount[0].Key, ShouldEqual, "Development")
		})

		Convey("The salary page honours the bin count", func() {
			So(len(BuildSalaries(src, 40).Histogram), ShouldEqual, 40)
		})

		Convey("Empty tables produce empty aggregates", func() {
			So(BuildHiring(src).HiresPerYear, ShouldBeEmpty)
			So(BuildSalaries(src, 40).GrowthOverTime, ShouldBeEmpty)
			So(BuildDiversity(fakeSource{}).GenderByDepartment, ShouldBeEmpty)
			So(BuildDepartments(src).DepartmentTenure, ShouldHaveLength, 3)
		})
	})
}
