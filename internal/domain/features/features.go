// Package features maps prediction form inputs onto the column layout the
// attrition model was fitted against.
package features

import (
	"sort"

	"github.com/okian/hrdash/internal/domain/model"
)

// Column names of the fitted model's input frame.
const (
	SalaryAmount           = "salary_amount"
	SalaryPercentageChange = "salary_percentage_change"
	DepartmentTenure       = "department_tenure"
	TitleTenure            = "title_tenure"
	Gender                 = "gender"
	Title                  = "title"
	DeptName               = "dept_name"
)

// Columns lists every column Assemble emits.
func Columns() []string {
	return []string{SalaryAmount, SalaryPercentageChange, DepartmentTenure, TitleTenure, Gender, Title, DeptName}
}

// Record is a single-row feature frame keyed by column name. Numeric columns
// hold float64 and categorical columns hold string.
type Record map[string]any

// Keys returns the record's column names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Assemble builds the model input record. It performs no membership checks on
// title or department; callers restrict those to values observed in the data.
func Assemble(gender, title, department string, salary, pctChange, deptTenure, titleTenure float64) Record {
	return Record{
		SalaryAmount:           salary,
		SalaryPercentageChange: pctChange,
		DepartmentTenure:       deptTenure,
		TitleTenure:            titleTenure,
		Gender:                 gender,
		Title:                  title,
		DeptName:               department,
	}
}

// FromRequest assembles the record for a prediction request.
func FromRequest(req model.PredictionRequest) Record {
	return Assemble(req.Gender, req.Title, req.Department, req.Salary, req.SalaryPctChange, req.DepartmentTenure, req.TitleTenure)
}
