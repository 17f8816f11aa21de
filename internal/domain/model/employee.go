// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmployeeSnapshotRecord is one current employee from the snapshot table.
type EmployeeSnapshotRecord struct {
	EmployeeID       string  `json:"employee_id"`
	DeptName         string  `json:"dept_name"`
	Title            string  `json:"title"`
	Gender           string  `json:"gender"`
	SalaryAmount     float64 `json:"salary_amount"`
	DepartmentTenure float64 `json:"department_tenure"` // years
	TitleTenure      float64 `json:"title_tenure"`      // years
	CompanyTenure    float64 `json:"company_tenure"`    // years
}

// RosterRecord is one row of the employee roster.
type RosterRecord struct {
	ID        string    `json:"id"`
	BirthDate time.Time `json:"birth_date"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Gender    string    `json:"gender"`
	HireDate  time.Time `json:"hire_date"`
}

// SalaryRecord is one entry of the salary history.
type SalaryRecord struct {
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	FromDate   time.Time       `json:"from_date"`
	ToDate     time.Time       `json:"to_date"`
}
