// Package repository loads the HR flat files into an immutable in-memory dataset.
package repository

import "github.com/okian/hrdash/internal/domain/model"

// Dataset holds the three input tables. It is never mutated after Load
// returns, so it is safe for concurrent readers without locking. Returned
// slices are shared and must not be modified.
type Dataset struct {
	snapshot []model.EmployeeSnapshotRecord
	roster   []model.RosterRecord
	salaries []model.SalaryRecord

	titles      []string
	departments []string
}

// NewDataset builds a Dataset from already parsed tables.
func NewDataset(snapshot []model.EmployeeSnapshotRecord, roster []model.RosterRecord, salaries []model.SalaryRecord) *Dataset {
	d := &Dataset{snapshot: snapshot, roster: roster, salaries: salaries}
	d.titles = distinct(snapshot, func(r model.EmployeeSnapshotRecord) string { return r.Title })
	d.departments = distinct(snapshot, func(r model.EmployeeSnapshotRecord) string { return r.DeptName })
	return d
}

// Snapshot returns the current employee snapshot rows.
func (d *Dataset) Snapshot() []model.EmployeeSnapshotRecord { return d.snapshot }

// Roster returns the employee roster rows.
func (d *Dataset) Roster() []model.RosterRecord { return d.roster }

// Salaries returns the salary history rows.
func (d *Dataset) Salaries() []model.SalaryRecord { return d.salaries }

// DistinctTitles lists non-empty snapshot titles in order of first appearance.
func (d *Dataset) DistinctTitles() []string { return d.titles }

// DistinctDepartments lists non-empty snapshot departments in order of first appearance.
func (d *Dataset) DistinctDepartments() []string { return d.departments }

// Head returns up to n leading snapshot rows.
func (d *Dataset) Head(n int) []model.EmployeeSnapshotRecord {
	if n <= 0 {
		return nil
	}
	if n > len(d.snapshot) {
		n = len(d.snapshot)
	}
	return d.snapshot[:n]
}

func distinct(rows []model.EmployeeSnapshotRecord, key func(model.EmployeeSnapshotRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
