package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/hrdash/internal/domain/model"
)

// dateLayouts are tried in order for date cells.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// table walks a CSV file by header name.
type table struct {
	name string
	r    *csv.Reader
	cols map[string]int
	row  []string
	line int
}

func newTable(name string, src io.Reader, required ...string) (*table, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", name)
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	t := &table{name: name, r: r, cols: make(map[string]int, len(header)), line: 1}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		h = strings.ToLower(strings.TrimSpace(h))
		if _, dup := t.cols[h]; !dup {
			t.cols[h] = i
		}
	}
	for _, col := range required {
		if _, ok := t.cols[col]; !ok {
			return nil, fmt.Errorf("%s: %w %q", name, ErrMissingColumn, col)
		}
	}
	return t, nil
}

// next advances to the following row; it returns false at end of file.
func (t *table) next() (bool, error) {
	row, err := t.r.Read()
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", t.name, err)
	}
	t.row = row
	t.line++
	return true, nil
}

func (t *table) str(col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(t.row) {
		return ""
	}
	return strings.TrimSpace(t.row[i])
}

func (t *table) cellErr(col, val string, err error) error {
	return fmt.Errorf("%s line %d column %s: %w %q: %w", t.name, t.line, col, ErrBadCell, val, err)
}

func (t *table) float(col string) (float64, error) {
	v := t.str(col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, t.cellErr(col, v, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, t.cellErr(col, v, errors.New("not finite"))
	}
	return f, nil
}

func (t *table) decimal(col string) (decimal.Decimal, error) {
	v := t.str(col)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, t.cellErr(col, v, err)
	}
	return d, nil
}

// date parses a date cell; an empty optional cell yields the zero time.
func (t *table) date(col string, required bool) (time.Time, error) {
	v := t.str(col)
	if v == "" {
		if required {
			return time.Time{}, t.cellErr(col, v, errors.New("empty"))
		}
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		ts, err := time.Parse(layout, v)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, t.cellErr(col, v, lastErr)
}

var snapshotColumns = []string{
	"employee_id", "dept_name", "title", "gender",
	"salary_amount", "department_tenure", "title_tenure", "company_tenure",
}

func parseSnapshot(name string, src io.Reader) ([]model.EmployeeSnapshotRecord, error) {
	t, err := newTable(name, src, snapshotColumns...)
	if err != nil {
		return nil, err
	}
	var out []model.EmployeeSnapshotRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		rec := model.EmployeeSnapshotRecord{
			EmployeeID: t.str("employee_id"),
			DeptName:   t.str("dept_name"),
			Title:      t.str("title"),
			Gender:     t.str("gender"),
		}
		if rec.SalaryAmount, err = t.float("salary_amount"); err != nil {
			return nil, err
		}
		if rec.DepartmentTenure, err = t.float("department_tenure"); err != nil {
			return nil, err
		}
		if rec.TitleTenure, err = t.float("title_tenure"); err != nil {
			return nil, err
		}
		if rec.CompanyTenure, err = t.float("company_tenure"); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func parseRoster(name string, src io.Reader) ([]model.RosterRecord, error) {
	t, err := newTable(name, src, "hire_date")
	if err != nil {
		return nil, err
	}
	var out []model.RosterRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		rec := model.RosterRecord{
			ID:        t.str("id"),
			FirstName: t.str("first_name"),
			LastName:  t.str("last_name"),
			Gender:    t.str("gender"),
		}
		if rec.HireDate, err = t.date("hire_date", true); err != nil {
			return nil, err
		}
		if rec.BirthDate, err = t.date("birth_date", false); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

func parseSalaries(name string, src io.Reader) ([]model.SalaryRecord, error) {
	t, err := newTable(name, src, "employee_id", "amount", "from_date")
	if err != nil {
		return nil, err
	}
	var out []model.SalaryRecord
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		rec := model.SalaryRecord{EmployeeID: t.str("employee_id")}
		if rec.Amount, err = t.decimal("amount"); err != nil {
			return nil, err
		}
		if rec.FromDate, err = t.date("from_date", true); err != nil {
			return nil, err
		}
		if rec.ToDate, err = t.date("to_date", false); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}
