package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/locvowork/tablexcel/internal/domain"
	"github.com/locvowork/tablexcel/internal/repository/builder"
)

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	b := builder.NewSQLBuilder()
	b.Select("e.emp_no", "e.birth_date", "e.first_name", "e.last_name", "e.gender", "e.hire_date").
		From("employees e").
		OrderBy("e.emp_no ASC")

	if filter.DeptNo != "" {
		b.Join("INNER", "dept_emp de", "e.emp_no = de.emp_no").
			Where("de.dept_no = ? AND de.to_date = ?", filter.DeptNo, domain.CurrentToDate)
	}
	if filter.Limit > 0 {
		b.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		b.Offset(filter.Offset)
	}

	query, args := b.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.EmpNo, &e.BirthDate, &e.FirstName, &e.LastName, &e.Gender, &e.HireDate); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	query, args := builder.NewSQLBuilder().
		Select("dept_no", "dept_name").
		From("departments").
		OrderBy("dept_no ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var departments []domain.Department
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.DeptNo, &d.DeptName); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *employeeRepository) CurrentDepartments(ctx context.Context, empNos []int) (map[int]string, error) {
	out := make(map[int]string, len(empNos))
	if len(empNos) == 0 {
		return out, nil
	}

	// Business logic: the current assignment has to_date = '9999-01-01'
	query, args := builder.NewSQLBuilder().
		Select("de.emp_no", "de.dept_no").
		From("dept_emp de").
		Where("de.emp_no = ANY(?) AND de.to_date = ?", pq.Array(int64s(empNos)), domain.CurrentToDate).
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading current departments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			empNo  int
			deptNo string
		)
		if err := rows.Scan(&empNo, &deptNo); err != nil {
			return nil, err
		}
		out[empNo] = deptNo
	}
	return out, rows.Err()
}

func (r *employeeRepository) SalaryHistory(ctx context.Context, empNos []int) ([]domain.Salary, error) {
	if len(empNos) == 0 {
		return nil, nil
	}

	query, args := builder.NewSQLBuilder().
		Select("emp_no", "salary", "from_date", "to_date").
		From("salaries").
		Where("emp_no = ANY(?)", pq.Array(int64s(empNos))).
		OrderBy("emp_no ASC").
		OrderBy("from_date ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading salary history: %w", err)
	}
	defer rows.Close()

	var salaries []domain.Salary
	for rows.Next() {
		var s domain.Salary
		if err := rows.Scan(&s.EmpNo, &s.Salary, &s.FromDate, &s.ToDate); err != nil {
			return nil, err
		}
		salaries = append(salaries, s)
	}
	return salaries, rows.Err()
}

func int64s(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
