package domain

import "context"

// EmployeeFilter defines criteria for listing employees
type EmployeeFilter struct {
	DeptNo string
	Limit  int
	Offset int
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	// CurrentDepartments maps each employee to the department they belong to now.
	CurrentDepartments(ctx context.Context, empNos []int) (map[int]string, error)
	// SalaryHistory returns every salary row of the given employees ordered by from_date.
	SalaryHistory(ctx context.Context, empNos []int) ([]Salary, error)
}
