package domain

import "time"

// Employee represents the employees table
type Employee struct {
	EmpNo     int       `json:"emp_no" db:"emp_no"`
	BirthDate time.Time `json:"birth_date" db:"birth_date"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Gender    string    `json:"gender" db:"gender"`
	HireDate  time.Time `json:"hire_date" db:"hire_date"`
}

// FullName is "First Last".
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Department represents the departments table
type Department struct {
	DeptNo   string `json:"dept_no" db:"dept_no"`
	DeptName string `json:"dept_name" db:"dept_name"`
}

// DeptEmp represents the dept_emp table (junction table)
type DeptEmp struct {
	EmpNo    int       `json:"emp_no" db:"emp_no"`
	DeptNo   string    `json:"dept_no" db:"dept_no"`
	FromDate time.Time `json:"from_date" db:"from_date"`
	ToDate   time.Time `json:"to_date" db:"to_date"`
}

// Salary represents the salaries table
type Salary struct {
	EmpNo    int       `json:"emp_no" db:"emp_no"`
	Salary   int       `json:"salary" db:"salary"`
	FromDate time.Time `json:"from_date" db:"from_date"`
	ToDate   time.Time `json:"to_date" db:"to_date"`
}

// CurrentToDate marks open-ended salary and department rows.
var CurrentToDate = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)

// ==================== REPORT MODELS ====================

// EmployeeSalaryRow is one line of the salary report.
type EmployeeSalaryRow struct {
	EmpNo         int
	Name          string
	Department    string
	HireDate      time.Time
	Active        bool
	CurrentSalary *int
	// YearlySalaries holds the salary in effect at the end of each report
	// year, first year first. Years without a salary are nil.
	YearlySalaries []*int
	// RaisePercent is the change between the first and last known yearly salaries.
	RaisePercent *float64
}

// DepartmentSummary is one line of the department sheet.
type DepartmentSummary struct {
	DeptNo        string
	Name          string
	Headcount     int
	Payroll       int
	AverageSalary float64
}
