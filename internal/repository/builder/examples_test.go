package builder_test

import (
	"fmt"

	"github.com/locvowork/tablexcel/internal/repository/builder"
)

// Example_salaryHistory builds the salary history query used by the report.
func Example_salaryHistory() {
	qb := builder.NewSQLBuilder().
		Select("emp_no", "salary", "from_date", "to_date").
		From("salaries").
		Where("emp_no = ANY(?)", "{10001,10002}").
		OrderBy("emp_no ASC").
		OrderBy("from_date ASC")

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT emp_no, salary, from_date, to_date FROM salaries WHERE emp_no = ANY($1) ORDER BY emp_no ASC, from_date ASC
	// Args: [{10001,10002}]
}

// Example_currentDepartments joins the junction table to department names.
func Example_currentDepartments() {
	qb := builder.NewSQLBuilder().
		Select("de.emp_no", "d.dept_name").
		From("dept_emp de").
		Join("INNER", "departments d", "de.dept_no = d.dept_no").
		Where("de.to_date = ?", "9999-01-01")

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: SELECT de.emp_no, d.dept_name FROM dept_emp de INNER JOIN departments d ON de.dept_no = d.dept_no WHERE de.to_date = $1
	// Args: [9999-01-01]
}

// Example_seedSalaries inserts several salary rows, skipping ones already present.
func Example_seedSalaries() {
	qb := builder.NewSQLBuilder().
		Insert("salaries", "emp_no", "salary", "from_date", "to_date").
		Values(10001, 60117, "2021-06-26", "2022-06-26").
		Values(10001, 62102, "2022-06-26", "9999-01-01").
		OnConflictDoNothing()

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %d\n", len(args))

	// Output:
	// SQL: INSERT INTO salaries (emp_no, salary, from_date, to_date) VALUES ($1, $2, $3, $4), ($5, $6, $7, $8) ON CONFLICT DO NOTHING
	// Args: 8
}

// Example_clearEmployee removes one employee's salary rows.
func Example_clearEmployee() {
	qb := builder.NewSQLBuilder().
		Delete("salaries").
		Where("emp_no = ?", 10001)

	sql, args := qb.Build()
	fmt.Println("SQL:", sql)
	fmt.Printf("Args: %v\n", args)

	// Output:
	// SQL: DELETE FROM salaries WHERE emp_no = $1
	// Args: [10001]
}
