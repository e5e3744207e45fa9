package database

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/locvowork/tablexcel/internal/domain"
	"github.com/locvowork/tablexcel/internal/repository/builder"
)

// DataSeeder fills the employees schema with generated salary histories.
type DataSeeder struct {
	db *sql.DB
}

func NewDataSeeder(db *sql.DB) *DataSeeder {
	return &DataSeeder{db: db}
}

var (
	departments = []domain.Department{
		{DeptNo: "d001", DeptName: "Marketing"},
		{DeptNo: "d002", DeptName: "Finance"},
		{DeptNo: "d003", DeptName: "Human Resources"},
		{DeptNo: "d004", DeptName: "Production"},
		{DeptNo: "d005", DeptName: "Development"},
		{DeptNo: "d006", DeptName: "Quality Management"},
	}
	firstNames = []string{"Georgi", "Bezalel", "Parto", "Chirstian", "Kyoichi", "Anneke", "Tzvetan", "Saniya", "Sumant", "Duangkaew"}
	lastNames  = []string{"Facello", "Simmel", "Bamford", "Koblick", "Maliniak", "Preusig", "Zielinski", "Kalloufi", "Peac", "Piveteau"}
)

// insertBatchSize bounds the rows per INSERT statement.
const insertBatchSize = 500

// Dataset is a generated set of rows ready to insert.
type Dataset struct {
	Employees []domain.Employee
	DeptEmps  []domain.DeptEmp
	Salaries  []domain.Salary
}

// GenerateDataset builds numEmployees employees hired between firstYear and
// lastYear, each with a yearly salary history up to lastYear. Roughly one in
// ten employees leaves before lastYear.
func GenerateDataset(rng *rand.Rand, numEmployees, firstYear, lastYear int) Dataset {
	if lastYear < firstYear {
		firstYear, lastYear = lastYear, firstYear
	}

	var ds Dataset
	for i := 0; i < numEmployees; i++ {
		empNo := 10001 + i
		hireYear := firstYear + rng.Intn(lastYear-firstYear+1)
		hire := time.Date(hireYear, time.Month(rng.Intn(12)+1), rng.Intn(28)+1, 0, 0, 0, 0, time.UTC)

		ds.Employees = append(ds.Employees, domain.Employee{
			EmpNo:     empNo,
			BirthDate: hire.AddDate(-(22 + rng.Intn(35)), 0, 0),
			FirstName: firstNames[rng.Intn(len(firstNames))],
			LastName:  lastNames[rng.Intn(len(lastNames))],
			Gender:    []string{"M", "F"}[rng.Intn(2)],
			HireDate:  hire,
		})

		leaves := rng.Intn(10) == 0 && hireYear < lastYear
		end := domain.CurrentToDate
		if leaves {
			end = time.Date(hireYear+1+rng.Intn(lastYear-hireYear), time.March, 31, 0, 0, 0, 0, time.UTC)
		}

		dept := departments[rng.Intn(len(departments))]
		ds.DeptEmps = append(ds.DeptEmps, domain.DeptEmp{EmpNo: empNo, DeptNo: dept.DeptNo, FromDate: hire, ToDate: end})

		salary := 40000 + rng.Intn(40000)
		for from := hire; from.Before(end) && from.Year() <= lastYear; {
			to := from.AddDate(1, 0, 0)
			if to.After(end) || to.Year() > lastYear {
				to = end
			}
			ds.Salaries = append(ds.Salaries, domain.Salary{EmpNo: empNo, Salary: salary, FromDate: from, ToDate: to})
			if to.Equal(end) {
				break
			}
			from = to
			salary += salary * rng.Intn(8) / 100
		}
	}
	return ds
}

// SeedData generates and inserts numEmployees employees.
func (ds *DataSeeder) SeedData(ctx context.Context, numEmployees, firstYear, lastYear int) error {
	start := time.Now()
	fmt.Println("🚀 Seeding data...")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	data := GenerateDataset(rng, numEmployees, firstYear, lastYear)

	tx, err := ds.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	fmt.Println("🏢 Creating departments...")
	b := builder.NewSQLBuilder().Insert("departments", "dept_no", "dept_name")
	for _, d := range departments {
		b.Values(d.DeptNo, d.DeptName)
	}
	if err := execBuilder(ctx, tx, b.OnConflictDoNothing()); err != nil {
		return fmt.Errorf("failed to insert departments: %w", err)
	}

	fmt.Println("👥 Creating employees...")
	err = insertBatches(ctx, tx, len(data.Employees), func(lo, hi int) *builder.SQLBuilder {
		b := builder.NewSQLBuilder().Insert("employees", "emp_no", "birth_date", "first_name", "last_name", "gender", "hire_date")
		for _, e := range data.Employees[lo:hi] {
			b.Values(e.EmpNo, e.BirthDate, e.FirstName, e.LastName, e.Gender, e.HireDate)
		}
		return b.OnConflictDoNothing()
	})
	if err != nil {
		return fmt.Errorf("failed to insert employees: %w", err)
	}
	fmt.Printf("✅ Created %d employees\n", len(data.Employees))

	err = insertBatches(ctx, tx, len(data.DeptEmps), func(lo, hi int) *builder.SQLBuilder {
		b := builder.NewSQLBuilder().Insert("dept_emp", "emp_no", "dept_no", "from_date", "to_date")
		for _, de := range data.DeptEmps[lo:hi] {
			b.Values(de.EmpNo, de.DeptNo, de.FromDate, de.ToDate)
		}
		return b.OnConflictDoNothing()
	})
	if err != nil {
		return fmt.Errorf("failed to insert department assignments: %w", err)
	}

	fmt.Println("💰 Creating salaries...")
	err = insertBatches(ctx, tx, len(data.Salaries), func(lo, hi int) *builder.SQLBuilder {
		b := builder.NewSQLBuilder().Insert("salaries", "emp_no", "salary", "from_date", "to_date")
		for _, s := range data.Salaries[lo:hi] {
			b.Values(s.EmpNo, s.Salary, s.FromDate, s.ToDate)
		}
		return b.OnConflictDoNothing()
	})
	if err != nil {
		return fmt.Errorf("failed to insert salaries: %w", err)
	}
	fmt.Printf("✅ Created %d salaries\n", len(data.Salaries))

	if err := tx.Commit(); err != nil {
		return err
	}

	fmt.Printf("🎉 Done in %v\n", time.Since(start))
	return nil
}

func insertBatches(ctx context.Context, tx *sql.Tx, n int, batch func(lo, hi int) *builder.SQLBuilder) error {
	for lo := 0; lo < n; lo += insertBatchSize {
		hi := min(lo+insertBatchSize, n)
		if err := execBuilder(ctx, tx, batch(lo, hi)); err != nil {
			return err
		}
	}
	return nil
}

func execBuilder(ctx context.Context, tx *sql.Tx, b *builder.SQLBuilder) error {
	query, args := b.Build()
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

func (ds *DataSeeder) ClearData(ctx context.Context) error {
	fmt.Println("🗑️  Clearing data...")

	// child tables first
	for _, table := range []string{"salaries", "dept_emp", "employees", "departments"} {
		query, args := builder.NewSQLBuilder().Delete(table).Build()
		if _, err := ds.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	fmt.Println("✅ Cleared SQL data")
	return nil
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
	PresetXLarge SeedPreset = "xlarge"
)

// GetPresetConfig returns the number of employees for a preset
func GetPresetConfig(preset SeedPreset) int {
	switch preset {
	case PresetSmall:
		return 50
	case PresetMedium:
		return 1000
	case PresetLarge:
		return 10000
	case PresetXLarge:
		return 100000
	default:
		return 1000
	}
}
