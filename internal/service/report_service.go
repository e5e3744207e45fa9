package service

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/locvowork/tablexcel/internal/domain"
	"github.com/locvowork/tablexcel/internal/logger"
	"github.com/locvowork/tablexcel/pkg/dataflow"
	"github.com/locvowork/tablexcel/pkg/tablexcel"
	"github.com/locvowork/tablexcel/pkg/xlstyle"
)

const (
	SalarySheet     = "Salaries"
	DepartmentSheet = "Departments"

	// Named ranges created over the salary sheet.
	RangeYearlySalaries  = "YearlySalaries"
	RangeCurrentSalaries = "CurrentSalaries"
	RangeEmployeeNames   = "EmployeeNames"
)

// Physical columns of the salary sheet ahead of the yearly salaries.
const (
	colEmpNo = iota
	colName
	colDepartment
	colHireDate
	colActive
	colCurrentSalary
	colFirstYear
)

const defaultHistoryBatch = 1000

// ReportOptions bounds the years covered by the salary report.
type ReportOptions struct {
	FirstYear int
	LastYear  int
	// Workers is the number of goroutines building report rows.
	Workers int
}

// ReportService builds the salary workbook from the employee database.
type ReportService struct {
	repo     domain.EmployeeRepository
	catalog  *xlstyle.Catalog
	observer tablexcel.Observer
	opts     ReportOptions

	// historyBatch bounds the employees passed to one salary query.
	historyBatch int
}

// ExportResult describes a finished export.
type ExportResult struct {
	RunID     string            `json:"run_id"`
	Path      string            `json:"path,omitempty"`
	Employees int               `json:"employees"`
	Issues    []tablexcel.Issue `json:"issues"`
}

// NewReportService creates a report service. A nil catalog uses the default
// styles and a nil observer disables metrics.
func NewReportService(repo domain.EmployeeRepository, catalog *xlstyle.Catalog, observer tablexcel.Observer, opts ReportOptions) *ReportService {
	if catalog == nil {
		catalog = xlstyle.DefaultCatalog()
	}
	if opts.LastYear < opts.FirstYear {
		opts.FirstYear, opts.LastYear = opts.LastYear, opts.FirstYear
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &ReportService{
		repo:         repo,
		catalog:      catalog,
		observer:     observer,
		opts:         opts,
		historyBatch: defaultHistoryBatch,
	}
}

// Years is the number of yearly salary columns.
func (s *ReportService) Years() int {
	return s.opts.LastYear - s.opts.FirstYear + 1
}

// Export writes the salary workbook to path, updating an existing document
// unless forceRecreate is set.
func (s *ReportService) Export(ctx context.Context, filter domain.EmployeeFilter, path string, forceRecreate bool) (*ExportResult, error) {
	ctx, runID := s.withRun(ctx)

	wb, n, err := s.BuildWorkbook(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := wb.Export(ctx, path, forceRecreate); err != nil {
		return nil, err
	}
	return &ExportResult{RunID: runID, Path: path, Employees: n, Issues: wb.Issues()}, nil
}

// Write lays out a fresh salary workbook and writes it to w.
func (s *ReportService) Write(ctx context.Context, filter domain.EmployeeFilter, w io.Writer) (*ExportResult, error) {
	ctx, runID := s.withRun(ctx)

	wb, n, err := s.BuildWorkbook(ctx, filter)
	if err != nil {
		return nil, err
	}
	if _, err := wb.WriteTo(ctx, w); err != nil {
		return nil, err
	}
	return &ExportResult{RunID: runID, Employees: n, Issues: wb.Issues()}, nil
}

func (s *ReportService) withRun(ctx context.Context) (context.Context, string) {
	runID := uuid.NewString()
	return logger.WithLogger(ctx, map[string]interface{}{"run_id": runID}), runID
}

// BuildWorkbook loads the report rows and declares the salary and department
// sheets. It returns the workbook and the number of employees.
func (s *ReportService) BuildWorkbook(ctx context.Context, filter domain.EmployeeFilter) (*tablexcel.Workbook, int, error) {
	depts, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.salaryRows(ctx, filter, depts)
	if err != nil {
		return nil, 0, err
	}
	summaries := summarize(depts, rows)

	opts := []tablexcel.Option{
		tablexcel.WithCatalog(s.catalog),
		tablexcel.WithLogger(logger.FromContext(ctx)),
	}
	if s.observer != nil {
		opts = append(opts, tablexcel.WithObserver(s.observer))
	}
	wb := tablexcel.NewWorkbook(opts...)

	s.salaryTable(wb, rows)
	s.departmentTable(wb, summaries)
	wb.SheetOrder(SalarySheet, DepartmentSheet)

	logger.InfoLog(ctx, "salary report prepared: %d employees, %d departments", len(rows), len(summaries))
	return wb, len(rows), nil
}

func (s *ReportService) salaryTable(wb *tablexcel.Workbook, rows []domain.EmployeeSalaryRow) {
	cat := s.catalog
	header := cat.Header()
	years := s.Years()

	t := tablexcel.AddTable(wb, rows).SetSheetName(SalarySheet).
		AddTitleRow("Salary report", nil).
		AddTitleRow(fmt.Sprintf("Salaries at year end, %d to %d", s.opts.FirstYear, s.opts.LastYear), xlstyle.From(cat.Base()).Italic().Build().Ptr())

	tablexcel.AddColumn(t, "EmpNo", func(r domain.EmployeeSalaryRow) int { return r.EmpNo }).
		Style(cat.Lookup(xlstyle.StyleUngroupedInteger).Ptr()).
		Header(tablexcel.TextHeader{Text: "Emp No", Style: cat.Lookup(xlstyle.StyleUngroupedIntegerHeader).Ptr()}).
		AutoSize(0, true)
	tablexcel.AddColumn(t, "Name", func(r domain.EmployeeSalaryRow) string { return r.Name }).
		TextHeader("Name").
		AutoSize(40, true).
		Aggregate(tablexcel.Count, nil)
	tablexcel.AddColumn(t, "Department", func(r domain.EmployeeSalaryRow) string { return r.Department }).
		TextHeader("Department").
		WrapText(18)
	tablexcel.AddColumn(t, "HireDate", func(r domain.EmployeeSalaryRow) time.Time { return r.HireDate }).
		TextHeader("Hire Date").
		AutoSize(0, true).
		Aggregate(tablexcel.Min, nil)
	tablexcel.AddColumn(t, "Active", func(r domain.EmployeeSalaryRow) bool { return r.Active }).
		TextHeader("Active")
	tablexcel.AddColumn(t, "CurrentSalary", func(r domain.EmployeeSalaryRow) *int { return r.CurrentSalary }).
		TextHeader("Current Salary").
		AutoSize(0, true).
		Aggregate(tablexcel.Sum, nil).
		Aggregate(tablexcel.Max, nil)
	tablexcel.AddVector(t, "YearlySalaries", func(r domain.EmployeeSalaryRow) []*int { return r.YearlySalaries }).
		Header(tablexcel.SpanningHeader{Text: "Salary at Year End", Columns: years, Style: header.Ptr()}).
		YearsHeader(s.opts.FirstYear, s.opts.LastYear).
		AutoSize(14, true).
		Aggregate(tablexcel.Sum, nil).
		Aggregate(tablexcel.Average, nil)
	tablexcel.AddColumn(t, "RaisePercent", func(r domain.EmployeeSalaryRow) *float64 { return r.RaisePercent }).
		Style(cat.Lookup(xlstyle.StylePercent).Ptr()).
		TextHeader("Raise").
		AutoSize(0, true)

	yearly := make([]int, years)
	for i := range yearly {
		yearly[i] = colFirstYear + i
	}
	t.AddWorkbookNamedRange(RangeYearlySalaries, yearly...).
		AddWorkbookNamedRange(RangeCurrentSalaries, colCurrentSalary).
		AddWorksheetNamedRange(RangeEmployeeNames, colName).
		FreezeColumn(colDepartment).
		AutoFilter()
}

func (s *ReportService) departmentTable(wb *tablexcel.Workbook, summaries []domain.DepartmentSummary) {
	cat := s.catalog

	t := tablexcel.AddTable(wb, summaries).SetSheetName(DepartmentSheet).
		AddTitleRow("Departments", nil)

	tablexcel.AddColumn(t, "DeptNo", func(d domain.DepartmentSummary) string { return d.DeptNo }).
		TextHeader("Dept No")
	tablexcel.AddColumn(t, "Name", func(d domain.DepartmentSummary) string { return d.Name }).
		TextHeader("Department").
		AutoSize(30, true)
	tablexcel.AddColumn(t, "Headcount", func(d domain.DepartmentSummary) int { return d.Headcount }).
		TextHeader("Headcount").
		Aggregate(tablexcel.Sum, nil)
	tablexcel.AddColumn(t, "Payroll", func(d domain.DepartmentSummary) int { return d.Payroll }).
		TextHeader("Payroll").
		AutoSize(0, true).
		Aggregate(tablexcel.Sum, nil)
	tablexcel.AddColumn(t, "AverageSalary", func(d domain.DepartmentSummary) float64 { return d.AverageSalary }).
		Style(cat.Lookup(xlstyle.StyleDouble).Ptr()).
		TextHeader("Average Salary").
		AutoSize(0, true).
		Aggregate(tablexcel.Average, nil)

	t.AddWorksheetNamedRange("Payroll", 3)
}

// SalaryRows loads the employees matching filter and derives one report row
// per employee, ordered by employee number.
func (s *ReportService) SalaryRows(ctx context.Context, filter domain.EmployeeFilter) ([]domain.EmployeeSalaryRow, error) {
	depts, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	return s.salaryRows(ctx, filter, depts)
}

func (s *ReportService) salaryRows(ctx context.Context, filter domain.EmployeeFilter, depts []domain.Department) ([]domain.EmployeeSalaryRow, error) {
	employees, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return nil, nil
	}

	empNos := make([]int, len(employees))
	for i, e := range employees {
		empNos[i] = e.EmpNo
	}

	departments := make(map[string]string, len(depts))
	for _, d := range depts {
		departments[d.DeptNo] = d.DeptName
	}
	current, err := s.repo.CurrentDepartments(ctx, empNos)
	if err != nil {
		return nil, err
	}
	history, err := s.salaryHistory(ctx, empNos)
	if err != nil {
		return nil, err
	}

	byEmp := make(map[int][]domain.Salary, len(employees))
	for _, sal := range history {
		byEmp[sal.EmpNo] = append(byEmp[sal.EmpNo], sal)
	}

	// the map is only read by the workers
	build := func(e domain.Employee) (domain.EmployeeSalaryRow, error) {
		row := s.salaryRow(e, byEmp[e.EmpNo])
		if deptNo, ok := current[e.EmpNo]; ok {
			row.Department = departments[deptNo]
			if row.Department == "" {
				row.Department = deptNo
			}
		}
		return row, nil
	}

	out := dataflow.Map(ctx, dataflow.From(ctx, employees...), build, dataflow.WithWorkers(s.opts.Workers))
	rows, err := dataflow.Collect(ctx, out)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(rows, func(a, b domain.EmployeeSalaryRow) int { return a.EmpNo - b.EmpNo })
	return rows, nil
}

// salaryHistory loads the salary rows of empNos in batches, at most Workers
// queries at a time, and merges them.
func (s *ReportService) salaryHistory(ctx context.Context, empNos []int) ([]domain.Salary, error) {
	sem := make(chan struct{}, s.opts.Workers)

	var (
		streams []dataflow.Stream[domain.Salary]
		waits   []func() error
	)
	for lo := 0; lo < len(empNos); lo += s.historyBatch {
		batch := empNos[lo:min(lo+s.historyBatch, len(empNos))]
		stream, wait := dataflow.Load(ctx, func(ctx context.Context) ([]domain.Salary, error) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			defer func() { <-sem }()
			return s.repo.SalaryHistory(ctx, batch)
		})
		streams = append(streams, stream)
		waits = append(waits, wait)
	}

	salaries, err := dataflow.Collect(ctx, dataflow.FanIn(ctx, streams...))
	for _, wait := range waits {
		if werr := wait(); werr != nil {
			return nil, werr
		}
	}
	if err != nil {
		return nil, err
	}
	return salaries, nil
}

// salaryRow derives the salary columns from one employee's history.
func (s *ReportService) salaryRow(e domain.Employee, history []domain.Salary) domain.EmployeeSalaryRow {
	row := domain.EmployeeSalaryRow{
		EmpNo:          e.EmpNo,
		Name:           e.FullName(),
		HireDate:       e.HireDate,
		YearlySalaries: make([]*int, s.Years()),
	}

	for _, sal := range history {
		if sal.ToDate.Equal(domain.CurrentToDate) {
			amount := sal.Salary
			row.CurrentSalary = &amount
			row.Active = true
		}
	}

	var first, last *int
	for i := range row.YearlySalaries {
		amount, ok := salaryAt(history, yearEnd(s.opts.FirstYear+i))
		if !ok {
			continue
		}
		row.YearlySalaries[i] = &amount
		if first == nil {
			first = &amount
		}
		last = &amount
	}

	if first != nil && last != nil && first != last && *first > 0 {
		raise := float64(*last-*first) / float64(*first)
		row.RaisePercent = &raise
	}
	return row
}

func yearEnd(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// salaryAt returns the salary in effect on day. Salary periods include their
// from date and exclude their to date.
func salaryAt(history []domain.Salary, day time.Time) (int, bool) {
	for _, sal := range history {
		if !sal.FromDate.After(day) && sal.ToDate.After(day) {
			return sal.Salary, true
		}
	}
	return 0, false
}

// summarize totals the current salaries of the active employees of each department.
func summarize(depts []domain.Department, rows []domain.EmployeeSalaryRow) []domain.DepartmentSummary {
	summaries := make([]domain.DepartmentSummary, len(depts))
	index := make(map[string]int, len(depts))
	for i, d := range depts {
		summaries[i] = domain.DepartmentSummary{DeptNo: d.DeptNo, Name: d.DeptName}
		index[d.DeptName] = i
	}

	for _, r := range rows {
		i, ok := index[r.Department]
		if !ok || !r.Active || r.CurrentSalary == nil {
			continue
		}
		summaries[i].Headcount++
		summaries[i].Payroll += *r.CurrentSalary
	}
	for i := range summaries {
		if summaries[i].Headcount > 0 {
			summaries[i].AverageSalary = float64(summaries[i].Payroll) / float64(summaries[i].Headcount)
		}
	}
	return summaries
}
