package tablexcel

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Scope selects where a defined name is visible.
type Scope int

const (
	// WorkbookScope names are global to the document.
	WorkbookScope Scope = iota
	// SheetScope names are local to the table's sheet.
	SheetScope
)

func (s Scope) String() string {
	if s == SheetScope {
		return "sheet"
	}
	return "workbook"
}

const workbookScopeName = "Workbook"

// NamedRange exposes a set of a table's physical columns, data rows only,
// under one name. No columns means the table's last column.
type NamedRange struct {
	Name    string
	Scope   Scope
	Columns []int
}

// areaSeparator joins the areas of a multi-area reference.
const areaSeparator = ","

// BuildRangeFormula returns the reference covering the data rows of the given
// 0-based columns. Each maximal run of consecutive columns becomes one
// rectangular area. It reports false when an index falls outside
// [0, totalColumns) or there are no data rows.
func BuildRangeFormula(columns []int, totalColumns int, sheet string, firstDataRow, rowCount int) (string, bool) {
	if len(columns) == 0 || rowCount <= 0 || firstDataRow < 0 {
		return "", false
	}
	for _, c := range columns {
		if c < 0 || c >= totalColumns {
			return "", false
		}
	}

	sorted := slices.Clone(columns)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	sorted = slices.DeleteFunc(sorted, func(c int) bool { return c >= MaxColumns })
	if len(sorted) == 0 {
		return "", false
	}

	firstRow := firstDataRow + 1
	lastRow := min(firstDataRow+rowCount, MaxRows)
	ref := quoteSheetName(sheet)

	var areas []string
	start := sorted[0]
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i] == sorted[i-1]+1 {
			continue
		}
		end := sorted[i-1]
		areas = append(areas, fmt.Sprintf("%s!$%s$%d:$%s$%d", ref, columnName(start), firstRow, columnName(end), lastRow))
		if i < len(sorted) {
			start = sorted[i]
		}
	}
	return strings.Join(areas, areaSeparator), true
}

func scopeName(s Scope, sheet string) string {
	if s == SheetScope {
		return sheet
	}
	return workbookScopeName
}

// findDefinedName returns the defined name matching name (ignoring case) and scope.
func findDefinedName(f *excelize.File, name, scope string) (excelize.DefinedName, bool) {
	for _, dn := range f.GetDefinedName() {
		dnScope := dn.Scope
		if dnScope == "" {
			dnScope = workbookScopeName
		}
		if strings.EqualFold(dn.Name, name) && strings.EqualFold(dnScope, scope) {
			return dn, true
		}
	}
	return excelize.DefinedName{}, false
}

type rangeFormula struct {
	rng     NamedRange
	formula string
}

// createNamedRanges defines every range, sheet-scoped names first. Names that
// already exist in their scope are reported and left alone.
func createNamedRanges(ec *ExportContext, ranges []rangeFormula) {
	ordered := slices.Clone(ranges)
	slices.SortStableFunc(ordered, func(a, b rangeFormula) int {
		if a.rng.Scope == b.rng.Scope {
			return 0
		}
		if a.rng.Scope == SheetScope {
			return -1
		}
		return 1
	})

	for _, r := range ordered {
		scope := scopeName(r.rng.Scope, ec.Sheet)
		if _, exists := findDefinedName(ec.File, r.rng.Name, scope); exists {
			ec.Issue("", fmt.Sprintf("named range %q already defined in %s scope", r.rng.Name, r.rng.Scope))
			continue
		}
		err := ec.File.SetDefinedName(&excelize.DefinedName{
			Name:     r.rng.Name,
			RefersTo: r.formula,
			Scope:    scope,
		})
		if err != nil {
			ec.Issue("", fmt.Sprintf("creating named range %q: %v", r.rng.Name, err))
			continue
		}
		ec.Logger.Debug().Str("range", r.rng.Name).Str("refers_to", r.formula).Msg("named range created")
	}
}

// updateNamedRanges rewrites the reference of ranges that still exist. A name
// that has disappeared (renamed or deleted by a user) is logged and skipped.
func updateNamedRanges(ec *ExportContext, ranges []rangeFormula) {
	for _, r := range ranges {
		scope := scopeName(r.rng.Scope, ec.Sheet)
		existing, ok := findDefinedName(ec.File, r.rng.Name, scope)
		if !ok {
			ec.Logger.Warn().Str("range", r.rng.Name).Str("scope", r.rng.Scope.String()).
				Msg("named range no longer exists, skipping update")
			continue
		}
		if existing.RefersTo == r.formula {
			continue
		}
		if err := ec.File.DeleteDefinedName(&excelize.DefinedName{Name: existing.Name, Scope: existing.Scope}); err != nil {
			ec.Issue("", fmt.Sprintf("updating named range %q: %v", r.rng.Name, err))
			continue
		}
		err := ec.File.SetDefinedName(&excelize.DefinedName{
			Name:     existing.Name,
			Comment:  existing.Comment,
			RefersTo: r.formula,
			Scope:    existing.Scope,
		})
		if err != nil {
			ec.Issue("", fmt.Sprintf("updating named range %q: %v", r.rng.Name, err))
			continue
		}
		ec.Logger.Debug().Str("range", r.rng.Name).Str("refers_to", r.formula).Msg("named range updated")
	}
}
