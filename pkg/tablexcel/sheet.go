package tablexcel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// clearSheet empties a sheet of an existing document so it can be laid out
// again. Values, formulas and styles are blanked, column widths return to the
// default and merged regions are removed. Defined names are kept so they can
// be updated afterwards.
func clearSheet(f *excelize.File, sheet string) error {
	maxRow, maxCol, err := usedExtent(f, sheet)
	if err != nil {
		return err
	}

	if maxRow > 0 && maxCol > 0 {
		for r := 1; r <= maxRow; r++ {
			for c := 1; c <= maxCol; c++ {
				cell, err := excelize.CoordinatesToCellName(c, r)
				if err != nil {
					return err
				}
				if err := f.SetCellFormula(sheet, cell, ""); err != nil {
					return fmt.Errorf("clearing formula %s: %w", cell, err)
				}
				if err := f.SetCellDefault(sheet, cell, ""); err != nil {
					return fmt.Errorf("clearing value %s: %w", cell, err)
				}
			}
		}
		last, _ := excelize.CoordinatesToCellName(maxCol, maxRow)
		if err := f.SetCellStyle(sheet, "A1", last, 0); err != nil {
			return fmt.Errorf("clearing styles: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(maxCol)
		if err := f.SetColWidth(sheet, "A", lastCol, DefaultColumnWidth); err != nil {
			return fmt.Errorf("resetting widths: %w", err)
		}
	}

	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return fmt.Errorf("reading merged cells: %w", err)
	}
	// removing from the end keeps the remaining entries in place
	for i := len(merged) - 1; i >= 0; i-- {
		if err := f.UnmergeCell(sheet, merged[i].GetStartAxis(), merged[i].GetEndAxis()); err != nil {
			return fmt.Errorf("unmerging %s:%s: %w", merged[i].GetStartAxis(), merged[i].GetEndAxis(), err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{}); err != nil {
		return fmt.Errorf("removing panes: %w", err)
	}
	return nil
}

// usedExtent returns the 1-based last row and column holding content. Rows
// are counted from the row elements so formula-only rows are included.
func usedExtent(f *excelize.File, sheet string) (int, int, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return 0, 0, fmt.Errorf("reading rows: %w", err)
	}
	defer rows.Close()

	maxRow, maxCol := 0, 0
	for rows.Next() {
		maxRow++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return 0, 0, fmt.Errorf("reading row %d: %w", maxRow, err)
		}
		maxCol = max(maxCol, len(cols))
	}
	if err := rows.Error(); err != nil {
		return 0, 0, fmt.Errorf("reading rows: %w", err)
	}

	if dim, err := f.GetSheetDimension(sheet); err == nil && dim != "" {
		parts := strings.Split(dim, ":")
		if c, r, err := excelize.CellNameToCoordinates(parts[len(parts)-1]); err == nil {
			maxRow, maxCol = max(maxRow, r), max(maxCol, c)
		}
	}
	return maxRow, maxCol, nil
}
