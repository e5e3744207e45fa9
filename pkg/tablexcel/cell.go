package tablexcel

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/xuri/excelize/v2"
)

const (
	// MaxRows and MaxColumns are the worksheet limits of the xlsx format.
	MaxRows    = excelize.TotalRows
	MaxColumns = excelize.MaxColumns

	// DefaultColumnWidth is the width, in characters, a cleared sheet's columns return to.
	DefaultColumnWidth = 10.0

	maxSheetNameLength = 31
	maxColumnWidth     = 255.0
)

var timeType = reflect.TypeOf(time.Time{})

// cellName converts 0-based coordinates to an A1 reference.
func cellName(row, col int) (string, error) {
	if row < 0 || row >= MaxRows || col < 0 || col >= MaxColumns {
		return "", fmt.Errorf("cell (%d,%d) outside the worksheet", row, col)
	}
	return excelize.CoordinatesToCellName(col+1, row+1)
}

// columnName converts a 0-based column index to its letters.
func columnName(col int) string {
	if col < 0 {
		col = 0
	}
	if col >= MaxColumns {
		col = MaxColumns - 1
	}
	name, _ := excelize.ColumnNumberToName(col + 1)
	return name
}

// kindOf classifies the static value type of a column.
func kindOf[V any]() xlstyle.Kind {
	t := reflect.TypeOf((*V)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return xlstyle.KindDate
	}
	switch t.Kind() {
	case reflect.Bool:
		return xlstyle.KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return xlstyle.KindInteger
	case reflect.Float32, reflect.Float64:
		return xlstyle.KindReal
	case reflect.String:
		return xlstyle.KindText
	}
	return xlstyle.KindOther
}

// errUnsupportedValue is returned by writeValue for values with no cell representation.
type errUnsupportedValue struct {
	value any
}

func (e errUnsupportedValue) Error() string {
	return fmt.Sprintf("unsupported value type %T", e.value)
}

// writeValue stores v in the cell using the setter matching its runtime type.
// It reports false when v is nil (or a nil pointer, or a zero time) and the
// cell was left untouched.
func writeValue(f *excelize.File, sheet, cell string, v any) (bool, error) {
	if v == nil {
		return false, nil
	}

	switch x := v.(type) {
	case bool:
		return true, f.SetCellBool(sheet, cell, x)
	case string:
		return true, f.SetCellStr(sheet, cell, x)
	case float64:
		return true, f.SetCellFloat(sheet, cell, x, -1, 64)
	case float32:
		return true, f.SetCellFloat(sheet, cell, float64(x), -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true, f.SetCellValue(sheet, cell, x)
	case time.Time:
		if x.IsZero() {
			return false, nil
		}
		return true, f.SetCellValue(sheet, cell, x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return false, nil
		}
		return writeValue(f, sheet, cell, rv.Elem().Interface())
	case reflect.Bool:
		return true, f.SetCellBool(sheet, cell, rv.Bool())
	case reflect.String:
		return true, f.SetCellStr(sheet, cell, rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true, f.SetCellValue(sheet, cell, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true, f.SetCellValue(sheet, cell, rv.Uint())
	case reflect.Float32, reflect.Float64:
		return true, f.SetCellFloat(sheet, cell, rv.Float(), -1, 64)
	}
	return false, errUnsupportedValue{value: v}
}

// isBlank reports whether the cell holds neither a value nor a formula.
func isBlank(f *excelize.File, sheet, cell string) bool {
	if formula, err := f.GetCellFormula(sheet, cell); err == nil && formula != "" {
		return false
	}
	v, err := f.GetCellValue(sheet, cell)
	return err == nil && v == ""
}

// sanitizeSheetName replaces characters the format forbids and truncates to 31 runes.
func sanitizeSheetName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if r := []rune(name); len(r) > maxSheetNameLength {
		name = string(r[:maxSheetNameLength])
	}
	return name
}

// quoteSheetName quotes a sheet name for use in a formula reference when needed.
func quoteSheetName(name string) string {
	plain := name != ""
	for i, r := range name {
		if r == '_' || r == '.' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		plain = false
		break
	}
	if plain {
		// names that read as a cell reference must be quoted too
		if _, _, err := excelize.CellNameToCoordinates(name); err != nil {
			return name
		}
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
