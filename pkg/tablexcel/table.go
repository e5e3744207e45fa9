package tablexcel

import (
	"fmt"
	"strings"

	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/xuri/excelize/v2"
)

type titleRow struct {
	text  string
	style *xlstyle.StyleSet
}

// Table lays out a collection of T as a titled, headed table with optional
// aggregates and named ranges.
type Table[T any] struct {
	wb           *Workbook
	rows         []T
	columns      []*Column[T]
	titles       []titleRow
	freezeColumn int
	autoFilter   bool
	ranges       []NamedRange
}

// AddTable registers a new table for rows under the next free default name.
func AddTable[T any](wb *Workbook, rows []T) *Table[T] {
	t := &Table[T]{wb: wb, rows: rows}
	wb.AddSheet("", t)
	return t
}

// SheetName returns the table's sheet name.
func (t *Table[T]) SheetName() string { return t.wb.nameOf(t) }

// SetSheetName renames the sheet; a name used by another sheet is refused.
func (t *Table[T]) SetSheetName(name string) *Table[T] {
	t.wb.RenameSheet(t.SheetName(), name)
	return t
}

func (t *Table[T]) Rows() []T { return t.rows }

func (t *Table[T]) SetRows(rows []T) *Table[T] {
	t.rows = rows
	return t
}

// Len is the number of data rows.
func (t *Table[T]) Len() int { return len(t.rows) }

// AddTitleRow adds a banner row above the headers. A nil style uses Title.
func (t *Table[T]) AddTitleRow(text string, style *xlstyle.StyleSet) *Table[T] {
	if style != nil {
		style = style.Ptr()
	}
	t.titles = append(t.titles, titleRow{text: text, style: style})
	return t
}

// FreezeColumn keeps columns left of col visible while scrolling.
func (t *Table[T]) FreezeColumn(col int) *Table[T] {
	t.freezeColumn = max(col, 0)
	return t
}

// AutoFilter adds a filter over the last header row and the data.
func (t *Table[T]) AutoFilter() *Table[T] {
	t.autoFilter = true
	return t
}

// AddWorkbookNamedRange exposes the given physical columns under a
// document-wide name. No columns selects the last column.
func (t *Table[T]) AddWorkbookNamedRange(name string, columns ...int) *Table[T] {
	return t.addNamedRange(name, WorkbookScope, columns)
}

// AddWorksheetNamedRange exposes the given physical columns under a name
// local to the sheet. No columns selects the last column.
func (t *Table[T]) AddWorksheetNamedRange(name string, columns ...int) *Table[T] {
	return t.addNamedRange(name, SheetScope, columns)
}

func (t *Table[T]) addNamedRange(name string, scope Scope, columns []int) *Table[T] {
	name = strings.TrimSpace(name)
	if name == "" {
		t.wb.logger.Warn().Str("sheet", t.SheetName()).Msg("ignoring named range without a name")
		return t
	}
	t.ranges = append(t.ranges, NamedRange{Name: name, Scope: scope, Columns: append([]int(nil), columns...)})
	return t
}

// NamedRanges returns the declared ranges.
func (t *Table[T]) NamedRanges() []NamedRange {
	return append([]NamedRange(nil), t.ranges...)
}

// =============================================================================
// Layout
// =============================================================================

// tableLayout is the geometry of one export. Rows and columns are 0-based.
type tableLayout struct {
	widths       []int
	starts       []int
	headers      [][]Header
	totalColumns int
	titleRows    int
	headerHeight int
	firstDataRow int
	rowCount     int
}

// columnStarts returns each column's first physical column.
func columnStarts(widths []int) []int {
	starts := make([]int, len(widths))
	cursor := 0
	for i, w := range widths {
		starts[i] = cursor
		cursor += w
	}
	return starts
}

func computeLayout(widths []int, headers [][]Header, titleRows, rowCount int) tableLayout {
	l := tableLayout{
		widths:    widths,
		starts:    columnStarts(widths),
		headers:   headers,
		titleRows: titleRows,
		rowCount:  rowCount,
	}
	for i, w := range widths {
		l.totalColumns += w
		if w == 0 {
			continue
		}
		l.headerHeight = max(l.headerHeight, headerStackHeight(headers[i]))
	}
	l.firstDataRow = titleRows + l.headerHeight
	return l
}

// headerStart is the first row of column i's header stack, placed so the
// stack ends directly above the data.
func (l tableLayout) headerStart(i int) int {
	return l.firstDataRow - headerStackHeight(l.headers[i])
}

func (t *Table[T]) layout() tableLayout {
	widths := make([]int, len(t.columns))
	headers := make([][]Header, len(t.columns))
	for i, c := range t.columns {
		widths[i] = c.ColumnsNeeded()
		headers[i] = c.resolvedHeaders(widths[i])
	}
	return computeLayout(widths, headers, len(t.titles), len(t.rows))
}

// =============================================================================
// Export
// =============================================================================

type tableExport struct {
	ec       *ExportContext
	layout   tableLayout
	styles   []xlstyle.StyleSet
	formulas []string
	rendered map[string]string
	spanned  map[string]bool
	lastRow  int
}

// Export lays the table out in ec.Sheet.
func (t *Table[T]) Export(ec *ExportContext) error {
	created, err := acquireSheet(ec)
	if err != nil {
		return err
	}

	x := &tableExport{
		ec:       ec,
		styles:   t.normalizedStyles(ec.Catalog),
		layout:   t.layout(),
		rendered: make(map[string]string),
		spanned:  make(map[string]bool),
	}

	t.writeTitles(x)
	t.writeHeaders(x)
	t.freezePanes(x)
	t.populate(x)
	t.writeAggregates(x)
	x.evaluateFormulas()
	t.sizeColumns(x)
	t.applyAutoFilter(x)
	t.writeNamedRanges(x, ec.NewDocument || created)

	ec.Logger.Debug().
		Int("rows", x.layout.rowCount).
		Int("columns", x.layout.totalColumns).
		Int("first_data_row", x.layout.firstDataRow).
		Msg("table exported")
	return nil
}

// acquireSheet makes sure the sheet exists and, in an existing document,
// clears what a previous export left behind. It reports whether the sheet
// was created.
func acquireSheet(ec *ExportContext) (bool, error) {
	idx, err := ec.File.GetSheetIndex(ec.Sheet)
	if err != nil {
		return false, fmt.Errorf("looking up sheet: %w", err)
	}
	if idx < 0 {
		if _, err := ec.File.NewSheet(ec.Sheet); err != nil {
			return false, fmt.Errorf("creating sheet: %w", err)
		}
		return true, nil
	}
	if !ec.NewDocument {
		if err := clearSheet(ec.File, ec.Sheet); err != nil {
			return false, fmt.Errorf("clearing sheet: %w", err)
		}
	}
	return false, nil
}

// normalizedStyles returns each column's effective style. When any column
// wraps, every column wraps and aligns to the top.
func (t *Table[T]) normalizedStyles(cat *xlstyle.Catalog) []xlstyle.StyleSet {
	styles := make([]xlstyle.StyleSet, len(t.columns))
	wrap := false
	for i, c := range t.columns {
		styles[i] = c.effectiveStyle(cat)
		wrap = wrap || styles[i].WrapText
	}
	if wrap {
		for i := range styles {
			styles[i] = styles[i].WithWrapText(true).WithVAlign(xlstyle.VAlignTop)
		}
	}
	return styles
}

// setCell writes v with style s at (row, col). Problems are recorded against column.
func (x *tableExport) setCell(row, col int, v any, s *xlstyle.StyleSet, column string) (string, bool) {
	cell, err := cellName(row, col)
	if err != nil {
		x.ec.Issue(column, err.Error())
		return "", false
	}
	if _, err := writeValue(x.ec.File, x.ec.Sheet, cell, v); err != nil {
		x.ec.Issue(column, fmt.Sprintf("cell %s: %v", cell, err))
	}
	x.styleRange(cell, cell, s, column)
	x.lastRow = max(x.lastRow, row)
	return cell, true
}

func (x *tableExport) styleRange(from, to string, s *xlstyle.StyleSet, column string) {
	id, err := x.ec.Styles.Resolve(s)
	if err != nil {
		x.ec.Issue(column, err.Error())
		return
	}
	if id == 0 {
		return
	}
	if err := x.ec.File.SetCellStyle(x.ec.Sheet, from, to, id); err != nil {
		x.ec.Issue(column, fmt.Sprintf("styling %s:%s: %v", from, to, err))
	}
}

func (t *Table[T]) writeTitles(x *tableExport) {
	for i, title := range t.titles {
		s := title.style
		if s == nil {
			s = x.ec.Catalog.Title().Ptr()
		}
		x.setCell(i, 0, title.text, s, "")
	}
}

func (t *Table[T]) writeHeaders(x *tableExport) {
	for i, c := range t.columns {
		if x.layout.widths[i] == 0 {
			continue
		}
		row := x.layout.headerStart(i)
		for _, h := range x.layout.headers[i] {
			x.writeHeader(h, row, x.layout.starts[i], c.name)
			row += h.NumRows()
		}
	}
}

// writeHeader writes one header with its top-left cell at (row, col).
func (x *tableExport) writeHeader(h Header, row, col int, column string) {
	style := x.ec.Catalog.Header()
	if s := headerStyle(h); s != nil {
		style = *s
	}

	switch v := h.(type) {
	case TextHeader:
		x.setCell(row, col, v.Text, &style, column)
	case PropertyHeader:
		label := column
		if label == "" {
			label = "Unknown"
		}
		x.writeBlock(row, col, v.NumRows(), v.NumColumns(), label, style, column)
	case SpanningHeader:
		x.writeBlock(row, col, 1, v.NumColumns(), v.Text, style.WithBottomBorder(xlstyle.BorderThin), column)
	case VectorHeader:
		for i := 0; i < v.NumColumns(); i++ {
			x.setCell(row, col+i, v.label(i), &style, column)
		}
	default:
		x.ec.Issue(column, fmt.Sprintf("unsupported header %T", h))
	}
}

// writeBlock writes label into a rows x cols block, merging and styling
// every cell of it when it is larger than one cell.
func (x *tableExport) writeBlock(row, col, rows, cols int, label string, style xlstyle.StyleSet, column string) {
	anchor, ok := x.setCell(row, col, label, &style, column)
	if !ok || (rows == 1 && cols == 1) {
		return
	}
	end, err := cellName(row+rows-1, col+cols-1)
	if err != nil {
		x.ec.Issue(column, err.Error())
		return
	}
	if err := x.ec.File.MergeCell(x.ec.Sheet, anchor, end); err != nil {
		x.ec.Issue(column, fmt.Sprintf("merging %s:%s: %v", anchor, end, err))
		return
	}
	x.styleRange(anchor, end, &style, column)
	x.lastRow = max(x.lastRow, row+rows-1)
	if cols > 1 {
		for r := row; r < row+rows; r++ {
			for c := col; c < col+cols; c++ {
				if name, err := cellName(r, c); err == nil {
					x.spanned[name] = true
				}
			}
		}
	}
}

func (t *Table[T]) freezePanes(x *tableExport) {
	col, row := t.freezeColumn, x.layout.firstDataRow
	if col == 0 && row == 0 {
		return
	}
	topLeft, err := cellName(row, col)
	if err != nil {
		x.ec.Issue("", err.Error())
		return
	}
	pane := "bottomRight"
	switch {
	case col == 0:
		pane = "bottomLeft"
	case row == 0:
		pane = "topRight"
	}
	err = x.ec.File.SetPanes(x.ec.Sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      col,
		YSplit:      row,
		TopLeftCell: topLeft,
		ActivePane:  pane,
	})
	if err != nil {
		x.ec.Issue("", fmt.Sprintf("freezing panes: %v", err))
	}
}

// populate writes the data rows column by column.
func (t *Table[T]) populate(x *tableExport) {
	l := x.layout
	if l.rowCount == 0 {
		return
	}
	f, sheet := x.ec.File, x.ec.Sheet

	for i, c := range t.columns {
		width, start := l.widths[i], l.starts[i]
		if width == 0 {
			continue
		}

		unsupported := 0
		var example error
		for r, row := range t.rows {
			for j, v := range c.values(row) {
				if j >= width {
					break
				}
				cell, err := cellName(l.firstDataRow+r, start+j)
				if err != nil {
					x.ec.Issue(c.name, err.Error())
					continue
				}
				if _, err := writeValue(f, sheet, cell, v); err != nil {
					unsupported++
					if example == nil {
						example = fmt.Errorf("cell %s: %w", cell, err)
					}
				}
			}
		}
		if unsupported > 0 {
			x.ec.Issue(c.name, fmt.Sprintf("%d cell(s) left blank, first %v", unsupported, example))
		}

		lastRow := min(l.firstDataRow+l.rowCount-1, MaxRows-1)
		from, err1 := cellName(l.firstDataRow, start)
		to, err2 := cellName(lastRow, min(start+width-1, MaxColumns-1))
		if err1 != nil || err2 != nil {
			continue
		}
		x.styleRange(from, to, &x.styles[i], c.name)
		x.lastRow = max(x.lastRow, lastRow)
	}
}

func (t *Table[T]) writeAggregates(x *tableExport) {
	l := x.layout
	if l.rowCount == 0 {
		return
	}
	firstRow, lastRow := l.firstDataRow, l.firstDataRow+l.rowCount-1

	for i, c := range t.columns {
		width, start := l.widths[i], l.starts[i]
		if width == 0 || len(c.aggs) == 0 {
			continue
		}

		var applicable []Aggregator
		for _, a := range c.aggs {
			if !a.Func.AppliesTo(c.kind) {
				x.ec.Issue(c.name, fmt.Sprintf("%s does not apply to %s values", a.Func, c.kind))
				continue
			}
			applicable = append(applicable, a)
		}
		placed, dropped := placeAggregates(applicable)
		if len(dropped) > 0 {
			x.ec.Issue(c.name, "only the first Sum aggregate is placed")
		}

		for _, p := range placed {
			row := l.firstDataRow + l.rowCount + p.offset

			style := x.styles[i]
			switch p.agg.Func {
			case Sum:
				style = style.WithTopBorder(xlstyle.BorderThin).WithBottomBorder(xlstyle.BorderDouble)
			case Count:
				style = x.ec.Catalog.ForKind(xlstyle.KindInteger)
			}

			for j := 0; j < width; j++ {
				cell, err := cellName(row, start+j)
				if err != nil {
					x.ec.Issue(c.name, err.Error())
					continue
				}
				formula := p.agg.Func.Formula(c.kind, start+j, firstRow, lastRow)
				if err := x.ec.File.SetCellFormula(x.ec.Sheet, cell, formula); err != nil {
					x.ec.Issue(c.name, fmt.Sprintf("cell %s: %v", cell, err))
					continue
				}
				x.styleRange(cell, cell, &style, c.name)
				x.formulas = append(x.formulas, cell)
				x.lastRow = max(x.lastRow, row)
			}

			x.writeAggregateLabel(p.agg, row, start-1, c.name)
		}
	}
}

// writeAggregateLabel labels an aggregate row unless the cell is already used.
func (x *tableExport) writeAggregateLabel(a Aggregator, row, col int, column string) {
	if col < 0 {
		return
	}
	cell, err := cellName(row, col)
	if err != nil || !isBlank(x.ec.File, x.ec.Sheet, cell) {
		return
	}
	style := x.ec.Catalog.Base().Ptr()
	if a.LabelStyle != nil {
		style = a.LabelStyle.WithHAlign(xlstyle.HAlignLeft).Ptr()
	}
	x.setCell(row, col, a.Func.Label(), style, column)
}

// evaluateFormulas computes every formula written so widths reflect values.
func (x *tableExport) evaluateFormulas() {
	for _, cell := range x.formulas {
		v, err := x.ec.File.CalcCellValue(x.ec.Sheet, cell)
		if err != nil {
			x.ec.Logger.Debug().Err(err).Str("cell", cell).Msg("formula evaluation failed")
			continue
		}
		x.rendered[cell] = v
	}
}

func (t *Table[T]) sizeColumns(x *tableExport) {
	l := x.layout
	for i, c := range t.columns {
		s := x.styles[i]
		if l.widths[i] == 0 || (!s.AutoSize && s.MaxWidth <= 0) {
			continue
		}
		for j := 0; j < l.widths[i]; j++ {
			col := l.starts[i] + j
			width := s.MaxWidth
			if s.AutoSize {
				width = x.measure(col, s.Font.Size)
				if s.MaxWidth > 0 && width > s.MaxWidth {
					width = s.MaxWidth
				}
			}
			width = min(width, maxColumnWidth)
			name := columnName(col)
			if err := x.ec.File.SetColWidth(x.ec.Sheet, name, name, width); err != nil {
				x.ec.Issue(c.name, fmt.Sprintf("setting width of %s: %v", name, err))
			}
		}
	}
}

func (t *Table[T]) applyAutoFilter(x *tableExport) {
	l := x.layout
	if !t.autoFilter || l.totalColumns == 0 || l.headerHeight == 0 {
		return
	}
	from, err1 := cellName(l.firstDataRow-1, 0)
	to, err2 := cellName(l.firstDataRow+max(l.rowCount, 1)-1, l.totalColumns-1)
	if err1 != nil || err2 != nil {
		x.ec.Issue("", "auto filter range is outside the worksheet")
		return
	}
	if err := x.ec.File.AutoFilter(x.ec.Sheet, from+":"+to, nil); err != nil {
		x.ec.Issue("", fmt.Sprintf("auto filter: %v", err))
	}
}

func (t *Table[T]) writeNamedRanges(x *tableExport, create bool) {
	if len(t.ranges) == 0 {
		return
	}
	l := x.layout

	var formulas []rangeFormula
	for _, r := range t.ranges {
		cols := r.Columns
		if len(cols) == 0 {
			cols = []int{l.totalColumns - 1}
		}
		formula, ok := BuildRangeFormula(cols, l.totalColumns, x.ec.Sheet, l.firstDataRow, l.rowCount)
		if !ok {
			x.ec.Issue("", fmt.Sprintf("named range %q: columns %v outside [0,%d) or no data rows", r.Name, cols, l.totalColumns))
			continue
		}
		formulas = append(formulas, rangeFormula{rng: r, formula: formula})
	}

	if create {
		createNamedRanges(x.ec, formulas)
		return
	}
	updateNamedRanges(x.ec, formulas)
}
