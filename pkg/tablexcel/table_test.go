package tablexcel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type payment struct {
	Name     string
	Qty      int
	Amount   float64
	Quarters []float64
	Meta     struct{ Tag string }
}

func samplePayments() []payment {
	return []payment{
		{Name: "alpha", Qty: 1, Amount: 10.5, Quarters: []float64{1, 2, 3}},
		{Name: "beta", Qty: 2, Amount: 20, Quarters: []float64{4, 5}},
		{Name: "gamma", Qty: 3, Amount: 30, Quarters: []float64{6}},
	}
}

func newTestWorkbook() *Workbook {
	return NewWorkbook(WithLogger(zerolog.Nop()))
}

// paymentTable is a titled table with a single header row.
func paymentTable(wb *Workbook, rows []payment) *Table[payment] {
	tbl := AddTable(wb, rows).SetSheetName("Data").AddTitleRow("Payments", nil)
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name")
	AddColumn(tbl, "Qty", func(p payment) int { return p.Qty }).TextHeader("Qty").Aggregate(Sum, nil)
	return tbl
}

func exportAndOpen(t *testing.T, wb *Workbook, path string, force bool) *excelize.File {
	t.Helper()
	require.NoError(t, wb.Export(context.Background(), path, force))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func rawValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func cellStyle(t *testing.T, f *excelize.File, sheet, cell string) *excelize.Style {
	t.Helper()
	id, err := f.GetCellStyle(sheet, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	return style
}

func formula(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellFormula(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestTableExport_SumBelowData(t *testing.T) {
	wb := newTestWorkbook()
	paymentTable(wb, samplePayments())

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	assert.Equal(t, "Payments", rawValue(t, f, "Data", "A1"))
	assert.Equal(t, "Name", rawValue(t, f, "Data", "A2"))
	assert.Equal(t, "Qty", rawValue(t, f, "Data", "B2"))
	assert.Equal(t, "alpha", rawValue(t, f, "Data", "A3"))
	assert.Equal(t, "3", rawValue(t, f, "Data", "B5"))

	assert.Equal(t, "SUM(B3:B5)", formula(t, f, "Data", "B6"))
	assert.Equal(t, "Total", rawValue(t, f, "Data", "A6"))
	assert.Empty(t, wb.Issues())
}

func TestTableExport_LabelSkippedWhenCellUsed(t *testing.T) {
	wb := newTestWorkbook()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data").AddTitleRow("Payments", nil)
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name").Aggregate(Count, nil)
	AddColumn(tbl, "Qty", func(p payment) int { return p.Qty }).TextHeader("Qty").Aggregate(Sum, nil)

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	assert.Equal(t, "COUNTA(A3:A5)", formula(t, f, "Data", "A6"))
	assert.Equal(t, "SUM(B3:B5)", formula(t, f, "Data", "B6"))
}

func TestTableExport_CountOfTextColumn(t *testing.T) {
	wb := newTestWorkbook()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data")
	AddColumn(tbl, "Qty", func(p payment) int { return p.Qty }).TextHeader("Qty").Aggregate(Count, nil)
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name").Aggregate(Count, nil)

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	assert.Equal(t, "COUNT(A2:A4)", formula(t, f, "Data", "A5"))
	assert.Equal(t, "COUNTA(B2:B4)", formula(t, f, "Data", "B5"))
	for _, cell := range []string{"A5", "B5"} {
		v, err := f.CalcCellValue("Data", cell)
		require.NoError(t, err)
		assert.Equal(t, "3", v, cell)
	}
	assert.Empty(t, wb.Issues())
}

func TestTableExport_LabelStyleAlignedLeft(t *testing.T) {
	wb := newTestWorkbook()
	bold := xlstyle.From(wb.Catalog().Base()).Bold().Align(xlstyle.HAlignRight).Build()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data")
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name")
	AddColumn(tbl, "Qty", func(p payment) int { return p.Qty }).TextHeader("Qty").Aggregate(Sum, &bold)

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	require.Equal(t, "Total", rawValue(t, f, "Data", "A5"))
	style := cellStyle(t, f, "Data", "A5")
	require.NotNil(t, style.Alignment)
	assert.Equal(t, "left", style.Alignment.Horizontal)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	// the caller's style is not modified
	assert.Equal(t, xlstyle.HAlignRight, bold.HAlign)
}

func TestTableExport_WrapAppliesToEveryColumn(t *testing.T) {
	wb := newTestWorkbook()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data").AddTitleRow("Payments", nil)
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name").WrapText(20)
	AddColumn(tbl, "Qty", func(p payment) int { return p.Qty }).TextHeader("Qty")

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	for _, cell := range []string{"A3", "B3", "B5"} {
		style := cellStyle(t, f, "Data", cell)
		require.NotNil(t, style.Alignment, cell)
		assert.True(t, style.Alignment.WrapText, cell)
		assert.Equal(t, "top", style.Alignment.Vertical, cell)
	}
}

func TestTableExport_StackedAggregates(t *testing.T) {
	wb := newTestWorkbook()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data")
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name")
	AddColumn(tbl, "Amount", func(p payment) float64 { return p.Amount }).
		TextHeader("Amount").
		Aggregate(Average, nil).
		Aggregate(Sum, nil).
		Aggregate(Sum, nil)

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	assert.Equal(t, "SUM(B2:B4)", formula(t, f, "Data", "B5"))
	assert.Equal(t, "AVERAGE(B2:B4)", formula(t, f, "Data", "B6"))
	assert.Equal(t, "Total", rawValue(t, f, "Data", "A5"))
	assert.Equal(t, "Average", rawValue(t, f, "Data", "A6"))
	require.Len(t, wb.Issues(), 1)
	assert.Equal(t, "Amount", wb.Issues()[0].Column)
}

func TestTableExport_InapplicableAggregateRecorded(t *testing.T) {
	wb := newTestWorkbook()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data")
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name").Aggregate(Sum, nil)

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	assert.Empty(t, formula(t, f, "Data", "A5"))
	require.Len(t, wb.Issues(), 1)
	assert.Contains(t, wb.Issues()[0].Reason, "does not apply")
}

func TestTableExport_UnsupportedValueRecorded(t *testing.T) {
	wb := newTestWorkbook()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data")
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name")
	AddColumn(tbl, "Meta", func(p payment) struct{ Tag string } { return p.Meta }).TextHeader("Meta")

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	assert.Equal(t, "beta", rawValue(t, f, "Data", "A3"))
	assert.Empty(t, rawValue(t, f, "Data", "B3"))
	require.Len(t, wb.Issues(), 1)
	assert.Equal(t, "Meta", wb.Issues()[0].Column)
	assert.Equal(t, "Data", wb.Issues()[0].Sheet)
}

func TestTableExport_VectorColumn(t *testing.T) {
	wb := newTestWorkbook()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data")
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name")
	AddVector(tbl, "Quarters", func(p payment) []float64 { return p.Quarters }).
		SpanningHeader("Quarters", 3).
		DefaultVectorHeader().
		Aggregate(Sum, nil)
	AddColumn(tbl, "Qty", func(p payment) int { return p.Qty }).TextHeader("Qty")

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	// the name and qty headers sit on the second header row
	assert.Equal(t, "Name", rawValue(t, f, "Data", "A2"))
	assert.Equal(t, "Qty", rawValue(t, f, "Data", "E2"))
	assert.Equal(t, "Quarters", rawValue(t, f, "Data", "B1"))
	assert.Equal(t, "1", rawValue(t, f, "Data", "B2"))
	assert.Equal(t, "3", rawValue(t, f, "Data", "D2"))

	assert.Equal(t, "3", rawValue(t, f, "Data", "D3"))
	assert.Empty(t, rawValue(t, f, "Data", "D4"))
	assert.Equal(t, "SUM(C3:C5)", formula(t, f, "Data", "C6"))

	merged, err := f.GetMergeCells("Data")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "B1", merged[0].GetStartAxis())
	assert.Equal(t, "D1", merged[0].GetEndAxis())

	// every merged cell carries the underlined header style
	anchor, err := f.GetCellStyle("Data", "B1")
	require.NoError(t, err)
	for _, cell := range []string{"C1", "D1"} {
		id, err := f.GetCellStyle("Data", cell)
		require.NoError(t, err)
		assert.Equal(t, anchor, id, cell)
	}
	style := cellStyle(t, f, "Data", "D1")
	var bottom *excelize.Border
	for i := range style.Border {
		if style.Border[i].Type == "bottom" {
			bottom = &style.Border[i]
		}
	}
	require.NotNil(t, bottom)
	assert.Equal(t, int(xlstyle.BorderThin), bottom.Style)
}

func TestTableExport_PropertyHeaderMerged(t *testing.T) {
	wb := newTestWorkbook()
	tbl := AddTable(wb, samplePayments()).SetSheetName("Data")
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).Header(PropertyHeader{Rows: 2, Columns: 1})
	AddColumn(tbl, "Qty", func(p payment) int { return p.Qty }).TextHeader("Units").TextHeader("Qty")

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	assert.Equal(t, "Name", rawValue(t, f, "Data", "A1"))
	assert.Equal(t, "Units", rawValue(t, f, "Data", "B1"))
	assert.Equal(t, "alpha", rawValue(t, f, "Data", "A3"))

	merged, err := f.GetMergeCells("Data")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "A1", merged[0].GetStartAxis())
	assert.Equal(t, "A2", merged[0].GetEndAxis())
}

func TestTableExport_AutoSize(t *testing.T) {
	rows := []payment{{Name: "abcdefghijklmnopqrst"}}
	wb := newTestWorkbook()
	tbl := AddTable(wb, rows).SetSheetName("Data").AddTitleRow("a title much longer than any value in the table", nil)
	AddColumn(tbl, "Name", func(p payment) string { return p.Name }).TextHeader("Name").AutoSize(0, true)
	AddColumn(tbl, "Qty", func(p payment) int { return p.Qty }).TextHeader("Qty").AutoSize(6, false)

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	width, err := f.GetColWidth("Data", "A")
	require.NoError(t, err)
	assert.InDelta(t, 20*12.0/11.0+2, width, 0.01)

	width, err = f.GetColWidth("Data", "B")
	require.NoError(t, err)
	assert.InDelta(t, 6, width, 0.01)
}

func TestTableExport_FreezePanes(t *testing.T) {
	wb := newTestWorkbook()
	paymentTable(wb, samplePayments()).FreezeColumn(1)

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	panes, err := f.GetPanes("Data")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.XSplit)
	assert.Equal(t, 2, panes.YSplit)
	assert.Equal(t, "B3", panes.TopLeftCell)
}

func TestTableExport_NamedRanges(t *testing.T) {
	wb := newTestWorkbook()
	paymentTable(wb, samplePayments()).
		AddWorkbookNamedRange("Totals").
		AddWorksheetNamedRange("Names", 0).
		AddWorkbookNamedRange("Wide", 0, 5)

	f := exportAndOpen(t, wb, filepath.Join(t.TempDir(), "report.xlsx"), false)

	names := definedNames(f)
	assert.Equal(t, "Data!$B$3:$B$5", names["Workbook/Totals"])
	assert.Equal(t, "Data!$A$3:$A$5", names["Data/Names"])
	assert.NotContains(t, names, "Workbook/Wide")
	require.Len(t, wb.Issues(), 1)
	assert.Contains(t, wb.Issues()[0].Reason, "Wide")
}

func TestTableExport_ReexportUpdatesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	wb := newTestWorkbook()
	tbl := paymentTable(wb, append(samplePayments(), payment{Name: "delta", Qty: 4}, payment{Name: "eps", Qty: 5})).
		AddWorkbookNamedRange("Totals", 1)
	AddColumn(tbl, "Amount", func(p payment) float64 { return p.Amount }).
		Header(PropertyHeader{Rows: 1, Columns: 2})
	exportAndOpen(t, wb, path, false)

	tbl.SetRows(samplePayments()[:2])
	f := exportAndOpen(t, wb, path, false)

	assert.Equal(t, "SUM(B3:B4)", formula(t, f, "Data", "B5"))
	assert.Empty(t, formula(t, f, "Data", "B8"))
	assert.Empty(t, rawValue(t, f, "Data", "A7"))
	assert.Equal(t, "Data!$B$3:$B$4", definedNames(f)["Workbook/Totals"])

	merged, err := f.GetMergeCells("Data")
	require.NoError(t, err)
	assert.Len(t, merged, 1)
}

func TestTableExport_RenamedRangeSkippedOnUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	wb := newTestWorkbook()
	tbl := paymentTable(wb, samplePayments()).
		AddWorkbookNamedRange("Totals").
		AddWorksheetNamedRange("Names", 0)
	exportAndOpen(t, wb, path, false)

	// a user renames one range between exports
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.DeleteDefinedName(&excelize.DefinedName{Name: "Totals"}))
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{Name: "Renamed", RefersTo: "Data!$B$3:$B$5"}))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	tbl.SetRows(samplePayments()[:1])
	f = exportAndOpen(t, wb, path, false)

	names := definedNames(f)
	assert.NotContains(t, names, "Workbook/Totals")
	assert.Equal(t, "Data!$B$3:$B$5", names["Workbook/Renamed"])
	assert.Equal(t, "Data!$A$3:$A$3", names["Data/Names"])
}

func TestTableExport_ForceRecreateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	wb := newTestWorkbook()
	paymentTable(wb, samplePayments()).AddWorkbookNamedRange("Totals")

	first := exportAndOpen(t, wb, path, true)
	firstRows, err := first.GetRows("Data")
	require.NoError(t, err)

	second := exportAndOpen(t, wb, path, true)
	secondRows, err := second.GetRows("Data")
	require.NoError(t, err)

	assert.Equal(t, firstRows, secondRows)
	assert.Len(t, second.GetDefinedName(), 1)
	assert.Equal(t, []string{"Data"}, second.GetSheetList())
}

func TestClearSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "stale"))
	require.NoError(t, f.SetCellValue("Sheet1", "C4", 12))
	require.NoError(t, f.SetCellFormula("Sheet1", "C5", "SUM(C1:C4)"))
	require.NoError(t, f.MergeCell("Sheet1", "A1", "B2"))
	require.NoError(t, f.SetColWidth("Sheet1", "C", "C", 40))
	require.NoError(t, f.SetPanes("Sheet1", &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}))

	require.NoError(t, clearSheet(f, "Sheet1"))

	assert.Empty(t, rawValue(t, f, "Sheet1", "A1"))
	assert.Empty(t, rawValue(t, f, "Sheet1", "C4"))
	assert.Empty(t, formula(t, f, "Sheet1", "C5"))

	merged, err := f.GetMergeCells("Sheet1")
	require.NoError(t, err)
	assert.Empty(t, merged)

	width, err := f.GetColWidth("Sheet1", "C")
	require.NoError(t, err)
	assert.InDelta(t, DefaultColumnWidth, width, 0.01)

	panes, err := f.GetPanes("Sheet1")
	require.NoError(t, err)
	assert.False(t, panes.Freeze)
}

// definedNames indexes defined names by "scope/name".
func definedNames(f *excelize.File) map[string]string {
	out := make(map[string]string)
	for _, dn := range f.GetDefinedName() {
		scope := dn.Scope
		if scope == "" {
			scope = "Workbook"
		}
		out[scope+"/"+dn.Name] = dn.RefersTo
	}
	return out
}
