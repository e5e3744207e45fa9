package tablexcel

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubSheet struct {
	err   error
	panic bool
	calls int
}

func (s *stubSheet) Export(ec *ExportContext) error {
	s.calls++
	if s.panic {
		panic("boom")
	}
	return s.err
}

type recordingObserver struct {
	sheets   []string
	rows     map[string]int
	finished int
	issues   int
	stats    xlstyle.ResolverStats
}

func (o *recordingObserver) SheetExported(sheet string, rows int, _ time.Duration, _ error) {
	if o.rows == nil {
		o.rows = make(map[string]int)
	}
	o.sheets = append(o.sheets, sheet)
	o.rows[sheet] = rows
}

func (o *recordingObserver) WorkbookExported(_ time.Duration, stats xlstyle.ResolverStats, issues int, _ error) {
	o.finished++
	o.issues = issues
	o.stats = stats
}

func TestWorkbook_SheetNaming(t *testing.T) {
	wb := newTestWorkbook()

	first := wb.AddSheet("", &stubSheet{})
	second := wb.AddSheet("", &stubSheet{})
	assert.Equal(t, "Sheet1", first)
	assert.Equal(t, "Sheet2", second)

	replacement := &stubSheet{}
	assert.Equal(t, "sheet1", wb.AddSheet("sheet1", replacement))
	assert.Len(t, wb.SheetNames(), 2)
	assert.Equal(t, "sheet1", wb.nameOf(replacement))

	assert.Equal(t, "Sheet3", wb.AddSheet("", &stubSheet{}))
	assert.Equal(t, "a_b", wb.AddSheet("a/b", &stubSheet{}))
}

func TestWorkbook_RenameSheet(t *testing.T) {
	wb := newTestWorkbook()
	wb.AddSheet("Data", &stubSheet{})
	wb.AddSheet("Summary", &stubSheet{})

	assert.False(t, wb.RenameSheet("Data", "SUMMARY"))
	assert.False(t, wb.RenameSheet("Missing", "Other"))
	assert.False(t, wb.RenameSheet("Data", "  "))
	assert.True(t, wb.RenameSheet("data", "Details"))
	assert.True(t, wb.RenameSheet("Summary", "summary"))
	assert.Equal(t, []string{"Details", "summary"}, wb.SheetNames())
}

func TestWorkbook_TableRenameKeepsOtherName(t *testing.T) {
	wb := newTestWorkbook()
	a := AddTable(wb, samplePayments()).SetSheetName("Data")
	b := AddTable(wb, samplePayments()).SetSheetName("data")

	assert.Equal(t, "Data", a.SheetName())
	assert.Equal(t, "Sheet2", b.SheetName())
}

func TestWorkbook_SheetOrder(t *testing.T) {
	tests := []struct {
		name  string
		order []string
		want  []string
	}{
		{name: "declared", order: []string{"Alpha", "Beta", "Gamma"}, want: []string{"Alpha", "Beta", "Gamma"}},
		{name: "case insensitive", order: []string{"alpha", "BETA", "gamma"}, want: []string{"Alpha", "Beta", "Gamma"}},
		{name: "incomplete", order: []string{"Alpha", "Beta"}, want: []string{"Gamma", "Beta", "Alpha"}},
		{name: "unknown", order: []string{"Alpha", "Beta", "Delta"}, want: []string{"Gamma", "Beta", "Alpha"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := newTestWorkbook()
			for _, name := range []string{"Gamma", "Beta", "Alpha"} {
				paymentTable(wb, samplePayments()).SetSheetName(name)
			}
			wb.SheetOrder(tt.order...)

			var buf bytes.Buffer
			_, err := wb.WriteTo(context.Background(), &buf)
			require.NoError(t, err)

			f, err := excelize.OpenReader(&buf)
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, tt.want, f.GetSheetList())
		})
	}
}

func TestWorkbook_WriteTo(t *testing.T) {
	wb := newTestWorkbook()
	paymentTable(wb, samplePayments())

	var buf bytes.Buffer
	n, err := wb.WriteTo(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellFormula("Data", "B6")
	require.NoError(t, err)
	assert.Equal(t, "SUM(B3:B5)", v)
}

func TestWorkbook_FailingSheetIsolated(t *testing.T) {
	obs := &recordingObserver{}
	wb := NewWorkbook(WithLogger(zerolog.Nop()), WithObserver(obs))

	failing := &stubSheet{err: errors.New("no data")}
	panicking := &stubSheet{panic: true}
	wb.AddSheet("Broken", failing)
	wb.AddSheet("Panics", panicking)
	paymentTable(wb, samplePayments()).SetSheetName("Data")

	path := filepath.Join(t.TempDir(), "report.xlsx")
	f := exportAndOpen(t, wb, path, false)

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, panicking.calls)
	assert.Equal(t, "SUM(B3:B5)", formula(t, f, "Data", "B6"))

	issues := wb.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "Broken", issues[0].Sheet)
	assert.Contains(t, issues[0].Reason, "no data")
	assert.Equal(t, "Panics", issues[1].Sheet)
	assert.Contains(t, issues[1].Reason, "panicked")

	assert.Equal(t, []string{"Broken", "Panics", "Data"}, obs.sheets)
	assert.Equal(t, 3, obs.rows["Data"])
	assert.Equal(t, 1, obs.finished)
	assert.Equal(t, 2, obs.issues)
	assert.Positive(t, obs.stats.Created)
	assert.Positive(t, obs.stats.Hits)
}

func TestWorkbook_UnreadableDocumentRecreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	wb := newTestWorkbook()
	paymentTable(wb, samplePayments())
	f := exportAndOpen(t, wb, path, false)

	assert.Equal(t, []string{"Data"}, f.GetSheetList())
	assert.Equal(t, "alpha", rawValue(t, f, "Data", "A3"))
}

func TestWorkbook_ExistingSheetsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	seed := excelize.NewFile()
	_, err := seed.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, seed.SetCellValue("Notes", "A1", "keep me"))
	require.NoError(t, seed.SaveAs(path))
	require.NoError(t, seed.Close())

	wb := newTestWorkbook()
	paymentTable(wb, samplePayments()).AddWorkbookNamedRange("Totals")
	f := exportAndOpen(t, wb, path, false)

	assert.Equal(t, "keep me", rawValue(t, f, "Notes", "A1"))
	assert.Equal(t, "SUM(B3:B5)", formula(t, f, "Data", "B6"))
	// ranges are created for a sheet added to an existing document
	assert.Equal(t, "Data!$B$3:$B$5", definedNames(f)["Workbook/Totals"])
}

func TestWorkbook_PersistFailure(t *testing.T) {
	wb := newTestWorkbook()
	paymentTable(wb, samplePayments())

	err := wb.Export(context.Background(), filepath.Join(t.TempDir(), "missing", "report.xlsx"), false)
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestWorkbook_WriteToFailure(t *testing.T) {
	wb := newTestWorkbook()
	paymentTable(wb, samplePayments())

	closed := errors.New("connection closed")
	_, err := wb.WriteTo(context.Background(), failingWriter{err: closed})
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, closed)
}

func TestExportSheet_NoName(t *testing.T) {
	err := exportSheet(&ExportContext{}, &stubSheet{})
	assert.ErrorIs(t, err, ErrNoSheet)
}
