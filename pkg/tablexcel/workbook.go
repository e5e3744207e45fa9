package tablexcel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoSheet is reported when a sheet is exported without a name.
	ErrNoSheet = errors.New("sheet name is not set")
	// ErrPersist wraps failures writing the finished document.
	ErrPersist = errors.New("persisting workbook")
)

const defaultSheetName = "Sheet1"

// Sheet is anything that can lay itself out in one worksheet.
type Sheet interface {
	Export(ec *ExportContext) error
}

// Issue is a configuration or data problem that was skipped during export.
type Issue struct {
	Sheet  string
	Column string
	Reason string
}

func (i Issue) Error() string {
	if i.Column == "" {
		return fmt.Sprintf("sheet %q: %s", i.Sheet, i.Reason)
	}
	return fmt.Sprintf("sheet %q column %q: %s", i.Sheet, i.Column, i.Reason)
}

// Observer receives export measurements.
type Observer interface {
	SheetExported(sheet string, rows int, elapsed time.Duration, err error)
	WorkbookExported(elapsed time.Duration, styles xlstyle.ResolverStats, issues int, err error)
}

// ExportContext carries the state of one sheet export.
type ExportContext struct {
	Ctx     context.Context
	File    *excelize.File
	Styles  *xlstyle.Resolver
	Catalog *xlstyle.Catalog
	Logger  zerolog.Logger

	// Sheet is the worksheet name.
	Sheet string
	// NewDocument is set when the document was created by this export.
	NewDocument bool

	issues *[]Issue
}

// Issue logs and records a skipped item.
func (ec *ExportContext) Issue(column, reason string) {
	ev := ec.Logger.Warn()
	if column != "" {
		ev = ev.Str("column", column)
	}
	ev.Msg(reason)
	if ec.issues != nil {
		*ec.issues = append(*ec.issues, Issue{Sheet: ec.Sheet, Column: column, Reason: reason})
	}
}

type sheetEntry struct {
	name  string
	sheet Sheet
}

// Workbook is an ordered, name-keyed set of sheets exported into one document.
type Workbook struct {
	catalog  *xlstyle.Catalog
	logger   zerolog.Logger
	observer Observer

	sheets []*sheetEntry
	order  []string
	issues []Issue
}

// Option configures a Workbook.
type Option func(*Workbook)

// WithCatalog sets the styles used for defaults.
func WithCatalog(c *xlstyle.Catalog) Option {
	return func(w *Workbook) {
		if c != nil {
			w.catalog = c
		}
	}
}

// WithLogger sets the logger. The global zerolog logger is used otherwise.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Workbook) {
		w.logger = l
	}
}

// WithObserver registers an export observer.
func WithObserver(o Observer) Option {
	return func(w *Workbook) {
		w.observer = o
	}
}

// NewWorkbook creates an empty workbook.
func NewWorkbook(opts ...Option) *Workbook {
	w := &Workbook{
		catalog: xlstyle.DefaultCatalog(),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workbook) Catalog() *xlstyle.Catalog { return w.catalog }

// Issues returns the problems recorded by the last export.
func (w *Workbook) Issues() []Issue {
	return append([]Issue(nil), w.issues...)
}

// SheetNames lists sheet names in registration order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, e := range w.sheets {
		names[i] = e.name
	}
	return names
}

func (w *Workbook) find(name string) int {
	for i, e := range w.sheets {
		if strings.EqualFold(e.name, name) {
			return i
		}
	}
	return -1
}

func (w *Workbook) nameOf(s Sheet) string {
	for _, e := range w.sheets {
		if e.sheet == s {
			return e.name
		}
	}
	return ""
}

// nextDefaultName returns the first free SheetN name.
func (w *Workbook) nextDefaultName() string {
	for n := len(w.sheets) + 1; ; n++ {
		name := "Sheet" + strconv.Itoa(n)
		if w.find(name) < 0 {
			return name
		}
	}
}

// AddSheet registers s under name and returns the name used. An empty name
// gets the next free SheetN name; a name already present is replaced.
func (w *Workbook) AddSheet(name string, s Sheet) string {
	name = sanitizeSheetName(name)
	if name == "" {
		name = w.nextDefaultName()
	}
	if i := w.find(name); i >= 0 {
		w.logger.Debug().Str("sheet", name).Msg("replacing sheet")
		w.sheets[i] = &sheetEntry{name: name, sheet: s}
		return name
	}
	w.sheets = append(w.sheets, &sheetEntry{name: name, sheet: s})
	return name
}

// RenameSheet renames a sheet. It refuses names used by another sheet.
func (w *Workbook) RenameSheet(oldName, newName string) bool {
	i := w.find(oldName)
	if i < 0 {
		w.logger.Warn().Str("sheet", oldName).Msg("cannot rename unknown sheet")
		return false
	}
	newName = sanitizeSheetName(newName)
	if newName == "" {
		w.logger.Warn().Str("sheet", oldName).Msg("cannot rename sheet to an empty name")
		return false
	}
	if j := w.find(newName); j >= 0 && j != i {
		w.logger.Warn().Str("sheet", oldName).Str("name", newName).Msg("sheet name already in use")
		return false
	}
	w.sheets[i].name = newName
	return true
}

// SheetOrder declares the sheet order of newly created documents. It only
// applies when every registered sheet is named.
func (w *Workbook) SheetOrder(names ...string) *Workbook {
	w.order = append([]string(nil), names...)
	return w
}

// creationOrder returns the entries in declared order, or registration order
// when the declaration does not name every sheet.
func (w *Workbook) creationOrder() []*sheetEntry {
	if len(w.order) == 0 {
		return w.sheets
	}

	ordered := make([]*sheetEntry, 0, len(w.sheets))
	used := make(map[int]bool)
	for _, name := range w.order {
		i := w.find(name)
		if i < 0 || used[i] {
			w.logger.Warn().Str("sheet", name).Msg("sheet order names an unknown or repeated sheet, keeping registration order")
			return w.sheets
		}
		used[i] = true
		ordered = append(ordered, w.sheets[i])
	}
	if len(ordered) != len(w.sheets) {
		w.logger.Warn().Int("declared", len(ordered)).Int("sheets", len(w.sheets)).
			Msg("sheet order does not cover every sheet, keeping registration order")
		return w.sheets
	}
	return ordered
}

func (w *Workbook) loggerFor(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return w.logger
}

// Export writes every sheet into the document at path. An existing document
// is updated in place unless forceRecreate is set or it cannot be read, in
// which case it is deleted and recreated. Only a failure to write the result
// is returned; skipped items are available from Issues.
func (w *Workbook) Export(ctx context.Context, path string, forceRecreate bool) error {
	start := time.Now()
	logger := w.loggerFor(ctx).With().Str("path", path).Logger()

	f, fresh := w.openDocument(logger, path, forceRecreate)
	defer f.Close()

	stats := w.exportSheets(ctx, logger, f, fresh)

	err := w.persist(f, path)
	if w.observer != nil {
		w.observer.WorkbookExported(time.Since(start), stats, len(w.issues), err)
	}
	if err != nil {
		logger.Error().Err(err).Msg("workbook export failed")
		return err
	}

	logger.Info().
		Bool("new_document", fresh).
		Int("sheets", len(w.sheets)).
		Int("styles", stats.Created).
		Int("issues", len(w.issues)).
		Dur("elapsed", time.Since(start)).
		Msg("workbook exported")
	return nil
}

// WriteTo lays out a new document and writes it to wr.
func (w *Workbook) WriteTo(ctx context.Context, wr io.Writer) (int64, error) {
	start := time.Now()
	logger := w.loggerFor(ctx)

	f := excelize.NewFile()
	defer f.Close()

	stats := w.exportSheets(ctx, logger, f, true)
	err := f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: boolPtr(true)})
	var n int64
	if err == nil {
		n, err = f.WriteTo(wr)
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if w.observer != nil {
		w.observer.WorkbookExported(time.Since(start), stats, len(w.issues), err)
	}
	return n, err
}

// openDocument parses the existing document at path or starts a new one. The
// read handle is released before a broken file is removed.
func (w *Workbook) openDocument(logger zerolog.Logger, path string, forceRecreate bool) (*excelize.File, bool) {
	if forceRecreate {
		return excelize.NewFile(), true
	}
	if _, err := os.Stat(path); err != nil {
		return excelize.NewFile(), true
	}

	f, err := readDocument(path)
	if err == nil {
		return f, false
	}

	logger.Warn().Err(err).Msg("existing document is unreadable, recreating")
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		logger.Warn().Err(rmErr).Msg("removing unreadable document")
	}
	return excelize.NewFile(), true
}

func readDocument(path string) (*excelize.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}
	return f, nil
}

// exportSheets exports every sheet into f, isolating failures per sheet.
func (w *Workbook) exportSheets(ctx context.Context, logger zerolog.Logger, f *excelize.File, fresh bool) xlstyle.ResolverStats {
	w.issues = nil
	resolver := xlstyle.NewResolver(f)

	if fresh {
		w.prepareNewDocument(logger, f)
	}

	for _, e := range w.sheets {
		ec := &ExportContext{
			Ctx:         ctx,
			File:        f,
			Styles:      resolver,
			Catalog:     w.catalog,
			Logger:      logger.With().Str("sheet", e.name).Logger(),
			Sheet:       e.name,
			NewDocument: fresh,
			issues:      &w.issues,
		}

		start := time.Now()
		err := exportSheet(ec, e.sheet)
		if err != nil {
			ec.Issue("", err.Error())
		}
		if w.observer != nil {
			rows := 0
			if l, ok := e.sheet.(interface{ Len() int }); ok {
				rows = l.Len()
			}
			w.observer.SheetExported(e.name, rows, time.Since(start), err)
		}
	}

	if fresh && len(w.sheets) > 0 {
		if idx, err := f.GetSheetIndex(w.creationOrder()[0].name); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}
	return resolver.Stats()
}

// exportSheet runs one sheet export, converting a panic into an error so
// the remaining sheets are still written.
func exportSheet(ec *ExportContext, s Sheet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sheet export panicked: %v", r)
		}
	}()
	if ec.Sheet == "" {
		return ErrNoSheet
	}
	return s.Export(ec)
}

// prepareNewDocument creates the sheets in their declared order. The
// placeholder sheet of a new file becomes the first sheet.
func (w *Workbook) prepareNewDocument(logger zerolog.Logger, f *excelize.File) {
	order := w.creationOrder()
	if len(order) == 0 {
		return
	}
	if err := f.SetSheetName(defaultSheetName, order[0].name); err != nil {
		logger.Warn().Err(err).Str("sheet", order[0].name).Msg("renaming placeholder sheet")
	}
	for _, e := range order[1:] {
		if _, err := f.NewSheet(e.name); err != nil {
			logger.Warn().Err(err).Str("sheet", e.name).Msg("creating sheet")
		}
	}
}

// persist serializes the document to memory, then replaces path through a
// temporary file in the same directory.
func (w *Workbook) persist(f *excelize.File, path string) error {
	if err := f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: boolPtr(true)}); err != nil {
		return fmt.Errorf("%w: calculation properties: %w", ErrPersist, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("%w: serializing: %w", ErrPersist, err)
	}
	if err := replaceFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
