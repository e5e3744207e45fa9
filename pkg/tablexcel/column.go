package tablexcel

import (
	"github.com/locvowork/tablexcel/pkg/xlstyle"
)

// Column binds an accessor on T to one physical column, or to as many as the
// widest row needs for vector columns.
type Column[T any] struct {
	table   *Table[T]
	name    string
	kind    xlstyle.Kind
	value   func(T) any
	vector  func(T) []any
	style   *xlstyle.StyleSet
	headers []Header
	aggs    []Aggregator

	sizing *columnSizing
	wrap   bool
}

type columnSizing struct {
	maxWidth float64
	autoSize bool
}

// AddColumn appends a scalar column reading V from each row.
func AddColumn[T, V any](t *Table[T], name string, get func(T) V) *Column[T] {
	c := &Column[T]{
		table: t,
		name:  name,
		kind:  kindOf[V](),
		value: func(row T) any { return get(row) },
	}
	t.columns = append(t.columns, c)
	return c
}

// AddVector appends a column spreading a slice of V across adjacent columns.
func AddVector[T, V any](t *Table[T], name string, get func(T) []V) *Column[T] {
	c := &Column[T]{
		table: t,
		name:  name,
		kind:  kindOf[V](),
		vector: func(row T) []any {
			vs := get(row)
			out := make([]any, len(vs))
			for i, v := range vs {
				out[i] = v
			}
			return out
		},
	}
	t.columns = append(t.columns, c)
	return c
}

func (c *Column[T]) Name() string       { return c.name }
func (c *Column[T]) Kind() xlstyle.Kind { return c.kind }
func (c *Column[T]) IsVector() bool     { return c.vector != nil }

// Table returns the owning table for chaining.
func (c *Column[T]) Table() *Table[T] { return c.table }

// ColumnsNeeded is the number of physical columns the column occupies.
func (c *Column[T]) ColumnsNeeded() int {
	if c.vector == nil {
		return 1
	}
	n := 0
	for _, row := range c.table.rows {
		n = max(n, len(c.vector(row)))
	}
	return n
}

// values returns the cells of one row, left to right.
func (c *Column[T]) values(row T) []any {
	if c.vector != nil {
		return c.vector(row)
	}
	return []any{c.value(row)}
}

// Style sets the column style. nil selects the catalog default for the value kind.
func (c *Column[T]) Style(s *xlstyle.StyleSet) *Column[T] {
	if s == nil {
		c.style = nil
		return c
	}
	c.style = s.Ptr()
	return c
}

// Header appends a header below any already declared.
func (c *Column[T]) Header(h Header) *Column[T] {
	if h != nil {
		c.headers = append(c.headers, h)
	}
	return c
}

func (c *Column[T]) TextHeader(text string) *Column[T] {
	return c.Header(TextHeader{Text: text})
}

func (c *Column[T]) PropertyHeader() *Column[T] {
	return c.Header(PropertyHeader{Rows: 1, Columns: 1})
}

func (c *Column[T]) SpanningHeader(text string, columns int) *Column[T] {
	return c.Header(SpanningHeader{Text: text, Columns: columns})
}

func (c *Column[T]) YearsHeader(first, last int) *Column[T] {
	return c.Header(YearsHeader(first, last))
}

func (c *Column[T]) CountHeader(first, last int) *Column[T] {
	return c.Header(CountHeader(first, last))
}

func (c *Column[T]) CustomHeader(labels ...string) *Column[T] {
	return c.Header(CustomHeader(labels...))
}

// DefaultVectorHeader numbers the vector's columns from 1 to its width.
func (c *Column[T]) DefaultVectorHeader() *Column[T] {
	return c.Header(VectorHeader{Kind: VectorCount, First: 1, Last: 1, fit: true})
}

// AutoSize sets the width policy: measured (clamped to maxWidth when positive)
// or fixed at maxWidth characters.
func (c *Column[T]) AutoSize(maxWidth float64, autoSize bool) *Column[T] {
	if maxWidth < 0 {
		maxWidth = 0
	}
	if maxWidth == 0 && !autoSize {
		c.table.wb.logger.Warn().Str("column", c.name).Msg("AutoSize without a width or measuring has no effect")
	}
	c.sizing = &columnSizing{maxWidth: maxWidth, autoSize: autoSize}
	return c
}

// WrapText wraps the column's text and fixes its width at maxWidth characters.
// Wrapping any column wraps the whole table.
func (c *Column[T]) WrapText(maxWidth float64) *Column[T] {
	if maxWidth <= 0 {
		c.table.wb.logger.Warn().Str("column", c.name).Msg("WrapText without a max width leaves the column at its default width")
		maxWidth = 0
	}
	c.wrap = true
	c.sizing = &columnSizing{maxWidth: maxWidth}
	return c
}

// Aggregate adds a summary formula below the data. A nil label style uses Base.
func (c *Column[T]) Aggregate(fn AggregateFunc, labelStyle *xlstyle.StyleSet) *Column[T] {
	if labelStyle != nil {
		labelStyle = labelStyle.Ptr()
	}
	c.aggs = append(c.aggs, Aggregator{Func: fn, LabelStyle: labelStyle})
	return c
}

// effectiveStyle is the declared (or default) style with the column's sizing
// and wrap settings applied to a copy.
func (c *Column[T]) effectiveStyle(cat *xlstyle.Catalog) xlstyle.StyleSet {
	var s xlstyle.StyleSet
	if c.style != nil {
		s = *c.style
	} else {
		s = cat.ForKind(c.kind)
	}
	if c.sizing != nil {
		s = s.WithSizing(c.sizing.maxWidth, c.sizing.autoSize)
	}
	if c.wrap {
		s = s.WithWrapText(true)
	}
	return s
}

// resolvedHeaders returns the headers with fitted vector headers sized to width.
func (c *Column[T]) resolvedHeaders(width int) []Header {
	out := make([]Header, len(c.headers))
	for i, h := range c.headers {
		if vh, ok := h.(VectorHeader); ok {
			h = vh.sized(width)
		}
		out[i] = h
	}
	return out
}
