package tablexcel

import (
	"fmt"

	"github.com/locvowork/tablexcel/pkg/xlstyle"
)

// Header produces the header cell(s) of a column. The implementations are
// TextHeader, PropertyHeader, SpanningHeader and VectorHeader. Headers are
// placed by the table; they do not know their own position.
type Header interface {
	NumRows() int
	NumColumns() int
	header()
}

// TextHeader writes a fixed label.
type TextHeader struct {
	Text  string
	Style *xlstyle.StyleSet
}

func (TextHeader) NumRows() int    { return 1 }
func (TextHeader) NumColumns() int { return 1 }
func (TextHeader) header()         {}

// PropertyHeader writes the column's bound name. A block larger than one cell
// is merged.
type PropertyHeader struct {
	Rows    int
	Columns int
	Style   *xlstyle.StyleSet
}

func (h PropertyHeader) NumRows() int    { return max(h.Rows, 1) }
func (h PropertyHeader) NumColumns() int { return max(h.Columns, 1) }
func (PropertyHeader) header()           {}

// SpanningHeader writes one label merged across Columns physical columns,
// underlined with a thin bottom border.
type SpanningHeader struct {
	Text    string
	Columns int
	Style   *xlstyle.StyleSet
}

func (SpanningHeader) NumRows() int      { return 1 }
func (h SpanningHeader) NumColumns() int { return max(h.Columns, 1) }
func (SpanningHeader) header()           {}

// VectorKind selects the labels of a VectorHeader.
type VectorKind int

const (
	// VectorYears labels columns First..Last as years.
	VectorYears VectorKind = iota
	// VectorCount labels columns with sequential integers starting at First.
	VectorCount
	// VectorCustom labels columns with Labels.
	VectorCustom
)

func (k VectorKind) String() string {
	switch k {
	case VectorYears:
		return "years"
	case VectorCount:
		return "count"
	case VectorCustom:
		return "custom"
	}
	return fmt.Sprintf("VectorKind(%d)", int(k))
}

// VectorHeader labels each physical column of a vector column.
type VectorHeader struct {
	Kind   VectorKind
	First  int
	Last   int
	Labels []string
	Style  *xlstyle.StyleSet

	// fit sizes a count header to the column width at export.
	fit bool
}

// YearsHeader labels columns with the years first..last in either order.
func YearsHeader(first, last int) VectorHeader {
	first, last = min(first, last), max(first, last)
	return VectorHeader{Kind: VectorYears, First: first, Last: last}
}

// CountHeader labels columns with the integers first..last in either order.
func CountHeader(first, last int) VectorHeader {
	first, last = min(first, last), max(first, last)
	return VectorHeader{Kind: VectorCount, First: first, Last: last}
}

// CustomHeader labels columns with the given labels.
func CustomHeader(labels ...string) VectorHeader {
	return VectorHeader{Kind: VectorCustom, Labels: labels}
}

func (VectorHeader) NumRows() int { return 1 }

func (h VectorHeader) NumColumns() int {
	if h.Kind == VectorCustom {
		return len(h.Labels)
	}
	first, last := min(h.First, h.Last), max(h.First, h.Last)
	return last - first + 1
}

func (VectorHeader) header() {}

// label returns the value written in the i-th physical column.
func (h VectorHeader) label(i int) any {
	switch h.Kind {
	case VectorCustom:
		if i < len(h.Labels) {
			return h.Labels[i]
		}
		return nil
	default:
		return min(h.First, h.Last) + i
	}
}

// sized resolves a fitted count header against the column width.
func (h VectorHeader) sized(width int) VectorHeader {
	if !h.fit {
		return h
	}
	h.First, h.Last = 1, max(width, 1)
	return h
}

// headerStyle returns the style attached to h, nil when it has none.
func headerStyle(h Header) *xlstyle.StyleSet {
	switch v := h.(type) {
	case TextHeader:
		return v.Style
	case PropertyHeader:
		return v.Style
	case SpanningHeader:
		return v.Style
	case VectorHeader:
		return v.Style
	}
	return nil
}

// headerStackHeight is the number of rows a column's headers occupy.
func headerStackHeight(headers []Header) int {
	n := 0
	for _, h := range headers {
		n += h.NumRows()
	}
	return n
}
