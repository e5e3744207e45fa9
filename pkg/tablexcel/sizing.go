package tablexcel

import (
	"strings"

	"golang.org/x/text/width"
)

const (
	baseFontSize = 11.0
	cellPadding  = 2.0
)

// displayWidth is the number of character cells s occupies; east asian wide
// and fullwidth runes take two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// textWidth is the widest line of s.
func textWidth(s string) int {
	w := 0
	for _, line := range strings.Split(s, "\n") {
		w = max(w, displayWidth(line))
	}
	return w
}

// measure returns the width, in characters, needed by the rendered content of
// column col below the title rows. Cells merged across several columns are
// not counted.
func (x *tableExport) measure(col int, fontSize float64) float64 {
	if fontSize <= 0 {
		fontSize = baseFontSize
	}
	widest := 0
	for row := x.layout.titleRows; row <= x.lastRow; row++ {
		cell, err := cellName(row, col)
		if err != nil || x.spanned[cell] {
			continue
		}
		text, ok := x.rendered[cell]
		if !ok {
			if text, err = x.ec.File.GetCellValue(x.ec.Sheet, cell); err != nil {
				continue
			}
		}
		widest = max(widest, textWidth(text))
	}
	if widest == 0 {
		return DefaultColumnWidth
	}
	return float64(widest)*fontSize/baseFontSize + cellPadding
}
