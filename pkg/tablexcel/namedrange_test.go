package tablexcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildRangeFormula(t *testing.T) {
	tests := []struct {
		name    string
		columns []int
		total   int
		sheet   string
		rows    int
		want    string
		ok      bool
	}{
		{
			name:    "runs become areas",
			columns: []int{0, 1, 2, 5, 6, 9},
			total:   10,
			sheet:   "Data",
			rows:    10,
			want:    "Data!$A$3:$C$12,Data!$F$3:$G$12,Data!$J$3:$J$12",
			ok:      true,
		},
		{
			name:    "unordered with duplicates",
			columns: []int{3, 1, 2, 2},
			total:   4,
			sheet:   "Data",
			rows:    1,
			want:    "Data!$B$3:$D$3",
			ok:      true,
		},
		{
			name:    "sheet name quoted",
			columns: []int{0},
			total:   1,
			sheet:   "Q1 Sales",
			rows:    2,
			want:    "'Q1 Sales'!$A$3:$A$4",
			ok:      true,
		},
		{name: "index past last column", columns: []int{0, 10}, total: 10, sheet: "Data", rows: 10},
		{name: "negative index", columns: []int{-1}, total: 10, sheet: "Data", rows: 10},
		{name: "no rows", columns: []int{0}, total: 10, sheet: "Data", rows: 0},
		{name: "no columns", columns: nil, total: 10, sheet: "Data", rows: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BuildRangeFormula(tt.columns, tt.total, tt.sheet, 2, tt.rows)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScopeName(t *testing.T) {
	assert.Equal(t, "Workbook", scopeName(WorkbookScope, "Data"))
	assert.Equal(t, "Data", scopeName(SheetScope, "Data"))
	assert.Equal(t, "sheet", SheetScope.String())
}
