package tablexcel

import (
	"fmt"

	"github.com/locvowork/tablexcel/pkg/xlstyle"
)

// AggregateFunc is a summary formula placed below a column's data.
type AggregateFunc int

const (
	Sum AggregateFunc = iota
	Count
	Average
	Min
	Max
	StdDevPop
)

// Label is the text written beside the aggregate cell.
func (a AggregateFunc) Label() string {
	switch a {
	case Sum:
		return "Total"
	case Count:
		return "Count"
	case Average:
		return "Average"
	case Min:
		return "Minimum"
	case Max:
		return "Maximum"
	case StdDevPop:
		return "Std Dev Pop"
	}
	return fmt.Sprintf("AggregateFunc(%d)", int(a))
}

// Function is the spreadsheet function name.
func (a AggregateFunc) Function() string {
	switch a {
	case Sum:
		return "SUM"
	case Count:
		return "COUNT"
	case Average:
		return "AVERAGE"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case StdDevPop:
		return "STDEVP"
	}
	return ""
}

func (a AggregateFunc) String() string { return a.Label() }

// AppliesTo reports whether the function is meaningful for values of kind k.
func (a AggregateFunc) AppliesTo(k xlstyle.Kind) bool {
	switch a {
	case Count:
		return true
	case Sum, Average, StdDevPop:
		return k == xlstyle.KindInteger || k == xlstyle.KindReal
	case Min, Max:
		return k == xlstyle.KindInteger || k == xlstyle.KindReal || k == xlstyle.KindDate
	}
	return false
}

// FunctionFor is the spreadsheet function for a column of kind k. Count over
// non-numeric values counts non-empty cells.
func (a AggregateFunc) FunctionFor(k xlstyle.Kind) string {
	if a == Count && k != xlstyle.KindInteger && k != xlstyle.KindReal {
		return "COUNTA"
	}
	return a.Function()
}

// Formula returns FUNC(Xfirst:Xlast) over rows firstRow..lastRow (0-based) of
// col, a column of kind k.
func (a AggregateFunc) Formula(k xlstyle.Kind, col, firstRow, lastRow int) string {
	name := columnName(col)
	return fmt.Sprintf("%s(%s%d:%s%d)", a.FunctionFor(k), name, firstRow+1, name, lastRow+1)
}

// Aggregator attaches a summary formula and its label to a column.
type Aggregator struct {
	Func       AggregateFunc
	LabelStyle *xlstyle.StyleSet
}

// aggregatePlacement is the row offset (from the first row below the data) of each aggregator.
type aggregatePlacement struct {
	agg    Aggregator
	offset int
}

// placeAggregates orders a column's aggregators: the first Sum sits directly
// below the data, the others stack beneath it in declaration order. Further
// Sums are dropped and returned separately.
func placeAggregates(aggs []Aggregator) (placed []aggregatePlacement, dropped []Aggregator) {
	hasSum := false
	for _, a := range aggs {
		if a.Func != Sum {
			continue
		}
		if hasSum {
			dropped = append(dropped, a)
			continue
		}
		hasSum = true
		placed = append(placed, aggregatePlacement{agg: a, offset: 0})
	}

	next := 0
	if hasSum {
		next = 1
	}
	for _, a := range aggs {
		if a.Func == Sum {
			continue
		}
		placed = append(placed, aggregatePlacement{agg: a, offset: next})
		next++
	}
	return placed, dropped
}
