package xlstyle

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NumberFormat produces the Excel number format code of a style. The set of
// implementations is closed: FormatCode, NumericFormat and DateFormat.
type NumberFormat interface {
	Code(align HAlign) string
	key() string
}

func formatKey(f NumberFormat) string {
	if f == nil {
		return ""
	}
	return f.key()
}

// FormatCode is a literal Excel format code such as "General" or "0.00%".
type FormatCode string

// General is Excel's default format.
const General FormatCode = "General"

func (c FormatCode) Code(HAlign) string {
	if c == "" {
		return string(General)
	}
	return string(c)
}

func (c FormatCode) key() string { return "code:" + string(c) }

// SectionFormat joins up to four format sections (positive;negative;zero;text).
// Extra sections are dropped and trailing semicolons are trimmed from each.
func SectionFormat(sections ...string) FormatCode {
	var parts []string
	for i, s := range sections {
		if i == 4 {
			break
		}
		parts = append(parts, strings.TrimSuffix(s, ";"))
	}
	return FormatCode(strings.Join(parts, ";"))
}

// NumericFormat builds a three-section (positive;negative;zero) format code.
type NumericFormat struct {
	DecimalPlaces    int
	Percent          bool
	Grouped          bool
	LeadingCurrency  string
	TrailingCurrency string
	NegativeParens   bool
	SuppressZero     bool
	PositiveColor    string // Excel colour name such as "Red" or "Color10"
	NegativeColor    string
	ZeroColor        string
}

func (n NumericFormat) key() string { return fmt.Sprintf("num:%+v", n) }

func (n NumericFormat) digits() string {
	d := "0"
	if n.Grouped {
		d = "#,##0"
	}
	if n.DecimalPlaces > 0 {
		d += "." + strings.Repeat("0", n.DecimalPlaces)
	}
	return d
}

// Code returns the format code. A general horizontal alignment pads the
// number with a fill so it sits at the right edge of the cell.
func (n NumericFormat) Code(align HAlign) string {
	digits := n.digits()

	var positive, negative, zero string
	if n.Percent {
		positive = digits + "%"
		negative = "-" + digits + "%"
		zero = positive
		if n.SuppressZero {
			zero = "-"
		}
	} else {
		fill := ""
		if align == HAlignGeneral {
			fill = "* "
		}
		lead := quoteLiteral(n.LeadingCurrency)
		trail := quoteLiteral(n.TrailingCurrency)
		zeroDigits := digits
		if n.SuppressZero {
			zeroDigits = "-??"
		}

		if n.NegativeParens {
			positive = "_(" + lead + fill + digits + trail + "_)"
			negative = "_(" + lead + fill + "(" + digits + ")" + trail
			zero = "_(" + lead + fill + zeroDigits + trail + "_)"
		} else {
			positive = lead + fill + digits + trail
			negative = "-" + lead + fill + digits + trail
			zero = lead + fill + zeroDigits + trail
		}
	}

	return colorSection(n.PositiveColor) + positive + ";" +
		colorSection(n.NegativeColor) + negative + ";" +
		colorSection(n.ZeroColor) + zero
}

func colorSection(c string) string {
	if c == "" || strings.EqualFold(c, "automatic") {
		return ""
	}
	return "[" + c + "]"
}

func quoteLiteral(s string) string {
	if s == "" || utf8.RuneCountInString(s) == 1 {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}

// DateSequence orders the date parts.
type DateSequence int

const (
	MonthDayYear DateSequence = iota
	DayMonthYear
	YearMonthDay
)

// NameStyle selects how months (and hours) are rendered.
type NameStyle int

const (
	Numbers NameStyle = iota
	Abbreviations
	FullNames
)

// DateFormat builds a date or date-time format code.
type DateFormat struct {
	Sequence             DateSequence
	Months               NameStyle
	LeadingZero          bool
	FourDigitYear        bool
	Separator            string
	IncludeTime          bool
	HourLeadingZero      bool
	Hour24               bool
	IncludeSeconds       bool
	SecondsDecimalPlaces int
}

// DefaultDateFormat renders m/d/yyyy.
func DefaultDateFormat() DateFormat {
	return DateFormat{Sequence: MonthDayYear, Months: Numbers, FourDigitYear: true, Separator: "/"}
}

func (d DateFormat) key() string { return fmt.Sprintf("date:%+v", d) }

func (d DateFormat) Code(HAlign) string {
	month := "m"
	switch d.Months {
	case Abbreviations:
		month = "mmm"
	case FullNames:
		month = "mmmm"
	default:
		if d.LeadingZero {
			month = "mm"
		}
	}
	day := "d"
	if d.LeadingZero {
		day = "dd"
	}
	year := "yy"
	if d.FourDigitYear {
		year = "yyyy"
	}
	sep := d.Separator
	if sep == "" {
		sep = "/"
	}

	var date string
	if d.Months == Numbers {
		switch d.Sequence {
		case DayMonthYear:
			date = day + sep + month + sep + year
		case YearMonthDay:
			date = year + sep + month + sep + day
		default:
			date = month + sep + day + sep + year
		}
	} else {
		switch d.Sequence {
		case DayMonthYear:
			date = day + " " + month + " " + year
		case YearMonthDay:
			date = year + " " + month + " " + day
		default:
			date = month + " " + day + ", " + year
		}
	}

	if !d.IncludeTime {
		return date
	}
	return date + " " + d.timeCode()
}

func (d DateFormat) timeCode() string {
	hour := "h"
	if d.HourLeadingZero {
		hour = "hh"
	}
	var sb strings.Builder
	sb.WriteString(hour)
	sb.WriteString(":mm")
	if d.IncludeSeconds {
		sb.WriteString(":ss")
		if d.SecondsDecimalPlaces > 0 {
			sb.WriteString("." + strings.Repeat("0", d.SecondsDecimalPlaces))
		}
	}
	if !d.Hour24 {
		sb.WriteString(" AM/PM")
	}
	return sb.String()
}
