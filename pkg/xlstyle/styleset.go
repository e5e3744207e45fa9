package xlstyle

import (
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HAlign is a horizontal alignment, expressed with excelize's alignment keywords.
type HAlign string

const (
	HAlignGeneral          HAlign = ""
	HAlignLeft             HAlign = "left"
	HAlignCenter           HAlign = "center"
	HAlignRight            HAlign = "right"
	HAlignFill             HAlign = "fill"
	HAlignJustify          HAlign = "justify"
	HAlignCenterContinuous HAlign = "centerContinuous"
	HAlignDistributed      HAlign = "distributed"
)

// VAlign is a vertical alignment.
type VAlign string

const (
	VAlignNone        VAlign = ""
	VAlignTop         VAlign = "top"
	VAlignCenter      VAlign = "center"
	VAlignBottom      VAlign = "bottom"
	VAlignJustify     VAlign = "justify"
	VAlignDistributed VAlign = "distributed"
)

// BorderStyle values match excelize border style indexes.
type BorderStyle int

const (
	BorderNone BorderStyle = iota
	BorderThin
	BorderMedium
	BorderDashed
	BorderDotted
	BorderThick
	BorderDouble
	BorderHair
)

// Border describes the line style of each cell edge.
type Border struct {
	Top    BorderStyle
	Left   BorderStyle
	Bottom BorderStyle
	Right  BorderStyle
}

// IsZero reports whether no edge has a line.
func (b Border) IsZero() bool {
	return b == Border{}
}

// Font describes the cell font.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// StyleSet is an immutable description of a cell's formatting. Values are
// passed and stored by copy; use the With* helpers to derive adjusted copies.
type StyleSet struct {
	Name       string
	Font       Font
	Color      string // font colour, hex RGB without '#'
	Background string // solid fill colour, hex RGB without '#'
	Border     Border
	WrapText   bool
	AutoSize   bool
	MaxWidth   float64 // column width clamp in characters, 0 = unbounded
	HAlign     HAlign
	VAlign     VAlign
	Format     NumberFormat
}

// Equal reports value equality. Names compare case-insensitively.
func (s StyleSet) Equal(o StyleSet) bool {
	return strings.EqualFold(s.Name, o.Name) &&
		s.Font == o.Font &&
		strings.EqualFold(s.Color, o.Color) &&
		strings.EqualFold(s.Background, o.Background) &&
		s.Border == o.Border &&
		s.WrapText == o.WrapText &&
		s.AutoSize == o.AutoSize &&
		s.MaxWidth == o.MaxWidth &&
		s.HAlign == o.HAlign &&
		s.VAlign == o.VAlign &&
		formatKey(s.Format) == formatKey(o.Format)
}

// Hash returns a structural hash consistent with Equal.
func (s StyleSet) Hash() uint64 {
	d := xxhash.New()
	write := func(v string) {
		_, _ = d.WriteString(v)
		_, _ = d.Write([]byte{0})
	}
	write(strings.ToLower(s.Name))
	write(s.Font.Family)
	write(strconv.FormatUint(math.Float64bits(s.Font.Size), 16))
	write(strconv.FormatBool(s.Font.Bold))
	write(strconv.FormatBool(s.Font.Italic))
	write(strings.ToLower(s.Color))
	write(strings.ToLower(s.Background))
	for _, b := range []BorderStyle{s.Border.Top, s.Border.Left, s.Border.Bottom, s.Border.Right} {
		write(strconv.Itoa(int(b)))
	}
	write(strconv.FormatBool(s.WrapText))
	write(strconv.FormatBool(s.AutoSize))
	write(strconv.FormatUint(math.Float64bits(s.MaxWidth), 16))
	write(string(s.HAlign))
	write(string(s.VAlign))
	write(formatKey(s.Format))
	return d.Sum64()
}

// FormatCode returns the Excel number format code for the style.
func (s StyleSet) FormatCode() string {
	if s.Format == nil {
		return string(General)
	}
	return s.Format.Code(s.HAlign)
}

func (s StyleSet) WithName(name string) StyleSet {
	s.Name = name
	return s
}

func (s StyleSet) WithFont(f Font) StyleSet {
	s.Font = f
	return s
}

func (s StyleSet) WithBold(bold bool) StyleSet {
	s.Font.Bold = bold
	return s
}

func (s StyleSet) WithColor(color string) StyleSet {
	s.Color = normalizeColor(color)
	return s
}

func (s StyleSet) WithBackground(color string) StyleSet {
	s.Background = normalizeColor(color)
	return s
}

func (s StyleSet) WithBorder(b Border) StyleSet {
	s.Border = b
	return s
}

func (s StyleSet) WithTopBorder(b BorderStyle) StyleSet {
	s.Border.Top = b
	return s
}

func (s StyleSet) WithBottomBorder(b BorderStyle) StyleSet {
	s.Border.Bottom = b
	return s
}

func (s StyleSet) WithWrapText(wrap bool) StyleSet {
	s.WrapText = wrap
	return s
}

func (s StyleSet) WithHAlign(a HAlign) StyleSet {
	s.HAlign = a
	return s
}

func (s StyleSet) WithVAlign(a VAlign) StyleSet {
	s.VAlign = a
	return s
}

func (s StyleSet) WithFormat(f NumberFormat) StyleSet {
	s.Format = f
	return s
}

// WithSizing sets the column sizing hints carried by the style.
func (s StyleSet) WithSizing(maxWidth float64, autoSize bool) StyleSet {
	if maxWidth < 0 {
		maxWidth = 0
	}
	s.MaxWidth = maxWidth
	s.AutoSize = autoSize
	return s
}

// Ptr returns a pointer to a copy of s.
func (s StyleSet) Ptr() *StyleSet {
	return &s
}

func normalizeColor(c string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
}
