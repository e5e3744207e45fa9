package xlstyle

import (
	"strings"
)

const (
	DefaultFontFamily = "Segoe UI"
	DefaultFontSize   = 12.0

	// AquaColor is the header font colour.
	AquaColor = "33CCCC"
)

// Names of the styles every catalog carries.
const (
	StyleBase                   = "Base"
	StyleTitle                  = "Title"
	StyleHeader                 = "Header"
	StyleDouble                 = "Double"
	StyleInteger                = "Integer"
	StylePercent                = "Percent"
	StyleDate                   = "Date"
	StyleBoolean                = "Boolean"
	StyleUngroupedInteger       = "UngroupedInteger"
	StyleUngroupedIntegerHeader = "UngroupedIntegerHeader"
)

// Kind classifies the values a column holds.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindInteger
	KindReal
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return "other"
	}
}

// Catalog is a case-insensitive set of named styles.
type Catalog struct {
	order  []string
	styles map[string]StyleSet
}

// DefaultCatalog returns the built-in styles in the default font.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultFontFamily, DefaultFontSize)
}

// NewCatalog returns the built-in styles using the given font.
func NewCatalog(family string, size float64) *Catalog {
	if family == "" {
		family = DefaultFontFamily
	}
	if size <= 0 {
		size = DefaultFontSize
	}

	c := &Catalog{styles: make(map[string]StyleSet)}

	base := NewStyleBuilder(StyleBase).Font(family, size).Build()
	integer := From(base).Name(StyleInteger).Format(NumericFormat{Grouped: true}).Build()
	double := From(base).Name(StyleDouble).Format(NumericFormat{Grouped: true, DecimalPlaces: 2}).Build()
	ungrouped := From(integer).Name(StyleUngroupedInteger).Format(NumericFormat{}).Build()

	c.Add(base)
	c.Add(From(base).Name(StyleTitle).Font(family, 14).Bold().Build())
	c.Add(From(base).Name(StyleHeader).Bold().Color(AquaColor).Align(HAlignCenter).Wrap().Build())
	c.Add(double)
	c.Add(integer)
	c.Add(From(double).Name(StylePercent).Format(NumericFormat{Percent: true, DecimalPlaces: 1}).Build())
	c.Add(From(base).Name(StyleDate).Format(DefaultDateFormat()).Build())
	c.Add(From(base).Name(StyleBoolean).Build())
	c.Add(ungrouped)
	c.Add(From(ungrouped).Name(StyleUngroupedIntegerHeader).Bold().Color(AquaColor).Align(HAlignCenter).Build())
	return c
}

// Add inserts s, replacing any style with the same name.
func (c *Catalog) Add(s StyleSet) {
	key := strings.ToLower(s.Name)
	if _, ok := c.styles[key]; !ok {
		c.order = append(c.order, s.Name)
	}
	c.styles[key] = s
}

// Get looks a style up by name, ignoring case.
func (c *Catalog) Get(name string) (StyleSet, bool) {
	s, ok := c.styles[strings.ToLower(name)]
	return s, ok
}

// Lookup returns the named style or Base when the name is unknown.
func (c *Catalog) Lookup(name string) StyleSet {
	if s, ok := c.Get(name); ok {
		return s
	}
	return c.Base()
}

// Names lists style names in insertion order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) Base() StyleSet {
	if s, ok := c.Get(StyleBase); ok {
		return s
	}
	return NewStyleBuilder(StyleBase).Build()
}

func (c *Catalog) Title() StyleSet  { return c.Lookup(StyleTitle) }
func (c *Catalog) Header() StyleSet { return c.Lookup(StyleHeader) }

// ForKind returns the default style for a column of the given kind.
func (c *Catalog) ForKind(k Kind) StyleSet {
	switch k {
	case KindInteger:
		return c.Lookup(StyleInteger)
	case KindReal:
		return c.Lookup(StyleDouble)
	case KindDate:
		return c.Lookup(StyleDate)
	case KindBool:
		return c.Lookup(StyleBoolean)
	default:
		return c.Base()
	}
}
