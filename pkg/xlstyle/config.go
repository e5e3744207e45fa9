package xlstyle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// config.go - Style configuration loading and validation

// ErrInvalidStyleConfig is wrapped by every validation failure.
var ErrInvalidStyleConfig = errors.New("invalid style configuration")

// Style definition types.
const (
	TypeFormatCode = "format-code"
	TypeSections   = "sections"
	TypeInteger    = "integer"
	TypeDouble     = "double"
	TypePercent    = "percent"
	TypeDate       = "date"
)

// Config is the YAML style configuration.
type Config struct {
	FontName string            `yaml:"font_name,omitempty"`
	FontSize float64           `yaml:"font_size,omitempty"`
	Styles   []StyleDefinition `yaml:"styles"`
}

// StyleDefinition describes one named style.
type StyleDefinition struct {
	Name       string            `yaml:"name"`
	Type       string            `yaml:"type,omitempty"`
	Font       *FontDefinition   `yaml:"font,omitempty"`
	Color      string            `yaml:"color,omitempty"`
	Background string            `yaml:"background,omitempty"`
	Border     *BorderDefinition `yaml:"border,omitempty"`
	HAlign     string            `yaml:"h_align,omitempty"`
	VAlign     string            `yaml:"v_align,omitempty"`
	WrapText   bool              `yaml:"wrap_text,omitempty"`

	// format-code / sections
	Format   string   `yaml:"format,omitempty"`
	Sections []string `yaml:"sections,omitempty"`

	// integer / double / percent
	DecimalPlaces    *int   `yaml:"decimal_places,omitempty"`
	Grouped          *bool  `yaml:"grouped,omitempty"`
	LeadingCurrency  string `yaml:"leading_currency,omitempty"`
	TrailingCurrency string `yaml:"trailing_currency,omitempty"`
	NegativeParens   bool   `yaml:"negative_parens,omitempty"`
	SuppressZero     bool   `yaml:"suppress_zero,omitempty"`
	PositiveColor    string `yaml:"positive_color,omitempty"`
	NegativeColor    string `yaml:"negative_color,omitempty"`
	ZeroColor        string `yaml:"zero_color,omitempty"`

	// date
	Date *DateDefinition `yaml:"date,omitempty"`
}

type FontDefinition struct {
	Name   string  `yaml:"name,omitempty"`
	Size   float64 `yaml:"size,omitempty"`
	Bold   bool    `yaml:"bold,omitempty"`
	Italic bool    `yaml:"italic,omitempty"`
}

type BorderDefinition struct {
	Top    string `yaml:"top,omitempty"`
	Left   string `yaml:"left,omitempty"`
	Bottom string `yaml:"bottom,omitempty"`
	Right  string `yaml:"right,omitempty"`
}

type DateDefinition struct {
	Sequence             string `yaml:"sequence,omitempty"` // mdy, dmy, ymd
	Months               string `yaml:"months,omitempty"`   // numbers, abbreviations, full
	LeadingZero          bool   `yaml:"leading_zero,omitempty"`
	TwoDigitYear         bool   `yaml:"two_digit_year,omitempty"`
	Separator            string `yaml:"separator,omitempty"`
	IncludeTime          bool   `yaml:"include_time,omitempty"`
	HourLeadingZero      bool   `yaml:"hour_leading_zero,omitempty"`
	Hour24               bool   `yaml:"hour24,omitempty"`
	IncludeSeconds       bool   `yaml:"include_seconds,omitempty"`
	SecondsDecimalPlaces int    `yaml:"seconds_decimal_places,omitempty"`
}

// LoadConfig loads a style configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening style config: %w", err)
	}
	defer file.Close()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads a style configuration from an io.Reader
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading style config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML style config: %w", err)
	}

	cfg.applyDefaults()

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("validating style config: %w", err)
	}

	return &cfg, nil
}

// LoadConfigFromString loads a style configuration from a YAML string
func LoadConfigFromString(content string) (*Config, error) {
	return LoadConfigFromReader(strings.NewReader(content))
}

// applyDefaults fills the font, renames duplicate style names and makes sure
// a Base style exists.
func (c *Config) applyDefaults() {
	if c.FontName == "" {
		c.FontName = DefaultFontFamily
	}
	if c.FontSize <= 0 {
		c.FontSize = DefaultFontSize
	}

	seen := make(map[string]bool)
	hasBase := false
	for i := range c.Styles {
		s := &c.Styles[i]
		if s.Type == "" {
			s.Type = TypeFormatCode
		}
		if strings.EqualFold(s.Name, StyleBase) {
			hasBase = true
		}
		key := strings.ToLower(s.Name)
		if seen[key] {
			s.Name = s.Name + strconv.Itoa(i+1)
			key = strings.ToLower(s.Name)
		}
		seen[key] = true
	}

	if !hasBase {
		c.Styles = append(c.Styles, StyleDefinition{Name: StyleBase, Type: TypeFormatCode, Format: string(General)})
	}
}

// ValidateConfig validates the configuration structure
func ValidateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidStyleConfig)
	}
	for i := range c.Styles {
		if _, err := c.Styles[i].build(c.FontName, c.FontSize); err != nil {
			return fmt.Errorf("style[%d] '%s': %w", i, c.Styles[i].Name, err)
		}
	}
	return nil
}

// Catalog returns the built-in styles overlaid with the configured ones.
func (c *Config) Catalog() (*Catalog, error) {
	cat := NewCatalog(c.FontName, c.FontSize)
	for i := range c.Styles {
		s, err := c.Styles[i].build(c.FontName, c.FontSize)
		if err != nil {
			return nil, fmt.Errorf("style[%d] '%s': %w", i, c.Styles[i].Name, err)
		}
		cat.Add(s)
	}
	return cat, nil
}

func (d *StyleDefinition) build(family string, size float64) (StyleSet, error) {
	if d.Name == "" {
		return StyleSet{}, fmt.Errorf("%w: name is required", ErrInvalidStyleConfig)
	}

	b := NewStyleBuilder(d.Name).Font(family, size)
	if d.Font != nil {
		if d.Font.Name != "" {
			family = d.Font.Name
		}
		if d.Font.Size > 0 {
			size = d.Font.Size
		}
		b.Font(family, size)
		if d.Font.Bold {
			b.Bold()
		}
		if d.Font.Italic {
			b.Italic()
		}
	}
	b.Color(d.Color).Background(d.Background)
	if d.WrapText {
		b.Wrap()
	}

	h, err := parseHAlign(d.HAlign)
	if err != nil {
		return StyleSet{}, err
	}
	v, err := parseVAlign(d.VAlign)
	if err != nil {
		return StyleSet{}, err
	}
	b.Align(h).VAlign(v)

	if d.Border != nil {
		var border Border
		for _, e := range []struct {
			name string
			dst  *BorderStyle
		}{
			{d.Border.Top, &border.Top},
			{d.Border.Left, &border.Left},
			{d.Border.Bottom, &border.Bottom},
			{d.Border.Right, &border.Right},
		} {
			bs, err := ParseBorderStyle(e.name)
			if err != nil {
				return StyleSet{}, err
			}
			*e.dst = bs
		}
		b.Borders(border)
	}

	f, err := d.numberFormat()
	if err != nil {
		return StyleSet{}, err
	}
	b.Format(f)
	return b.Build(), nil
}

func (d *StyleDefinition) numberFormat() (NumberFormat, error) {
	switch d.Type {
	case TypeFormatCode:
		return FormatCode(d.Format), nil
	case TypeSections:
		if len(d.Sections) == 0 {
			return nil, fmt.Errorf("%w: sections type needs at least one section", ErrInvalidStyleConfig)
		}
		return SectionFormat(d.Sections...), nil
	case TypeInteger, TypeDouble, TypePercent:
		n := NumericFormat{
			Grouped:          true,
			Percent:          d.Type == TypePercent,
			LeadingCurrency:  d.LeadingCurrency,
			TrailingCurrency: d.TrailingCurrency,
			NegativeParens:   d.NegativeParens,
			SuppressZero:     d.SuppressZero,
			PositiveColor:    d.PositiveColor,
			NegativeColor:    d.NegativeColor,
			ZeroColor:        d.ZeroColor,
		}
		if d.Grouped != nil {
			n.Grouped = *d.Grouped
		}
		switch d.Type {
		case TypeDouble:
			n.DecimalPlaces = 2
		case TypePercent:
			n.DecimalPlaces = 1
		}
		if d.DecimalPlaces != nil && d.Type != TypeInteger {
			if *d.DecimalPlaces < 0 {
				return nil, fmt.Errorf("%w: decimal_places must not be negative", ErrInvalidStyleConfig)
			}
			n.DecimalPlaces = *d.DecimalPlaces
		}
		return n, nil
	case TypeDate:
		df := DefaultDateFormat()
		if d.Date == nil {
			return df, nil
		}
		switch strings.ToLower(d.Date.Sequence) {
		case "", "mdy":
			df.Sequence = MonthDayYear
		case "dmy":
			df.Sequence = DayMonthYear
		case "ymd":
			df.Sequence = YearMonthDay
		default:
			return nil, fmt.Errorf("%w: unknown date sequence %q", ErrInvalidStyleConfig, d.Date.Sequence)
		}
		switch strings.ToLower(d.Date.Months) {
		case "", "numbers":
			df.Months = Numbers
		case "abbreviations":
			df.Months = Abbreviations
		case "full":
			df.Months = FullNames
		default:
			return nil, fmt.Errorf("%w: unknown month style %q", ErrInvalidStyleConfig, d.Date.Months)
		}
		df.LeadingZero = d.Date.LeadingZero
		df.FourDigitYear = !d.Date.TwoDigitYear
		if d.Date.Separator != "" {
			df.Separator = d.Date.Separator
		}
		df.IncludeTime = d.Date.IncludeTime
		df.HourLeadingZero = d.Date.HourLeadingZero
		df.Hour24 = d.Date.Hour24
		df.IncludeSeconds = d.Date.IncludeSeconds
		df.SecondsDecimalPlaces = d.Date.SecondsDecimalPlaces
		return df, nil
	default:
		return nil, fmt.Errorf("%w: unknown style type %q", ErrInvalidStyleConfig, d.Type)
	}
}

func parseHAlign(s string) (HAlign, error) {
	switch strings.ToLower(s) {
	case "", "general":
		return HAlignGeneral, nil
	case "left":
		return HAlignLeft, nil
	case "center":
		return HAlignCenter, nil
	case "right":
		return HAlignRight, nil
	case "fill":
		return HAlignFill, nil
	case "justify":
		return HAlignJustify, nil
	case "centercontinuous":
		return HAlignCenterContinuous, nil
	case "distributed":
		return HAlignDistributed, nil
	}
	return "", fmt.Errorf("%w: unknown horizontal alignment %q", ErrInvalidStyleConfig, s)
}

func parseVAlign(s string) (VAlign, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return VAlignNone, nil
	case "top":
		return VAlignTop, nil
	case "center":
		return VAlignCenter, nil
	case "bottom":
		return VAlignBottom, nil
	case "justify":
		return VAlignJustify, nil
	case "distributed":
		return VAlignDistributed, nil
	}
	return "", fmt.Errorf("%w: unknown vertical alignment %q", ErrInvalidStyleConfig, s)
}

// ParseBorderStyle maps a border name to its style.
func ParseBorderStyle(s string) (BorderStyle, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return BorderNone, nil
	case "thin":
		return BorderThin, nil
	case "medium":
		return BorderMedium, nil
	case "dashed":
		return BorderDashed, nil
	case "dotted":
		return BorderDotted, nil
	case "thick":
		return BorderThick, nil
	case "double":
		return BorderDouble, nil
	case "hair":
		return BorderHair, nil
	}
	return BorderNone, fmt.Errorf("%w: unknown border style %q", ErrInvalidStyleConfig, s)
}
