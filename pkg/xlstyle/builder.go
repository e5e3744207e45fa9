package xlstyle

// StyleBuilder provides a fluent API for building a StyleSet
type StyleBuilder struct {
	style StyleSet
}

// NewStyleBuilder creates a builder seeded with the default font
func NewStyleBuilder(name string) *StyleBuilder {
	return &StyleBuilder{
		style: StyleSet{
			Name:   name,
			Font:   Font{Family: DefaultFontFamily, Size: DefaultFontSize},
			Format: General,
		},
	}
}

// From creates a builder seeded with an existing style
func From(s StyleSet) *StyleBuilder {
	return &StyleBuilder{style: s}
}

// Name sets the style name
func (b *StyleBuilder) Name(name string) *StyleBuilder {
	b.style.Name = name
	return b
}

// Font sets the font family and size
func (b *StyleBuilder) Font(family string, size float64) *StyleBuilder {
	b.style.Font.Family = family
	b.style.Font.Size = size
	return b
}

// Bold sets the font to bold
func (b *StyleBuilder) Bold() *StyleBuilder {
	b.style.Font.Bold = true
	return b
}

// Italic sets the font to italic
func (b *StyleBuilder) Italic() *StyleBuilder {
	b.style.Font.Italic = true
	return b
}

// Color sets the font color (hex format)
func (b *StyleBuilder) Color(color string) *StyleBuilder {
	b.style.Color = normalizeColor(color)
	return b
}

// Background sets a solid cell fill (hex format)
func (b *StyleBuilder) Background(color string) *StyleBuilder {
	b.style.Background = normalizeColor(color)
	return b
}

// Border sets every edge to the same line style
func (b *StyleBuilder) Border(style BorderStyle) *StyleBuilder {
	b.style.Border = Border{Top: style, Left: style, Bottom: style, Right: style}
	return b
}

// Borders sets each edge individually
func (b *StyleBuilder) Borders(border Border) *StyleBuilder {
	b.style.Border = border
	return b
}

// Align sets the horizontal alignment
func (b *StyleBuilder) Align(a HAlign) *StyleBuilder {
	b.style.HAlign = a
	return b
}

// VAlign sets the vertical alignment
func (b *StyleBuilder) VAlign(a VAlign) *StyleBuilder {
	b.style.VAlign = a
	return b
}

// Wrap enables text wrapping
func (b *StyleBuilder) Wrap() *StyleBuilder {
	b.style.WrapText = true
	return b
}

// Format sets the number format
func (b *StyleBuilder) Format(f NumberFormat) *StyleBuilder {
	b.style.Format = f
	return b
}

// AutoSize marks the column for width measurement
func (b *StyleBuilder) AutoSize() *StyleBuilder {
	b.style.AutoSize = true
	return b
}

// MaxWidth sets the width clamp in characters
func (b *StyleBuilder) MaxWidth(w float64) *StyleBuilder {
	if w < 0 {
		w = 0
	}
	b.style.MaxWidth = w
	return b
}

// Build returns a copy of the built style
func (b *StyleBuilder) Build() StyleSet {
	return b.style
}
