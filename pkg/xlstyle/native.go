package xlstyle

import (
	"github.com/xuri/excelize/v2"
)

const defaultBorderColor = "000000"

// Native converts the style into an excelize style definition.
func (s StyleSet) Native() *excelize.Style {
	style := &excelize.Style{
		Font: &excelize.Font{
			Bold:   s.Font.Bold,
			Italic: s.Font.Italic,
			Family: s.Font.Family,
			Size:   s.Font.Size,
			Color:  s.Color,
		},
		Alignment: &excelize.Alignment{
			Horizontal: string(s.HAlign),
			Vertical:   string(s.VAlign),
			WrapText:   s.WrapText,
		},
	}

	if s.Background != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{s.Background},
		}
	}

	edges := []struct {
		side  string
		style BorderStyle
	}{
		{"left", s.Border.Left},
		{"top", s.Border.Top},
		{"bottom", s.Border.Bottom},
		{"right", s.Border.Right},
	}
	for _, e := range edges {
		if e.style == BorderNone {
			continue
		}
		style.Border = append(style.Border, excelize.Border{
			Type:  e.side,
			Color: defaultBorderColor,
			Style: int(e.style),
		})
	}

	if code := s.FormatCode(); code != string(General) {
		style.CustomNumFmt = &code
	}
	return style
}
