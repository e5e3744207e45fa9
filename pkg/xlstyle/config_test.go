package xlstyle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
font_name: Calibri
font_size: 11
styles:
  - name: Money
    type: double
    leading_currency: "$"
    negative_parens: true
    h_align: right
  - name: money
    type: integer
  - name: Stamp
    type: date
    date:
      sequence: ymd
      leading_zero: true
      separator: "-"
      include_time: true
      hour24: true
  - name: Banner
    font:
      size: 16
      bold: true
    background: "#DDEBF7"
    border:
      bottom: double
`

func TestLoadConfigFromString(t *testing.T) {
	cfg, err := LoadConfigFromString(sampleConfig)
	require.NoError(t, err)

	assert.Equal(t, "Calibri", cfg.FontName)
	require.Len(t, cfg.Styles, 5)
	assert.Equal(t, "money2", cfg.Styles[1].Name)
	assert.Equal(t, StyleBase, cfg.Styles[4].Name)

	cat, err := cfg.Catalog()
	require.NoError(t, err)

	money, ok := cat.Get("MONEY")
	require.True(t, ok)
	assert.Equal(t, "_($#,##0.00_);_($(#,##0.00));_($#,##0.00_)", money.FormatCode())
	assert.Equal(t, "Calibri", money.Font.Family)

	stamp := cat.Lookup("Stamp")
	assert.Equal(t, "yyyy-mm-dd h:mm", stamp.FormatCode())

	banner := cat.Lookup("Banner")
	assert.Equal(t, 16.0, banner.Font.Size)
	assert.True(t, banner.Font.Bold)
	assert.Equal(t, "DDEBF7", banner.Background)
	assert.Equal(t, BorderDouble, banner.Border.Bottom)

	// built-ins survive alongside configured styles
	assert.Equal(t, 14.0, cat.Title().Font.Size)
	assert.Equal(t, "Calibri", cat.Title().Font.Family)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown type":   "styles:\n  - name: x\n    type: bogus\n",
		"bad alignment":  "styles:\n  - name: x\n    h_align: sideways\n",
		"bad border":     "styles:\n  - name: x\n    border:\n      top: wavy\n",
		"empty sections": "styles:\n  - name: x\n    type: sections\n",
		"missing name":   "styles:\n  - type: integer\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigFromString(content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidStyleConfig))
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Styles, 5)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
