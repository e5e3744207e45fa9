package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/locvowork/tablexcel/internal/handler"
	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog("")
	require.NoError(t, err)
	_, ok := cat.Get(xlstyle.StyleHeader)
	assert.True(t, ok)

	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
font_name: Arial
font_size: 10
styles:
  - name: Money
    type: double
`), 0o644))

	cat, err = LoadCatalog(path)
	require.NoError(t, err)
	money, ok := cat.Get("money")
	require.True(t, ok)
	assert.Equal(t, "Arial", money.Font.Family)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRegisterRoutes_Metrics(t *testing.T) {
	app := NewApp()
	app.RegisterRoutes(handler.NewReportHandler(nil, "out.xlsx", false))

	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
