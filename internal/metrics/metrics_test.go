package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/locvowork/tablexcel/pkg/tablexcel"
	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ tablexcel.Observer = (*ExportMetrics)(nil)

// gathered returns the value of every counter and gauge sample, keyed by
// metric name plus its first label value.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				key += "/" + labels[0].GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestExportMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewExportMetrics(reg)

	m.SheetExported("Salaries", 120, 40*time.Millisecond, nil)
	m.SheetExported("Departments", 6, time.Millisecond, errors.New("boom"))
	m.WorkbookExported(time.Second, xlstyle.ResolverStats{Created: 9, Hits: 31}, 2, nil)

	got := gathered(t, reg)
	assert.Equal(t, 120.0, got["tablexcel_sheet_rows_total/Salaries"])
	assert.Equal(t, 1.0, got["tablexcel_sheet_failures_total/Departments"])
	assert.Equal(t, 1.0, got["tablexcel_sheet_export_duration_seconds/Salaries"])
	assert.Equal(t, 1.0, got["tablexcel_workbook_exports_total/ok"])
	assert.Equal(t, 9.0, got["tablexcel_styles_created"])
	assert.Equal(t, 31.0, got["tablexcel_style_cache_hits_total"])
	assert.Equal(t, 2.0, got["tablexcel_export_issues_total"])
}
