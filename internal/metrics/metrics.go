package metrics

import (
	"time"

	"github.com/locvowork/tablexcel/pkg/xlstyle"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tablexcel"

// ExportMetrics records workbook exports. It implements tablexcel.Observer.
type ExportMetrics struct {
	// SheetDuration is the time to lay out one sheet.
	SheetDuration *prometheus.HistogramVec
	// SheetRows counts data rows written per sheet.
	SheetRows *prometheus.CounterVec
	// SheetFailures counts sheets whose export failed.
	SheetFailures *prometheus.CounterVec

	WorkbookDuration prometheus.Histogram
	WorkbookExports  *prometheus.CounterVec
	// StylesCreated is the number of native styles of the last export.
	StylesCreated prometheus.Gauge
	StyleHits     prometheus.Counter
	Issues        prometheus.Counter
}

// NewExportMetrics creates the export metrics and registers them with reg.
func NewExportMetrics(reg prometheus.Registerer) *ExportMetrics {
	m := &ExportMetrics{
		SheetDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sheet_export_duration_seconds",
				Help:      "Time to lay out one sheet.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"sheet"},
		),
		SheetRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sheet_rows_total",
				Help:      "Data rows written, by sheet.",
			},
			[]string{"sheet"},
		),
		SheetFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sheet_failures_total",
				Help:      "Sheets whose export failed, by sheet.",
			},
			[]string{"sheet"},
		),
		WorkbookDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "workbook_export_duration_seconds",
				Help:      "Time to export and persist a workbook.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		WorkbookExports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workbook_exports_total",
				Help:      "Workbook exports by status.",
			},
			[]string{"status"},
		),
		StylesCreated: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "styles_created",
				Help:      "Native styles created by the last export.",
			},
		),
		StyleHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "style_cache_hits_total",
				Help:      "Style resolutions served from the cache.",
			},
		),
		Issues: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "export_issues_total",
				Help:      "Items skipped during exports.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.SheetDuration, m.SheetRows, m.SheetFailures,
			m.WorkbookDuration, m.WorkbookExports,
			m.StylesCreated, m.StyleHits, m.Issues,
		)
	}
	return m
}

func (m *ExportMetrics) SheetExported(sheet string, rows int, elapsed time.Duration, err error) {
	m.SheetDuration.WithLabelValues(sheet).Observe(elapsed.Seconds())
	m.SheetRows.WithLabelValues(sheet).Add(float64(rows))
	if err != nil {
		m.SheetFailures.WithLabelValues(sheet).Inc()
	}
}

func (m *ExportMetrics) WorkbookExported(elapsed time.Duration, styles xlstyle.ResolverStats, issues int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.WorkbookDuration.Observe(elapsed.Seconds())
	m.WorkbookExports.WithLabelValues(status).Inc()
	m.StylesCreated.Set(float64(styles.Created))
	m.StyleHits.Add(float64(styles.Hits))
	m.Issues.Add(float64(issues))
}
