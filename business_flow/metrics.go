package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Admin login attempts partitioned by outcome
	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_login_attempts_total",
			Help: "Admin login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Imported rows partitioned by outcome (added, updated, skipped, error, invalid)
	importRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_import_rows_total",
			Help: "Rows processed by CSV imports by outcome",
		},
		[]string{"outcome"},
	)

	// Exports partitioned by format
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_exports_total",
			Help: "Personnel exports by format",
		},
		[]string{"format"},
	)

	// Directory cache lookups partitioned by result (hit, miss, error)
	directoryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_cache_lookups_total",
			Help: "Directory read cache lookups by result",
		},
		[]string{"result"},
	)
)
