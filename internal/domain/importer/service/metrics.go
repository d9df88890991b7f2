package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifebook_import_rows_imported_total",
		Help: "Rows successfully imported, by module.",
	}, []string{"module"})

	rowsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifebook_import_rows_failed_total",
		Help: "Rows that failed to import, by module.",
	}, []string{"module"})

	runsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lifebook_import_runs_total",
		Help: "Completed import runs, by outcome.",
	}, []string{"status"})
)

func observeModule(mr *ModuleResult) {
	rowsImported.WithLabelValues(string(mr.Module)).Add(float64(mr.Imported))
	rowsFailed.WithLabelValues(string(mr.Module)).Add(float64(mr.Total - mr.Imported - mr.Skipped))
}

func observeRun(success bool) {
	status := "succeeded"
	if !success {
		status = "failed"
	}
	runsCompleted.WithLabelValues(status).Inc()
}
