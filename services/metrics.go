package services

import "github.com/prometheus/client_golang/prometheus"

var (
	capturesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staffbox_backup_captures_total",
		Help: "Total snapshot captures, by scope",
	}, []string{"scope"})
	restoresCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staffbox_backup_restores_total",
		Help: "Total restore operations",
	})
	tableErrorsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staffbox_backup_table_errors_total",
		Help: "Total per-table failures during capture or restore",
	})
)

func init() {
	prometheus.MustRegister(capturesCounter, restoresCounter, tableErrorsCounter)
}
