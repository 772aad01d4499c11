// Package observability exposes service-level Prometheus instruments.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activityIngestGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "training_service",
		Subsystem: "persistence",
		Name:      "last_activity_ingested_timestamp_seconds",
		Help:      "Unix timestamp of the most recent activity persisted to Postgres.",
	})
	activityReconcileGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "training_service",
		Subsystem: "persistence",
		Name:      "last_activity_reconciled_timestamp_seconds",
		Help:      "Unix timestamp of the most recent merge committed to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(activityIngestGauge, activityReconcileGauge)
}

// RecordActivityIngested updates the ingestion watermark gauge.
func RecordActivityIngested(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityIngestGauge.Set(float64(ts.Unix()))
}

// RecordActivityReconciled updates the reconciliation watermark gauge.
func RecordActivityReconciled(ts time.Time) {
	if ts.IsZero() {
		return
	}
	activityReconcileGauge.Set(float64(ts.Unix()))
}
