package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "training_service",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of outbox events successfully published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "training_service",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of outbox delivery attempts that failed.",
	})

	quarantinedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "training_service",
		Subsystem: "outbox",
		Name:      "events_quarantined_total",
		Help:      "Number of outbox events quarantined after exhausting delivery attempts, labeled by topic.",
	}, []string{"topic"})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "training_service",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent fetching, delivering, and marking outbox batches.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, quarantinedCounter, batchDuration)
}
