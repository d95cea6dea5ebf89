package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "store",
		Name:      "users_created_total",
		Help:      "Number of user records persisted.",
	})

	exercisesLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "store",
		Name:      "exercises_logged_total",
		Help:      "Number of exercise records persisted.",
	})

	exerciseLoggedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "exercise_tracker",
		Subsystem: "store",
		Name:      "last_exercise_logged_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise persisted.",
	})

	logQueryResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "exercise_tracker",
		Subsystem: "store",
		Name:      "log_query_results",
		Help:      "Number of exercises returned per log query.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	publishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Number of events that could not be published, labeled by event type.",
	}, []string{"event_type"})
)

func init() {
	prometheus.MustRegister(usersCreatedCounter, exercisesLoggedCounter, exerciseLoggedGauge, logQueryResults, publishFailures)
}

// RecordUserCreated counts a persisted user.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExerciseLogged counts a persisted exercise and moves the watermark.
func RecordExerciseLogged(ts time.Time) {
	exercisesLoggedCounter.Inc()
	if ts.IsZero() {
		return
	}
	exerciseLoggedGauge.Set(float64(ts.Unix()))
}

// RecordLogQuery observes the size of a log query result.
func RecordLogQuery(results int) {
	logQueryResults.Observe(float64(results))
}

// RecordPublishFailure counts an event that was dropped.
func RecordPublishFailure(eventType string) {
	publishFailures.WithLabelValues(eventType).Inc()
}
