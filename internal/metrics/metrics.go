// Package metrics holds the Prometheus collectors of the coaching service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitness_coach"

var (
	assignmentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "assignments",
		Name:      "created_total",
		Help:      "Number of program assignments created.",
	})

	assignmentFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "assignments",
		Name:      "failures_total",
		Help:      "Number of assignment attempts that failed, labeled by error kind.",
	}, []string{"kind"})

	assignmentsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "assignments",
		Name:      "auto_completed_total",
		Help:      "Number of assignments completed automatically at 100% progress.",
	})

	instancesPerExpansion = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "schedule",
		Name:      "instances_per_expansion",
		Help:      "Exercise instances produced by one template expansion.",
		Buckets:   prometheus.ExponentialBuckets(4, 2, 9),
	})

	instanceTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "instances",
		Name:      "status_updates_total",
		Help:      "Exercise instance status updates, labeled by the new status.",
	}, []string{"status"})

	workoutsLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "workouts",
		Name:      "logged_total",
		Help:      "Workout sessions logged, labeled by outcome.",
	}, []string{"outcome"})

	appointmentConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "appointments",
		Name:      "time_conflicts_total",
		Help:      "Appointment writes rejected because the trainer was already booked.",
	})

	eventPublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Assignment events that could not be published, labeled by event type.",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(
		assignmentsCreated,
		assignmentFailures,
		assignmentsCompleted,
		instancesPerExpansion,
		instanceTransitions,
		workoutsLogged,
		appointmentConflicts,
		eventPublishFailures,
	)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAssignmentCreated counts a persisted assignment and the size of its expansion.
func RecordAssignmentCreated(instances int) {
	assignmentsCreated.Inc()
	instancesPerExpansion.Observe(float64(instances))
}

// RecordAssignmentFailure counts a failed assignment attempt.
func RecordAssignmentFailure(kind string) {
	assignmentFailures.WithLabelValues(kind).Inc()
}

func RecordAssignmentAutoCompleted() {
	assignmentsCompleted.Inc()
}

func RecordInstanceStatus(status string) {
	instanceTransitions.WithLabelValues(status).Inc()
}

// RecordWorkoutLogged counts a workout log by outcome: completed, skipped or partial.
func RecordWorkoutLogged(outcome string) {
	workoutsLogged.WithLabelValues(outcome).Inc()
}

func RecordAppointmentConflict() {
	appointmentConflicts.Inc()
}

func RecordEventPublishFailure(eventType string) {
	eventPublishFailures.WithLabelValues(eventType).Inc()
}
