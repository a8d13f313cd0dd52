package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(assignmentsCreated)
	RecordAssignmentCreated(12)
	assert.Equal(t, before+1, testutil.ToFloat64(assignmentsCreated))

	RecordAssignmentFailure("conflict")
	RecordAssignmentFailure("conflict")
	assert.Equal(t, 2.0, testutil.ToFloat64(assignmentFailures.WithLabelValues("conflict")))

	RecordInstanceStatus("completed")
	assert.Equal(t, 1.0, testutil.ToFloat64(instanceTransitions.WithLabelValues("completed")))

	RecordWorkoutLogged("skipped")
	assert.Equal(t, 1.0, testutil.ToFloat64(workoutsLogged.WithLabelValues("skipped")))

	conflicts := testutil.ToFloat64(appointmentConflicts)
	RecordAppointmentConflict()
	assert.Equal(t, conflicts+1, testutil.ToFloat64(appointmentConflicts))
}
