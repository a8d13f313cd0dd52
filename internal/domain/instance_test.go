package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestInstanceStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to InstanceStatus
		allowed  bool
	}{
		{InstancePending, InstanceInProgress, true},
		{InstancePending, InstanceCompleted, true},
		{InstancePending, InstanceSkipped, true},
		{InstancePending, InstancePending, true},
		{InstanceInProgress, InstanceCompleted, true},
		{InstanceInProgress, InstanceSkipped, true},
		{InstanceInProgress, InstanceInProgress, true},
		{InstanceInProgress, InstancePending, false},
		{InstanceCompleted, InstanceInProgress, false},
		{InstanceCompleted, InstanceCompleted, false},
		{InstanceSkipped, InstancePending, false},
		{InstanceSkipped, InstanceCompleted, false},
		{InstancePending, InstanceStatus("done"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestApplyStatusUpdate_CompletedOverridesPercentage(t *testing.T) {
	now := time.Date(2025, time.March, 3, 18, 30, 0, 0, time.UTC)
	inst := &ExerciseInstance{Status: InstanceInProgress, CompletionPercentage: 20}

	err := ApplyStatusUpdate(inst, StatusUpdate{
		Status:               InstanceCompleted,
		CompletionPercentage: intPtr(40),
		ClientFeedback:       strPtr("felt heavy"),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, InstanceCompleted, inst.Status)
	assert.Equal(t, 100, inst.CompletionPercentage)
	require.NotNil(t, inst.CompletedAt)
	assert.True(t, now.Equal(*inst.CompletedAt))
	assert.Equal(t, "felt heavy", inst.ClientFeedback)
}

func TestApplyStatusUpdate_PartialProgress(t *testing.T) {
	inst := &ExerciseInstance{Status: InstancePending}

	err := ApplyStatusUpdate(inst, StatusUpdate{
		Status:               InstanceInProgress,
		CompletionPercentage: intPtr(60),
		ActualSetsCompleted:  intPtr(2),
	}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, InstanceInProgress, inst.Status)
	assert.Equal(t, 60, inst.CompletionPercentage)
	assert.Equal(t, 2, inst.ActualSetsCompleted)
	assert.Nil(t, inst.CompletedAt)
}

func TestApplyStatusUpdate_InvalidInputLeavesInstanceUntouched(t *testing.T) {
	tests := []struct {
		name    string
		start   InstanceStatus
		update  StatusUpdate
		wantErr error
	}{
		{"percentage above range", InstancePending, StatusUpdate{Status: InstanceInProgress, CompletionPercentage: intPtr(101)}, ErrInvalidPercentage},
		{"negative percentage", InstancePending, StatusUpdate{Status: InstanceCompleted, CompletionPercentage: intPtr(-1)}, ErrInvalidPercentage},
		{"unknown status", InstancePending, StatusUpdate{Status: "finished"}, ErrInvalidInstanceStatus},
		{"negative sets", InstancePending, StatusUpdate{Status: InstanceInProgress, ActualSetsCompleted: intPtr(-2)}, ErrInvalidSetsCompleted},
		{"out of terminal state", InstanceSkipped, StatusUpdate{Status: InstanceInProgress}, ErrInvalidTransition},
		{"back to pending", InstanceInProgress, StatusUpdate{Status: InstancePending}, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := &ExerciseInstance{Status: tt.start, CompletionPercentage: 10, ClientFeedback: "orig"}
			before := *inst

			err := ApplyStatusUpdate(inst, tt.update, time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, before, *inst)
		})
	}
}
