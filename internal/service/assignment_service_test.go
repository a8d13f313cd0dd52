package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/events"
	"alcyxob/fitness-coach/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAssign_ExpandsAndPersists(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	a := f.assign(t, f.clients[0], 2)

	assert.Equal(t, domain.AssignmentActive, a.Status)
	assert.Equal(t, "Full Body", a.ProgramName)
	assert.Equal(t, 2, a.DurationWeeks)
	assert.Equal(t, 3, a.SessionsPerWeek)
	assert.Equal(t, 12, a.TotalInstances)

	instances, err := f.store.Instances().List(ctx, repository.InstanceFilter{AssignmentID: &a.ID})
	require.NoError(t, err)
	require.Len(t, instances, 12)

	// floor(7/3) = 2 days between sessions, next week starts 7 days later
	wantOffsets := []int{0, 0, 2, 2, 4, 4, 7, 7, 9, 9, 11, 11}
	for i, inst := range instances {
		assert.Equal(t, wantOffsets[i], domain.DaysBetween(monday, inst.DueDate), "instance %d", i)
		assert.Equal(t, domain.InstancePending, inst.Status)
		assert.Equal(t, f.clients[0], inst.ClientID)
		assert.Equal(t, f.trainer, inst.TrainerID)
	}

	assert.Equal(t, []string{events.TypeAssignmentCreated}, f.publisher.types())
}

func TestAssign_UsesDefaultDuration(t *testing.T) {
	f := newFixture(t, 1)

	a := f.assign(t, f.clients[0], 0)

	assert.Equal(t, 4, a.DurationWeeks)
	assert.Equal(t, 24, a.TotalInstances)
}

func TestAssign_TemplateEditDoesNotTouchInstances(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	a := f.assign(t, f.clients[0], 1)

	in := threeDayProgram()
	in.Days[0].Exercises[0].Sets = 10
	in.Days[0].Exercises[0].Reps = "1"
	_, err := f.programs.UpdateProgram(ctx, f.trainer, f.program.ID, in)
	require.NoError(t, err)

	instances, err := f.store.Instances().List(ctx, repository.InstanceFilter{AssignmentID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, instances[0].Sets)
	assert.Equal(t, "8-12", instances[0].Reps)
}

func TestAssign_Errors(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	stranger := createUser(t, f.store, "stranger@example.com", domain.RoleClient)
	otherTrainer := createUser(t, f.store, "other@example.com", domain.RoleTrainer)

	tests := []struct {
		name    string
		trainer primitive.ObjectID
		req     AssignRequest
		want    error
		kind    error
	}{
		{"missing start date", f.trainer, AssignRequest{ProgramID: f.program.ID, ClientID: f.clients[0]}, ErrStartDateRequired, ErrValidation},
		{"unknown program", f.trainer, AssignRequest{ProgramID: primitive.NewObjectID(), ClientID: f.clients[0], StartDate: monday}, ErrProgramNotFound, ErrNotFound},
		{"foreign program", otherTrainer, AssignRequest{ProgramID: f.program.ID, ClientID: f.clients[0], StartDate: monday}, ErrProgramAccessDenied, ErrAccessDenied},
		{"unmanaged client", f.trainer, AssignRequest{ProgramID: f.program.ID, ClientID: stranger, StartDate: monday}, ErrClientNotManaged, ErrAccessDenied},
		{"unknown client", f.trainer, AssignRequest{ProgramID: f.program.ID, ClientID: primitive.NewObjectID(), StartDate: monday}, ErrClientNotFound, ErrNotFound},
		{"end before start", f.trainer, AssignRequest{ProgramID: f.program.ID, ClientID: f.clients[0], StartDate: monday, EndDate: ptrTime(monday.AddDate(0, 0, -1))}, ErrInvalidDateRange, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.assignments.Assign(ctx, tt.trainer, tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	all, err := f.store.Assignments().List(ctx, repository.AssignmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAssign_ConflictWhenActiveExists(t *testing.T) {
	f := newFixture(t, 1)
	f.assign(t, f.clients[0], 1)

	_, err := f.assignments.Assign(context.Background(), f.trainer, AssignRequest{
		ProgramID: f.program.ID,
		ClientID:  f.clients[0],
		StartDate: monday,
	})
	require.ErrorIs(t, err, ErrActiveAssignmentExists)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAssign_ConcurrentRequestsForSameClient(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.assignments.Assign(ctx, f.trainer, AssignRequest{
				ProgramID: f.program.ID,
				ClientID:  f.clients[0],
				StartDate: monday,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrActiveAssignmentExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	active, err := f.store.Assignments().List(ctx, repository.AssignmentFilter{
		ClientID: &f.clients[0],
		Status:   domain.AssignmentActive,
	})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestBulkAssign_PartialSuccess(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	f.assign(t, f.clients[1], 1)

	created, err := f.assignments.BulkAssign(ctx, f.trainer, BulkAssignRequest{
		ProgramID:     f.program.ID,
		ClientIDs:     f.clients,
		StartDate:     monday,
		DurationWeeks: 1,
	})

	require.Len(t, created, 2)
	assert.Equal(t, f.clients[0], created[0].ClientID)
	assert.Equal(t, f.clients[2], created[1].ClientID)

	var batchErr *PartialBatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 1)
	assert.Equal(t, f.clients[1], batchErr.Failures[0].ClientID)
	assert.Equal(t, ErrActiveAssignmentExists.Error(), batchErr.Failures[0].Reason)
	assert.Len(t, batchErr.Created, 2)
	assert.False(t, batchErr.NoneSucceeded())
	assert.ErrorIs(t, err, ErrActiveAssignmentExists)
}

func TestBulkAssign_AllSucceed(t *testing.T) {
	f := newFixture(t, 2)

	created, err := f.assignments.BulkAssign(context.Background(), f.trainer, BulkAssignRequest{
		ProgramID: f.program.ID,
		ClientIDs: f.clients,
		StartDate: monday,
	})
	require.NoError(t, err)
	assert.Len(t, created, 2)
}

func TestBulkAssign_BatchLevelFailures(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	_, err := f.assignments.BulkAssign(ctx, f.trainer, BulkAssignRequest{ProgramID: f.program.ID, StartDate: monday})
	require.ErrorIs(t, err, ErrNoClients)

	_, err = f.assignments.BulkAssign(ctx, f.trainer, BulkAssignRequest{
		ProgramID: primitive.NewObjectID(),
		ClientIDs: f.clients,
		StartDate: monday,
	})
	require.ErrorIs(t, err, ErrProgramNotFound)
	var batchErr *PartialBatchError
	assert.False(t, errors.As(err, &batchErr))
}

func TestBulkAssign_NoneSucceed(t *testing.T) {
	f := newFixture(t, 1)

	created, err := f.assignments.BulkAssign(context.Background(), f.trainer, BulkAssignRequest{
		ProgramID: f.program.ID,
		ClientIDs: []primitive.ObjectID{primitive.NewObjectID()},
		StartDate: monday,
	})

	assert.Empty(t, created)
	var batchErr *PartialBatchError
	require.ErrorAs(t, err, &batchErr)
	assert.True(t, batchErr.NoneSucceeded())
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	a := f.assign(t, f.clients[0], 1)

	paused, err := f.assignments.UpdateStatus(ctx, f.trainer, a.ID, domain.AssignmentPaused)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentPaused, paused.Status)

	// With the first one paused, the client may get a new active program
	second := f.assign(t, f.clients[0], 1)

	_, err = f.assignments.UpdateStatus(ctx, f.trainer, a.ID, domain.AssignmentActive)
	require.ErrorIs(t, err, ErrActiveAssignmentExists)

	_, err = f.assignments.UpdateStatus(ctx, f.trainer, second.ID, domain.AssignmentCancelled)
	require.NoError(t, err)

	resumed, err := f.assignments.UpdateStatus(ctx, f.trainer, a.ID, domain.AssignmentActive)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentActive, resumed.Status)

	_, err = f.assignments.UpdateStatus(ctx, f.trainer, second.ID, domain.AssignmentActive)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = f.assignments.UpdateStatus(ctx, f.trainer, a.ID, "archived")
	require.ErrorIs(t, err, domain.ErrInvalidAssignmentStatus)

	f.setNow(monday.AddDate(0, 0, 10))
	completed, err := f.assignments.UpdateStatus(ctx, f.trainer, a.ID, domain.AssignmentCompleted)
	require.NoError(t, err)
	require.NotNil(t, completed.EndDate)
	assert.Equal(t, monday.AddDate(0, 0, 10), *completed.EndDate)

	assert.Contains(t, f.publisher.types(), events.TypeAssignmentStatusChanged)
}

func TestGetAssignment_Access(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	a := f.assign(t, f.clients[0], 1)

	_, err := f.assignments.GetAssignment(ctx, ClientActor(f.clients[0]), a.ID)
	require.NoError(t, err)
	_, err = f.assignments.GetAssignment(ctx, TrainerActor(f.trainer), a.ID)
	require.NoError(t, err)
	_, err = f.assignments.GetAssignment(ctx, ClientActor(f.clients[1]), a.ID)
	require.ErrorIs(t, err, ErrAssignmentAccessDenied)
	_, err = f.assignments.GetAssignment(ctx, TrainerActor(f.trainer), primitive.NewObjectID())
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestListAssignments_ScopedToActor(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.assign(t, f.clients[0], 1)
	f.assign(t, f.clients[1], 1)

	mine, err := f.assignments.ListAssignments(ctx, ClientActor(f.clients[0]), AssignmentQuery{ClientID: &f.clients[1]})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.clients[0], mine[0].ClientID)

	all, err := f.assignments.ListAssignments(ctx, TrainerActor(f.trainer), AssignmentQuery{Status: domain.AssignmentActive})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateNotesAndDelete(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	a := f.assign(t, f.clients[0], 1)

	updated, err := f.assignments.UpdateNotes(ctx, f.trainer, a.ID, strPtr("hydrate"), nil)
	require.NoError(t, err)
	assert.Equal(t, "hydrate", updated.CustomNotes)

	require.NoError(t, f.assignments.DeleteAssignment(ctx, f.trainer, a.ID))
	instances, err := f.store.Instances().List(ctx, repository.InstanceFilter{AssignmentID: &a.ID})
	require.NoError(t, err)
	assert.Empty(t, instances)

	err = f.assignments.DeleteAssignment(ctx, f.trainer, a.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSyncProgress_AutoCompletes(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.setNow(monday.AddDate(0, 0, 6))
	a := f.assign(t, f.clients[0], 1)

	instances, err := f.tracking.ListInstances(ctx, ClientActor(f.clients[0]), InstanceQuery{AssignmentID: &a.ID})
	require.NoError(t, err)
	require.Len(t, instances, 6)

	for i, inst := range instances {
		_, err := f.tracking.UpdateInstanceStatus(ctx, ClientActor(f.clients[0]), inst.ID, domain.StatusUpdate{Status: domain.InstanceCompleted})
		require.NoError(t, err)

		got, err := f.assignments.GetAssignment(ctx, TrainerActor(f.trainer), a.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, got.CompletedInstances)
		if i < len(instances)-1 {
			assert.Equal(t, domain.AssignmentActive, got.Status)
		}
	}

	done, err := f.assignments.GetAssignment(ctx, TrainerActor(f.trainer), a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCompleted, done.Status)
	assert.Equal(t, 100.0, done.CompletionPercentage)
	require.NotNil(t, done.LastInstanceDate)
	assert.Equal(t, monday.AddDate(0, 0, 4), *done.LastInstanceDate)
	require.NotNil(t, done.EndDate)
	assert.Contains(t, f.publisher.types(), events.TypeAssignmentCompleted)

	// Completed assignments free the client for a new program
	f.assign(t, f.clients[0], 1)
}

func TestSyncProgress_PartialPercentage(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	a := f.assign(t, f.clients[0], 1)

	instances, err := f.tracking.ListInstances(ctx, TrainerActor(f.trainer), InstanceQuery{AssignmentID: &a.ID})
	require.NoError(t, err)
	_, err = f.tracking.UpdateInstanceStatus(ctx, TrainerActor(f.trainer), instances[0].ID, domain.StatusUpdate{Status: domain.InstanceCompleted})
	require.NoError(t, err)

	got, err := f.assignments.GetAssignment(ctx, TrainerActor(f.trainer), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 16.7, got.CompletionPercentage)
	assert.Equal(t, domain.AssignmentActive, got.Status)
}

func TestSyncProgress_KeepsStatusChangedDuringRecount(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	a := f.assign(t, f.clients[0], 1)

	// Every instance done, so the recount would normally auto-complete
	instances, err := f.store.Instances().List(ctx, repository.InstanceFilter{AssignmentID: &a.ID})
	require.NoError(t, err)
	for _, inst := range instances {
		inst.Status = domain.InstanceCompleted
		require.NoError(t, f.store.Instances().UpdateExecution(ctx, &inst, domain.InstancePending))
	}

	hooked := &hookedInstances{
		InstanceRepository: f.store.Instances(),
		beforeCount: func() {
			_, err := f.workouts.LogWorkout(ctx, f.clients[0], LogWorkoutRequest{AssignmentID: a.ID, DayNumber: 1, Completed: true})
			require.NoError(t, err)
			_, err = f.assignments.UpdateStatus(ctx, f.trainer, a.ID, domain.AssignmentCancelled)
			require.NoError(t, err)
		},
	}
	syncer := NewAssignmentService(f.store.Users(), f.store.Programs(), f.store.Assignments(), hooked, f.publisher)

	got, err := syncer.SyncProgress(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCancelled, got.Status)
	assert.Equal(t, 1, got.CompletedWorkouts)
	assert.Equal(t, len(instances), got.CompletedInstances)
	assert.Equal(t, 100.0, got.CompletionPercentage)
	assert.Nil(t, got.EndDate)
	assert.NotContains(t, f.publisher.types(), events.TypeAssignmentCompleted)

	stored, err := f.store.Assignments().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCancelled, stored.Status)
	assert.Equal(t, 1, stored.CompletedWorkouts)
}

func TestUpdateStatus_RecheckedAfterConcurrentChange(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	a := f.assign(t, f.clients[0], 1)

	hooked := &hookedAssignments{
		AssignmentRepository: f.store.Assignments(),
		beforeStatus: func() {
			_, err := f.assignments.UpdateStatus(ctx, f.trainer, a.ID, domain.AssignmentCancelled)
			require.NoError(t, err)
		},
	}
	svc := NewAssignmentService(f.store.Users(), f.store.Programs(), hooked, f.store.Instances(), f.publisher)

	// Paused was valid from active, but the assignment is cancelled by the time it writes
	_, err := svc.UpdateStatus(ctx, f.trainer, a.ID, domain.AssignmentPaused)
	require.ErrorIs(t, err, ErrInvalidStatusTransition)

	stored, err := f.store.Assignments().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentCancelled, stored.Status)
}
