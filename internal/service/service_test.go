package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/events"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// monday is the start date used across service tests.
var monday = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// fixture wires every service on one memory store with a trainer, its
// clients and a three-day program.
type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher

	assignments AssignmentService
	tracking    TrackingService
	workouts    WorkoutService
	dashboards  ProgressService
	programs    ProgramService

	trainer primitive.ObjectID
	clients []primitive.ObjectID
	program *domain.ProgramTemplate
}

func newFixture(t *testing.T, clients int) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{store: memory.NewStore(), publisher: &recordingPublisher{}}
	f.trainer = createUser(t, f.store, "coach@example.com", domain.RoleTrainer)
	for i := 0; i < clients; i++ {
		id := createUser(t, f.store, primitive.NewObjectID().Hex()+"@example.com", domain.RoleClient)
		require.NoError(t, f.store.Users().AddClientIDToTrainer(ctx, f.trainer, id))
		require.NoError(t, f.store.Users().SetTrainerForClient(ctx, id, f.trainer))
		f.clients = append(f.clients, id)
	}

	f.assignments = NewAssignmentService(f.store.Users(), f.store.Programs(), f.store.Assignments(), f.store.Instances(), f.publisher)
	f.tracking = NewTrackingService(f.store.Instances(), f.assignments)
	f.workouts = NewWorkoutService(f.store.Assignments(), f.store.WorkoutLogs())
	f.dashboards = NewProgressService(f.store.Users(), f.store.Programs(), f.store.Assignments(), f.store.WorkoutLogs())
	f.programs = NewProgramService(f.store.Programs(), f.store.Exercises())

	program, err := f.programs.CreateProgram(ctx, f.trainer, threeDayProgram())
	require.NoError(t, err)
	f.program = program
	return f
}

func createUser(t *testing.T, store *memory.Store, email string, role domain.Role) primitive.ObjectID {
	t.Helper()
	id, err := store.Users().Create(context.Background(), &domain.User{
		Name:         email,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return id
}

// threeDayProgram has days 1-3 with two exercises each.
func threeDayProgram() ProgramInput {
	day := func(n int, name string) domain.WorkoutDaySpec {
		return domain.WorkoutDaySpec{
			DayNumber: n,
			Name:      name,
			Exercises: []domain.ExerciseSpec{
				{Name: name + " A", Sets: 4, Reps: "8-12", Weight: "60kg", Order: 1},
				{Name: name + " B", Sets: 3, Reps: "10", Order: 2},
			},
		}
	}
	return ProgramInput{
		Name: "Full Body",
		Days: []domain.WorkoutDaySpec{day(1, "Push"), day(2, "Pull"), day(3, "Legs")},
	}
}

func (f *fixture) assign(t *testing.T, client primitive.ObjectID, weeks int) *domain.Assignment {
	t.Helper()
	a, err := f.assignments.Assign(context.Background(), f.trainer, AssignRequest{
		ProgramID:     f.program.ID,
		ClientID:      client,
		StartDate:     monday,
		DurationWeeks: weeks,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) setNow(now time.Time) {
	clock := func() time.Time { return now }
	f.assignments.(*assignmentService).now = clock
	f.tracking.(*trackingService).now = clock
	f.workouts.(*workoutService).now = clock
	f.dashboards.(*progressService).now = clock
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func ptrTime(v time.Time) *time.Time { return &v }

// hookedInstances runs a one-shot hook right before the wrapped store call,
// standing in for a writer that lands between a service's read and its write.
type hookedInstances struct {
	repository.InstanceRepository
	beforeCount  func()
	beforeUpdate func()
}

func (h *hookedInstances) CountByAssignment(ctx context.Context, id primitive.ObjectID) (repository.InstanceCounts, error) {
	if fn := h.beforeCount; fn != nil {
		h.beforeCount = nil
		fn()
	}
	return h.InstanceRepository.CountByAssignment(ctx, id)
}

func (h *hookedInstances) UpdateExecution(ctx context.Context, inst *domain.ExerciseInstance, from domain.InstanceStatus) error {
	if fn := h.beforeUpdate; fn != nil {
		h.beforeUpdate = nil
		fn()
	}
	return h.InstanceRepository.UpdateExecution(ctx, inst, from)
}

// hookedAssignments does the same for assignment status writes.
type hookedAssignments struct {
	repository.AssignmentRepository
	beforeStatus func()
}

func (h *hookedAssignments) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AssignmentStatus, endDate *time.Time) error {
	if fn := h.beforeStatus; fn != nil {
		h.beforeStatus = nil
		fn()
	}
	return h.AssignmentRepository.UpdateStatus(ctx, id, from, to, endDate)
}
