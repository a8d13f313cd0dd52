package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository/memory"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testJWTSecret = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type nopStorage struct{}

func (nopStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://s3.test/put/" + key, nil
}

func (nopStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/get/" + key, nil
}

func (nopStorage) DeleteObject(context.Context, string) error { return nil }

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()

	assignments := service.NewAssignmentService(store.Users(), store.Programs(), store.Assignments(), store.Instances(), nil)
	svc := Services{
		Auth:       service.NewAuthService(store.Users(), testJWTSecret, time.Hour),
		Trainer:    service.NewTrainerService(store.Users()),
		Client:     service.NewClientService(store.Instances(), store.Uploads(), nopStorage{}),
		Exercise:   service.NewExerciseService(store.Exercises()),
		Program:    service.NewProgramService(store.Programs(), store.Exercises()),
		Assignment: assignments,
		Tracking:   service.NewTrackingService(store.Instances(), assignments),
		Workout:    service.NewWorkoutService(store.Assignments(), store.WorkoutLogs()),
		Progress:   service.NewProgressService(store.Users(), store.Programs(), store.Assignments(), store.WorkoutLogs()),

		Appointment: service.NewAppointmentService(store.Users(), store.Appointments()),
	}

	router := gin.New()
	SetupRoutes(router, testJWTSecret, svc)
	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// signUp registers a user and returns its token and id.
func (s *testServer) signUp(t *testing.T, email string, role domain.Role) (string, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: email, Email: email, Password: "password123", Role: role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[LoginResponse](t, rec)
	return resp.Token, resp.User.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type coachingSetup struct {
	trainerToken string
	clientTokens []string
	clientIDs    []string
	programID    string
}

func setupCoaching(t *testing.T, s *testServer, clients int) coachingSetup {
	t.Helper()
	var cs coachingSetup
	cs.trainerToken, _ = s.signUp(t, "coach@example.com", domain.RoleTrainer)
	for i := 0; i < clients; i++ {
		email := string(rune('a'+i)) + "@example.com"
		token, id := s.signUp(t, email, domain.RoleClient)
		rec := s.do(t, http.MethodPost, "/api/v1/trainer/clients", cs.trainerToken, AddClientRequest{ClientEmail: email})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		cs.clientTokens = append(cs.clientTokens, token)
		cs.clientIDs = append(cs.clientIDs, id)
	}

	rec := s.do(t, http.MethodPost, "/api/v1/trainer/programs", cs.trainerToken, ProgramRequest{
		Name: "Full Body",
		Days: []domain.WorkoutDaySpec{
			{DayNumber: 1, Name: "Push", Exercises: []domain.ExerciseSpec{{Name: "Bench", Sets: 4, Reps: "8"}, {Name: "Dips"}}},
			{DayNumber: 2, Name: "Pull", Exercises: []domain.ExerciseSpec{{Name: "Rows"}, {Name: "Curls"}}},
			{DayNumber: 3, Name: "Legs", Exercises: []domain.ExerciseSpec{{Name: "Squat"}, {Name: "Lunge"}}},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cs.programID = decode[domain.ProgramTemplate](t, rec).ID.Hex()
	return cs
}

func TestAssignAndTrackOverHTTP(t *testing.T) {
	s := newTestServer(t)
	cs := setupCoaching(t, s, 2)

	rec := s.do(t, http.MethodPost, "/api/v1/trainer/assignments", cs.trainerToken, AssignProgramRequest{
		ProgramID:     cs.programID,
		ClientID:      cs.clientIDs[0],
		StartDate:     "2025-06-02",
		DurationWeeks: 1,
		TrainerNotes:  "watch the left knee",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assignment := decode[AssignmentResponse](t, rec)
	assert.Equal(t, 6, assignment.TotalInstances)
	assert.Equal(t, "watch the left knee", assignment.TrainerNotes)

	// Second active assignment for the same client
	rec = s.do(t, http.MethodPost, "/api/v1/trainer/assignments", cs.trainerToken, AssignProgramRequest{
		ProgramID: cs.programID, ClientID: cs.clientIDs[0], StartDate: "2025-06-02",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Trainer notes stay private
	rec = s.do(t, http.MethodGet, "/api/v1/client/assignments/"+assignment.ID, cs.clientTokens[0], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, decode[map[string]any](t, rec), "trainerNotes")

	rec = s.do(t, http.MethodGet, "/api/v1/client/assignments/"+assignment.ID, cs.clientTokens[1], nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/client/instances?assignmentId="+assignment.ID, cs.clientTokens[0], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	instances := decode[[]domain.ExerciseInstance](t, rec)
	require.Len(t, instances, 6)

	rec = s.do(t, http.MethodPatch, "/api/v1/client/instances/"+instances[0].ID.Hex()+"/status", cs.clientTokens[0],
		UpdateInstanceStatusRequest{Status: domain.InstanceCompleted, CompletionPercentage: intPtr(40)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 100, decode[domain.ExerciseInstance](t, rec).CompletionPercentage)

	rec = s.do(t, http.MethodPatch, "/api/v1/client/instances/"+instances[1].ID.Hex()+"/status", cs.clientTokens[0],
		UpdateInstanceStatusRequest{Status: domain.InstanceInProgress, CompletionPercentage: intPtr(150)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/trainer/assignments/"+assignment.ID, cs.trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decode[AssignmentResponse](t, rec).CompletedInstances)

	rec = s.do(t, http.MethodGet, "/api/v1/client/schedule?week=2025-06-04", cs.clientTokens[0], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	schedule := decode[service.WeeklySchedule](t, rec)
	assert.Equal(t, 6, schedule.TotalExercises)
	assert.Equal(t, 1, schedule.CompletedExercises)
}

func TestBulkAssignStatusCodes(t *testing.T) {
	s := newTestServer(t)
	cs := setupCoaching(t, s, 2)

	rec := s.do(t, http.MethodPost, "/api/v1/trainer/assignments", cs.trainerToken, AssignProgramRequest{
		ProgramID: cs.programID, ClientID: cs.clientIDs[0], StartDate: "2025-06-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	bulk := BulkAssignProgramRequest{ProgramID: cs.programID, ClientIDs: cs.clientIDs, StartDate: "2025-06-02"}

	rec = s.do(t, http.MethodPost, "/api/v1/trainer/assignments/bulk", cs.trainerToken, bulk)
	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	resp := decode[BulkAssignResponse](t, rec)
	require.Len(t, resp.Created, 1)
	assert.Equal(t, cs.clientIDs[1], resp.Created[0].ClientID)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, cs.clientIDs[0], resp.Failures[0].ClientID.Hex())

	// Both clients are busy now
	rec = s.do(t, http.MethodPost, "/api/v1/trainer/assignments/bulk", cs.trainerToken, bulk)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	resp = decode[BulkAssignResponse](t, rec)
	assert.Empty(t, resp.Created)
	assert.Len(t, resp.Failures, 2)

	bulk.ClientIDs = nil
	rec = s.do(t, http.MethodPost, "/api/v1/trainer/assignments/bulk", cs.trainerToken, bulk)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoutesEnforceAuthentication(t *testing.T) {
	s := newTestServer(t)
	cs := setupCoaching(t, s, 1)

	rec := s.do(t, http.MethodGet, "/api/v1/trainer/programs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/trainer/programs", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/trainer/programs", cs.clientTokens[0], nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/client/dashboard", cs.trainerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "coach@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/trainer/programs/not-an-id", cs.trainerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeShowsRosterAndCoach(t *testing.T) {
	s := newTestServer(t)
	cs := setupCoaching(t, s, 1)

	rec := s.do(t, http.MethodGet, "/api/v1/me", cs.trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	trainer := decode[UserResponse](t, rec)
	assert.Equal(t, domain.RoleTrainer, trainer.Role)
	assert.Equal(t, cs.clientIDs, trainer.ClientIDs)

	rec = s.do(t, http.MethodGet, "/api/v1/me", cs.clientTokens[0], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	client := decode[UserResponse](t, rec)
	assert.Equal(t, cs.clientIDs[0], client.ID)
	assert.Equal(t, trainer.ID, client.TrainerID)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppointmentsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	cs := setupCoaching(t, s, 2)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	rec := s.do(t, http.MethodPost, "/api/v1/trainer/appointments", cs.trainerToken, ScheduleAppointmentRequest{
		ClientID: cs.clientIDs[0], Title: "Assessment", Type: "in_person",
		StartTime: start, EndTime: start.Add(time.Hour),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decode[AppointmentResponse](t, rec)
	assert.Equal(t, domain.AppointmentScheduled, first.Status)
	assert.Equal(t, 60, first.DurationMinutes)

	overlapping := ScheduleAppointmentRequest{
		ClientID: cs.clientIDs[1], Title: "Check-in", Type: "video",
		StartTime: start.Add(30 * time.Minute), EndTime: start.Add(90 * time.Minute),
	}
	rec = s.do(t, http.MethodPost, "/api/v1/trainer/appointments", cs.trainerToken, overlapping)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/trainer/appointments", cs.trainerToken, ScheduleAppointmentRequest{
		ClientID: cs.clientIDs[1], Title: "Backwards", Type: "video",
		StartTime: start.Add(time.Hour), EndTime: start,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPatch, "/api/v1/trainer/appointments/"+first.ID+"/status", cs.trainerToken,
		UpdateAppointmentStatusRequest{Status: domain.AppointmentCancelled})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The cancelled slot is free again.
	rec = s.do(t, http.MethodPost, "/api/v1/trainer/appointments", cs.trainerToken, overlapping)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/client/appointments", cs.clientTokens[0], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mine := decode[[]AppointmentResponse](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/client/appointments/"+first.ID, cs.clientTokens[1], nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/client/appointments", cs.clientTokens[0], overlapping)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkoutLogAndDashboard(t *testing.T) {
	s := newTestServer(t)
	cs := setupCoaching(t, s, 1)

	rec := s.do(t, http.MethodPost, "/api/v1/trainer/assignments", cs.trainerToken, AssignProgramRequest{
		ProgramID: cs.programID, ClientID: cs.clientIDs[0], StartDate: "2025-06-02",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assignmentID := decode[AssignmentResponse](t, rec).ID

	rec = s.do(t, http.MethodPost, "/api/v1/client/workouts", cs.clientTokens[0], LogWorkoutRequest{
		AssignmentID:      assignmentID,
		DayNumber:         1,
		DurationMinutes:   intPtr(45),
		PerceivedExertion: intPtr(11),
		Completed:         true,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/client/workouts", cs.clientTokens[0], LogWorkoutRequest{
		AssignmentID:      assignmentID,
		DayNumber:         1,
		DurationMinutes:   intPtr(45),
		PerceivedExertion: intPtr(7),
		Completed:         true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/client/dashboard", cs.clientTokens[0], nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dashboard := decode[service.ClientDashboard](t, rec)
	require.Len(t, dashboard.ActiveAssignments, 1)
	assert.Equal(t, 2, dashboard.ActiveAssignments[0].NextWorkoutDay)
	assert.Equal(t, 1, dashboard.Stats.TotalCompletedWorkouts)

	rec = s.do(t, http.MethodGet, "/api/v1/trainer/clients/"+cs.clientIDs[0]+"/dashboard", cs.trainerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/trainer/assignments/"+assignmentID+"/workouts", cs.trainerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]domain.WorkoutLog](t, rec), 1)
}

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", service.ErrStartDateRequired, http.StatusBadRequest},
		{"not found", service.ErrProgramNotFound, http.StatusNotFound},
		{"conflict", service.ErrActiveAssignmentExists, http.StatusConflict},
		{"access denied", service.ErrClientNotManaged, http.StatusForbidden},
		{"authentication", service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{"unknown", service.ErrTokenGeneration, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			respondWithServiceError(c, tt.err, "do things")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func intPtr(v int) *int { return &v }
