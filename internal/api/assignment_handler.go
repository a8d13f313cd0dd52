package api

import (
	"errors"
	"net/http"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentHandler serves program assignments and the workout logs recorded against them.
type AssignmentHandler struct {
	assignmentService service.AssignmentService
	workoutService    service.WorkoutService
}

func NewAssignmentHandler(assignmentService service.AssignmentService, workoutService service.WorkoutService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		workoutService:    workoutService,
	}
}

// --- DTOs ---

// AssignProgramRequest assigns a program to one client. Dates are YYYY-MM-DD.
type AssignProgramRequest struct {
	ProgramID       string  `json:"programId" binding:"required"`
	ClientID        string  `json:"clientId" binding:"required"`
	StartDate       string  `json:"startDate" binding:"required"`
	EndDate         *string `json:"endDate"`
	DurationWeeks   int     `json:"durationWeeks" binding:"min=0"`
	SessionsPerWeek int     `json:"sessionsPerWeek" binding:"min=0"`
	CustomNotes     string  `json:"customNotes"`
	TrainerNotes    string  `json:"trainerNotes"`
}

// BulkAssignProgramRequest assigns a program to several clients with shared settings.
type BulkAssignProgramRequest struct {
	ProgramID       string   `json:"programId" binding:"required"`
	ClientIDs       []string `json:"clientIds" binding:"required"`
	StartDate       string   `json:"startDate" binding:"required"`
	DurationWeeks   int      `json:"durationWeeks" binding:"min=0"`
	SessionsPerWeek int      `json:"sessionsPerWeek" binding:"min=0"`
	CustomNotes     string   `json:"customNotes"`
}

// BulkAssignResponse lists what was created and which clients were skipped.
type BulkAssignResponse struct {
	Created  []AssignmentResponse    `json:"created"`
	Failures []service.ClientFailure `json:"failures"`
}

type UpdateAssignmentStatusRequest struct {
	Status domain.AssignmentStatus `json:"status" binding:"required"`
}

// UpdateAssignmentNotesRequest leaves omitted notes unchanged.
type UpdateAssignmentNotesRequest struct {
	CustomNotes  *string `json:"customNotes"`
	TrainerNotes *string `json:"trainerNotes"`
}

// AssignmentResponse is the DTO for returning assignment details.
// TrainerNotes is only filled for trainers.
type AssignmentResponse struct {
	ID                   string                  `json:"id"`
	ProgramID            string                  `json:"programId"`
	ProgramName          string                  `json:"programName"`
	ClientID             string                  `json:"clientId"`
	TrainerID            string                  `json:"trainerId"`
	StartDate            time.Time               `json:"startDate"`
	EndDate              *time.Time              `json:"endDate,omitempty"`
	DurationWeeks        int                     `json:"durationWeeks"`
	SessionsPerWeek      int                     `json:"sessionsPerWeek"`
	Status               domain.AssignmentStatus `json:"status"`
	TotalInstances       int                     `json:"totalInstances"`
	CompletedInstances   int                     `json:"completedInstances"`
	CompletionPercentage float64                 `json:"completionPercentage"`
	LastInstanceDate     *time.Time              `json:"lastInstanceDate,omitempty"`
	CompletedWorkouts    int                     `json:"completedWorkouts"`
	LastWorkoutDate      *time.Time              `json:"lastWorkoutDate,omitempty"`
	CustomNotes          string                  `json:"customNotes,omitempty"`
	TrainerNotes         string                  `json:"trainerNotes,omitempty"`
	AssignedAt           time.Time               `json:"assignedAt"`
	UpdatedAt            time.Time               `json:"updatedAt"`
}

// MapAssignmentToResponse converts domain.Assignment to AssignmentResponse DTO for the given viewer.
func MapAssignmentToResponse(a *domain.Assignment, viewer domain.Role) AssignmentResponse {
	if a == nil {
		return AssignmentResponse{}
	}
	resp := AssignmentResponse{
		ID:                   a.ID.Hex(),
		ProgramID:            a.ProgramID.Hex(),
		ProgramName:          a.ProgramName,
		ClientID:             a.ClientID.Hex(),
		TrainerID:            a.TrainerID.Hex(),
		StartDate:            a.StartDate,
		EndDate:              a.EndDate,
		DurationWeeks:        a.DurationWeeks,
		SessionsPerWeek:      a.SessionsPerWeek,
		Status:               a.Status,
		TotalInstances:       a.TotalInstances,
		CompletedInstances:   a.CompletedInstances,
		CompletionPercentage: a.CompletionPercentage,
		LastInstanceDate:     a.LastInstanceDate,
		CompletedWorkouts:    a.CompletedWorkouts,
		LastWorkoutDate:      a.LastWorkoutDate,
		CustomNotes:          a.CustomNotes,
		AssignedAt:           a.AssignedAt,
		UpdatedAt:            a.UpdatedAt,
	}
	if viewer == domain.RoleTrainer {
		resp.TrainerNotes = a.TrainerNotes
	}
	return resp
}

// MapAssignmentsToResponse converts a slice of domain.Assignment
func MapAssignmentsToResponse(assignments []domain.Assignment, viewer domain.Role) []AssignmentResponse {
	responses := make([]AssignmentResponse, len(assignments))
	for i := range assignments {
		responses[i] = MapAssignmentToResponse(&assignments[i], viewer)
	}
	return responses
}

// --- Handler Methods ---

// AssignProgram godoc
// @Summary Assign a program to a client
// @Description Expands the template into dated exercise instances for the client.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignment body AssignProgramRequest true "Assignment details"
// @Success 201 {object} AssignmentResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Program or client not owned by the trainer"
// @Failure 409 {object} gin.H "Client already has an active assignment"
// @Router /trainer/assignments [post]
func (h *AssignmentHandler) AssignProgram(c *gin.Context) {
	var req AssignProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	programID, err := primitive.ObjectIDFromHex(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid programId format.")
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format.")
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD.")
		return
	}
	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD.")
			return
		}
		endDate = &end
	}

	assignment, err := h.assignmentService.Assign(c.Request.Context(), actor.ID, service.AssignRequest{
		ProgramID:       programID,
		ClientID:        clientID,
		StartDate:       startDate,
		EndDate:         endDate,
		DurationWeeks:   req.DurationWeeks,
		SessionsPerWeek: req.SessionsPerWeek,
		CustomNotes:     req.CustomNotes,
		TrainerNotes:    req.TrainerNotes,
	})
	if err != nil {
		respondWithServiceError(c, err, "assign program")
		return
	}
	c.JSON(http.StatusCreated, MapAssignmentToResponse(assignment, actor.Role))
}

// BulkAssignProgram godoc
// @Summary Assign a program to several clients
// @Description Each client is processed independently. 207 when some clients failed, 422 when all did.
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignment body BulkAssignProgramRequest true "Bulk assignment details"
// @Success 201 {object} BulkAssignResponse "Every client assigned"
// @Success 207 {object} BulkAssignResponse "Some clients failed"
// @Failure 422 {object} BulkAssignResponse "Every client failed"
// @Router /trainer/assignments/bulk [post]
func (h *AssignmentHandler) BulkAssignProgram(c *gin.Context) {
	var req BulkAssignProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	programID, err := primitive.ObjectIDFromHex(req.ProgramID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid programId format.")
		return
	}
	clientIDs := make([]primitive.ObjectID, 0, len(req.ClientIDs))
	for _, raw := range req.ClientIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid client ID format: "+raw)
			return
		}
		clientIDs = append(clientIDs, id)
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD.")
		return
	}

	created, err := h.assignmentService.BulkAssign(c.Request.Context(), actor.ID, service.BulkAssignRequest{
		ProgramID:       programID,
		ClientIDs:       clientIDs,
		StartDate:       startDate,
		DurationWeeks:   req.DurationWeeks,
		SessionsPerWeek: req.SessionsPerWeek,
		CustomNotes:     req.CustomNotes,
	})

	resp := BulkAssignResponse{
		Created:  MapAssignmentsToResponse(created, actor.Role),
		Failures: []service.ClientFailure{},
	}
	var batchErr *service.PartialBatchError
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, resp)
	case errors.As(err, &batchErr):
		resp.Failures = batchErr.Failures
		if batchErr.NoneSucceeded() {
			c.JSON(http.StatusUnprocessableEntity, resp)
			return
		}
		c.JSON(http.StatusMultiStatus, resp)
	default:
		respondWithServiceError(c, err, "assign program")
	}
}

// ListAssignments godoc
// @Summary List assignments
// @Description Trainers see their own assignments, clients see the ones made for them.
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param clientId query string false "Filter by client (trainers only)"
// @Param programId query string false "Filter by program"
// @Param status query string false "Filter by status"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size"
// @Success 200 {array} AssignmentResponse
// @Router /trainer/assignments [get]
// @Router /client/assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	clientID, ok := parseOptionalObjectIDQuery(c, "clientId")
	if !ok {
		return
	}
	programID, ok := parseOptionalObjectIDQuery(c, "programId")
	if !ok {
		return
	}
	skip, ok := parseInt64Query(c, "skip")
	if !ok {
		return
	}
	limit, ok := parseInt64Query(c, "limit")
	if !ok {
		return
	}

	assignments, err := h.assignmentService.ListAssignments(c.Request.Context(), actor, service.AssignmentQuery{
		ClientID:  clientID,
		ProgramID: programID,
		Status:    domain.AssignmentStatus(c.Query("status")),
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		respondWithServiceError(c, err, "retrieve assignments")
		return
	}
	c.JSON(http.StatusOK, MapAssignmentsToResponse(assignments, actor.Role))
}

// GetAssignment godoc
// @Summary Get one assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} AssignmentResponse
// @Router /trainer/assignments/{assignmentId} [get]
// @Router /client/assignments/{assignmentId} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	assignmentID, ok := parseObjectIDParam(c, "assignmentId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.GetAssignment(c.Request.Context(), actor, assignmentID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve assignment")
		return
	}
	c.JSON(http.StatusOK, MapAssignmentToResponse(assignment, actor.Role))
}

// UpdateAssignmentStatus godoc
// @Summary Pause, resume, complete or cancel an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Param status body UpdateAssignmentStatusRequest true "New status"
// @Success 200 {object} AssignmentResponse
// @Failure 400 {object} gin.H "Transition not allowed"
// @Failure 409 {object} gin.H "Client already has another active assignment"
// @Router /trainer/assignments/{assignmentId}/status [patch]
func (h *AssignmentHandler) UpdateAssignmentStatus(c *gin.Context) {
	assignmentID, ok := parseObjectIDParam(c, "assignmentId")
	if !ok {
		return
	}
	var req UpdateAssignmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.UpdateStatus(c.Request.Context(), actor.ID, assignmentID, req.Status)
	if err != nil {
		respondWithServiceError(c, err, "update assignment status")
		return
	}
	c.JSON(http.StatusOK, MapAssignmentToResponse(assignment, actor.Role))
}

// UpdateAssignmentNotes godoc
// @Summary Change the client-visible or private notes of an assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Param notes body UpdateAssignmentNotesRequest true "Notes"
// @Success 200 {object} AssignmentResponse
// @Router /trainer/assignments/{assignmentId}/notes [patch]
func (h *AssignmentHandler) UpdateAssignmentNotes(c *gin.Context) {
	assignmentID, ok := parseObjectIDParam(c, "assignmentId")
	if !ok {
		return
	}
	var req UpdateAssignmentNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentService.UpdateNotes(c.Request.Context(), actor.ID, assignmentID, req.CustomNotes, req.TrainerNotes)
	if err != nil {
		respondWithServiceError(c, err, "update assignment notes")
		return
	}
	c.JSON(http.StatusOK, MapAssignmentToResponse(assignment, actor.Role))
}

// DeleteAssignment godoc
// @Summary Delete an assignment and its exercise instances
// @Tags Assignments
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Success 204 "Deleted"
// @Router /trainer/assignments/{assignmentId} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	assignmentID, ok := parseObjectIDParam(c, "assignmentId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.assignmentService.DeleteAssignment(c.Request.Context(), actor.ID, assignmentID); err != nil {
		respondWithServiceError(c, err, "delete assignment")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetWorkoutLogs godoc
// @Summary Workout logs recorded against an assignment, newest first
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Param limit query int false "Maximum number of logs"
// @Success 200 {array} domain.WorkoutLog
// @Router /trainer/assignments/{assignmentId}/workouts [get]
// @Router /client/assignments/{assignmentId}/workouts [get]
func (h *AssignmentHandler) GetWorkoutLogs(c *gin.Context) {
	assignmentID, ok := parseObjectIDParam(c, "assignmentId")
	if !ok {
		return
	}
	limit, ok := parseInt64Query(c, "limit")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	logs, err := h.workoutService.ListWorkoutLogs(c.Request.Context(), actor, assignmentID, limit)
	if err != nil {
		respondWithServiceError(c, err, "retrieve workout logs")
		return
	}
	if logs == nil {
		logs = []domain.WorkoutLog{}
	}
	c.JSON(http.StatusOK, logs)
}

// GetWorkoutSummary godoc
// @Summary Workout statistics of an assignment
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "Assignment ID"
// @Success 200 {object} progress.WorkoutSummary
// @Router /trainer/assignments/{assignmentId}/summary [get]
// @Router /client/assignments/{assignmentId}/summary [get]
func (h *AssignmentHandler) GetWorkoutSummary(c *gin.Context) {
	assignmentID, ok := parseObjectIDParam(c, "assignmentId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	summary, err := h.workoutService.WorkoutSummary(c.Request.Context(), actor, assignmentID)
	if err != nil {
		respondWithServiceError(c, err, "summarize workouts")
		return
	}
	c.JSON(http.StatusOK, summary)
}
