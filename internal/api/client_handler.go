package api

import (
	"net/http"
	"time"

	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientHandler serves the client's own dashboard, schedule and workout log.
type ClientHandler struct {
	progressService service.ProgressService
	trackingService service.TrackingService
	workoutService  service.WorkoutService
}

func NewClientHandler(
	progressService service.ProgressService,
	trackingService service.TrackingService,
	workoutService service.WorkoutService,
) *ClientHandler {
	return &ClientHandler{
		progressService: progressService,
		trackingService: trackingService,
		workoutService:  workoutService,
	}
}

// LogWorkoutRequest records one workout session. WorkoutDate defaults to now.
type LogWorkoutRequest struct {
	AssignmentID      string     `json:"assignmentId" binding:"required"`
	WorkoutDate       *time.Time `json:"workoutDate"`
	DayNumber         int        `json:"dayNumber" binding:"required,min=1"`
	WorkoutName       string     `json:"workoutName"`
	DurationMinutes   *int       `json:"durationMinutes"`
	PerceivedExertion *int       `json:"perceivedExertion"`
	Notes             string     `json:"notes"`
	Completed         bool       `json:"completed"`
	Skipped           bool       `json:"skipped"`
	SkipReason        string     `json:"skipReason"`
}

// GetDashboard godoc
// @Summary The authenticated client's dashboard
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ClientDashboard
// @Router /client/dashboard [get]
func (h *ClientHandler) GetDashboard(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	dashboard, err := h.progressService.ClientDashboard(c.Request.Context(), actor.ID)
	if err != nil {
		respondWithServiceError(c, err, "build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// GetWeeklySchedule godoc
// @Summary The client's Monday-to-Sunday exercise plan
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Param week query string false "Any date inside the wanted week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} service.WeeklySchedule
// @Router /client/schedule [get]
func (h *ClientHandler) GetWeeklySchedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	weekOf, ok := parseOptionalDateQuery(c, "week")
	if !ok {
		return
	}

	schedule, err := h.trackingService.WeeklySchedule(c.Request.Context(), actor.ID, weekOf)
	if err != nil {
		respondWithServiceError(c, err, "build schedule")
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// LogWorkout godoc
// @Summary Record a workout session
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param workout body LogWorkoutRequest true "Workout session"
// @Success 201 {object} domain.WorkoutLog
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Assignment belongs to another client"
// @Router /client/workouts [post]
func (h *ClientHandler) LogWorkout(c *gin.Context) {
	var req LogWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	assignmentID, err := primitive.ObjectIDFromHex(req.AssignmentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid assignmentId format.")
		return
	}

	workoutLog, err := h.workoutService.LogWorkout(c.Request.Context(), actor.ID, service.LogWorkoutRequest{
		AssignmentID:      assignmentID,
		WorkoutDate:       req.WorkoutDate,
		DayNumber:         req.DayNumber,
		WorkoutName:       req.WorkoutName,
		DurationMinutes:   req.DurationMinutes,
		PerceivedExertion: req.PerceivedExertion,
		Notes:             req.Notes,
		Completed:         req.Completed,
		Skipped:           req.Skipped,
		SkipReason:        req.SkipReason,
	})
	if err != nil {
		respondWithServiceError(c, err, "log workout")
		return
	}
	c.JSON(http.StatusCreated, workoutLog)
}
