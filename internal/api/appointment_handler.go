package api

import (
	"fmt"
	"net/http"
	"time"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// ScheduleAppointmentRequest books a session. Times are RFC 3339.
type ScheduleAppointmentRequest struct {
	ClientID    string                   `json:"clientId" binding:"required"`
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	Type        string                   `json:"type" binding:"required"`
	Status      domain.AppointmentStatus `json:"status"`
	StartTime   time.Time                `json:"startTime" binding:"required"`
	EndTime     time.Time                `json:"endTime" binding:"required"`
	Location    string                   `json:"location"`
	Notes       string                   `json:"notes"`
}

// RescheduleAppointmentRequest changes the fields that are present.
type RescheduleAppointmentRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Type        *string    `json:"type"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Location    *string    `json:"location"`
	Notes       *string    `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status domain.AppointmentStatus `json:"status" binding:"required"`
}

type AppointmentResponse struct {
	ID              string                   `json:"id"`
	TrainerID       string                   `json:"trainerId"`
	ClientID        string                   `json:"clientId"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description,omitempty"`
	Type            string                   `json:"type"`
	Status          domain.AppointmentStatus `json:"status"`
	StartTime       time.Time                `json:"startTime"`
	EndTime         time.Time                `json:"endTime"`
	DurationMinutes int                      `json:"durationMinutes"`
	Location        string                   `json:"location,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func MapAppointmentToResponse(a *domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID.Hex(),
		TrainerID:       a.TrainerID.Hex(),
		ClientID:        a.ClientID.Hex(),
		Title:           a.Title,
		Description:     a.Description,
		Type:            a.Type,
		Status:          a.Status,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		DurationMinutes: a.DurationMinutes(),
		Location:        a.Location,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func MapAppointmentsToResponse(list []domain.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, len(list))
	for i := range list {
		out[i] = MapAppointmentToResponse(&list[i])
	}
	return out
}

// ScheduleAppointment godoc
// @Summary Book a session with a managed client
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param appointment body ScheduleAppointmentRequest true "Appointment"
// @Success 201 {object} AppointmentResponse
// @Failure 409 {object} gin.H "Trainer already booked at that time"
// @Router /trainer/appointments [post]
func (h *AppointmentHandler) ScheduleAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req ScheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid clientId format.")
		return
	}

	a, err := h.appointmentService.Schedule(c.Request.Context(), actor.ID, service.AppointmentInput{
		ClientID:    clientID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithServiceError(c, err, "schedule appointment")
		return
	}
	c.JSON(http.StatusCreated, MapAppointmentToResponse(a))
}

// ListAppointments serves both roles: trainers may filter by client, clients
// always see their own. from and to are inclusive days.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	clientID, ok := parseOptionalObjectIDQuery(c, "clientId")
	if !ok {
		return
	}
	from, ok := parseOptionalDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseOptionalDateQuery(c, "to")
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

	list, err := h.appointmentService.ListAppointments(c.Request.Context(), actor, service.AppointmentQuery{
		ClientID: clientID,
		Status:   domain.AppointmentStatus(c.Query("status")),
		From:     from,
		To:       to,
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		respondWithServiceError(c, err, "retrieve appointments")
		return
	}
	c.JSON(http.StatusOK, MapAppointmentsToResponse(list))
}

func (h *AppointmentHandler) GetTodayAppointments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	list, err := h.appointmentService.Today(c.Request.Context(), actor.ID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve today's appointments")
		return
	}
	c.JSON(http.StatusOK, MapAppointmentsToResponse(list))
}

func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := parseObjectIDParam(c, "appointmentId")
	if !ok {
		return
	}
	a, err := h.appointmentService.GetAppointment(c.Request.Context(), actor, id)
	if err != nil {
		respondWithServiceError(c, err, "retrieve appointment")
		return
	}
	c.JSON(http.StatusOK, MapAppointmentToResponse(a))
}

func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := parseObjectIDParam(c, "appointmentId")
	if !ok {
		return
	}
	var req RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	a, err := h.appointmentService.Reschedule(c.Request.Context(), actor.ID, id, service.AppointmentPatch{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithServiceError(c, err, "update appointment")
		return
	}
	c.JSON(http.StatusOK, MapAppointmentToResponse(a))
}

func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := parseObjectIDParam(c, "appointmentId")
	if !ok {
		return
	}
	var req UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	a, err := h.appointmentService.UpdateStatus(c.Request.Context(), actor.ID, id, req.Status)
	if err != nil {
		respondWithServiceError(c, err, "update appointment status")
		return
	}
	c.JSON(http.StatusOK, MapAppointmentToResponse(a))
}

func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := parseObjectIDParam(c, "appointmentId")
	if !ok {
		return
	}
	if err := h.appointmentService.DeleteAppointment(c.Request.Context(), actor.ID, id); err != nil {
		respondWithServiceError(c, err, "delete appointment")
		return
	}
	c.Status(http.StatusNoContent)
}
