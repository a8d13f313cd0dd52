package api

import (
	"net/http"

	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// TrainerHandler serves the trainer's client roster.
type TrainerHandler struct {
	trainerService  service.TrainerService
	progressService service.ProgressService
}

func NewTrainerHandler(trainerService service.TrainerService, progressService service.ProgressService) *TrainerHandler {
	return &TrainerHandler{
		trainerService:  trainerService,
		progressService: progressService,
	}
}

// --- DTOs for Client Management ---
type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

// --- Handler Methods for Client Management ---

// AddClientByEmail godoc
// @Summary Add a client to the trainer's roster by email
// @Description Associates an existing client user with the authenticated trainer.
// @Tags Trainer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse "Client successfully added/associated"
// @Failure 400 {object} gin.H "Invalid input, or the user is not a client"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 409 {object} gin.H "Client already has a trainer"
// @Router /trainer/clients [post]
func (h *TrainerHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	client, err := h.trainerService.AddClientByEmail(c.Request.Context(), actor.ID, req.ClientEmail)
	if err != nil {
		respondWithServiceError(c, err, "add client")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients godoc
// @Summary Get clients managed by the trainer
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse "List of managed clients"
// @Router /trainer/clients [get]
func (h *TrainerHandler) GetManagedClients(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	clients, err := h.trainerService.GetManagedClients(c.Request.Context(), actor.ID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve clients")
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// GetClientDashboard godoc
// @Summary Dashboard of one managed client
// @Tags Trainer
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {object} service.ClientDashboard
// @Failure 403 {object} gin.H "Client not managed by this trainer"
// @Router /trainer/clients/{clientId}/dashboard [get]
func (h *TrainerHandler) GetClientDashboard(c *gin.Context) {
	clientID, ok := parseObjectIDParam(c, "clientId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	dashboard, err := h.progressService.TrainerClientDashboard(c.Request.Context(), actor.ID, clientID)
	if err != nil {
		respondWithServiceError(c, err, "build client dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
