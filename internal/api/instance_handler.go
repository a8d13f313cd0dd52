package api

import (
	"net/http"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// InstanceHandler serves exercise instances and their form-check videos.
type InstanceHandler struct {
	trackingService service.TrackingService
	clientService   service.ClientService
}

func NewInstanceHandler(trackingService service.TrackingService, clientService service.ClientService) *InstanceHandler {
	return &InstanceHandler{
		trackingService: trackingService,
		clientService:   clientService,
	}
}

// --- DTOs ---

// UpdateInstanceStatusRequest moves an instance to a new status. Optional
// fields left out keep their stored value.
type UpdateInstanceStatusRequest struct {
	Status               domain.InstanceStatus `json:"status" binding:"required"`
	ClientFeedback       *string               `json:"clientFeedback"`
	CompletionPercentage *int                  `json:"completionPercentage"`
	ActualSetsCompleted  *int                  `json:"actualSetsCompleted"`
}

type TrainerFeedbackRequest struct {
	Feedback string `json:"feedback" binding:"required"`
}

type RequestUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"` // e.g. "video/mp4"
}

// ConfirmUploadRequest reports a finished upload back to the API.
type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,gt=0"`
	ContentType string `json:"contentType" binding:"required"`
}

type VideoDownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// --- Handler Methods ---

// ListInstances godoc
// @Summary List exercise instances
// @Description Clients see their own instances, trainers the ones of their assignments.
// @Tags Instances
// @Produce json
// @Security BearerAuth
// @Param assignmentId query string false "Filter by assignment"
// @Param clientId query string false "Filter by client (trainers only)"
// @Param status query string false "Filter by status"
// @Param from query string false "Due on or after (YYYY-MM-DD)"
// @Param to query string false "Due before (YYYY-MM-DD)"
// @Success 200 {array} domain.ExerciseInstance
// @Router /trainer/instances [get]
// @Router /client/instances [get]
func (h *InstanceHandler) ListInstances(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	assignmentID, ok := parseOptionalObjectIDQuery(c, "assignmentId")
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

	instances, err := h.trackingService.ListInstances(c.Request.Context(), actor, service.InstanceQuery{
		AssignmentID: assignmentID,
		ClientID:     clientID,
		Status:       domain.InstanceStatus(c.Query("status")),
		DueFrom:      from,
		DueTo:        to,
	})
	if err != nil {
		respondWithServiceError(c, err, "retrieve exercise instances")
		return
	}
	if instances == nil {
		instances = []domain.ExerciseInstance{}
	}
	c.JSON(http.StatusOK, instances)
}

// GetInstance godoc
// @Summary Get one exercise instance
// @Tags Instances
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "Instance ID"
// @Success 200 {object} domain.ExerciseInstance
// @Router /trainer/instances/{instanceId} [get]
// @Router /client/instances/{instanceId} [get]
func (h *InstanceHandler) GetInstance(c *gin.Context) {
	instanceID, ok := parseObjectIDParam(c, "instanceId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	inst, err := h.trackingService.GetInstance(c.Request.Context(), actor, instanceID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve exercise instance")
		return
	}
	c.JSON(http.StatusOK, inst)
}

// UpdateInstanceStatus godoc
// @Summary Update the status of an exercise instance
// @Description Completing an instance sets its completion to 100 and may complete the assignment.
// @Tags Instances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "Instance ID"
// @Param update body UpdateInstanceStatusRequest true "Status update"
// @Success 200 {object} domain.ExerciseInstance
// @Failure 400 {object} gin.H "Invalid status, transition or percentage"
// @Router /client/instances/{instanceId}/status [patch]
// @Router /trainer/instances/{instanceId}/status [patch]
func (h *InstanceHandler) UpdateInstanceStatus(c *gin.Context) {
	instanceID, ok := parseObjectIDParam(c, "instanceId")
	if !ok {
		return
	}
	var req UpdateInstanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	inst, err := h.trackingService.UpdateInstanceStatus(c.Request.Context(), actor, instanceID, domain.StatusUpdate{
		Status:               req.Status,
		ClientFeedback:       req.ClientFeedback,
		CompletionPercentage: req.CompletionPercentage,
		ActualSetsCompleted:  req.ActualSetsCompleted,
	})
	if err != nil {
		respondWithServiceError(c, err, "update exercise instance")
		return
	}
	c.JSON(http.StatusOK, inst)
}

// SubmitTrainerFeedback godoc
// @Summary Leave trainer feedback on an exercise instance
// @Tags Instances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "Instance ID"
// @Param feedback body TrainerFeedbackRequest true "Feedback"
// @Success 200 {object} domain.ExerciseInstance
// @Router /trainer/instances/{instanceId}/feedback [put]
func (h *InstanceHandler) SubmitTrainerFeedback(c *gin.Context) {
	instanceID, ok := parseObjectIDParam(c, "instanceId")
	if !ok {
		return
	}
	var req TrainerFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	inst, err := h.trackingService.SetTrainerFeedback(c.Request.Context(), actor.ID, instanceID, req.Feedback)
	if err != nil {
		respondWithServiceError(c, err, "save feedback")
		return
	}
	c.JSON(http.StatusOK, inst)
}

// RequestUploadURL godoc
// @Summary Get a presigned URL to upload a form-check video
// @Tags Uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "Instance ID"
// @Param request body RequestUploadURLRequest true "Video content type"
// @Success 200 {object} service.UploadURLResponse
// @Router /client/instances/{instanceId}/upload-url [post]
func (h *InstanceHandler) RequestUploadURL(c *gin.Context) {
	instanceID, ok := parseObjectIDParam(c, "instanceId")
	if !ok {
		return
	}
	var req RequestUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	resp, err := h.clientService.RequestUploadURL(c.Request.Context(), actor.ID, instanceID, req.ContentType)
	if err != nil {
		respondWithServiceError(c, err, "generate upload URL")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmUpload godoc
// @Summary Confirm a finished video upload
// @Tags Uploads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "Instance ID"
// @Param request body ConfirmUploadRequest true "Upload details"
// @Success 200 {object} domain.ExerciseInstance
// @Router /client/instances/{instanceId}/upload-confirm [post]
func (h *InstanceHandler) ConfirmUpload(c *gin.Context) {
	instanceID, ok := parseObjectIDParam(c, "instanceId")
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	inst, err := h.clientService.ConfirmUpload(c.Request.Context(), actor.ID, instanceID, req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		respondWithServiceError(c, err, "confirm upload")
		return
	}
	c.JSON(http.StatusOK, inst)
}

// GetVideoDownloadURL godoc
// @Summary Get a presigned URL to watch the instance's video
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param instanceId path string true "Instance ID"
// @Success 200 {object} VideoDownloadURLResponse
// @Failure 404 {object} gin.H "No video uploaded"
// @Router /client/instances/{instanceId}/video [get]
// @Router /trainer/instances/{instanceId}/video [get]
func (h *InstanceHandler) GetVideoDownloadURL(c *gin.Context) {
	instanceID, ok := parseObjectIDParam(c, "instanceId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	url, err := h.clientService.GetVideoDownloadURL(c.Request.Context(), actor, instanceID)
	if err != nil {
		respondWithServiceError(c, err, "generate download URL")
		return
	}
	c.JSON(http.StatusOK, VideoDownloadURLResponse{DownloadURL: url})
}
