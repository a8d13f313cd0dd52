package api

import (
	"net/http"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgramHandler serves the trainer's program templates.
type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// ProgramRequest is the JSON body for creating or replacing a program template.
type ProgramRequest struct {
	Name            string                  `json:"name" binding:"required"`
	Description     string                  `json:"description"`
	ProgramType     string                  `json:"programType"`
	Difficulty      string                  `json:"difficulty"`
	DurationWeeks   int                     `json:"durationWeeks" binding:"min=0"`
	SessionsPerWeek int                     `json:"sessionsPerWeek" binding:"min=0"`
	Days            []domain.WorkoutDaySpec `json:"days" binding:"required"`
}

func (r ProgramRequest) toInput() service.ProgramInput {
	return service.ProgramInput{
		Name:            r.Name,
		Description:     r.Description,
		ProgramType:     r.ProgramType,
		Difficulty:      r.Difficulty,
		DurationWeeks:   r.DurationWeeks,
		SessionsPerWeek: r.SessionsPerWeek,
		Days:            r.Days,
	}
}

// CreateProgram godoc
// @Summary Create a program template
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param program body ProgramRequest true "Program template"
// @Success 201 {object} domain.ProgramTemplate
// @Failure 400 {object} gin.H "Invalid template"
// @Failure 403 {object} gin.H "Template references another trainer's exercise"
// @Router /trainer/programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	program, err := h.programService.CreateProgram(c.Request.Context(), actor.ID, req.toInput())
	if err != nil {
		respondWithServiceError(c, err, "create program")
		return
	}
	c.JSON(http.StatusCreated, program)
}

// GetPrograms godoc
// @Summary List the trainer's program templates
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ProgramTemplate
// @Router /trainer/programs [get]
func (h *ProgramHandler) GetPrograms(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	programs, err := h.programService.GetProgramsByTrainer(c.Request.Context(), actor.ID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve programs")
		return
	}
	if programs == nil {
		programs = []domain.ProgramTemplate{}
	}
	c.JSON(http.StatusOK, programs)
}

// GetProgram godoc
// @Summary Get one program template
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} domain.ProgramTemplate
// @Failure 404 {object} gin.H "Program not found"
// @Router /trainer/programs/{programId} [get]
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	program, err := h.programService.GetProgram(c.Request.Context(), actor.ID, programID)
	if err != nil {
		respondWithServiceError(c, err, "retrieve program")
		return
	}
	c.JSON(http.StatusOK, program)
}

// UpdateProgram godoc
// @Summary Replace a program template
// @Description Existing assignments keep the exercise instances they were expanded with.
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param program body ProgramRequest true "Program template"
// @Success 200 {object} domain.ProgramTemplate
// @Router /trainer/programs/{programId} [put]
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	program, err := h.programService.UpdateProgram(c.Request.Context(), actor.ID, programID, req.toInput())
	if err != nil {
		respondWithServiceError(c, err, "update program")
		return
	}
	c.JSON(http.StatusOK, program)
}

// DuplicateProgram godoc
// @Summary Copy a program template under a new name
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 201 {object} domain.ProgramTemplate
// @Router /trainer/programs/{programId}/duplicate [post]
func (h *ProgramHandler) DuplicateProgram(c *gin.Context) {
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	program, err := h.programService.DuplicateProgram(c.Request.Context(), actor.ID, programID)
	if err != nil {
		respondWithServiceError(c, err, "duplicate program")
		return
	}
	c.JSON(http.StatusCreated, program)
}

// DeleteProgram godoc
// @Summary Delete a program template
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 204 "Deleted"
// @Router /trainer/programs/{programId} [delete]
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	if err := h.programService.DeleteProgram(c.Request.Context(), actor.ID, programID); err != nil {
		respondWithServiceError(c, err, "delete program")
		return
	}
	c.Status(http.StatusNoContent)
}
