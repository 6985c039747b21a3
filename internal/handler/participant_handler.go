package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/models"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
	"github.com/noah-isme/program-cycles-api/pkg/response"
)

type participantService interface {
	List(ctx context.Context, req dto.ListParticipantsRequest) ([]models.Participant, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Participant, error)
}

type attendanceService interface {
	Toggle(ctx context.Context, participantID string, req dto.ToggleAttendanceRequest) (*dto.TransitionResult, error)
}

type progressionService interface {
	Reschedule(ctx context.Context, participantID string) (*dto.TransitionResult, error)
	Promote(ctx context.Context, participantID string, req dto.PromoteRequest) (*dto.TransitionResult, error)
	Drop(ctx context.Context, participantID string) (*dto.TransitionResult, error)
}

// ParticipantHandler exposes participant reads and lifecycle transitions.
// Declined transitions answer 200 with applied=false.
type ParticipantHandler struct {
	participants participantService
	attendance   attendanceService
	progression  progressionService
}

// NewParticipantHandler constructs the handler.
func NewParticipantHandler(participants participantService, attendance attendanceService, progression progressionService) *ParticipantHandler {
	return &ParticipantHandler{participants: participants, attendance: attendance, progression: progression}
}

// List godoc
// @Summary List participants
// @Tags Participants
// @Produce json
// @Param cycleId query string false "Cycle ID"
// @Param tier query string false "Current tier"
// @Param status query string false "ACTIVE, CONFLICT, GRADUATED or DROPPED"
// @Param q query string false "Name or email search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /participants [get]
func (h *ParticipantHandler) List(c *gin.Context) {
	var req dto.ListParticipantsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.participants.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get participant
// @Tags Participants
// @Produce json
// @Param id path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /participants/{id} [get]
func (h *ParticipantHandler) Get(c *gin.Context) {
	p, err := h.participants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, p, nil)
}

// ToggleAttendance godoc
// @Summary Toggle one attendance day
// @Tags Participants
// @Accept json
// @Produce json
// @Param id path string true "Participant ID"
// @Param payload body dto.ToggleAttendanceRequest true "Zero based day"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /participants/{id}/attendance [post]
func (h *ParticipantHandler) ToggleAttendance(c *gin.Context) {
	var req dto.ToggleAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	h.respond(c)(h.attendance.Toggle(c.Request.Context(), c.Param("id"), req))
}

// Reschedule godoc
// @Summary Reschedule a participant
// @Description Clears attendance and any conflict hold.
// @Tags Participants
// @Produce json
// @Param id path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /participants/{id}/reschedule [post]
func (h *ParticipantHandler) Reschedule(c *gin.Context) {
	h.respond(c)(h.progression.Reschedule(c.Request.Context(), c.Param("id")))
}

// Promote godoc
// @Summary Promote a graduate to the next tier
// @Tags Participants
// @Accept json
// @Produce json
// @Param id path string true "Participant ID"
// @Param payload body dto.PromoteRequest false "Optional target cycle"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /participants/{id}/promote [post]
func (h *ParticipantHandler) Promote(c *gin.Context) {
	var req dto.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid promote payload"))
		return
	}
	h.respond(c)(h.progression.Promote(c.Request.Context(), c.Param("id"), req))
}

// Drop godoc
// @Summary Drop a participant
// @Tags Participants
// @Produce json
// @Param id path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /participants/{id}/drop [post]
func (h *ParticipantHandler) Drop(c *gin.Context) {
	h.respond(c)(h.progression.Drop(c.Request.Context(), c.Param("id")))
}

func (h *ParticipantHandler) respond(c *gin.Context) func(*dto.TransitionResult, error) {
	return func(result *dto.TransitionResult, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	}
}
