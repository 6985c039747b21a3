package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/models"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
	"github.com/noah-isme/program-cycles-api/pkg/response"
)

type registrationService interface {
	Submit(ctx context.Context, req dto.SubmitRegistrationRequest) (*models.Registration, error)
	List(ctx context.Context, req dto.ListRegistrationsRequest) ([]models.Registration, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Registration, error)
	Approve(ctx context.Context, id string) (*dto.ReviewResult, error)
	Reject(ctx context.Context, id string) (*dto.ReviewResult, error)
}

type enrollmentService interface {
	ConfirmPayment(ctx context.Context, registrationID string, req dto.ConfirmPaymentRequest) (*dto.EnrollmentResult, error)
}

// RegistrationHandler exposes the admission workflow.
type RegistrationHandler struct {
	registrations registrationService
	enrollments   enrollmentService
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(registrations registrationService, enrollments enrollmentService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, enrollments: enrollments}
}

// Submit godoc
// @Summary Submit a registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.SubmitRegistrationRequest true "Application form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.SubmitRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	reg, err := h.registrations.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param status query string false "PENDING_REVIEW or PENDING_PAYMENT"
// @Param q query string false "Name or email search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	var req dto.ListRegistrationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.registrations.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Approve godoc
// @Summary Approve a registration for payment
// @Description A registration that is not pending review is returned unchanged with applied=false.
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id}/approve [post]
func (h *RegistrationHandler) Approve(c *gin.Context) {
	result, err := h.registrations.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject a registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /registrations/{id}/reject [post]
func (h *RegistrationHandler) Reject(c *gin.Context) {
	result, err := h.registrations.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ConfirmPayment godoc
// @Summary Confirm payment and enroll
// @Description Converts a paid registration into a participant of the given cycle.
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body dto.ConfirmPaymentRequest true "Target cycle"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "declined, registration unchanged"
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations/{id}/confirm-payment [post]
func (h *RegistrationHandler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	result, err := h.enrollments.ConfirmPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Applied {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}
