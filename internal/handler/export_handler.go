package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
	"github.com/noah-isme/program-cycles-api/pkg/response"
)

type exportService interface {
	Roster(ctx context.Context, req dto.RosterExportRequest) (*dto.ExportFile, error)
}

// ExportHandler serves roster downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Roster godoc
// @Summary Download a cycle roster
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param cycleId query string true "Cycle ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/roster [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	var req dto.RosterExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	file, err := h.service.Roster(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}
