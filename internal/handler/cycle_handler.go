package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/program-cycles-api/internal/catalog"
	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/models"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
	"github.com/noah-isme/program-cycles-api/pkg/response"
)

type cycleService interface {
	Create(ctx context.Context, req dto.CreateCycleRequest) (*models.Cycle, error)
	Import(ctx context.Context, entries []dto.CreateCycleRequest) (*dto.CatalogImportResult, error)
	List(ctx context.Context, req dto.ListCyclesRequest) ([]models.CycleView, error)
	Get(ctx context.Context, id string) (*models.CycleView, error)
	Packages() []dto.PackageOptionView
}

// CycleHandler exposes the cycle calendar.
type CycleHandler struct {
	service cycleService
}

// NewCycleHandler constructs the handler.
func NewCycleHandler(service cycleService) *CycleHandler {
	return &CycleHandler{service: service}
}

// Create godoc
// @Summary Schedule a cycle
// @Tags Cycles
// @Accept json
// @Produce json
// @Param payload body dto.CreateCycleRequest true "Cycle"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /cycles [post]
func (h *CycleHandler) Create(c *gin.Context) {
	var req dto.CreateCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid cycle payload"))
		return
	}
	cycle, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cycle)
}

// Import godoc
// @Summary Import a cycle catalog
// @Description Accepts a YAML catalog (application/x-yaml) or the same document as JSON. Entries are upserted by ID.
// @Tags Cycles
// @Accept json
// @Accept application/x-yaml
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cycles/import [post]
func (h *CycleHandler) Import(c *gin.Context) {
	var entries []dto.CreateCycleRequest
	if strings.Contains(c.ContentType(), "yaml") {
		loaded, err := catalog.Load(c.Request.Body)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
			return
		}
		entries = loaded
	} else {
		var file catalog.File
		if err := c.ShouldBindJSON(&file); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid catalog payload"))
			return
		}
		entries = file.Cycles
	}
	if len(entries) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "catalog has no cycles"))
		return
	}
	result, err := h.service.Import(c.Request.Context(), entries)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List cycles
// @Tags Cycles
// @Produce json
// @Param q query string false "Free text: date, month, level"
// @Param level query string false "Tier"
// @Param status query string false "UPCOMING, IN_PROGRESS or COMPLETED"
// @Param from query string false "Start on or after (YYYY-MM-DD)"
// @Param to query string false "Start on or before (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /cycles [get]
func (h *CycleHandler) List(c *gin.Context) {
	var req dto.ListCyclesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	views, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil, map[string]interface{}{"total": len(views)})
}

// Get godoc
// @Summary Get cycle
// @Tags Cycles
// @Produce json
// @Param id path string true "Cycle ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cycles/{id} [get]
func (h *CycleHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Packages godoc
// @Summary List purchasable packages
// @Tags Cycles
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /packages [get]
func (h *CycleHandler) Packages(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Packages(), nil)
}
