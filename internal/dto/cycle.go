package dto

import "github.com/noah-isme/program-cycles-api/internal/models"

// CreateCycleRequest schedules a new cycle. StartDate is YYYY-MM-DD and must be a Thursday.
type CreateCycleRequest struct {
	ID        string `json:"id" yaml:"id"`
	StartDate string `json:"startDate" yaml:"startDate" validate:"required,datetime=2006-01-02"`
	Level     string `json:"level" yaml:"level" validate:"required,tier"`
	Capacity  int    `json:"capacity" yaml:"capacity" validate:"gte=0"`
}

// ListCyclesRequest filters the calendar.
type ListCyclesRequest struct {
	Search string `form:"q"`
	Level  string `form:"level"`
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
}

// CatalogImportResult summarises a catalog import.
type CatalogImportResult struct {
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Cycles  []models.Cycle `json:"cycles"`
}
