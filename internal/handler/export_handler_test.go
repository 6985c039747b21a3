package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	appErrors "github.com/noah-isme/program-cycles-api/pkg/errors"
)

type exportServiceMock struct {
	req dto.RosterExportRequest
	err error
}

func (m *exportServiceMock) Roster(_ context.Context, req dto.RosterExportRequest) (*dto.ExportFile, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ExportFile{Filename: "roster-c-1.csv", ContentType: "text/csv", Payload: []byte("PL,Name\n")}, nil
}

func TestExportHandlerRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/roster?cycleId=c-1&format=csv", nil)

	handler.Roster(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-1", svc.req.CycleID)
	assert.Equal(t, `attachment; filename="roster-c-1.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PL,Name\n", rec.Body.String())
}

func TestExportHandlerRosterMissingCycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "cycle not found")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/roster?cycleId=nope", nil)

	handler.Roster(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
