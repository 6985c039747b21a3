package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/program-cycles-api/internal/dto"
	"github.com/noah-isme/program-cycles-api/internal/middleware"
	"github.com/noah-isme/program-cycles-api/internal/models"
)

func TestHandlersRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lifecycle := &lifecycleServiceMock{result: &dto.TransitionResult{Applied: true}}
	handlers := Handlers{
		Registrations: NewRegistrationHandler(&registrationServiceMock{review: &dto.ReviewResult{Applied: true}}, &enrollmentServiceMock{}),
		Participants:  newParticipantHandler(lifecycle),
		Cycles:        NewCycleHandler(&cycleServiceMock{}),
		Dashboard:     NewDashboardHandler(&fakeDashboardSrv{overview: &dto.ProgramOverview{OpenCycles: []models.CycleView{}}}),
		Exports:       NewExportHandler(&exportServiceMock{}),
	}
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	handlers.Register(r.Group("/api/v1"))

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/v1/registrations/r-1/approve", http.StatusOK},
		{http.MethodPost, "/api/v1/participants/p-1/reschedule", http.StatusOK},
		{http.MethodPost, "/api/v1/participants/p-1/drop", http.StatusOK},
		{http.MethodGet, "/api/v1/packages", http.StatusOK},
		{http.MethodGet, "/api/v1/dashboard", http.StatusOK},
		{http.MethodGet, "/api/v1/exports/roster?cycleId=c-1", http.StatusOK},
		{http.MethodGet, "/api/v1/participants/p-9", http.StatusNotFound},
		{http.MethodDelete, "/api/v1/cycles/c-1", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}
	assert.Equal(t, []string{"reschedule", "drop"}, lifecycle.calls)
}
