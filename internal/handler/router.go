package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler mounted under the API prefix.
type Handlers struct {
	Registrations *RegistrationHandler
	Participants  *ParticipantHandler
	Cycles        *CycleHandler
	Dashboard     *DashboardHandler
	Exports       *ExportHandler
}

// Register mounts the program routes on group.
func (h Handlers) Register(group *gin.RouterGroup) {
	registrations := group.Group("/registrations")
	registrations.POST("", h.Registrations.Submit)
	registrations.GET("", h.Registrations.List)
	registrations.GET("/:id", h.Registrations.Get)
	registrations.POST("/:id/approve", h.Registrations.Approve)
	registrations.POST("/:id/reject", h.Registrations.Reject)
	registrations.POST("/:id/confirm-payment", h.Registrations.ConfirmPayment)

	participants := group.Group("/participants")
	participants.GET("", h.Participants.List)
	participants.GET("/:id", h.Participants.Get)
	participants.POST("/:id/attendance", h.Participants.ToggleAttendance)
	participants.POST("/:id/reschedule", h.Participants.Reschedule)
	participants.POST("/:id/promote", h.Participants.Promote)
	participants.POST("/:id/drop", h.Participants.Drop)

	cycles := group.Group("/cycles")
	cycles.POST("", h.Cycles.Create)
	cycles.POST("/import", h.Cycles.Import)
	cycles.GET("", h.Cycles.List)
	cycles.GET("/:id", h.Cycles.Get)
	group.GET("/packages", h.Cycles.Packages)

	group.GET("/dashboard", h.Dashboard.Overview)
	group.GET("/exports/roster", h.Exports.Roster)
}
