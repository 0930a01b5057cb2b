package router

import (
	"meetsync/core/middleware"
	"meetsync/modules/meeting/controller"

	"github.com/labstack/echo/v4"
)

// MeetingRouter handles meeting routes
type MeetingRouter struct {
	MeetingController *controller.MeetingController
}

// NewMeetingRouter creates a new router
func NewMeetingRouter(meetingController *controller.MeetingController) *MeetingRouter {
	return &MeetingRouter{
		MeetingController: meetingController,
	}
}

// Setup registers meeting routes
func (r *MeetingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	privateRoutes := v1.Group("/private")

	meetingRoutes := privateRoutes.Group("/meetings", mw.AuthMiddleware())

	meetingRoutes.POST("", r.MeetingController.CreateMeeting)
	meetingRoutes.GET("", r.MeetingController.GetMeetings)
	meetingRoutes.GET("/:id", r.MeetingController.GetMeeting)

	// Slot pipeline and lifecycle
	meetingRoutes.POST("/:id/find-slots", r.MeetingController.FindSlots)
	meetingRoutes.POST("/:id/availability", r.MeetingController.SubmitAvailability)
	meetingRoutes.POST("/:id/schedule", r.MeetingController.Schedule)
	meetingRoutes.POST("/:id/cancel", r.MeetingController.Cancel)

	meetingRoutes.DELETE("/:id/participants/:email", r.MeetingController.RemoveParticipant)
}
