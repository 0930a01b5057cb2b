package router

import (
	"meetsync/core/middleware"
	"meetsync/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		controller: controller,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	private := v1.Group("/private")

	calendar := private.Group("/calendar", mw.AuthMiddleware())
	calendar.POST("/connect", r.controller.Connect)
	calendar.GET("/connections", r.controller.GetConnections)
	calendar.DELETE("/connections/:provider", r.controller.Disconnect)
	calendar.GET("/free-busy", r.controller.GetFreeBusy)
}
