package meeting

import (
	"meetsync/core/database"
	"meetsync/core/middleware"
	"meetsync/modules/meeting/controller"
	"meetsync/modules/meeting/repository"
	"meetsync/modules/meeting/router"
	"meetsync/modules/meeting/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the meeting module and registers routes. The calendar,
// inviter and notifier collaborators come from their own modules; any of them
// may be nil and the service degrades gracefully.
func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware, calendar service.CalendarProvider, inviter service.Inviter, uninviter service.Uninviter, notifier service.Notifier) service.MeetingServiceInterface {
	repo := repository.NewMeetingRepository(db)
	svc := service.NewMeetingService(repo, calendar, inviter, uninviter, notifier)
	ctrl := controller.NewMeetingController(svc)
	rtr := router.NewMeetingRouter(ctrl)

	rtr.Setup(e, mw)
	return svc
}
