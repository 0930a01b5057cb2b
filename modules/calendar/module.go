package calendar

import (
	"meetsync/core/cache"
	"meetsync/core/database"
	"meetsync/core/middleware"
	"meetsync/modules/calendar/controller"
	"meetsync/modules/calendar/repository"
	"meetsync/modules/calendar/router"
	"meetsync/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the calendar module and returns the service so the meeting
// module can use it as its CalendarProvider.
func Init(e *echo.Echo, db database.Database, c cache.Cache, mw *middleware.Middleware) service.CalendarService {
	repo := repository.NewCalendarRepository(db)
	svc := service.NewCalendarService(repo, c)
	ctrl := controller.NewCalendarController(svc)
	rtr := router.NewCalendarRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
