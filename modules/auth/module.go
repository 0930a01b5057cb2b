package auth

import (
	"meetsync/core/cache"
	"meetsync/core/database"
	"meetsync/modules/auth/controller"
	"meetsync/modules/auth/repository"
	"meetsync/modules/auth/router"
	"meetsync/modules/auth/service"
	calendarService "meetsync/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the auth module. The calendar service is passed in so the
// Google OAuth callback can store the user's calendar connection.
func Init(e *echo.Echo, db database.Database, c cache.Cache, calendar calendarService.CalendarService) service.AuthServiceInterface {
	repo := repository.NewAuthRepository(db)
	svc := service.NewAuthService(repo, c, calendar)
	ctrl := controller.NewAuthController(svc)
	rtr := router.NewAuthRouter(ctrl)

	rtr.Setup(e)

	return svc
}
