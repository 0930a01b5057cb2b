package notification

import (
	"meetsync/core/constants"
	"meetsync/core/database"
	"meetsync/core/jobs"
	"meetsync/core/middleware"
	"meetsync/modules/notification/controller"
	"meetsync/modules/notification/repository"
	"meetsync/modules/notification/router"
	"meetsync/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init initializes the notification module. The returned service is the
// Notifier the meeting and invitation modules fan out through. When a job
// server is provided the delivery handler is registered on it.
func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware, jobsClient *jobs.Client, jobsServer *jobs.Server) *service.NotificationService {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo, jobsClient)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Setup(e, mw)

	if jobsServer != nil {
		jobsServer.HandleFunc(constants.TaskNotificationDeliver, svc.HandleDeliverTask)
	}

	return svc
}
