package invitation

import (
	"meetsync/core/database"
	"meetsync/core/middleware"
	"meetsync/modules/invitation/controller"
	"meetsync/modules/invitation/repository"
	"meetsync/modules/invitation/router"
	"meetsync/modules/invitation/service"
	meetingRepo "meetsync/modules/meeting/repository"

	"github.com/labstack/echo/v4"
)

// Init initializes the invitation module and returns the service so the
// meeting module can use it as its Inviter.
func Init(e *echo.Echo, db database.Database, mw *middleware.Middleware, notifier service.Notifier) *service.InvitationService {
	repo := repository.NewInvitationRepository(db)
	meetings := meetingRepo.NewMeetingRepository(db)
	svc := service.NewInvitationService(repo, meetings, notifier)
	ctrl := controller.NewInvitationController(svc)
	rtr := router.NewInvitationRouter(ctrl)

	rtr.Setup(e, mw)

	return svc
}
