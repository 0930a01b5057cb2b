package router

import (
	"meetsync/core/middleware"
	"meetsync/modules/invitation/controller"

	"github.com/labstack/echo/v4"
)

type InvitationRouter struct {
	controller *controller.InvitationController
}

func NewInvitationRouter(controller *controller.InvitationController) *InvitationRouter {
	return &InvitationRouter{
		controller: controller,
	}
}

func (r *InvitationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	// Share-link flow needs no account
	public := v1.Group("/public")
	public.GET("/join/:token", r.controller.GetJoinView)
	public.POST("/join/:token/respond", r.controller.Respond)

	private := v1.Group("/private")
	invitations := private.Group("/invitations", mw.AuthMiddleware())
	invitations.GET("", r.controller.GetPendingInvitations)
	invitations.GET("/count", r.controller.CountPending)

	private.POST("/meetings/:id/invite", r.controller.InviteParticipants, mw.AuthMiddleware())
}
