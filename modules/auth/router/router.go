package router

import (
	"meetsync/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(controller *controller.AuthController) *AuthRouter {
	return &AuthRouter{
		controller: controller,
	}
}

func (r *AuthRouter) Setup(e *echo.Echo) {
	auth := e.Group("/api/v1/public/auth")
	auth.POST("/register", r.controller.Register)
	auth.POST("/login", r.controller.Login)
	auth.GET("/google/url", r.controller.GetGoogleAuthURL)
	auth.POST("/google/callback", r.controller.GoogleCallback)
}
