package controller

import (
	"time"

	"meetsync/core/constants"
	"meetsync/core/controller"
	"meetsync/core/errors"
	"meetsync/core/utils"
	"meetsync/modules/calendar/dto"
	"meetsync/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	controller.BaseController
	service service.CalendarService
}

func NewCalendarController(service service.CalendarService) *CalendarController {
	return &CalendarController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *CalendarController) getClaimsFromContext(ctx echo.Context) (*utils.TokenClaims, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}
	return claims, nil
}

// Connect handles POST /calendar/connect
// @Summary Connect Google Calendar
// @Description Save the caller's Google Calendar tokens
// @Tags Calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ConnectRequest true "Provider tokens"
// @Success 200 {object} dto.CalendarConnectionResponse
// @Failure 400 {object} errors.AppError
// @Router /private/calendar/connect [post]
func (c *CalendarController) Connect(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.ConnectRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	expiresAt := time.Now().Add(time.Hour)
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "Invalid expires_at, expected RFC3339")
		}
		expiresAt = parsed
	}

	conn, appErr := c.service.SaveGoogleConnection(ctx.Request().Context(), claims.Email, req.AccessToken, req.RefreshToken, expiresAt, req.Email)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, dto.CalendarConnectionResponse{
		ID:            conn.ID.String(),
		Provider:      conn.Provider,
		CalendarEmail: conn.CalendarEmail,
		IsActive:      conn.IsActive,
		ConnectedAt:   conn.CreatedAt.Format(time.RFC3339),
	}, "Calendar connected")
}

// GetConnections handles GET /calendar/connections
// @Summary List calendar connections
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.CalendarConnectionResponse
// @Router /private/calendar/connections [get]
func (c *CalendarController) GetConnections(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.service.GetConnections(ctx.Request().Context(), claims.Email)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// Disconnect handles DELETE /calendar/connections/:provider
// @Summary Disconnect a calendar
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param provider path string true "Provider name"
// @Success 200 {object} map[string]string
// @Router /private/calendar/connections/{provider} [delete]
func (c *CalendarController) Disconnect(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	if appErr := c.service.DisconnectCalendar(ctx.Request().Context(), claims.Email, ctx.Param("provider")); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, map[string]string{"provider": ctx.Param("provider")}, "Calendar disconnected")
}

// GetFreeBusy handles GET /calendar/free-busy?start=...&end=...
// @Summary Get own free/busy
// @Description Busy windows from the caller's connected calendar over a range
// @Tags Calendar
// @Security BearerAuth
// @Produce json
// @Param start query string true "RFC3339 range start"
// @Param end query string true "RFC3339 range end"
// @Success 200 {object} dto.FreeBusyResponse
// @Failure 400 {object} errors.AppError
// @Router /private/calendar/free-busy [get]
func (c *CalendarController) GetFreeBusy(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	start, err := time.Parse(time.RFC3339, ctx.QueryParam("start"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid start, expected RFC3339")
	}
	end, err := time.Parse(time.RFC3339, ctx.QueryParam("end"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid end, expected RFC3339")
	}

	result, appErr := c.service.GetFreeBusy(ctx.Request().Context(), claims.Email, start, end)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}
