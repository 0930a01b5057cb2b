package controller

import (
	"meetsync/core/constants"
	"meetsync/core/controller"
	"meetsync/core/errors"
	"meetsync/core/utils"
	"meetsync/modules/invitation/dto"
	"meetsync/modules/invitation/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type InvitationController struct {
	controller.BaseController
	service service.InvitationServiceInterface
}

func NewInvitationController(service service.InvitationServiceInterface) *InvitationController {
	return &InvitationController{
		BaseController: controller.NewBaseController(),
		service:        service,
	}
}

func (c *InvitationController) getClaimsFromContext(ctx echo.Context) (*utils.TokenClaims, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Token data not found in context", nil)
	}
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data format", nil)
	}
	return claims, nil
}

// GetJoinView handles GET /public/join/:token
// @Summary Resolve a share link
// @Description Resolve an invitation token to the invitation and its meeting (no auth)
// @Tags Invitation
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} dto.JoinViewResponse
// @Failure 404 {object} errors.AppError
// @Router /public/join/{token} [get]
func (c *InvitationController) GetJoinView(ctx echo.Context) error {
	result, appErr := c.service.GetJoinView(ctx.Request().Context(), ctx.Param("token"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Success")
}

// Respond handles POST /public/join/:token/respond
// @Summary Respond to an invitation
// @Description Accept or decline an invitation by its token (no auth)
// @Tags Invitation
// @Accept json
// @Produce json
// @Param token path string true "Invitation token"
// @Param request body dto.RespondRequest true "accepted or declined"
// @Success 200 {object} dto.InvitationResponse
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /public/join/{token}/respond [post]
func (c *InvitationController) Respond(ctx echo.Context) error {
	var req dto.RespondRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.service.Respond(ctx.Request().Context(), ctx.Param("token"), req.Status)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Response recorded")
}

// InviteParticipants handles POST /private/meetings/:id/invite
// @Summary Invite participants
// @Description Add invitees to a pending meeting; re-inviting rotates the token
// @Tags Invitation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Meeting ID"
// @Param request body object true "participant_emails"
// @Success 200 {array} dto.InvitationResponse
// @Failure 403 {object} errors.AppError
// @Router /private/meetings/{id}/invite [post]
func (c *InvitationController) InviteParticipants(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	meetingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid meeting ID")
	}

	var req struct {
		ParticipantEmails []string `json:"participant_emails"`
	}
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.service.InviteParticipants(ctx.Request().Context(), meetingID, claims.Email, req.ParticipantEmails)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Participants invited")
}

// GetPendingInvitations handles GET /private/invitations
// @Summary List pending invitations
// @Description List invitations awaiting the caller's response
// @Tags Invitation
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.PendingInvitationsResponse
// @Failure 401 {object} errors.AppError
// @Router /private/invitations [get]
func (c *InvitationController) GetPendingInvitations(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.service.GetPendingInvitations(ctx.Request().Context(), claims.Email)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Pending invitations retrieved")
}

// CountPending handles GET /private/invitations/count
// @Summary Count pending invitations
// @Tags Invitation
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 401 {object} errors.AppError
// @Router /private/invitations/count [get]
func (c *InvitationController) CountPending(ctx echo.Context) error {
	claims, err := c.getClaimsFromContext(ctx)
	if err != nil {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	count, appErr := c.service.CountPending(ctx.Request().Context(), claims.Email)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, map[string]int{"count": count}, "Pending count retrieved")
}
