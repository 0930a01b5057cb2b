package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"meetsync/core/constants"
	"meetsync/core/errors"
	"meetsync/core/utils"
)

// Middleware bundles the HTTP middlewares shared by module routers.
type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

// AuthMiddleware validates the bearer token and stores claims in the context
// under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{
					"code":    errors.ErrMissingAuthorizationHeader,
					"message": "Missing Authorization header",
				})
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{
					"code":    errors.ErrInvalidTokenFormat,
					"message": "Authorization header must be 'Bearer {token}'",
				})
			}

			claims, appErr := utils.ValidateAndParseToken(parts[1])
			if appErr != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{
					"code":    appErr.Code,
					"message": appErr.Message,
				})
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// GetClaims extracts the authenticated user's claims from the echo context.
func GetClaims(c echo.Context) (*utils.TokenClaims, *errors.AppError) {
	tokenData := c.Get(constants.ContextTokenData)
	if tokenData == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}
	return claims, nil
}
