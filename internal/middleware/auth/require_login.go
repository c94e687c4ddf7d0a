package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/service"
)

const accountKey = "account"

// RequireLogin resolves the bearer token (Authorization header or the
// accessToken cookie) to an account and attaches it to the echo context.
func RequireLogin(ts *service.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
			}

			account, err := ts.VerifyAccess(c.Request().Context(), raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}

			c.Set(accountKey, account)
			return next(c)
		}
	}
}

// RequireRole narrows RequireLogin to accounts carrying the given role.
func RequireRole(ts *service.TokenService, role string) echo.MiddlewareFunc {
	login := RequireLogin(ts)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return login(func(c echo.Context) error {
			account := AccountFromContext(c)
			if account == nil || account.Role != role {
				return echo.NewHTTPError(http.StatusUnauthorized, "not enough rights")
			}
			return next(c)
		})
	}
}

func AccountFromContext(c echo.Context) *models.Account {
	if v, ok := c.Get(accountKey).(*models.Account); ok {
		return v
	}
	return nil
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimPrefix(header, "Bearer ")
}
