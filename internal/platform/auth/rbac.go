package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/internal/platform/middleware"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

// LoginPath is where the browser goes when the session is missing or over.
const LoginPath = "/login"

func unauthorized(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, middleware.ErrorBody{Error: msg, Redirect: LoginPath})
}

// RequireAuth rejects requests without a session bundle.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if BundleFromContext(c.Request().Context()) == nil {
				return unauthorized("Vui lòng đăng nhập")
			}
			return next(c)
		}
	}
}

// RequireRole admits only sessions whose role is one of roles. A signed-in
// user with another role is sent back to their own landing page.
func RequireRole(roles ...clinicmodels.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := BundleFromContext(c.Request().Context())
			if b == nil {
				return unauthorized("Vui lòng đăng nhập")
			}
			for _, r := range roles {
				if b.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, middleware.ErrorBody{
				Error:    "Bạn không có quyền truy cập trang này",
				Redirect: b.Role.LandingPath(),
			})
		}
	}
}
