package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// passivePaths are requests that do not count as user interaction: the
// session check every page polls, the expiry socket and health checks.
var passivePaths = []string{
	"/api/v1/auth/session",
	"/ws",
	"/health",
}

// IsPassive reports whether the request should leave the idle timer alone.
func IsPassive(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range passivePaths {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
