package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/admin/dashboard", auth.RequireRole(clinicmodels.RoleAdmin))
	admin.GET("", h.Overview)
	admin.GET("/registrations", h.Registrations)
}

// Overview answers 200 even when some widgets failed; they are reported in
// "errors".
func (h *Handler) Overview(c echo.Context) error {
	o, err := h.svc.Overview(c.Request().Context())
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Registrations accepts ?mode=day|month|year (default month).
func (h *Handler) Registrations(c echo.Context) error {
	points, err := h.svc.Registrations(c.Request().Context(), c.QueryParam("mode"))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, points)
}
