package registration

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/admin", auth.RequireRole(clinicmodels.RoleAdmin))
	admin.GET("/registrations", h.List)
	admin.GET("/registrations/:id", h.Get)

	doctor := api.Group("/doctor", auth.RequireRole(clinicmodels.RoleDoctor))
	doctor.GET("/registrations/today", h.Today)
	doctor.POST("/registrations/:id/complete", h.Complete)

	api.POST("/public/registrations", h.Create)
}

// List accepts ?status=pending|completed.
func (h *Handler) List(c echo.Context) error {
	page, err := h.svc.List(c.Request().Context(), c.QueryParam("status"), pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Today(c echo.Context) error {
	page, err := h.svc.Today(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	page, err := h.svc.Complete(c.Request().Context(), id, pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Create(c echo.Context) error {
	var r clinicmodels.Registration
	if err := httputil.Bind(c, &r); err != nil {
		return err
	}
	out, err := h.svc.Create(c.Request().Context(), &r)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
