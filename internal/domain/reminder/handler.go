package reminder

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
	me := api.Group("/me", auth.RequireRole(clinicmodels.RoleCustomer))
	me.GET("/reminders", h.All)
	me.GET("/reminders/today", h.Today)
	me.POST("/reminders", h.Create)
	me.PATCH("/reminders/:id/done", h.Done)
	me.PUT("/reminders/:id/status", h.SetStatus)

	doctor := api.Group("/doctor", auth.RequireRole(clinicmodels.RoleDoctor))
	doctor.GET("/customers/:id/reminders", h.ByCustomer)
	doctor.POST("/reminders", h.Create)
}

func (h *Handler) Today(c echo.Context) error {
	page, err := h.svc.Today(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) All(c echo.Context) error {
	page, err := h.svc.All(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) ByCustomer(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	page, err := h.svc.ByCustomer(c.Request().Context(), id, pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Done(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	page, err := h.svc.Done(c.Request().Context(), id, pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := httputil.Bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.SetStatus(c.Request().Context(), id, req.Status); err != nil {
		return auth.BackendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Create(c echo.Context) error {
	var r clinicmodels.Reminder
	if err := httputil.Bind(c, &r); err != nil {
		return err
	}
	out, err := h.svc.Create(c.Request().Context(), &r)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
