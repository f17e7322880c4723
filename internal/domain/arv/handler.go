package arv

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
	admin.GET("/arv-regimens", h.List)
	admin.GET("/arv-regimens/:id", h.Get)
	admin.DELETE("/arv-regimens/:id", h.Delete)
	admin.POST("/arv-regimens/bulk-delete", h.BulkDelete)
	admin.GET("/customers/:id/arv-regimens", h.ByCustomer)

	// A doctor's list is narrowed to their own patients by the service.
	doctor := api.Group("/doctor", auth.RequireRole(clinicmodels.RoleDoctor))
	doctor.GET("/arv-regimens", h.List)
	doctor.GET("/arv-regimens/:id", h.Get)
	doctor.POST("/arv-regimens", h.Create)
	doctor.PUT("/arv-regimens/:id", h.Update)
	doctor.DELETE("/arv-regimens/:id", h.Delete)
	doctor.GET("/customers/:id/arv-regimens", h.ByCustomer)

	me := api.Group("/me", auth.RequireRole(clinicmodels.RoleCustomer))
	me.GET("/arv-regimens", h.Mine)

	api.GET("/public/arv-catalogue", h.Catalogue)
}

func (h *Handler) List(c echo.Context) error {
	page, err := h.svc.List(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Mine(c echo.Context) error {
	page, err := h.svc.Mine(c.Request().Context(), pagination.FromContext(c))
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

func (h *Handler) Catalogue(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Catalogue())
}

func (h *Handler) Create(c echo.Context) error {
	var f Form
	if err := httputil.Bind(c, &f); err != nil {
		return err
	}
	out, err := h.svc.Save(c.Request().Context(), 0, &f)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	var f Form
	if err := httputil.Bind(c, &f); err != nil {
		return err
	}
	out, err := h.svc.Save(c.Request().Context(), id, &f)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return auth.BackendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) BulkDelete(c echo.Context) error {
	ids, err := httputil.BindIDs(c)
	if err != nil {
		return err
	}
	res, err := h.svc.BulkDelete(c.Request().Context(), ids)
	return auth.BulkDeleted(c, res, err)
}
