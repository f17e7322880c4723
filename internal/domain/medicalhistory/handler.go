package medicalhistory

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
	admin.GET("/medical-histories", h.List)
	admin.GET("/medical-histories/:id", h.Get)
	admin.PUT("/medical-histories/:id", h.Update)
	admin.DELETE("/medical-histories/:id", h.Delete)
	admin.POST("/medical-histories/bulk-delete", h.BulkDelete)

	doctor := api.Group("/doctor", auth.RequireRole(clinicmodels.RoleDoctor))
	doctor.GET("/customers/:id/medical-histories", h.ByCustomer)
	doctor.POST("/medical-histories", h.Create)
	doctor.PUT("/medical-histories/:id", h.Update)

	me := api.Group("/me", auth.RequireRole(clinicmodels.RoleCustomer))
	me.GET("/medical-histories", h.Mine)
}

func (h *Handler) List(c echo.Context) error {
	page, err := h.svc.List(c.Request().Context(), pagination.FromContext(c))
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

func (h *Handler) Mine(c echo.Context) error {
	page, err := h.svc.Mine(c.Request().Context(), pagination.FromContext(c))
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
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Create(c echo.Context) error {
	var rec clinicmodels.MedicalHistory
	if err := httputil.Bind(c, &rec); err != nil {
		return err
	}
	out, err := h.svc.Create(c.Request().Context(), &rec)
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
	var rec clinicmodels.MedicalHistory
	if err := httputil.Bind(c, &rec); err != nil {
		return err
	}
	out, err := h.svc.Update(c.Request().Context(), id, &rec)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Delete answers with the refreshed table page.
func (h *Handler) Delete(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	page, err := h.svc.Delete(c.Request().Context(), id, pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) BulkDelete(c echo.Context) error {
	ids, err := httputil.BindIDs(c)
	if err != nil {
		return err
	}
	res, err := h.svc.BulkDelete(c.Request().Context(), ids)
	return auth.BulkDeleted(c, res, err)
}
