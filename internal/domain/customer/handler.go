package customer

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
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
	admin.GET("/customers", h.List)
	admin.GET("/customers/:id", h.Get)
	admin.PUT("/customers/:id", h.Update)
	admin.DELETE("/customers/:id", h.Delete)
	admin.POST("/customers/bulk-delete", h.BulkDelete)

	staff := api.Group("/customers", auth.RequireRole(clinicmodels.RoleAdmin, clinicmodels.RoleDoctor))
	staff.GET("/lookup", h.Lookup)

	me := api.Group("/me", auth.RequireRole(clinicmodels.RoleCustomer))
	me.GET("/profile", h.GetProfile)
	me.PUT("/profile", h.UpdateProfile)
}

func (h *Handler) List(c echo.Context) error {
	page, err := h.svc.List(c.Request().Context(), pagination.FromContext(c))
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
	cust, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *Handler) Lookup(c echo.Context) error {
	cust, err := h.svc.ByEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	var cust clinicmodels.Customer
	if err := httputil.Bind(c, &cust); err != nil {
		return err
	}
	out, err := h.svc.Update(c.Request().Context(), id, &cust)
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

func (h *Handler) GetProfile(c echo.Context) error {
	cust, err := h.svc.Me(c.Request().Context())
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var cust clinicmodels.Customer
	if err := httputil.BindForm(c, "customer", &cust); err != nil {
		return err
	}
	var (
		avatar *apiclient.File
		done   = func() {}
	)
	if httputil.IsMultipart(c) {
		var err error
		avatar, done, err = httputil.FormFile(c, "avatar")
		if err != nil {
			return err
		}
	}
	defer done()

	out, err := h.svc.UpdateMe(c.Request().Context(), &cust, avatar)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
