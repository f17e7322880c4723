package doctor

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
	admin.GET("/doctors", h.List)
	admin.GET("/doctors/:id", h.Get)
	admin.POST("/doctors", h.Create)
	admin.PUT("/doctors/:id", h.Update)
	admin.DELETE("/doctors/:id", h.Delete)
	admin.POST("/doctors/bulk-delete", h.BulkDelete)

	self := api.Group("/doctor", auth.RequireRole(clinicmodels.RoleDoctor))
	self.GET("/profile", h.GetProfile)
	self.PUT("/profile", h.UpdateProfile)

	public := api.Group("/public")
	public.GET("/doctors", h.PublicList)
	public.GET("/doctors/:id", h.Get)
}

func (h *Handler) List(c echo.Context) error {
	page, err := h.svc.List(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) PublicList(c echo.Context) error {
	page, err := h.svc.PublicList(c.Request().Context(), pagination.FromContext(c))
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
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Create(c echo.Context) error {
	var d clinicmodels.Doctor
	if err := httputil.Bind(c, &d); err != nil {
		return err
	}
	out, err := h.svc.Create(c.Request().Context(), &d)
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
	var d clinicmodels.Doctor
	if err := httputil.Bind(c, &d); err != nil {
		return err
	}
	out, err := h.svc.Update(c.Request().Context(), id, &d)
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

// BulkDelete answers 200 when every id went, 207 when some failed.
func (h *Handler) BulkDelete(c echo.Context) error {
	ids, err := httputil.BindIDs(c)
	if err != nil {
		return err
	}
	res, err := h.svc.BulkDelete(c.Request().Context(), ids)
	return auth.BulkDeleted(c, res, err)
}

func (h *Handler) GetProfile(c echo.Context) error {
	d, err := h.svc.Me(c.Request().Context())
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var d clinicmodels.Doctor
	if err := httputil.BindForm(c, "doctor", &d); err != nil {
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

	out, err := h.svc.UpdateMe(c.Request().Context(), &d, avatar)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
