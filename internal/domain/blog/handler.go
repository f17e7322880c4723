package blog

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
	admin.GET("/blogs", h.List)
	admin.POST("/blogs", h.Create)
	admin.PUT("/blogs/:id", h.Update)
	admin.DELETE("/blogs/:id", h.Delete)
	admin.POST("/blogs/bulk-delete", h.BulkDelete)

	api.GET("/public/blogs", h.List)
	api.GET("/public/blogs/:id", h.Get)
	api.POST("/blogs/:id/comments", h.Comment, auth.RequireAuth())
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
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Create(c echo.Context) error {
	return h.save(c, 0, http.StatusCreated)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	return h.save(c, id, http.StatusOK)
}

// save accepts either JSON or a multipart form with a "blog" JSON field and
// an optional "image" file.
func (h *Handler) save(c echo.Context, id int64, status int) error {
	var p clinicmodels.BlogPost
	if err := httputil.BindForm(c, "blog", &p); err != nil {
		return err
	}
	var (
		image *apiclient.File
		done  = func() {}
	)
	if httputil.IsMultipart(c) {
		var err error
		image, done, err = httputil.FormFile(c, "image")
		if err != nil {
			return err
		}
	}
	defer done()

	out, err := h.svc.Save(c.Request().Context(), id, &p, image)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(status, out)
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

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) Comment(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	var req commentRequest
	if err := httputil.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Comment(c.Request().Context(), id, req.Content)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
