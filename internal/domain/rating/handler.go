package rating

import (
	"errors"
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
	api.GET("/admin/ratings", h.List, auth.RequireRole(clinicmodels.RoleAdmin))
	api.POST("/me/ratings", h.Submit, auth.RequireRole(clinicmodels.RoleCustomer))
	api.GET("/public/ratings/summary", h.Summary)
}

func (h *Handler) List(c echo.Context) error {
	page, err := h.svc.List(c.Request().Context(), pagination.FromContext(c))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handler) Summary(c echo.Context) error {
	out, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Submit(c echo.Context) error {
	var r clinicmodels.Rating
	if err := httputil.Bind(c, &r); err != nil {
		return err
	}
	out, err := h.svc.Submit(c.Request().Context(), &r)
	if errors.Is(err, ErrAlreadyRated) {
		return echo.NewHTTPError(http.StatusConflict, "Bạn đã đánh giá bác sĩ này rồi")
	}
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
