package schedule

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
	admin.GET("/schedules", h.List)
	admin.GET("/schedules/:id", h.Get)
	admin.POST("/schedules", h.Create)
	admin.PUT("/schedules/:id", h.Update)
	admin.DELETE("/schedules/:id", h.Delete)

	doctor := api.Group("/doctor", auth.RequireRole(clinicmodels.RoleDoctor))
	doctor.GET("/schedules", h.Mine)

	api.GET("/public/slots", h.Slots)
	api.GET("/public/available-dates", h.Dates)
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

func (h *Handler) Get(c echo.Context) error {
	id, err := httputil.IDParam(c, "id")
	if err != nil {
		return err
	}
	sc, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, sc)
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

func (h *Handler) save(c echo.Context, id int64, status int) error {
	var sc clinicmodels.Schedule
	if err := httputil.Bind(c, &sc); err != nil {
		return err
	}
	out, err := h.svc.Save(c.Request().Context(), id, &sc)
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

// Slots answers ?doctorId=&date=.
func (h *Handler) Slots(c echo.Context) error {
	doctorID, err := httputil.IDQuery(c, "doctorId")
	if err != nil {
		return err
	}
	slots, err := h.svc.Slots(c.Request().Context(), doctorID, c.QueryParam("date"))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) Dates(c echo.Context) error {
	doctorID, err := httputil.IDQuery(c, "doctorId")
	if err != nil {
		return err
	}
	dates, err := h.svc.Dates(c.Request().Context(), doctorID, c.QueryParam("date"))
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, dates)
}
