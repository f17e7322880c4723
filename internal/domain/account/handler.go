package account

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/middleware"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the account endpoints. limit wraps the routes that
// take credentials or send mail.
func (h *Handler) RegisterRoutes(api *echo.Group, limit ...echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/login", h.Login, limit...)
	g.POST("/register", h.Register, limit...)
	g.POST("/forgot-password", h.ForgotPassword, limit...)
	g.POST("/reset-password", h.ResetPassword, limit...)
	g.POST("/logout", h.Logout)
	g.GET("/session", h.Session)
	g.POST("/activity", h.Activity)

	admin := api.Group("/admin", auth.RequireRole(clinicmodels.RoleAdmin))
	admin.GET("/profile", h.GetAdminProfile)
	admin.PUT("/profile", h.UpdateAdminProfile)
}

type loginResponse struct {
	Role     clinicmodels.Role `json:"role"`
	Landing  string            `json:"landing"`
	FullName string            `json:"fullName,omitempty"`
	Email    string            `json:"email,omitempty"`
}

func store(c echo.Context) (*session.Store, error) {
	s := auth.StoreFromContext(c.Request().Context())
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "Phiên làm việc không khả dụng")
	}
	return s, nil
}

func (h *Handler) Login(c echo.Context) error {
	var creds apiclient.Credentials
	if err := httputil.Bind(c, &creds); err != nil {
		return err
	}
	s, err := store(c)
	if err != nil {
		return err
	}

	b, err := h.svc.Login(c.Request().Context(), s, creds)
	switch {
	case err == nil:
	case errors.Is(err, ErrWrongCredentials):
		// A wrong password is not an expired session: no redirect.
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.ErrorBody{Error: "Email hoặc mật khẩu không đúng"})
	case errors.Is(err, session.ErrNoToken), errors.Is(err, session.ErrUnknownRole):
		return echo.NewHTTPError(http.StatusBadGateway, "Phản hồi đăng nhập không hợp lệ")
	default:
		return auth.BackendError(c, err)
	}

	return c.JSON(http.StatusOK, loginResponse{
		Role:     b.Role,
		Landing:  b.Role.LandingPath(),
		FullName: b.FullName,
		Email:    b.Email,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	s, err := store(c)
	if err != nil {
		return err
	}
	if err := h.svc.Logout(c.Request().Context(), s); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"redirect": auth.LoginPath})
}

func (h *Handler) Register(c echo.Context) error {
	var req SignUpRequest
	if err := httputil.Bind(c, &req); err != nil {
		return err
	}
	cust, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusCreated, cust)
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := httputil.Bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Vui lòng kiểm tra email để đặt lại mật khẩu"})
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req ResetRequest
	if err := httputil.Bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req); err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"redirect": auth.LoginPath})
}

func (h *Handler) Session(c echo.Context) error {
	info := h.svc.SessionInfo(c.Request().Context(), auth.StoreFromContext(c.Request().Context()))
	if expired, _ := c.Get("session_expired").(bool); expired {
		info.Expired = true
	}
	return c.JSON(http.StatusOK, info)
}

func (h *Handler) Activity(c echo.Context) error {
	var req struct {
		Kind string `json:"kind"`
	}
	if err := httputil.Bind(c, &req); err != nil {
		return err
	}
	s, err := store(c)
	if err != nil {
		return err
	}
	if err := h.svc.Activity(c.Request().Context(), s, req.Kind); err != nil {
		return auth.BackendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetAdminProfile(c echo.Context) error {
	a, err := h.svc.AdminProfile(c.Request().Context())
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAdminProfile(c echo.Context) error {
	var a clinicmodels.Admin
	if err := httputil.Bind(c, &a); err != nil {
		return err
	}
	out, err := h.svc.UpdateAdminProfile(c.Request().Context(), &a)
	if err != nil {
		return auth.BackendError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
