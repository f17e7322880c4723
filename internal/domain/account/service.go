package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

// MinPasswordLength is the shortest password the sign-up and reset forms
// accept.
const MinPasswordLength = 6

// ErrWrongCredentials is returned when the backend refuses a login.
var ErrWrongCredentials = errors.New("account: wrong email or password")

// API is the part of the backend client this package uses.
type API interface {
	Login(ctx context.Context, creds apiclient.Credentials) (json.RawMessage, error)
	Register(ctx context.Context, req apiclient.SignUp) (*clinicmodels.Customer, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req apiclient.ResetPassword) error
	GetAdminMe(ctx context.Context) (*clinicmodels.Admin, error)
	UpdateAdmin(ctx context.Context, id int64, a *clinicmodels.Admin) (*clinicmodels.Admin, error)
}

// Notifier tells a session's open tabs that it ended.
type Notifier interface {
	NotifyEnded(ctx context.Context, id string)
}

type Service struct {
	api    API
	notify Notifier
}

func NewService(api API, notify Notifier) *Service {
	return &Service{api: api, notify: notify}
}

// SignUpRequest is the registration form.
type SignUpRequest struct {
	apiclient.SignUp
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetRequest is the reset-password form.
type ResetRequest struct {
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Info describes the current session to the browser.
type Info struct {
	State              session.State     `json:"state"`
	Role               clinicmodels.Role `json:"role,omitempty"`
	Landing            string            `json:"landing"`
	FullName           string            `json:"fullName,omitempty"`
	Email              string            `json:"email,omitempty"`
	DoctorID           int64             `json:"doctorId,omitempty"`
	CustomerID         int64             `json:"customerID,omitempty"`
	AdminID            int64             `json:"adminId,omitempty"`
	IdleTimeoutSeconds int               `json:"idleTimeoutSeconds"`
	Expired            bool              `json:"expired,omitempty"`
}

// Login exchanges credentials for a bundle and stores it, replacing any
// previous one.
func (s *Service) Login(ctx context.Context, store *session.Store, creds apiclient.Credentials) (*session.Bundle, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := httputil.Required("email", creds.Email, "password", creds.Password); err != nil {
		return nil, err
	}

	raw, err := s.api.Login(ctx, creds)
	if err != nil {
		if apiclient.IsAuth(err) {
			return nil, ErrWrongCredentials
		}
		return nil, err
	}
	b, err := session.ParseLoginResponse(raw)
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return b, nil
}

// Logout clears the session and tells other tabs.
func (s *Service) Logout(ctx context.Context, store *session.Store) error {
	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if s.notify != nil {
		s.notify.NotifyEnded(ctx, store.ID())
	}
	return nil
}

func (s *Service) Register(ctx context.Context, req SignUpRequest) (*clinicmodels.Customer, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := httputil.Required("fullName", req.FullName, "email", req.Email, "password", req.Password); err != nil {
		return nil, err
	}
	if err := validEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	if req.Gender != "" && req.Gender != clinicmodels.GenderMale && req.Gender != clinicmodels.GenderFemale {
		return nil, httputil.Invalid("gender", "giới tính không hợp lệ")
	}
	return s.api.Register(ctx, req.SignUp)
}

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := httputil.Required("email", email); err != nil {
		return err
	}
	if err := validEmail(email); err != nil {
		return err
	}
	return s.api.ForgotPassword(ctx, email)
}

func (s *Service) ResetPassword(ctx context.Context, req ResetRequest) error {
	if err := httputil.Required("token", req.Token, "newPassword", req.NewPassword); err != nil {
		return err
	}
	if err := validPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	return s.api.ResetPassword(ctx, apiclient.ResetPassword{Token: req.Token, NewPassword: req.NewPassword})
}

// SessionInfo reports the session the request carries.
func (s *Service) SessionInfo(ctx context.Context, store *session.Store) Info {
	info := Info{State: session.StateAnonymous, Landing: auth.LoginPath}
	if store != nil {
		info.IdleTimeoutSeconds = int(store.IdleTimeout().Seconds())
	}
	b := auth.BundleFromContext(ctx)
	if b == nil {
		return info
	}
	info.State = session.StateAuthenticated
	info.Role = b.Role
	info.Landing = b.Role.LandingPath()
	info.FullName = b.FullName
	info.Email = b.Email
	info.DoctorID = b.DoctorID
	info.CustomerID = b.CustomerID
	info.AdminID = b.AdminID
	return info
}

// Activity records a user interaction reported by the browser.
func (s *Service) Activity(ctx context.Context, store *session.Store, kind string) error {
	if !session.ValidActivity(kind) {
		return httputil.Invalid("kind", "loại tương tác không hợp lệ")
	}
	ok, err := store.Authenticated(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrNoSession
	}
	return store.Touch(ctx)
}

func (s *Service) AdminProfile(ctx context.Context) (*clinicmodels.Admin, error) {
	return s.api.GetAdminMe(ctx)
}

// UpdateAdminProfile saves the signed-in admin's own profile.
func (s *Service) UpdateAdminProfile(ctx context.Context, a *clinicmodels.Admin) (*clinicmodels.Admin, error) {
	a.FullName = strings.TrimSpace(a.FullName)
	a.Email = strings.TrimSpace(a.Email)
	if err := httputil.Required("fullName", a.FullName, "email", a.Email); err != nil {
		return nil, err
	}
	if err := validEmail(a.Email); err != nil {
		return nil, err
	}

	id := int64(0)
	if b := auth.BundleFromContext(ctx); b != nil {
		id = b.AdminID
	}
	if id == 0 {
		me, err := s.api.GetAdminMe(ctx)
		if err != nil {
			return nil, err
		}
		id = me.AdminID
	}
	a.AdminID = id
	return s.api.UpdateAdmin(ctx, id, a)
}

func validEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return httputil.Invalid("email", "email không hợp lệ")
	}
	return nil
}

func validPassword(password, confirm string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return httputil.Invalid("password", fmt.Sprintf("mật khẩu phải có ít nhất %d ký tự", MinPasswordLength))
	}
	if password != confirm {
		return httputil.Invalid("confirmPassword", "mật khẩu xác nhận không khớp")
	}
	return nil
}
