package account

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

type mockAPI struct {
	loginBody   string
	loginErr    error
	registered  *apiclient.SignUp
	forgot      string
	reset       *apiclient.ResetPassword
	admin       clinicmodels.Admin
	updatedID   int64
	adminMeHits int
}

func (m *mockAPI) Login(_ context.Context, _ apiclient.Credentials) (json.RawMessage, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return json.RawMessage(m.loginBody), nil
}

func (m *mockAPI) Register(_ context.Context, req apiclient.SignUp) (*clinicmodels.Customer, error) {
	m.registered = &req
	return &clinicmodels.Customer{CustomerID: 9, FullName: req.FullName, Email: req.Email}, nil
}

func (m *mockAPI) ForgotPassword(_ context.Context, email string) error {
	m.forgot = email
	return nil
}

func (m *mockAPI) ResetPassword(_ context.Context, req apiclient.ResetPassword) error {
	m.reset = &req
	return nil
}

func (m *mockAPI) GetAdminMe(context.Context) (*clinicmodels.Admin, error) {
	m.adminMeHits++
	a := m.admin
	return &a, nil
}

func (m *mockAPI) UpdateAdmin(_ context.Context, id int64, a *clinicmodels.Admin) (*clinicmodels.Admin, error) {
	m.updatedID = id
	return a, nil
}

type recordingNotifier struct{ ended []string }

func (n *recordingNotifier) NotifyEnded(_ context.Context, id string) {
	n.ended = append(n.ended, id)
}

func newTestService() (*Service, *mockAPI, *recordingNotifier) {
	api := &mockAPI{loginBody: `{"token":"abc","role":"DOCTOR","doctorId":7,"fullName":"BS. Minh"}`}
	n := &recordingNotifier{}
	return NewService(api, n), api, n
}

func TestService_LoginStoresBundle(t *testing.T) {
	svc, _, _ := newTestService()
	store := session.NewStore(session.NewMemoryRepository(), "s1")

	b, err := svc.Login(context.Background(), store, apiclient.Credentials{Email: " bs@myhealth.vn ", Password: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Role != clinicmodels.RoleDoctor || b.DoctorID != 7 {
		t.Errorf("unexpected bundle: %+v", b)
	}
	saved, _ := store.Load(context.Background())
	if saved == nil || saved.Token != "abc" {
		t.Errorf("expected bundle saved, got %+v", saved)
	}
}

func TestService_LoginWrongCredentials(t *testing.T) {
	svc, api, _ := newTestService()
	api.loginErr = &apiclient.APIError{StatusCode: 401, Message: "Bad credentials"}
	store := session.NewStore(session.NewMemoryRepository(), "s1")

	_, err := svc.Login(context.Background(), store, apiclient.Credentials{Email: "a@b.vn", Password: "x"})
	if !errors.Is(err, ErrWrongCredentials) {
		t.Fatalf("expected ErrWrongCredentials, got %v", err)
	}
	if ok, _ := store.Authenticated(context.Background()); ok {
		t.Error("failed login must not create a session")
	}
}

func TestService_LoginRequiresFields(t *testing.T) {
	svc, _, _ := newTestService()
	store := session.NewStore(session.NewMemoryRepository(), "s1")
	if _, err := svc.Login(context.Background(), store, apiclient.Credentials{Email: "a@b.vn"}); !httputil.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestService_LoginUnknownRole(t *testing.T) {
	svc, api, _ := newTestService()
	api.loginBody = `{"token":"abc","role":"NURSE"}`
	store := session.NewStore(session.NewMemoryRepository(), "s1")

	_, err := svc.Login(context.Background(), store, apiclient.Credentials{Email: "a@b.vn", Password: "secret"})
	if !errors.Is(err, session.ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestService_LogoutNotifies(t *testing.T) {
	svc, _, n := newTestService()
	store := session.NewStore(session.NewMemoryRepository(), "s1")
	store.Save(context.Background(), &session.Bundle{Token: "t", Role: clinicmodels.RoleCustomer})

	if err := svc.Logout(context.Background(), store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := store.Authenticated(context.Background()); ok {
		t.Error("expected session cleared")
	}
	if len(n.ended) != 1 || n.ended[0] != "s1" {
		t.Errorf("expected ended notification for s1, got %v", n.ended)
	}
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name string
		req  SignUpRequest
		ok   bool
	}{
		{"valid", SignUpRequest{SignUp: apiclient.SignUp{FullName: "An", Email: "an@b.vn", Password: "123456", Gender: clinicmodels.GenderFemale}, ConfirmPassword: "123456"}, true},
		{"short password", SignUpRequest{SignUp: apiclient.SignUp{FullName: "An", Email: "an@b.vn", Password: "12345"}, ConfirmPassword: "12345"}, false},
		{"mismatch", SignUpRequest{SignUp: apiclient.SignUp{FullName: "An", Email: "an@b.vn", Password: "123456"}, ConfirmPassword: "654321"}, false},
		{"bad email", SignUpRequest{SignUp: apiclient.SignUp{FullName: "An", Email: "an", Password: "123456"}, ConfirmPassword: "123456"}, false},
		{"missing name", SignUpRequest{SignUp: apiclient.SignUp{Email: "an@b.vn", Password: "123456"}, ConfirmPassword: "123456"}, false},
		{"bad gender", SignUpRequest{SignUp: apiclient.SignUp{FullName: "An", Email: "an@b.vn", Password: "123456", Gender: "X"}, ConfirmPassword: "123456"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api, _ := newTestService()
			_, err := svc.Register(context.Background(), tt.req)
			if tt.ok {
				if err != nil || api.registered == nil {
					t.Fatalf("expected registration, got %v", err)
				}
				return
			}
			if !httputil.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
			if api.registered != nil {
				t.Error("invalid form must not reach the backend")
			}
		})
	}
}

func TestService_ResetPassword(t *testing.T) {
	svc, api, _ := newTestService()
	if err := svc.ResetPassword(context.Background(), ResetRequest{Token: "tok", NewPassword: "abcdef", ConfirmPassword: "abcdeg"}); !httputil.IsValidation(err) {
		t.Errorf("expected mismatch to be rejected, got %v", err)
	}
	if err := svc.ResetPassword(context.Background(), ResetRequest{Token: "tok", NewPassword: "abcdef", ConfirmPassword: "abcdef"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.reset == nil || api.reset.Token != "tok" || api.reset.NewPassword != "abcdef" {
		t.Errorf("unexpected reset request: %+v", api.reset)
	}
}

func TestService_ForgotPassword(t *testing.T) {
	svc, api, _ := newTestService()
	if err := svc.ForgotPassword(context.Background(), " "); !httputil.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := svc.ForgotPassword(context.Background(), " an@b.vn "); err != nil || api.forgot != "an@b.vn" {
		t.Errorf("unexpected result %q, %v", api.forgot, err)
	}
}

func TestService_Activity(t *testing.T) {
	svc, _, _ := newTestService()
	store := session.NewStore(session.NewMemoryRepository(), "s1")

	if err := svc.Activity(context.Background(), store, "scroll"); !httputil.IsValidation(err) {
		t.Errorf("expected unknown kind rejected, got %v", err)
	}
	if err := svc.Activity(context.Background(), store, session.ActivityClick); !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}

	store.Save(context.Background(), &session.Bundle{Token: "t", Role: clinicmodels.RoleCustomer})
	if err := svc.Activity(context.Background(), store, session.ActivityClick); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestService_SessionInfo(t *testing.T) {
	svc, _, _ := newTestService()
	store := session.NewStore(session.NewMemoryRepository(), "s1")

	info := svc.SessionInfo(context.Background(), store)
	if info.State != session.StateAnonymous || info.Landing != "/login" {
		t.Errorf("unexpected anonymous info: %+v", info)
	}
	if info.IdleTimeoutSeconds != 900 {
		t.Errorf("expected 900s idle timeout, got %d", info.IdleTimeoutSeconds)
	}

	ctx := auth.WithBundle(context.Background(), &session.Bundle{Role: clinicmodels.RoleAdmin, FullName: "Quản trị"})
	info = svc.SessionInfo(ctx, store)
	if info.State != session.StateAuthenticated || info.Landing != "/admin/dashboard" || info.FullName != "Quản trị" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestService_UpdateAdminProfileUsesSessionID(t *testing.T) {
	svc, api, _ := newTestService()
	ctx := auth.WithBundle(context.Background(), &session.Bundle{Role: clinicmodels.RoleAdmin, AdminID: 3})

	out, err := svc.UpdateAdminProfile(ctx, &clinicmodels.Admin{AdminID: 99, FullName: "A", Email: "a@b.vn"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.updatedID != 3 || out.AdminID != 3 {
		t.Errorf("expected the session's admin id, got %d", api.updatedID)
	}
	if api.adminMeHits != 0 {
		t.Error("expected no profile lookup when the session has the id")
	}
}

func TestService_UpdateAdminProfileFallsBackToMe(t *testing.T) {
	svc, api, _ := newTestService()
	api.admin = clinicmodels.Admin{AdminID: 5}
	ctx := auth.WithBundle(context.Background(), &session.Bundle{Role: clinicmodels.RoleAdmin})

	if _, err := svc.UpdateAdminProfile(ctx, &clinicmodels.Admin{FullName: "A", Email: "a@b.vn"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.updatedID != 5 {
		t.Errorf("expected id from /admins/me, got %d", api.updatedID)
	}
}
