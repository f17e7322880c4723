package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/middleware"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

func newTestHandler() (*Handler, *mockAPI, *echo.Echo) {
	svc, api, _ := newTestService()
	return NewHandler(svc), api, echo.New()
}

func jsonRequest(method, body string, store *session.Store) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if store != nil {
		req = req.WithContext(auth.WithStore(req.Context(), store))
	}
	return req
}

func TestHandler_Login(t *testing.T) {
	h, _, e := newTestHandler()
	store := session.NewStore(session.NewMemoryRepository(), "s1")
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, `{"email":"bs@myhealth.vn","password":"secret"}`, store), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["landing"] != "/doctorPanel" || resp["role"] != "DOCTOR" {
		t.Errorf("unexpected response: %v", resp)
	}
	if strings.Contains(rec.Body.String(), "abc") {
		t.Error("token must not be sent to the browser")
	}
}

func TestHandler_LoginThenCallsCarryToken(t *testing.T) {
	var auths []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			w.Write([]byte(`{"token":"abc","role":"ADMIN"}`))
		case "/api/doctors":
			auths = append(auths, r.Header.Get("Authorization"))
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer backend.Close()

	client := apiclient.New(backend.URL, apiclient.WithTokenSource(auth.ContextTokens{}))
	h := NewHandler(NewService(client, nil))
	store := session.NewStore(session.NewMemoryRepository(), "s1")
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(jsonRequest(http.MethodPost, `{"email":"admin@myhealth.vn","password":"secret"}`, store), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"landing":"/admin/dashboard"`) {
		t.Errorf("unexpected response: %s", rec.Body.String())
	}
	b, err := store.Load(context.Background())
	if err != nil || b == nil || b.Role != clinicmodels.RoleAdmin || b.Token != "abc" {
		t.Fatalf("expected an ADMIN bundle in the store, got %+v (%v)", b, err)
	}

	if _, err := client.ListDoctors(auth.WithStore(context.Background(), store)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(auths) != 1 || auths[0] != "Bearer abc" {
		t.Errorf("expected the stored token on the next call, got %v", auths)
	}
}

func TestHandler_LoginWrongCredentials(t *testing.T) {
	h, api, e := newTestHandler()
	api.loginErr = &apiclient.APIError{StatusCode: 401}
	store := session.NewStore(session.NewMemoryRepository(), "s1")
	c := e.NewContext(jsonRequest(http.MethodPost, `{"email":"a@b.vn","password":"bad"}`, store), httptest.NewRecorder())

	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	body, ok := he.Message.(middleware.ErrorBody)
	if !ok || body.Redirect != "" {
		t.Errorf("expected no redirect for wrong credentials, got %+v", he.Message)
	}
}

func TestHandler_LoginWithoutStore(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPost, `{"email":"a@b.vn","password":"x"}`, nil), httptest.NewRecorder())

	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", err)
	}
}

func TestHandler_SessionReportsExpiry(t *testing.T) {
	h, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set("session_expired", true)

	if err := h.Session(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var info Info
	json.Unmarshal(rec.Body.Bytes(), &info)
	if !info.Expired || info.State != session.StateAnonymous {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestHandler_Logout(t *testing.T) {
	h, _, e := newTestHandler()
	store := session.NewStore(session.NewMemoryRepository(), "s1")
	store.Save(context.Background(), &session.Bundle{Token: "t", Role: "ADMIN"})
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, ``, store), rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"/login"`) {
		t.Errorf("expected redirect to /login, got %s", rec.Body.String())
	}
}

func TestHandler_RegisterValidation(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPost, `{"fullName":"An","email":"an@b.vn","password":"123"}`, nil), httptest.NewRecorder())

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
