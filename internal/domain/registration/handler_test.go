package registration

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/internal/platform/auth"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

func newTestHandler() (*Handler, *mockAPI, *echo.Echo) {
	svc, api := newTestService()
	return NewHandler(svc), api, echo.New()
}

func TestHandler_Complete(t *testing.T) {
	h, api, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(auth.WithBundle(req.Context(), &session.Bundle{Role: clinicmodels.RoleDoctor, DoctorID: 7}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.Complete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || len(api.completed) != 1 {
		t.Errorf("unexpected result %d %v", rec.Code, api.completed)
	}
	if !strings.Contains(rec.Body.String(), `"total_items":1`) {
		t.Errorf("expected one registration left, got %s", rec.Body.String())
	}
}

func TestHandler_CreateGuest(t *testing.T) {
	h, api, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"fullName":"Hoa","phone":"0901234567","appointmentDate":"2024-06-10","specialization":"Nhiễm"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated || api.created == nil {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestHandler_ListRejectsUnknownStatus(t *testing.T) {
	h, _, e := newTestHandler()
	err := h.List(e.NewContext(httptest.NewRequest(http.MethodGet, "/?status=lost", nil), httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
