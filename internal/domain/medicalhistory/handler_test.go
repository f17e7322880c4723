package medicalhistory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
	"github.com/myhealth/myhealth/pkg/pagination"
)

func newTestHandler() (*Handler, *mockAPI, *echo.Echo) {
	svc, api := newTestService()
	return NewHandler(svc), api, echo.New()
}

func TestHandler_DeleteReturnsRefreshedPage(t *testing.T) {
	h, _, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/?page=1", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var page pagination.Page[clinicmodels.MedicalHistory]
	json.Unmarshal(rec.Body.Bytes(), &page)
	if page.TotalItems != 22 {
		t.Errorf("expected 22 rows after delete, got %d", page.TotalItems)
	}
	for _, it := range page.Items {
		if it.MedicalHistoryID == 1 {
			t.Error("deleted row still listed")
		}
	}
}

func TestHandler_UpdateValidation(t *testing.T) {
	h, _, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"diseaseName":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("2")

	err := h.Update(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}
