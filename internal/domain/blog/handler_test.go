package blog

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *mockAPI, *echo.Echo) {
	svc, api := newTestService()
	return NewHandler(svc), api, echo.New()
}

func TestHandler_CreateMultipart(t *testing.T) {
	h, api, e := newTestHandler()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("blog", `{"title":"Tin mới","content":"Nội dung"}`)
	fw, _ := w.CreateFormFile("image", "cover.jpg")
	fw.Write([]byte("JPEG"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if api.saved.Title != "Tin mới" || api.image != "JPEG" {
		t.Errorf("unexpected upload: %+v image=%q", api.saved, api.image)
	}
}

func TestHandler_CreateJSON(t *testing.T) {
	h, api, e := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Tin","content":"Nội dung"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.saved == nil || api.image != "" {
		t.Errorf("expected JSON save without image, got %+v", api.saved)
	}
}

func TestHandler_GetNotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")

	he, ok := h.Get(c).(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", he)
	}
}

func TestHandler_BulkDeletePartial(t *testing.T) {
	h, api, e := newTestHandler()
	api.deleteErr = map[int64]error{3: http.ErrHandlerTimeout}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":[1,3]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.BulkDelete(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusMultiStatus {
		t.Errorf("expected 207, got %d", rec.Code)
	}
}
