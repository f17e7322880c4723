package httputil

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequired(t *testing.T) {
	if err := Required("fullName", "An", "phone", "090"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := Required("fullName", "An", "phone", "  ")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err.(*ValidationError).Field != "phone" {
		t.Errorf("expected phone, got %v", err)
	}
}

func TestIDParam(t *testing.T) {
	e := echo.New()
	tests := []struct {
		value string
		ok    bool
	}{
		{"12", true},
		{"0", false},
		{"-3", false},
		{"abc", false},
	}
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(tt.value)
		_, err := IDParam(c, "id")
		if (err == nil) != tt.ok {
			t.Errorf("%q: unexpected error %v", tt.value, err)
		}
	}
}

func TestBindIDs(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":[1,2]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	ids, err := BindIDs(e.NewContext(req, httptest.NewRecorder()))
	if err != nil || len(ids) != 2 {
		t.Fatalf("unexpected result %v, %v", ids, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if _, err := BindIDs(e.NewContext(req, httptest.NewRecorder())); err == nil {
		t.Error("expected empty selection to be rejected")
	}
}

func TestFormFile(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, _ := w.CreateFormFile("avatar", "me.png")
	fw.Write([]byte("PNG"))
	w.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	c := e.NewContext(req, httptest.NewRecorder())

	if !IsMultipart(c) {
		t.Error("expected multipart request")
	}
	f, done, err := FormFile(c, "avatar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer done()
	if f == nil || f.Filename != "me.png" {
		t.Fatalf("unexpected file %+v", f)
	}

	missing, done2, err := FormFile(c, "image")
	defer done2()
	if err != nil || missing != nil {
		t.Errorf("expected absent file to be nil, got %+v, %v", missing, err)
	}
}

func TestBindForm(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("doctor", `{"fullName":"BS. Lan"}`)
	w.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	var out struct {
		FullName string `json:"fullName"`
	}
	if err := BindForm(e.NewContext(req, httptest.NewRecorder()), "doctor", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.FullName != "BS. Lan" {
		t.Errorf("unexpected value %q", out.FullName)
	}

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"fullName":"BS. Hà"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if err := BindForm(e.NewContext(req, httptest.NewRecorder()), "doctor", &out); err != nil || out.FullName != "BS. Hà" {
		t.Errorf("expected JSON body fallback, got %q, %v", out.FullName, err)
	}
}
