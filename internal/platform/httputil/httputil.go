// Package httputil holds the small request helpers shared by the domain
// handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
)

// ValidationError is a rejected input that never reached the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Invalid builds a ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Required returns a ValidationError for the first empty value, in order.
// Pairs are field name then value.
func Required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return Invalid(pairs[i], "không được để trống")
		}
	}
	return nil
}

// IDParam parses a positive integer path parameter.
func IDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s không hợp lệ", name))
	}
	return id, nil
}

// IDQuery parses a positive integer query parameter.
func IDQuery(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s không hợp lệ", name))
	}
	return id, nil
}

// Bind decodes the request body, mapping decode failures to 400.
func Bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Dữ liệu gửi lên không hợp lệ")
	}
	return nil
}

// BindForm decodes v from the JSON carried in a multipart form field, or
// from the body when the request is not multipart.
func BindForm(c echo.Context, field string, v interface{}) error {
	if !IsMultipart(c) {
		return Bind(c, v)
	}
	raw := c.FormValue(field)
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Thiếu trường %s", field))
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Dữ liệu gửi lên không hợp lệ")
	}
	return nil
}

// IDs is the body of every bulk-delete endpoint.
type IDs struct {
	IDs []int64 `json:"ids"`
}

// BindIDs decodes an IDs body and rejects an empty selection.
func BindIDs(c echo.Context) ([]int64, error) {
	var req IDs
	if err := Bind(c, &req); err != nil {
		return nil, err
	}
	if len(req.IDs) == 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Chưa chọn bản ghi nào")
	}
	return req.IDs, nil
}

// FormFile opens an optional uploaded file. It returns nil when the field is
// absent. The caller must call close once the upload has been forwarded.
func FormFile(c echo.Context, field string) (*apiclient.File, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "Tệp tải lên không hợp lệ")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, echo.NewHTTPError(http.StatusBadRequest, "Không đọc được tệp tải lên")
	}
	return &apiclient.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     f,
	}, func() { f.Close() }, nil
}

// IsMultipart reports whether the request carries a multipart form.
func IsMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
