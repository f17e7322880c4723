package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/multierr"

	"github.com/myhealth/myhealth/internal/platform/apiclient"
	"github.com/myhealth/myhealth/internal/platform/httputil"
	"github.com/myhealth/myhealth/internal/platform/session"
	"github.com/myhealth/myhealth/internal/platform/view"
)

// BackendError turns an error from the API client into the gateway's
// response. An auth rejection from the backend ends the session.
func BackendError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	if errors.Is(err, session.ErrNoSession) {
		return unauthorized("Vui lòng đăng nhập")
	}
	var ve *httputil.ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	}

	switch apiclient.Classify(err) {
	case apiclient.KindAuth:
		ctx := c.Request().Context()
		if s := StoreFromContext(ctx); s != nil {
			// The backend already refused the token; a failed clear only
			// leaves a bundle that will be refused again.
			_ = s.Clear(ctx)
		}
		return unauthorized("Phiên đăng nhập đã hết hạn, vui lòng đăng nhập lại")
	case apiclient.KindValidation:
		return echo.NewHTTPError(apiclient.StatusCode(err), apiclient.Message(err))
	case apiclient.KindServer:
		return echo.NewHTTPError(http.StatusBadGateway, "Máy chủ đang gặp sự cố, vui lòng thử lại sau")
	case apiclient.KindTransport:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Không thể kết nối tới máy chủ")
	case apiclient.KindCanceled:
		return echo.NewHTTPError(http.StatusGatewayTimeout, "Yêu cầu đã bị huỷ hoặc quá thời gian")
	}
	return err
}

// BulkDeleted answers a bulk delete: 200 when every key went, 207 with the
// per-key reasons when some failed. A 401/403 on any key ends the session
// the same way BackendError does.
func BulkDeleted[K comparable](c echo.Context, res view.BulkResult[K], err error) error {
	for _, e := range multierr.Errors(err) {
		if apiclient.IsAuth(e) {
			return BackendError(c, e)
		}
	}
	if err != nil {
		return c.JSON(http.StatusMultiStatus, res)
	}
	return c.JSON(http.StatusOK, res)
}
