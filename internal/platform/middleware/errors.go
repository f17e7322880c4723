package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// ErrorBody is the JSON shape of every error the gateway returns.
type ErrorBody struct {
	Error     string `json:"error"`
	Redirect  string `json:"redirect,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler renders errors as ErrorBody instead of echo's default
// {"message": ...}.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				msg = m
			case ErrorBody:
				writeError(c, code, m, logger)
				return
			default:
				msg = fmt.Sprint(m)
			}
		} else {
			logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		}

		writeError(c, code, ErrorBody{Error: msg}, logger)
	}
}

func writeError(c echo.Context, code int, body ErrorBody, logger zerolog.Logger) {
	if body.RequestID == "" {
		body.RequestID, _ = c.Get("request_id").(string)
	}
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to write error response")
	}
}
