package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "bugscape/internal/errors"
	"bugscape/internal/logging"
)

// HTTPErrorHandler renders every error as {"message": ...}. Errors that map
// to a 5xx are logged with their cause and answered generically.
func HTTPErrorHandler(logger logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *apperrors.HTTPError
		var echoErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
		case errors.As(err, &echoErr):
			msg, ok := echoErr.Message.(string)
			if !ok {
				msg = http.StatusText(echoErr.Code)
			}
			appErr = apperrors.NewHTTPError(echoErr.Code, msg, err)
		default:
			appErr = apperrors.MapErrorToHTTP(err)
		}

		req := c.Request()
		if appErr.StatusCode >= http.StatusInternalServerError {
			logger.Error(req.Context(), "request failed",
				"error", err,
				"method", req.Method,
				"url", req.URL.String(),
				"origin", req.Header.Get("Origin"),
			)
		}

		if req.Method == http.MethodHead {
			_ = c.NoContent(appErr.StatusCode)
			return
		}
		_ = c.JSON(appErr.StatusCode, appErr.ToErrorResponse())
	}
}
