package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// PlainTextErrorHandler writes handler errors as text/plain bodies
func PlainTextErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)

		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			code = echoErr.Code
			msg = fmt.Sprint(echoErr.Message)
		}

		entry := logger.WithField("status", code)
		if code >= http.StatusInternalServerError {
			entry.Errorf("error occurred on http request processing - %v", err)
		} else {
			entry.Debugf("request rejected - %v", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.String(code, msg)
		}
		if err != nil {
			logger.Errorf("failed to write error response - %v", err)
		}
	}
}
