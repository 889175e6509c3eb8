package server

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"k3l.io/go-amge/pkg/amge"
	"k3l.io/go-amge/pkg/api/openapi"
)

// HTTPError is an error with the HTTP status code it should be
// answered with.
type HTTPError struct {
	Code  int
	Inner error
}

func (e HTTPError) Error() string {
	statusText := http.StatusText(e.Code)
	if statusText != "" {
		statusText = " " + statusText
	}
	return fmt.Sprintf("HTTP %d%s: %s", e.Code, statusText, e.Inner.Error())
}

func (e HTTPError) Unwrap() error { return e.Inner }

// statusOf maps a build error onto an HTTP status code.
func statusOf(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, amge.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, amge.ErrSolverFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// asHTTPError returns the HTTPError in err's chain,
// or err wrapped into one with the status statusOf chooses.
func asHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return HTTPError{Code: statusOf(err), Inner: err}
}

// ErrorHandler answers an HTTPError with its code and an openapi.Error
// body carrying the inner error; other errors go to fallback.
func ErrorHandler(fallback echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var httpErr HTTPError
		if !errors.As(err, &httpErr) {
			fallback(err, c)
			return
		}
		ctx := c.Request().Context()
		event := zerolog.Ctx(ctx).Debug()
		if httpErr.Code >= http.StatusInternalServerError {
			event = zerolog.Ctx(ctx).Error()
		}
		event.Err(httpErr.Inner).Int("status", httpErr.Code).Msg("request failed")
		if c.Response().Committed {
			return
		}
		body := openapi.Error{Message: httpErr.Inner.Error()}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.Code)
		} else {
			err = c.JSON(httpErr.Code, body)
		}
		if err != nil {
			zerolog.Ctx(ctx).Err(err).Msg("cannot send error response")
		}
	}
}
