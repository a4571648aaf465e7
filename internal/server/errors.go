package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errUnavailable = errors.New("unavailable")

// errorHandler writes every failure as {"error", "code"}. AppErrors keep their
// code and message; anything else is reported as an opaque 500.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   errorBody
		he     *echo.HTTPError
	)
	switch {
	case errors.As(err, &he):
		status = he.Code
		body = errorBody{Error: http.StatusText(he.Code), Code: codeForStatus(he.Code)}
		if msg, ok := he.Message.(string); ok {
			body.Error = msg
		}
	case errors.Is(err, errUnavailable):
		status = http.StatusServiceUnavailable
		body = errorBody{Error: common.PublicMessage(err), Code: common.ErrorCode(err)}
	default:
		status = common.HTTPStatus(err)
		body = errorBody{Error: common.PublicMessage(err), Code: common.ErrorCode(err)}
		if status == http.StatusInternalServerError {
			body = errorBody{Error: "internal server error", Code: "INTERNAL"}
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("http.request.failed",
			"request_id", common.RequestIDFromContext(c.Request().Context()),
			"path", c.Path(),
			"status", status,
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Warn("http.error_response.write_failed", "error", err)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusRequestEntityTooLarge:
		return "TOO_LARGE"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

func unavailable(msg string) error {
	return common.NewAppError("UNAVAILABLE", msg, errUnavailable)
}
