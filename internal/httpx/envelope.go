package httpx

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the success wrapper: list and detail payloads ride in `data`,
// request-scoped extras (job ids, messages) in `meta`.
type Envelope struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Data wraps a payload in the standard envelope.
func Data(v any) Envelope { return Envelope{Data: v} }

// DataMeta wraps a payload plus meta fields.
func DataMeta(v any, meta map[string]any) Envelope { return Envelope{Data: v, Meta: meta} }

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	ErrorText  string `json:"error"`
	Message    string `json:"message"`
}

// ErrorHandler is installed as the Echo HTTPErrorHandler. Typed errors keep
// their status and message; echo.HTTPError passes through; everything else
// becomes an opaque 500 and is logged with its cause.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	if apiErr, ok := AsError(err); ok {
		status = apiErr.Status
		message = apiErr.Message
	} else if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if s, ok := he.Message.(string); ok {
			message = s
		} else {
			message = http.StatusText(status)
		}
	} else {
		slog.Error("unhandled request error",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	body := errorBody{StatusCode: status, ErrorText: http.StatusText(status), Message: message}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
