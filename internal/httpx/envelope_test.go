package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ErrorHandler(err, c)
	return rec
}

func TestErrorHandlerTypedError(t *testing.T) {
	rec := record(t, NotFound("User not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"statusCode":404,"error":"Not Found","message":"User not found"}`, rec.Body.String())
}

func TestErrorHandlerWrappedTypedError(t *testing.T) {
	rec := record(t, fmt.Errorf("handler: %w", UnprocessableEntity("Incorrect Otp")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"statusCode":422,"error":"Unprocessable Entity","message":"Incorrect Otp"}`, rec.Body.String())
}

func TestErrorHandlerEchoError(t *testing.T) {
	rec := record(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"statusCode":405,"error":"Method Not Allowed","message":"Method Not Allowed"}`, rec.Body.String())
}

func TestErrorHandlerOpaqueInternal(t *testing.T) {
	rec := record(t, errors.New("sql: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// internals never leak to the client
	assert.NotContains(t, rec.Body.String(), "sql")
	assert.JSONEq(t, `{"statusCode":500,"error":"Internal Server Error","message":"internal server error"}`, rec.Body.String())
}

func TestAsError(t *testing.T) {
	apiErr, ok := AsError(fmt.Errorf("wrap: %w", Forbidden("no")))
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
}
