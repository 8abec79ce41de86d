package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error, debug bool) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	(&GinErrorHandler{Debug: debug}).HandleGinError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return rec, errObj
}

func TestHandleGinError_AppErrorEnvelope(t *testing.T) {
	cause := errors.New("row missing")
	rec, body := render(t, fmt.Errorf("load job: %w", ErrNotFound(cause)), false)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "resource", body["domain"])
	assert.Equal(t, "Not found.", body["message"])
	assert.NotContains(t, rec.Body.String(), "row missing")
}

func TestHandleGinError_FieldDetails(t *testing.T) {
	rec, body := render(t, FieldError("email", "A user with this email already exists."), false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.Equal(t, map[string]interface{}{"email": "A user with this email already exists."}, body["details"])
}

func TestHandleGinError_UnknownErrors(t *testing.T) {
	rec, body := render(t, errors.New("dial tcp: refused"), false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Nil(t, body["details"])

	_, body = render(t, errors.New("dial tcp: refused"), true)
	assert.Equal(t, "dial tcp: refused", body["details"])
}

func TestAppError_UnwrapAndStatus(t *testing.T) {
	cause := errors.New("boom")
	err := InternalError(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "system INTERNAL_ERROR: Internal server error: boom", err.Error())

	assert.Equal(t, http.StatusInternalServerError, (&AppError{}).Status())
	assert.Equal(t, http.StatusTooManyRequests, NewRateLimitedError(3).Status())
}
