package apperrors

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON envelope for every error.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler renders errors for gin handlers.
type GinErrorHandler struct {
	Debug bool
}

// debugErrors controls whether unknown errors keep their message.
var debugErrors bool

// SetDebug toggles verbose rendering of unexpected errors.
func SetDebug(debug bool) {
	debugErrors = debug
}

func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
		if h.Debug {
			appErr.Details = err.Error()
		}
	}

	if appErr.Status() >= 500 {
		slog.ErrorContext(c.Request.Context(), "server error",
			"error", appErr.Unwrap(),
			"path", c.Request.URL.Path,
		)
	}

	c.JSON(appErr.Status(), ErrorResponse{Error: appErr})
}

// HandleError renders err with the package-level debug setting.
func HandleError(c *gin.Context, err error) {
	handler := &GinErrorHandler{Debug: debugErrors}
	handler.HandleGinError(c, err)
}

// AbortWithError renders err and stops the middleware chain.
func AbortWithError(c *gin.Context, err error) {
	HandleError(c, err)
	c.Abort()
}

// AsAppError unwraps err into an *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
