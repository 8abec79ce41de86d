package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/internal/validator"
	"jobboard_backend/pkg/apperrors"
	"jobboard_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BaseHandler struct {
	validator *validator.Validator
	baseURL   string
}

// NewBaseHandler builds the shared handler helpers. baseURL, when set,
// prefixes pagination links instead of the request host.
func NewBaseHandler(v *validator.Validator, baseURL string) *BaseHandler {
	return &BaseHandler{
		validator: v,
		baseURL:   baseURL,
	}
}

// GetDB returns the request scoped *gorm.DB set by DBMiddleware.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// Actor is the authenticated caller, or nil.
func (h *BaseHandler) Actor(c *gin.Context) *auth.Actor {
	return middleware.GetActor(c)
}

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
		return false
	}

	return h.Validate(c, obj)
}

// Validate runs the struct's `validate` tags and renders failures as 400.
func (h *BaseHandler) Validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	if appErr, ok := apperrors.AsAppError(err); ok {
		logger.CtxWarn(ctx, "Service error",
			"error", appErr.Message,
			"details", appErr.Details,
			"path", c.Request.URL.Path,
		)
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

// FormFile opens the multipart file under field. The caller closes it.
func (h *BaseHandler) FormFile(c *gin.Context, field string, maxSize int64) (*services.FileUpload, multipart.File, bool) {
	if maxSize > 0 {
		// Leave room for the multipart envelope.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+1<<20)
	}

	header, err := c.FormFile(field)
	if err != nil {
		apperrors.HandleError(c, apperrors.FieldError(field, "No file was submitted."))
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return nil, nil, false
	}

	return &services.FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	}, file, true
}

func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// ParseQueryBool returns nil when key is absent. Values follow
// strconv.ParseBool, so "True", "false" and "1" are all accepted.
func ParseQueryBool(c *gin.Context, key string) (*bool, error) {
	valueStr := c.Query(key)
	if valueStr == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return nil, apperrors.FieldError(key, "Enter a valid boolean.")
	}
	return &value, nil
}

func ParseQueryFloat(c *gin.Context, keys ...string) (*float64, error) {
	for _, key := range keys {
		valueStr := c.Query(key)
		if valueStr == "" {
			continue
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, apperrors.FieldError(key, "Enter a number.")
		}
		return &value, nil
	}
	return nil, nil
}

// QueryAny returns the first non-empty value among keys.
func QueryAny(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if v := c.Query(key); v != "" {
			return v
		}
	}
	return ""
}

// Paginated renders a page in the {count, next, previous, results} envelope.
func Paginated[T any](h *BaseHandler, c *gin.Context, page *dto.Page[T]) {
	c.JSON(http.StatusOK, dto.PaginatedResponse[T]{
		Count:    page.Total,
		Next:     h.pageLink(c, page.Number+1, page.HasNext()),
		Previous: h.pageLink(c, page.Number-1, page.HasPrevious()),
		Results:  page.Items,
	})
}

func (h *BaseHandler) pageLink(c *gin.Context, number int, ok bool) *string {
	if !ok {
		return nil
	}

	u := *c.Request.URL
	query := u.Query()
	if number <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()

	base := h.baseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}

	link := base + (&url.URL{Path: u.Path, RawQuery: u.RawQuery}).String()
	return &link
}
