package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService    services.UserService
	maxUploadSize  int64
	deleteThrottle gin.HandlerFunc
}

// NewUserHandler builds the user endpoints. deleteThrottle guards account
// deletion and may be nil.
func NewUserHandler(base *BaseHandler, userService services.UserService, maxUploadSize int64, deleteThrottle gin.HandlerFunc) *UserHandler {
	if deleteThrottle == nil {
		deleteThrottle = func(c *gin.Context) { c.Next() }
	}
	return &UserHandler{
		BaseHandler:    base,
		userService:    userService,
		maxUploadSize:  maxUploadSize,
		deleteThrottle: deleteThrottle,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	{
		users.POST("/", h.Register)

		protected := users.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.GET("/", h.List)

			protected.GET("/me/", h.GetMe)
			protected.PATCH("/me/", h.UpdateMe)
			protected.DELETE("/me/", h.deleteThrottle, h.DeleteMe)
			protected.PUT("/me/resume/", h.UploadResume)

			protected.GET("/:id/", h.Get)
			protected.PATCH("/:id/", h.Update)
			protected.DELETE("/:id/", h.deleteThrottle, h.Delete)
		}
	}
}

// Register godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "New user"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} apperrors.AppError
// @Router /api/v1/users/ [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.userService.Register(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List users
// @Tags users
// @Security BearerAuth
// @Param include_inactive query bool false "Admins only"
// @Param page query int false "Page number"
// @Router /api/v1/users/ [get]
func (h *UserHandler) List(c *gin.Context) {
	includeInactive, err := ParseQueryBool(c, "include_inactive")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	filter := dto.UserListFilter{Page: ParseQueryInt(c, "page", 1)}
	if includeInactive != nil {
		filter.IncludeInactive = *includeInactive
	}

	page, err := h.userService.List(h.GetDB(c), h.Actor(c), filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Paginated(h.BaseHandler, c, page)
}

// @Summary Get a user
// @Tags users
// @Security BearerAuth
// @Router /api/v1/users/{id}/ [get]
func (h *UserHandler) Get(c *gin.Context) {
	h.get(c, c.Param("id"))
}

func (h *UserHandler) GetMe(c *gin.Context) {
	h.get(c, middleware.GetUserID(c))
}

func (h *UserHandler) get(c *gin.Context, userID string) {
	user, err := h.userService.Get(h.GetDB(c), h.Actor(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Update a user
// @Tags users
// @Security BearerAuth
// @Router /api/v1/users/{id}/ [patch]
func (h *UserHandler) Update(c *gin.Context) {
	h.update(c, c.Param("id"))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	h.update(c, middleware.GetUserID(c))
}

func (h *UserHandler) update(c *gin.Context, userID string) {
	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.Update(h.GetDB(c), h.Actor(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary Deactivate a user
// @Tags users
// @Security BearerAuth
// @Router /api/v1/users/{id}/ [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	h.delete(c, c.Param("id"))
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	h.delete(c, middleware.GetUserID(c))
}

func (h *UserHandler) delete(c *gin.Context, userID string) {
	if err := h.userService.Delete(h.GetDB(c), h.Actor(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadResume godoc
// @Summary Upload the caller's resume
// @Tags users
// @Accept multipart/form-data
// @Param file formData file true "Resume (pdf, doc, docx, txt)"
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 413 {object} apperrors.AppError
// @Failure 415 {object} apperrors.AppError
// @Router /api/v1/users/me/resume/ [put]
func (h *UserHandler) UploadResume(c *gin.Context) {
	upload, file, ok := h.FormFile(c, "file", h.maxUploadSize)
	if !ok {
		return
	}
	defer file.Close()

	user, err := h.userService.UploadResume(c.Request.Context(), h.GetDB(c), h.Actor(c), upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
