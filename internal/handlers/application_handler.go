package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService  services.ApplicationService
	notificationService services.NotificationService
}

func NewApplicationHandler(
	base *BaseHandler,
	applicationService services.ApplicationService,
	notificationService services.NotificationService,
) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:         base,
		applicationService:  applicationService,
		notificationService: notificationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	apps := rg.Group("/applications")
	apps.Use(middleware.RequireAuth())
	{
		apps.GET("/", h.List)
		apps.POST("/", h.Create)
		apps.GET("/my_applications/", h.MyApplications)
		apps.POST("/notify/", middleware.RequireAdmin(), h.Notify)

		apps.GET("/:id/", h.Get)
		apps.PATCH("/:id/", h.Update)
		apps.DELETE("/:id/", h.Withdraw)
		apps.POST("/:id/update_status/", h.UpdateStatus)
	}
}

// List godoc
// @Summary List applications in the caller's scope
// @Description Employers see applications to their jobs, candidates their own, admins all.
// @Tags applications
// @Security BearerAuth
// @Param status query string false "APP, REV, INT, OFF or REJ"
// @Param job__id query string false "Job id"
// @Param candidate__id query string false "Candidate id"
// @Param page query int false "Page number"
// @Router /api/v1/applications/ [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	filter := dto.ApplicationFilter{
		Status:      models.ApplicationStatus(c.Query("status")),
		JobID:       c.Query("job__id"),
		CandidateID: c.Query("candidate__id"),
		Page:        ParseQueryInt(c, "page", 1),
	}
	if !h.Validate(c, &filter) {
		return
	}

	page, err := h.applicationService.List(h.GetDB(c), h.Actor(c), filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Paginated(h.BaseHandler, c, page)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.applicationService.Get(h.GetDB(c), h.Actor(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Create godoc
// @Summary Apply to a job
// @Tags applications
// @Security BearerAuth
// @Param body body dto.CreateApplicationRequest true "Application"
// @Success 201 {object} dto.ApplicationResponse
// @Failure 400 {object} apperrors.AppError
// @Failure 403 {object} apperrors.AppError
// @Router /api/v1/applications/ [post]
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	app, err := h.applicationService.Create(c.Request.Context(), h.GetDB(c), h.Actor(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// @Summary Update an application
// @Tags applications
// @Security BearerAuth
// @Router /api/v1/applications/{id}/ [patch]
func (h *ApplicationHandler) Update(c *gin.Context) {
	var req dto.UpdateApplicationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	app, err := h.applicationService.Update(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Withdraw(c *gin.Context) {
	if err := h.applicationService.Withdraw(h.GetDB(c), h.Actor(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateStatus godoc
// @Summary Move an application to a new status
// @Description Rejected applications cannot be reopened.
// @Tags applications
// @Security BearerAuth
// @Param body body dto.UpdateStatusRequest true "Status"
// @Success 200 {object} dto.ApplicationResponse
// @Router /api/v1/applications/{id}/update_status/ [post]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	app, err := h.applicationService.UpdateStatus(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// @Summary The caller's applications
// @Tags applications
// @Security BearerAuth
// @Success 200 {array} dto.ApplicationResponse
// @Router /api/v1/applications/my_applications/ [get]
func (h *ApplicationHandler) MyApplications(c *gin.Context) {
	apps, err := h.applicationService.MyApplications(h.GetDB(c), h.Actor(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// Notify godoc
// @Summary Queue emails for a batch of applications
// @Tags applications
// @Security BearerAuth
// @Param body body dto.BulkNotifyRequest true "Batch"
// @Success 200 {object} dto.BulkNotifyResponse
// @Router /api/v1/applications/notify/ [post]
func (h *ApplicationHandler) Notify(c *gin.Context) {
	var req dto.BulkNotifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.notificationService.Bulk(c.Request.Context(), h.GetDB(c), h.Actor(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
