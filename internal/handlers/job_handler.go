package handlers

import (
	"fmt"
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/models"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/jobs")
	{
		jobs.GET("/", h.List)
		jobs.GET("/my_jobs/", middleware.RequireAuth(), h.MyJobs)
		jobs.GET("/:id/", h.Get)

		protected := jobs.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.POST("/", h.Create)
			protected.PATCH("/:id/", h.Update)
			protected.DELETE("/:id/", h.Delete)
			protected.POST("/:id/toggle_active/", h.ToggleActive)
			protected.GET("/:id/applications/", h.Applications)
		}
	}
}

func parseJobFilter(c *gin.Context) (dto.JobFilter, error) {
	var filter dto.JobFilter

	if jt := c.Query("job_type"); jt != "" {
		jobType := models.JobType(jt)
		if !jobType.IsValid() {
			return filter, apperrors.FieldError("job_type",
				fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", jt))
		}
		filter.JobType = jobType
	}

	var err error
	if filter.SalaryMin, err = ParseQueryFloat(c, "salary_min", "salary__gte"); err != nil {
		return filter, err
	}
	if filter.SalaryMax, err = ParseQueryFloat(c, "salary_max", "salary__lte"); err != nil {
		return filter, err
	}
	if filter.IsActive, err = ParseQueryBool(c, "is_active"); err != nil {
		return filter, err
	}

	filter.Location = c.Query("location")
	filter.CompanyName = QueryAny(c, "company_name", "company__name")
	return filter, nil
}

// List godoc
// @Summary List jobs
// @Description Not paginated. Anonymous users and non-employers only see active jobs.
// @Tags jobs
// @Produce json
// @Param job_type query string false "FT, PT, INT, CON or REM"
// @Param location query string false "Case-insensitive substring"
// @Param salary_min query number false "Minimum salary"
// @Param salary_max query number false "Maximum salary"
// @Param company_name query string false "Case-insensitive substring"
// @Param is_active query bool false "Active flag"
// @Success 200 {array} dto.JobListItem
// @Router /api/v1/jobs/ [get]
func (h *JobHandler) List(c *gin.Context) {
	filter, err := parseJobFilter(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	jobs, err := h.jobService.List(h.GetDB(c), h.Actor(c), filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// @Summary Get a job
// @Tags jobs
// @Success 200 {object} dto.JobDetail
// @Router /api/v1/jobs/{id}/ [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobService.Get(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Create godoc
// @Summary Post a job
// @Tags jobs
// @Security BearerAuth
// @Param body body dto.CreateJobRequest true "Job"
// @Success 201 {object} dto.JobDetail
// @Failure 403 {object} apperrors.AppError
// @Router /api/v1/jobs/ [post]
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.Create(h.GetDB(c), h.Actor(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.Update(h.GetDB(c), h.Actor(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.jobService.Delete(h.GetDB(c), h.Actor(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleActive godoc
// @Summary Flip a job's active flag
// @Tags jobs
// @Security BearerAuth
// @Success 200 {object} dto.ToggleActiveResponse
// @Router /api/v1/jobs/{id}/toggle_active/ [post]
func (h *JobHandler) ToggleActive(c *gin.Context) {
	resp, err := h.jobService.ToggleActive(h.GetDB(c), h.Actor(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Applications to a job
// @Tags jobs
// @Security BearerAuth
// @Success 200 {array} dto.ApplicationResponse
// @Router /api/v1/jobs/{id}/applications/ [get]
func (h *JobHandler) Applications(c *gin.Context) {
	apps, err := h.jobService.Applications(h.GetDB(c), h.Actor(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// @Summary The caller's job postings
// @Tags jobs
// @Security BearerAuth
// @Success 200 {array} dto.JobListItem
// @Router /api/v1/jobs/my_jobs/ [get]
func (h *JobHandler) MyJobs(c *gin.Context) {
	jobs, err := h.jobService.MyJobs(h.GetDB(c), h.Actor(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}
