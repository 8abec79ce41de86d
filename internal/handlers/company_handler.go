package handlers

import (
	"net/http"

	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	*BaseHandler
	companyService services.CompanyService
	maxUploadSize  int64
}

func NewCompanyHandler(base *BaseHandler, companyService services.CompanyService, maxUploadSize int64) *CompanyHandler {
	return &CompanyHandler{
		BaseHandler:    base,
		companyService: companyService,
		maxUploadSize:  maxUploadSize,
	}
}

func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	companies := rg.Group("/companies")
	{
		companies.GET("/", h.List)
		companies.GET("/:id/", h.Get)

		protected := companies.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.POST("/", h.Create)
			protected.PATCH("/:id/", h.Update)
			protected.DELETE("/:id/", h.Delete)
			protected.PUT("/:id/logo/", h.UploadLogo)
		}
	}
}

// List godoc
// @Summary List companies
// @Tags companies
// @Produce json
// @Param name query string false "Exact company name"
// @Param page query int false "Page number"
// @Router /api/v1/companies/ [get]
func (h *CompanyHandler) List(c *gin.Context) {
	filter := dto.CompanyListFilter{
		Name: c.Query("name"),
		Page: ParseQueryInt(c, "page", 1),
	}

	page, err := h.companyService.List(h.GetDB(c), filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Paginated(h.BaseHandler, c, page)
}

// @Summary Get a company
// @Tags companies
// @Success 200 {object} dto.CompanyResponse
// @Router /api/v1/companies/{id}/ [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.companyService.Get(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

// Create godoc
// @Summary Create a company
// @Description Employers without a company are bound to the one they create.
// @Tags companies
// @Security BearerAuth
// @Param body body dto.CreateCompanyRequest true "Company"
// @Success 201 {object} dto.CompanyResponse
// @Router /api/v1/companies/ [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req dto.CreateCompanyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	company, err := h.companyService.Create(h.GetDB(c), h.Actor(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *CompanyHandler) Update(c *gin.Context) {
	var req dto.UpdateCompanyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	company, err := h.companyService.Update(h.GetDB(c), h.Actor(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) Delete(c *gin.Context) {
	if err := h.companyService.Delete(h.GetDB(c), h.Actor(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadLogo godoc
// @Summary Upload a company logo
// @Tags companies
// @Accept multipart/form-data
// @Param file formData file true "Image (jpeg, png, gif)"
// @Security BearerAuth
// @Success 200 {object} dto.CompanyResponse
// @Router /api/v1/companies/{id}/logo/ [put]
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	upload, file, ok := h.FormFile(c, "file", h.maxUploadSize)
	if !ok {
		return
	}
	defer file.Close()

	company, err := h.companyService.UploadLogo(c.Request.Context(), h.GetDB(c), h.Actor(c), c.Param("id"), upload)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
