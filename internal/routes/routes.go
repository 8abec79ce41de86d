package routes

import (
	"net/http"

	_ "jobboard_backend/docs"
	"jobboard_backend/internal/handlers"
	"jobboard_backend/internal/logger"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// EndpointRoots is listed by the catch-all 404 response.
var EndpointRoots = []string{
	"/api/v1/ - Main API endpoints",
	"/api/token/ - Authentication endpoints",
	"/api/schema/ - API schema",
	"/api/health/ - Health check",
}

// RegisterRoutes mounts every HTTP route on ginRouter.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers) {
	api := ginRouter.Group("/api")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.HealthHandler.RegisterRootRoutes(api)

		api.GET("/schema/", Schema)
		api.GET("/schema/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/api/schema/")))
	}

	v1 := api.Group("/v1")
	{
		appHandlers.HealthHandler.RegisterRoutes(v1)
		appHandlers.UserHandler.RegisterRoutes(v1)
		appHandlers.CompanyHandler.RegisterRoutes(v1)
		appHandlers.JobHandler.RegisterRoutes(v1)
		appHandlers.ApplicationHandler.RegisterRoutes(v1)
	}

	ginRouter.NoRoute(NotFound)
	logger.Info("HTTP routes registered", "routes", len(ginRouter.Routes()))
}

// Schema serves the OpenAPI document.
func Schema(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Failed to read API schema", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "schema unavailable"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":               "API endpoint not found",
		"available_endpoints": EndpointRoots,
	})
}
