package handlers

import (
	"net/http"

	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes mounts the token endpoints on the /api group.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	token := rg.Group("/token")
	{
		token.POST("/", h.Obtain)
		token.POST("/refresh/", h.Refresh)
		token.POST("/verify/", h.Verify)
		token.POST("/logout/", h.Logout)
	}
}

// Obtain godoc
// @Summary Obtain a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.TokenObtainRequest true "Credentials"
// @Success 200 {object} dto.TokenPairResponse
// @Failure 401 {object} apperrors.AppError
// @Router /api/token/ [post]
func (h *AuthHandler) Obtain(c *gin.Context) {
	var req dto.TokenObtainRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	pair, err := h.authService.Obtain(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Param body body dto.TokenRefreshRequest true "Refresh token"
// @Success 200 {object} dto.TokenPairResponse
// @Router /api/token/refresh/ [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.TokenRefreshRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	pair, err := h.authService.Refresh(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// @Summary Verify an access token
// @Tags auth
// @Router /api/token/verify/ [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req dto.TokenVerifyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.Verify(&req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// @Summary Revoke a refresh token
// @Tags auth
// @Router /api/token/logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.Logout(h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
