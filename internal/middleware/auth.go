package middleware

import (
	"strings"

	"jobboard_backend/internal/auth"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/models"
	"jobboard_backend/pkg/apperrors"
	"jobboard_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Authenticator resolves an access token to an active user.
type Authenticator interface {
	Authenticate(db *gorm.DB, accessToken string) (*models.User, error)
}

// AuthMiddleware loads the actor for requests carrying a Bearer token.
// Requests without a token pass through as anonymous; a bad token is
// rejected with 401.
func AuthMiddleware(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenStr, ok := bearerToken(authHeader)
		if !ok {
			apperrors.AbortWithError(c, apperrors.ErrInvalidToken)
			return
		}

		db, _ := c.Get(string(contextkeys.DBContextKey))
		gdb, _ := db.(*gorm.DB)
		if gdb == nil {
			apperrors.AbortWithError(c, apperrors.NewUnauthorizedError("Authentication is unavailable"))
			return
		}

		user, err := authn.Authenticate(gdb, tokenStr)
		if err != nil {
			apperrors.AbortWithError(c, err)
			return
		}

		actor := auth.ActorFromUser(user)
		c.Set(string(contextkeys.ActorContextKey), actor)
		c.Set(string(contextkeys.UserIDKey), actor.ID)
		c.Set(string(contextkeys.UserTypeKey), string(actor.UserType))

		ctx := logger.WithUserID(c.Request.Context(), actor.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(contextkeys.DBContextKey), gdb.WithContext(ctx))

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActor(c) == nil {
			apperrors.AbortWithError(c, apperrors.ErrAuthenticationRequired)
			return
		}
		c.Next()
	}
}

// RequireAdmin allows staff users only.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			apperrors.AbortWithError(c, apperrors.ErrAuthenticationRequired)
			return
		}
		if !auth.IsAdmin(actor) {
			apperrors.AbortWithError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated actor, or nil for anonymous requests.
func GetActor(c *gin.Context) *auth.Actor {
	val, exists := c.Get(string(contextkeys.ActorContextKey))
	if !exists {
		return nil
	}
	actor, _ := val.(*auth.Actor)
	return actor
}

func GetUserID(c *gin.Context) string {
	if actor := GetActor(c); actor != nil {
		return actor.ID
	}
	return ""
}
