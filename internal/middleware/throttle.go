package middleware

import (
	"math"
	"strconv"

	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/throttle"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ThrottleRates are the request budgets per caller.
type ThrottleRates struct {
	Anon   throttle.Rate
	User   throttle.Rate
	Delete throttle.Rate
}

// ThrottleMiddleware applies the anonymous budget per client IP and the
// user budget per authenticated user. It must run after AuthMiddleware.
func ThrottleMiddleware(limiter *throttle.Limiter, rates ThrottleRates) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := GetActor(c); actor != nil {
			enforce(c, limiter, "user", actor.ID, rates.User)
			return
		}
		enforce(c, limiter, "anon", c.ClientIP(), rates.Anon)
	}
}

// ScopedThrottle applies an extra budget to one route group, e.g. account
// deletion. Only requests with one of methods are counted.
func ScopedThrottle(limiter *throttle.Limiter, scope string, rate throttle.Rate, methods ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(methods) > 0 && !contains(methods, c.Request.Method) {
			c.Next()
			return
		}
		ident := GetUserID(c)
		if ident == "" {
			ident = c.ClientIP()
		}
		enforce(c, limiter, scope, ident, rate)
	}
}

func enforce(c *gin.Context, limiter *throttle.Limiter, scope, ident string, rate throttle.Rate) {
	if rate.Limit <= 0 {
		c.Next()
		return
	}

	res, err := limiter.Allow(c.Request.Context(), scope, ident, rate)
	if err != nil {
		// Fail open when the store is unreachable.
		logger.CtxWarn(c.Request.Context(), "throttle store unavailable", "scope", scope, "error", err)
		c.Next()
		return
	}

	c.Header("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

	if !res.Allowed {
		wait := int(math.Ceil(res.RetryAfter.Seconds()))
		if wait < 1 {
			wait = 1
		}
		c.Header("Retry-After", strconv.Itoa(wait))
		logger.CtxWarn(c.Request.Context(), "request throttled", "scope", scope, "ident", ident)
		apperrors.AbortWithError(c, apperrors.NewRateLimitedError(wait))
		return
	}
	c.Next()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
