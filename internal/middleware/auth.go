package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/service"
)

// ContextKeyUser holds the resolved *models.User in gin.Context.
const ContextKeyUser = "user"

const msgAuthRequired = "Authentication missing or invalid"

// OptionalAuth resolves the bearer credential if there is one. A missing,
// malformed or unknown token leaves the request anonymous; only a store
// failure stops it.
func OptionalAuth(resolver *service.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolver.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			logger.Error("failed to resolve credential", zap.Error(err))
			abort(c, http.StatusInternalServerError, err.Error())
			return
		}
		if user != nil {
			c.Set(ContextKeyUser, user)
		}
		c.Next()
	}
}

// RequireAuth rejects the request with 401 unless the bearer credential
// resolves to a user.
func RequireAuth(resolver *service.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolver.Resolve(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			logger.Error("failed to resolve credential", zap.Error(err))
			abort(c, http.StatusInternalServerError, err.Error())
			return
		}
		if user == nil {
			abort(c, http.StatusUnauthorized, msgAuthRequired)
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUser returns the user set by OptionalAuth or RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// abort writes the same {success, response, message} shape the handlers use.
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":  false,
		"response": nil,
		"message":  message,
	})
}
