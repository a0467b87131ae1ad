package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"metaconvert/internal/domain"
	jwtsvc "metaconvert/internal/pkg/jwt"
	"metaconvert/internal/pkg/response"
)

// Auth validates the Bearer token and stores user_id and role on the context.
func Auth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwt)
		if !ok {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// OptionalAuth sets identity when a valid token is present but lets anonymous
// requests through. Conversion and upscale creation permit anonymous writes.
func OptionalAuth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, jwt); ok {
			c.Set("user_id", claims.UserID)
			c.Set("role", claims.Role)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, jwt *jwtsvc.Service) (*jwtsvc.Claims, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, false
	}
	tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if tokenStr == "" {
		return nil, false
	}
	claims, err := jwt.ValidateToken(tokenStr)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// ActorFrom rebuilds the caller identity stored by Auth/OptionalAuth.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetInt64("user_id"),
		Admin:  c.GetString("role") == string(domain.RoleAdmin),
	}
}
