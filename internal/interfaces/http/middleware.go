package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/citimr/aid-portal/internal/auth"
	"github.com/citimr/aid-portal/internal/domain/entity"
)

const claimsKey = "auth_claims"

// authMiddleware validates the Bearer token and stores its claims on the
// gin context.
func authMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		claims, err := issuer.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireAdmin rejects non-administrator sessions. Runs after authMiddleware.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claimsFrom(c).Role != entity.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, Response{
				Success: false,
				Error:   "administrator access required",
			})
			return
		}
		c.Next()
	}
}

// claimsFrom returns the claims stored by authMiddleware.
func claimsFrom(c *gin.Context) *auth.Claims {
	claims, _ := c.MustGet(claimsKey).(*auth.Claims)
	return claims
}
