// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agrilink/agrilink-backend/internal/i18n"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

// AuthRequired validates the bearer token and stores the caller's identity
// in the gin context under user_id, user_name, user_role and user_status.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractClaims(c)
		if !ok {
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Set("user_status", claims.Status)
		c.Next()
	}
}

// OptionalAuth populates the caller's identity when a valid token is present
// but never rejects the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(tokenString)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Set("user_status", claims.Status)
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return roleRequired(models.UserRoleAdmin)
}

func FarmerRequired() gin.HandlerFunc {
	return roleRequired(models.UserRoleFarmer)
}

func BuyerRequired() gin.HandlerFunc {
	return roleRequired(models.UserRoleBuyer)
}

func roleRequired(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := utils.GetUserRoleFromContext(c)
		if !exists {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}
		if userRole != string(role) {
			lang := utils.GetLangFromContext(c)
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAccessDenied))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActiveRequired rejects callers whose account has not been approved yet.
// Buyers are active on registration; farmers go through admin review.
func ActiveRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, exists := c.Get("user_status")
		if !exists {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		lang := utils.GetLangFromContext(c)
		switch status {
		case string(models.UserStatusActive):
			c.Next()
		case string(models.UserStatusPending):
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthAccountPending))
			c.Abort()
		default:
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthAccountRejected))
			c.Abort()
		}
	}
}

func extractClaims(c *gin.Context) (*utils.JWTClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		utils.UnauthorizedResponse(c, "")
		c.Abort()
		return nil, false
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		utils.UnauthorizedResponse(c, "")
		c.Abort()
		return nil, false
	}

	claims, err := utils.ValidateJWT(tokenString)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyTokenInvalid))
		c.Abort()
		return nil, false
	}

	return claims, true
}
