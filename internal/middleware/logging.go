// internal/middleware/logging.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

// RequestLogger emits one structured log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
		})

		if userID, ok := utils.GetUserIDFromContext(c); ok {
			entry = entry.WithField("user_id", userID)
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}

// auditActions maps method+route patterns to audit action names. Only
// state-changing requests worth an audit trail are recorded.
var auditActions = map[string]string{
	"POST /v1/auth/register":              "user.register",
	"POST /v1/auth/login":                 "user.login",
	"POST /v1/checkout":                   "order.checkout",
	"POST /v1/orders/:id/cancel":          "order.cancel",
	"PATCH /v1/farmer/orders/:id/status":  "order.update_status",
	"PATCH /v1/admin/orders/:id/status":   "order.update_status",
	"POST /v1/farmer/products":            "product.create",
	"PUT /v1/farmer/products/:id":         "product.update",
	"DELETE /v1/farmer/products/:id":      "product.delete",
	"PUT /v1/admin/farmers/:id/approve":   "farmer.approve",
	"PUT /v1/admin/farmers/:id/reject":    "farmer.reject",
	"DELETE /v1/admin/farmers/:id":        "farmer.delete",
	"DELETE /v1/admin/products/:id":       "product.admin_delete",
	"DELETE /v1/admin/orders/:id":         "order.admin_delete",
}

// AuditLog persists an audit row for sensitive mutations. Failures are
// logged and swallowed so auditing never breaks the request.
func AuditLog(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action, ok := auditActions[c.Request.Method+" "+c.FullPath()]
		if !ok || c.Writer.Status() >= 400 {
			return
		}

		entry := models.AuditLog{
			Action:    action,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		if userIDStr, exists := utils.GetUserIDFromContext(c); exists {
			if userID, err := uuid.Parse(userIDStr); err == nil {
				entry.UserID = &userID
			}
		}

		if idParam := c.Param("id"); idParam != "" {
			if resourceID, err := uuid.Parse(idParam); err == nil {
				entry.ResourceID = &resourceID
			}
		}

		if err := db.Create(&entry).Error; err != nil {
			logrus.WithError(err).Warn("Failed to write audit log")
		}
	}
}
