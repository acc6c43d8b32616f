// internal/middleware/i18n.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/agrilink/agrilink-backend/internal/i18n"
)

// I18n resolves the request locale from ?lang= or Accept-Language.
func I18n() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Query("lang")
		if lang == "" {
			lang = c.GetHeader("Accept-Language")
		}
		c.Set("lang", i18n.NormalizeLang(lang))
		c.Next()
	}
}
