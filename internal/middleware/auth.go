// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

// AuthRequired accepts either a dashboard session JWT ("Bearer <token>") or a
// programmatic API key in X-API-Key. Both resolve to a shop_id in context.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey := c.GetHeader("X-API-Key"); apiKey != "" {
			shop, ok := shopByAPIKey(db, apiKey)
			if !ok {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
				c.Abort()
				return
			}
			setShopContext(c, shop)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("shop_id", claims.ShopID)
		c.Set("shop_domain", claims.Domain)
		c.Set("shop_plan", claims.Plan)
		c.Next()
	}
}

func shopByAPIKey(db *gorm.DB, apiKey string) (*models.Shop, bool) {
	keyID, secret, ok := utils.SplitAPIKey(apiKey)
	if !ok {
		return nil, false
	}

	var shop models.Shop
	err := db.Where("api_key_id = ? AND status = ?", keyID, models.ShopStatusActive).
		First(&shop).Error
	if err != nil || !utils.CheckAPIKey(secret, shop.APIKeyHash) {
		return nil, false
	}
	return &shop, true
}

func setShopContext(c *gin.Context, shop *models.Shop) {
	c.Set("shop_id", shop.ID.String())
	c.Set("shop_domain", shop.Domain)
	c.Set("shop_plan", string(shop.Plan))
}
