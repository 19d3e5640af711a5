// internal/handlers/shop.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ranksight/ranksight-backend/internal/services"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type ShopHandler struct {
	shopService  *services.ShopService
	quotaService *services.QuotaService
	jwtTTLHours  int
}

func NewShopHandler(shopService *services.ShopService, quotaService *services.QuotaService, jwtTTLHours int) *ShopHandler {
	return &ShopHandler{
		shopService:  shopService,
		quotaService: quotaService,
		jwtTTLHours:  jwtTTLHours,
	}
}

// POST /shops/register
func (h *ShopHandler) Register(c *gin.Context) {
	var req services.RegisterShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	registered, err := h.shopService.RegisterShop(&req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"shop":    registered.Shop,
		"api_key": registered.APIKey,
	})
}

// GET /shops/me
func (h *ShopHandler) GetShop(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	shop, err := h.shopService.GetShop(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"shop": shop})
}

// PUT /shops/me
func (h *ShopHandler) UpdateShop(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var req services.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	shop, err := h.shopService.UpdateShop(shopID, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"shop": shop})
}

// DELETE /shops/me
func (h *ShopHandler) Uninstall(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	if err := h.shopService.UninstallShop(shopID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Shop uninstalled"})
}

// POST /shops/me/token
//
// Exchanges an API key for a short-lived dashboard session token, so the
// embedded app never holds the long-lived key in the browser.
func (h *ShopHandler) CreateSessionToken(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	shop, err := h.shopService.GetShop(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	token, err := utils.GenerateJWT(shop.ID, shop.Domain, string(shop.Plan), h.jwtTTLHours)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to issue session token")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token":            token,
		"expires_in_hours": h.jwtTTLHours,
	})
}

// GET /shops/me/quota
func (h *ShopHandler) GetQuota(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	shop, err := h.shopService.GetShop(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	snapshot, err := h.quotaService.Snapshot(shop)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"quota": snapshot})
}

// shopIDFromContext pulls the authenticated shop ID set by the auth
// middleware; it writes the error response itself on failure.
func shopIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	shopIDStr, exists := utils.GetShopIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	shopID, err := uuid.Parse(shopIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid shop ID", nil)
		return uuid.Nil, false
	}
	return shopID, true
}
