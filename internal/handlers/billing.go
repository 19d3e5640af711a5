// internal/handlers/billing.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/services"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type BillingHandler struct {
	billingService *services.BillingService
	shopService    *services.ShopService
}

type checkoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

func NewBillingHandler(billingService *services.BillingService, shopService *services.ShopService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		shopService:    shopService,
	}
}

// POST /billing/checkout
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	shop, err := h.shopService.GetShop(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	checkout, err := h.billingService.CreateCheckoutSession(shop, models.PlanID(req.Plan))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"checkout": checkout})
}

// POST /billing/webhook
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read payload", nil)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleWebhook(payload, signature); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"received": true})
}
