// internal/handlers/competitor.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ranksight/ranksight-backend/internal/services"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type CompetitorHandler struct {
	competitorService *services.CompetitorService
	shopService       *services.ShopService
}

func NewCompetitorHandler(competitorService *services.CompetitorService, shopService *services.ShopService) *CompetitorHandler {
	return &CompetitorHandler{
		competitorService: competitorService,
		shopService:       shopService,
	}
}

// POST /competitors
func (h *CompetitorHandler) AddCompetitor(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	shop, err := h.shopService.GetShop(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	var req services.AddCompetitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	competitor, err := h.competitorService.AddCompetitor(shop, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"competitor": competitor})
}

// GET /competitors
func (h *CompetitorHandler) ListCompetitors(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	competitors, err := h.competitorService.ListCompetitors(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"competitors": competitors})
}

// DELETE /competitors/:id
func (h *CompetitorHandler) RemoveCompetitor(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	competitorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid competitor ID", nil)
		return
	}

	if err := h.competitorService.RemoveCompetitor(shopID, competitorID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Competitor removed"})
}
