// internal/handlers/analytics.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ranksight/ranksight-backend/internal/services"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService  *services.AnalyticsService
	competitorService *services.CompetitorService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, competitorService *services.CompetitorService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService:  analyticsService,
		competitorService: competitorService,
	}
}

func daysParam(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		return 30
	}
	return days
}

// GET /analytics/trends
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	points, err := h.analyticsService.TrendData(shopID, daysParam(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"trends": points})
}

// GET /analytics/share-of-voice
func (h *AnalyticsHandler) GetShareOfVoice(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	competitors, err := h.competitorService.ListCompetitors(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	names := make([]string, 0, len(competitors))
	for _, comp := range competitors {
		names = append(names, comp.Name)
	}

	result, err := h.analyticsService.ShareOfVoice(shopID, names, daysParam(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"share_of_voice": result})
}

// GET /analytics/positions
func (h *AnalyticsHandler) GetPositions(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	points, err := h.analyticsService.PositionHistory(shopID, daysParam(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"positions": points})
}
