// internal/handlers/visibility.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ranksight/ranksight-backend/internal/services"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type VisibilityHandler struct {
	visibilityService *services.VisibilityService
}

type runVisibilityRequest struct {
	Queries []string `json:"queries,omitempty"`
}

func NewVisibilityHandler(visibilityService *services.VisibilityService) *VisibilityHandler {
	return &VisibilityHandler{
		visibilityService: visibilityService,
	}
}

// POST /visibility/run
func (h *VisibilityHandler) RunCheck(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	// The body is optional; an empty queries list falls back to the shop's
	// industry defaults.
	var req runVisibilityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, "Invalid request body", err.Error())
			return
		}
	}

	result, err := h.visibilityService.RunVisibilityCheck(c.Request.Context(), shopID, req.Queries)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"run_id":   result.RunID,
		"checks":   result.Checks,
		"failures": result.Failures,
	})
}

// GET /visibility/history
func (h *VisibilityHandler) GetHistory(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.visibilityService.GetVisibilityHistory(shopID, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}
