// internal/handlers/audit.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ranksight/ranksight-backend/internal/services"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// POST /audits/run
func (h *AuditHandler) RunAudit(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	report, err := h.auditService.RunAudit(c.Request.Context(), shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"summary":   report.Summary,
		"plan_info": report.PlanInfo,
	})
}

// GET /audits/summary
func (h *AuditHandler) GetSummary(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	summary, err := h.auditService.GetAuditSummary(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"summary": summary})
}

// GET /audits/products
func (h *AuditHandler) ListProducts(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.auditService.ListProductAudits(shopID, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /audits/products/:product_id
func (h *AuditHandler) AuditProduct(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	audit, err := h.auditService.AuditSingleProduct(c.Request.Context(), shopID, productID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"audit": audit})
}
