// internal/handlers/export.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ranksight/ranksight-backend/internal/services"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
	}
}

// GET /audits/export
func (h *ExportHandler) ExportAudits(c *gin.Context) {
	shopID, ok := shopIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.exportService.ExportAudits(shopID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	// With S3 configured the CSV is uploaded and a presigned URL returned;
	// otherwise the file is streamed inline.
	if result.DownloadURL != "" {
		utils.SuccessResponse(c, gin.H{
			"rows":         result.Rows,
			"download_url": result.DownloadURL,
		})
		return
	}

	filename := fmt.Sprintf("audit-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", result.CSV)
}
