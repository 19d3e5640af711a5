// internal/services/audit_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/catalog"
	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/plans"
	"github.com/ranksight/ranksight-backend/internal/scoring"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

// AuditService walks a shop's catalog page by page, scores every product up
// to the plan cap and recomputes the shop summary from the full audit set.
// Runs are idempotent: re-running over an unchanged catalog rewrites
// byte-identical rows, so callers can always retry a failed run.
type AuditService struct {
	db       *gorm.DB
	source   catalog.Source
	plans    *plans.Table
	pageSize int
	now      func() time.Time
}

// PlanInfo reports the cap applied to a run. ProductsNotAnalyzed is never
// silently dropped; the UI uses it to render an upgrade prompt.
type PlanInfo struct {
	Plan                models.PlanID `json:"plan"`
	ProductLimit        int           `json:"product_limit"`
	ProductsNotAnalyzed int           `json:"products_not_analyzed"`
}

type AuditReport struct {
	Summary  *models.AuditSummary `json:"summary"`
	PlanInfo PlanInfo             `json:"plan_info"`
}

func NewAuditService(db *gorm.DB, source catalog.Source, planTable *plans.Table, pageSize int) *AuditService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &AuditService{
		db:       db,
		source:   source,
		plans:    planTable,
		pageSize: pageSize,
		now:      time.Now,
	}
}

// RunAudit fetches and scores the catalog for one shop. Catalog failures
// abort the run with a typed error and leave the previous summary untouched.
func (s *AuditService) RunAudit(ctx context.Context, shopID uuid.UUID) (*AuditReport, error) {
	var shop models.Shop
	if err := s.db.First(&shop, "id = ?", shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "shop %s", shopID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	limits := s.plans.Limits(shop.Plan)
	productCap := limits.ProductsAudited
	runAt := s.now().UTC()

	audited := 0
	totalSeen := 0
	cursor := ""
	for {
		page, err := s.source.FetchPage(ctx, shop.Domain, shop.AccessToken, cursor, s.pageSize)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"shop_id": shopID,
				"cursor":  cursor,
			}).WithError(err).Error("Audit aborted: catalog fetch failed")
			return nil, err
		}

		for _, product := range page.Items {
			totalSeen++
			if audited >= productCap {
				// Past the plan cap: keep counting so the drop is reported,
				// but stop scoring and writing.
				continue
			}
			if err := s.upsertAudit(shop.ID, product, runAt); err != nil {
				return nil, fmt.Errorf("failed to persist audit for product %d: %w", product.ID, err)
			}
			audited++
		}

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	summary, err := s.recomputeSummary(shop.ID, totalSeen, audited, runAt)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"shop_id":        shopID,
		"total_products": totalSeen,
		"audited":        audited,
		"average_score":  summary.AverageScore,
	}).Info("Audit run completed")

	return &AuditReport{
		Summary: summary,
		PlanInfo: PlanInfo{
			Plan:                shop.Plan,
			ProductLimit:        productCap,
			ProductsNotAnalyzed: summary.ProductsNotAnalyzed,
		},
	}, nil
}

func (s *AuditService) upsertAudit(shopID uuid.UUID, product catalog.Product, runAt time.Time) error {
	result := scoring.Score(product)

	audit := models.ProductAudit{
		ShopID:            shopID,
		ProductID:         product.ID,
		Title:             product.Title,
		Handle:            product.Handle,
		AIScore:           result.AIScore,
		Issues:            result.Issues,
		HasImages:         result.HasImages,
		HasDescription:    result.HasDescription,
		HasMetafields:     result.HasMetafields,
		DescriptionLength: result.DescriptionLength,
		LastAuditAt:       runAt,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "handle", "ai_score", "issues", "has_images",
			"has_description", "has_metafields", "description_length",
			"last_audit_at", "updated_at",
		}),
	}).Create(&audit).Error
}

// recomputeSummary aggregates the full ProductAudit set for the shop, never
// just the pages processed in this run, and overwrites the cached row.
func (s *AuditService) recomputeSummary(shopID uuid.UUID, totalSeen, audited int, runAt time.Time) (*models.AuditSummary, error) {
	var audits []models.ProductAudit
	if err := s.db.Where("shop_id = ?", shopID).Find(&audits).Error; err != nil {
		return nil, fmt.Errorf("failed to load audit rows: %w", err)
	}

	summary := models.AuditSummary{
		ShopID:              shopID,
		TotalProducts:       totalSeen,
		AuditedProducts:     len(audits),
		ProductsNotAnalyzed: totalSeen - audited,
		LastAuditAt:         runAt,
	}
	if summary.ProductsNotAnalyzed < 0 {
		summary.ProductsNotAnalyzed = 0
	}

	scoreSum := 0
	for _, audit := range audits {
		scoreSum += audit.AIScore
		for _, issue := range audit.Issues {
			switch issue.Severity {
			case models.SeverityCritical:
				summary.CriticalIssues++
			case models.SeverityWarning:
				summary.WarningIssues++
			case models.SeverityInfo:
				summary.InfoIssues++
			}
		}
	}
	if len(audits) > 0 {
		summary.AverageScore = float64(scoreSum) / float64(len(audits))
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_products", "audited_products", "average_score",
			"critical_issues", "warning_issues", "info_issues",
			"products_not_analyzed", "last_audit_at", "updated_at",
		}),
	}).Create(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to persist audit summary: %w", err)
	}

	return &summary, nil
}

// GetAuditSummary returns the cached summary row for a shop.
func (s *AuditService) GetAuditSummary(shopID uuid.UUID) (*models.AuditSummary, error) {
	var summary models.AuditSummary
	if err := s.db.First(&summary, "shop_id = ?", shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "audit summary for shop %s", shopID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &summary, nil
}

// ListProductAudits returns scored products for a shop, worst scores first by
// default.
func (s *AuditService) ListProductAudits(shopID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.ProductAudit{}).Where("shop_id = ?", shopID)

	if params.Search != "" {
		query = query.Where("title LIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audits: %w", err)
	}

	var audits []models.ProductAudit
	sorted := utils.ApplySort(query, params, []string{"ai_score", "title", "last_audit_at", "created_at"})
	if err := utils.ApplyPagination(sorted, params).Find(&audits).Error; err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}

	result := utils.CreatePaginationResult(audits, total, params)
	return &result, nil
}

// AuditSingleProduct rescores one product on demand (used after a merchant
// edits content).
func (s *AuditService) AuditSingleProduct(ctx context.Context, shopID uuid.UUID, productID int64) (*models.ProductAudit, error) {
	var shop models.Shop
	if err := s.db.First(&shop, "id = ?", shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "shop %s", shopID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	product, err := s.source.FetchProductByID(ctx, shop.Domain, shop.AccessToken, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "product %d", productID)
	}

	runAt := s.now().UTC()
	if err := s.upsertAudit(shop.ID, *product, runAt); err != nil {
		return nil, fmt.Errorf("failed to persist audit: %w", err)
	}

	var audit models.ProductAudit
	if err := s.db.First(&audit, "shop_id = ? AND product_id = ?", shop.ID, productID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload audit: %w", err)
	}
	return &audit, nil
}
