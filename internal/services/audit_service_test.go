// internal/services/audit_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/catalog"
	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type AuditServiceTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (suite *AuditServiceTestSuite) SetupTest() {
	suite.db = setupTestDB(suite.T())
}

func (suite *AuditServiceTestSuite) newService(source catalog.Source) *AuditService {
	return NewAuditService(suite.db, source, testPlanTable(suite.T()), 50)
}

func (suite *AuditServiceTestSuite) TestRunAuditComputesSummary() {
	shop := newTestShop(suite.T(), suite.db, models.PlanFree)
	source := &fakeSource{pages: [][]catalog.Product{
		{completeProduct(1), completeProduct(2), bareProduct(3)},
	}}

	report, err := suite.newService(source).RunAudit(context.Background(), shop.ID)
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), 3, report.Summary.TotalProducts)
	assert.Equal(suite.T(), 3, report.Summary.AuditedProducts)
	assert.Equal(suite.T(), 0, report.Summary.ProductsNotAnalyzed)
	// Two perfect scores plus one bare product at 14.
	assert.InDelta(suite.T(), (100.0+100.0+14.0)/3.0, report.Summary.AverageScore, 0.001)
	assert.Equal(suite.T(), 2, report.Summary.CriticalIssues)
	assert.Equal(suite.T(), 3, report.Summary.WarningIssues)
	assert.Equal(suite.T(), 3, report.Summary.InfoIssues)

	assert.Equal(suite.T(), models.PlanFree, report.PlanInfo.Plan)
	assert.Equal(suite.T(), 25, report.PlanInfo.ProductLimit)
}

func (suite *AuditServiceTestSuite) TestRunAuditIsIdempotent() {
	shop := newTestShop(suite.T(), suite.db, models.PlanFree)
	source := &fakeSource{pages: [][]catalog.Product{
		{completeProduct(1), bareProduct(2)},
	}}
	svc := suite.newService(source)

	first, err := svc.RunAudit(context.Background(), shop.ID)
	assert.NoError(suite.T(), err)
	second, err := svc.RunAudit(context.Background(), shop.ID)
	assert.NoError(suite.T(), err)

	var auditRows, summaryRows int64
	suite.db.Model(&models.ProductAudit{}).Where("shop_id = ?", shop.ID).Count(&auditRows)
	suite.db.Model(&models.AuditSummary{}).Where("shop_id = ?", shop.ID).Count(&summaryRows)
	assert.EqualValues(suite.T(), 2, auditRows)
	assert.EqualValues(suite.T(), 1, summaryRows)
	assert.Equal(suite.T(), first.Summary.AverageScore, second.Summary.AverageScore)
}

func (suite *AuditServiceTestSuite) TestRunAuditHonorsPlanCap() {
	shop := newTestShop(suite.T(), suite.db, models.PlanFree)
	// 40 products against the free cap of 25, split over two pages.
	source := &fakeSource{pages: [][]catalog.Product{
		makeProducts(25, 1),
		makeProducts(15, 100),
	}}

	report, err := suite.newService(source).RunAudit(context.Background(), shop.ID)
	assert.NoError(suite.T(), err)

	assert.Equal(suite.T(), 40, report.Summary.TotalProducts)
	assert.Equal(suite.T(), 25, report.Summary.AuditedProducts)
	assert.Equal(suite.T(), 15, report.PlanInfo.ProductsNotAnalyzed)
	// Both pages were fetched so the drop count is exact.
	assert.Equal(suite.T(), 2, source.fetches)

	var rows int64
	suite.db.Model(&models.ProductAudit{}).Where("shop_id = ?", shop.ID).Count(&rows)
	assert.EqualValues(suite.T(), 25, rows)
}

func (suite *AuditServiceTestSuite) TestRunAuditCatalogFailureAborts() {
	shop := newTestShop(suite.T(), suite.db, models.PlanFree)
	source := &fakeSource{
		pageErr: apperrors.Wrap(apperrors.ErrCatalogUnavailable, "shopify returned 503"),
	}
	svc := suite.newService(source)

	_, err := svc.RunAudit(context.Background(), shop.ID)
	assert.True(suite.T(), errors.Is(err, apperrors.ErrCatalogUnavailable))

	// No partial summary was written.
	_, err = svc.GetAuditSummary(shop.ID)
	assert.True(suite.T(), errors.Is(err, apperrors.ErrNotFound))
}

func (suite *AuditServiceTestSuite) TestRunAuditUnknownShop() {
	source := &fakeSource{}
	_, err := suite.newService(source).RunAudit(context.Background(), uuid.New())
	assert.True(suite.T(), errors.Is(err, apperrors.ErrNotFound))
}

func (suite *AuditServiceTestSuite) TestAuditSingleProduct() {
	shop := newTestShop(suite.T(), suite.db, models.PlanFree)
	source := &fakeSource{pages: [][]catalog.Product{
		{completeProduct(7), bareProduct(8)},
	}}
	svc := suite.newService(source)

	audit, err := svc.AuditSingleProduct(context.Background(), shop.ID, 7)
	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 7, audit.ProductID)
	assert.Equal(suite.T(), 100, audit.AIScore)
	assert.Empty(suite.T(), audit.Issues)

	_, err = svc.AuditSingleProduct(context.Background(), shop.ID, 999)
	assert.True(suite.T(), errors.Is(err, apperrors.ErrNotFound))
}

func (suite *AuditServiceTestSuite) TestListProductAuditsWorstFirst() {
	shop := newTestShop(suite.T(), suite.db, models.PlanFree)
	source := &fakeSource{pages: [][]catalog.Product{
		{completeProduct(1), bareProduct(2)},
	}}
	svc := suite.newService(source)

	_, err := svc.RunAudit(context.Background(), shop.ID)
	assert.NoError(suite.T(), err)

	params := utils.PaginationParams{Page: 1, Limit: 10, Sort: "ai_score", Order: "asc"}
	result, err := svc.ListProductAudits(shop.ID, params)
	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 2, result.Total)

	audits := result.Data.([]models.ProductAudit)
	assert.EqualValues(suite.T(), 2, audits[0].ProductID)
	assert.EqualValues(suite.T(), 1, audits[1].ProductID)
}

func TestAuditServiceSuite(t *testing.T) {
	suite.Run(t, new(AuditServiceTestSuite))
}
