// internal/services/quota_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/plans"
)

// QuotaService derives plan-period usage by counting the rows themselves;
// there is no separate mutable counter to drift out of sync. Two runs
// checking quota at the same instant can each pass and overshoot by one run;
// that race is accepted rather than serialized (see DESIGN.md).
type QuotaService struct {
	db    *gorm.DB
	plans *plans.Table
	now   func() time.Time
}

type QuotaSnapshot struct {
	Plan               models.PlanID `json:"plan"`
	ProductsAudited    int64         `json:"products_audited"`
	ProductsLimit      int           `json:"products_limit"`
	VisibilityUsed     int64         `json:"visibility_checks_used"`
	VisibilityLimit    int           `json:"visibility_checks_limit"`
	CompetitorsTracked int64         `json:"competitors_tracked"`
	CompetitorsLimit   int           `json:"competitors_limit"`
	PeriodStart        time.Time     `json:"period_start"`
	PeriodEnd          time.Time     `json:"period_end"`
}

func NewQuotaService(db *gorm.DB, planTable *plans.Table) *QuotaService {
	return &QuotaService{db: db, plans: planTable, now: time.Now}
}

func (s *QuotaService) Limits(plan models.PlanID) plans.Limits {
	return s.plans.Limits(plan)
}

// currentPeriod is the calendar-month window in UTC.
func (s *QuotaService) currentPeriod() (time.Time, time.Time) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (s *QuotaService) VisibilityChecksUsed(shopID uuid.UUID) (int64, error) {
	start, end := s.currentPeriod()
	var count int64
	err := s.db.Model(&models.VisibilityCheck{}).
		Where("shop_id = ? AND checked_at >= ? AND checked_at < ?", shopID, start, end).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count visibility checks: %w", err)
	}
	return count, nil
}

// EnsureVisibilityBudget rejects a run before any platform work starts when
// the remaining monthly budget cannot cover it.
func (s *QuotaService) EnsureVisibilityBudget(shopID uuid.UUID, plan models.PlanID, requested int) error {
	limits := s.plans.Limits(plan)
	used, err := s.VisibilityChecksUsed(shopID)
	if err != nil {
		return err
	}

	remaining := int64(limits.VisibilityChecksPerMonth) - used
	if remaining < int64(requested) {
		return apperrors.Wrap(apperrors.ErrQuotaExceeded,
			"visibility quota: %d of %d checks used this month, run needs %d",
			used, limits.VisibilityChecksPerMonth, requested)
	}
	return nil
}

func (s *QuotaService) CompetitorsTracked(shopID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Competitor{}).Where("shop_id = ?", shopID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count competitors: %w", err)
	}
	return count, nil
}

func (s *QuotaService) Snapshot(shop *models.Shop) (*QuotaSnapshot, error) {
	limits := s.plans.Limits(shop.Plan)
	start, end := s.currentPeriod()

	var auditedCount int64
	if err := s.db.Model(&models.ProductAudit{}).Where("shop_id = ?", shop.ID).Count(&auditedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count product audits: %w", err)
	}

	visibilityUsed, err := s.VisibilityChecksUsed(shop.ID)
	if err != nil {
		return nil, err
	}

	competitors, err := s.CompetitorsTracked(shop.ID)
	if err != nil {
		return nil, err
	}

	return &QuotaSnapshot{
		Plan:               shop.Plan,
		ProductsAudited:    auditedCount,
		ProductsLimit:      limits.ProductsAudited,
		VisibilityUsed:     visibilityUsed,
		VisibilityLimit:    limits.VisibilityChecksPerMonth,
		CompetitorsTracked: competitors,
		CompetitorsLimit:   limits.CompetitorsTracked,
		PeriodStart:        start,
		PeriodEnd:          end,
	}, nil
}
