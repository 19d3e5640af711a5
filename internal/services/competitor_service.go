// internal/services/competitor_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type CompetitorService struct {
	db    *gorm.DB
	quota *QuotaService
}

type AddCompetitorRequest struct {
	Name   string `json:"name" validate:"required,min=2,max=255"`
	Domain string `json:"domain,omitempty" validate:"omitempty,max=255"`
}

func NewCompetitorService(db *gorm.DB, quota *QuotaService) *CompetitorService {
	return &CompetitorService{db: db, quota: quota}
}

// AddCompetitor tracks one more competitor brand, bounded by the plan's
// competitorsTracked limit.
func (s *CompetitorService) AddCompetitor(shop *models.Shop, req *AddCompetitorRequest) (*models.Competitor, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid competitor: %v", err)
	}

	limits := s.quota.Limits(shop.Plan)
	tracked, err := s.quota.CompetitorsTracked(shop.ID)
	if err != nil {
		return nil, err
	}
	if tracked >= int64(limits.CompetitorsTracked) {
		return nil, apperrors.Wrap(apperrors.ErrQuotaExceeded,
			"competitor limit reached: %d of %d tracked", tracked, limits.CompetitorsTracked)
	}

	competitor := models.Competitor{
		ShopID: shop.ID,
		Name:   req.Name,
		Domain: req.Domain,
	}
	if err := s.db.Create(&competitor).Error; err != nil {
		return nil, fmt.Errorf("failed to create competitor: %w", err)
	}
	return &competitor, nil
}

func (s *CompetitorService) ListCompetitors(shopID uuid.UUID) ([]models.Competitor, error) {
	var competitors []models.Competitor
	if err := s.db.Where("shop_id = ?", shopID).Order("name").Find(&competitors).Error; err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	return competitors, nil
}

func (s *CompetitorService) RemoveCompetitor(shopID, competitorID uuid.UUID) error {
	var competitor models.Competitor
	err := s.db.First(&competitor, "id = ? AND shop_id = ?", competitorID, shopID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.ErrNotFound, "competitor %s", competitorID)
		}
		return fmt.Errorf("database error: %w", err)
	}
	return s.db.Delete(&competitor).Error
}
