// internal/services/shop_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

type ShopService struct {
	db *gorm.DB
}

type RegisterShopRequest struct {
	Domain      string `json:"domain" validate:"required,shop_domain"`
	AccessToken string `json:"access_token" validate:"required"`
	BrandName   string `json:"brand_name" validate:"required,min=2,max=255"`
	BrandDomain string `json:"brand_domain,omitempty"`
	Industry    string `json:"industry,omitempty" validate:"omitempty,max=255"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateShopRequest struct {
	BrandName   string `json:"brand_name,omitempty" validate:"omitempty,min=2,max=255"`
	BrandDomain string `json:"brand_domain,omitempty"`
	Industry    string `json:"industry,omitempty" validate:"omitempty,max=255"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
}

// RegisteredShop carries the freshly issued API key; the plaintext key is
// returned exactly once.
type RegisteredShop struct {
	Shop   *models.Shop `json:"shop"`
	APIKey string       `json:"api_key"`
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{db: db}
}

// RegisterShop installs a shop or reactivates an uninstalled one. Either way
// a fresh API key is issued.
func (s *ShopService) RegisterShop(req *RegisterShopRequest) (*RegisteredShop, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid shop registration: %v", err)
	}

	apiKey, keyID, err := utils.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	_, secret, _ := utils.SplitAPIKey(apiKey)
	keyHash, err := utils.HashAPIKey(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash API key: %w", err)
	}

	var shop models.Shop
	err = s.db.Where("domain = ?", req.Domain).First(&shop).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"access_token": req.AccessToken,
			"brand_name":   req.BrandName,
			"brand_domain": req.BrandDomain,
			"industry":     req.Industry,
			"email":        req.Email,
			"api_key_id":   keyID,
			"api_key_hash": keyHash,
			"status":       models.ShopStatusActive,
		}
		if err := s.db.Model(&shop).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update shop: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		shop = models.Shop{
			Domain:      req.Domain,
			AccessToken: req.AccessToken,
			BrandName:   req.BrandName,
			BrandDomain: req.BrandDomain,
			Industry:    req.Industry,
			Email:       req.Email,
			Plan:        models.PlanFree,
			APIKeyID:    keyID,
			APIKeyHash:  keyHash,
			Status:      models.ShopStatusActive,
			InstalledAt: time.Now().UTC(),
		}
		if err := s.db.Create(&shop).Error; err != nil {
			return nil, fmt.Errorf("failed to create shop: %w", err)
		}
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"shop_id": shop.ID,
		"domain":  shop.Domain,
	}).Info("Shop registered")

	return &RegisteredShop{Shop: &shop, APIKey: apiKey}, nil
}

func (s *ShopService) GetShop(id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.First(&shop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "shop %s", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &shop, nil
}

func (s *ShopService) GetShopByDomain(domain string) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.First(&shop, "domain = ?", domain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "shop %s", domain)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &shop, nil
}

func (s *ShopService) UpdateShop(id uuid.UUID, req *UpdateShopRequest) (*models.Shop, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "invalid shop update: %v", err)
	}

	shop, err := s.GetShop(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.BrandName != "" {
		updates["brand_name"] = req.BrandName
	}
	if req.BrandDomain != "" {
		updates["brand_domain"] = req.BrandDomain
	}
	if req.Industry != "" {
		updates["industry"] = req.Industry
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}

	if len(updates) > 0 {
		if err := s.db.Model(shop).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update shop: %w", err)
		}
	}
	return shop, nil
}

// UninstallShop marks the shop inactive. History rows are kept; a reinstall
// picks the trend data back up.
func (s *ShopService) UninstallShop(id uuid.UUID) error {
	shop, err := s.GetShop(id)
	if err != nil {
		return err
	}
	return s.db.Model(shop).Updates(map[string]interface{}{
		"status":       models.ShopStatusUninstalled,
		"access_token": "",
	}).Error
}
