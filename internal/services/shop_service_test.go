// internal/services/shop_service_test.go
package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

func registerRequest() *RegisterShopRequest {
	return &RegisterShopRequest{
		Domain:      "acme-soaps.myshopify.com",
		AccessToken: "shpat_test",
		BrandName:   "Acme Soaps",
		BrandDomain: "acmesoaps.com",
		Industry:    "handmade soaps",
		Email:       "owner@acmesoaps.com",
	}
}

func TestRegisterShopIssuesUsableAPIKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShopService(db)

	registered, err := svc.RegisterShop(registerRequest())
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(registered.APIKey, "rs_"))
	assert.Equal(t, models.PlanFree, registered.Shop.Plan)
	assert.Equal(t, models.ShopStatusActive, registered.Shop.Status)

	// The issued key verifies against the stored hash via its key ID.
	keyID, secret, ok := utils.SplitAPIKey(registered.APIKey)
	assert.True(t, ok)
	assert.Equal(t, registered.Shop.APIKeyID, keyID)
	assert.True(t, utils.CheckAPIKey(secret, registered.Shop.APIKeyHash))
}

func TestRegisterShopTwiceRotatesKey(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShopService(db)

	first, err := svc.RegisterShop(registerRequest())
	assert.NoError(t, err)
	second, err := svc.RegisterShop(registerRequest())
	assert.NoError(t, err)

	assert.Equal(t, first.Shop.ID, second.Shop.ID)
	assert.NotEqual(t, first.APIKey, second.APIKey)

	var count int64
	db.Model(&models.Shop{}).Count(&count)
	assert.EqualValues(t, 1, count)

	// The old key no longer matches.
	shop, err := svc.GetShop(first.Shop.ID)
	assert.NoError(t, err)
	_, oldSecret, _ := utils.SplitAPIKey(first.APIKey)
	assert.False(t, utils.CheckAPIKey(oldSecret, shop.APIKeyHash))
}

func TestRegisterShopValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShopService(db)

	req := registerRequest()
	req.Domain = "not a hostname"
	_, err := svc.RegisterShop(req)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestUninstallKeepsHistory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShopService(db)

	registered, err := svc.RegisterShop(registerRequest())
	assert.NoError(t, err)

	db.Create(&models.Competitor{ShopID: registered.Shop.ID, Name: "Lush"})

	assert.NoError(t, svc.UninstallShop(registered.Shop.ID))

	shop, err := svc.GetShop(registered.Shop.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ShopStatusUninstalled, shop.Status)
	assert.Empty(t, shop.AccessToken)

	var competitors int64
	db.Model(&models.Competitor{}).Where("shop_id = ?", shop.ID).Count(&competitors)
	assert.EqualValues(t, 1, competitors)
}

func TestUpdateShopPartial(t *testing.T) {
	db := setupTestDB(t)
	svc := NewShopService(db)

	registered, err := svc.RegisterShop(registerRequest())
	assert.NoError(t, err)

	_, err = svc.UpdateShop(registered.Shop.ID, &UpdateShopRequest{Industry: "artisan candles"})
	assert.NoError(t, err)

	shop, err := svc.GetShop(registered.Shop.ID)
	assert.NoError(t, err)
	assert.Equal(t, "artisan candles", shop.Industry)
	assert.Equal(t, "Acme Soaps", shop.BrandName)
}
