// internal/models/shop.go
package models

import "time"

type Shop struct {
	BaseModel
	Domain       string     `json:"domain" gorm:"size:255;not null;uniqueIndex"`
	AccessToken  string     `json:"-" gorm:"size:255"`
	BrandName    string     `json:"brand_name" gorm:"size:255;not null"`
	BrandDomain  string     `json:"brand_domain" gorm:"size:255"`
	Industry     string     `json:"industry" gorm:"size:255"`
	Email        string     `json:"email" gorm:"size:255"`
	Plan         PlanID     `json:"plan" gorm:"type:varchar(20);default:'free';index"`
	APIKeyID     string     `json:"-" gorm:"size:64;index"`
	APIKeyHash   string     `json:"-" gorm:"size:255"`
	Status       ShopStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	InstalledAt  time.Time  `json:"installed_at"`
	StripeCustID string     `json:"-" gorm:"size:255"`
}
