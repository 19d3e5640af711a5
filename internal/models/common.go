// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns a UUID when the database default does not apply (sqlite in tests).
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type PlanID string

const (
	PlanFree    PlanID = "free"
	PlanStarter PlanID = "starter"
	PlanGrowth  PlanID = "growth"
	PlanPro     PlanID = "pro"
)

type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityWarning  IssueSeverity = "warning"
	SeverityInfo     IssueSeverity = "info"
)

type PlatformType string

const (
	PlatformOpenAI     PlatformType = "openai"
	PlatformAnthropic  PlatformType = "anthropic"
	PlatformGemini     PlatformType = "gemini"
	PlatformPerplexity PlatformType = "perplexity"
)

// AllPlatforms is the stable platform ordering used for fan-out and result sorting.
var AllPlatforms = []PlatformType{
	PlatformOpenAI,
	PlatformAnthropic,
	PlatformGemini,
	PlatformPerplexity,
}

func IsValidPlatform(p PlatformType) bool {
	for _, known := range AllPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

type ResponseQuality string

const (
	QualityNone     ResponseQuality = "none"
	QualityBrief    ResponseQuality = "brief"
	QualityDetailed ResponseQuality = "detailed"
)

type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusFannedOut  RunStatus = "fanned_out"
	RunStatusAggregated RunStatus = "aggregated"
	RunStatusFailed     RunStatus = "failed"
)

type ShopStatus string

const (
	ShopStatusActive      ShopStatus = "active"
	ShopStatusUninstalled ShopStatus = "uninstalled"
	ShopStatusSuspended   ShopStatus = "suspended"
)
