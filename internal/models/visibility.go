// internal/models/visibility.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// VisibilityRun tracks one fan-out invocation across platforms. Per-platform
// failures are recorded in Errors; they never abort the run.
type VisibilityRun struct {
	BaseModel
	ShopID         uuid.UUID `json:"shop_id" gorm:"type:uuid;not null;index"`
	Status         RunStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	QueriesCount   int       `json:"queries_count"`
	PlatformsCount int       `json:"platforms_count"`
	ChecksWritten  int       `json:"checks_written"`
	Errors         JSONB     `json:"errors,omitempty" gorm:"type:jsonb"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// VisibilityCheck is one parsed platform response. Rows are append-only;
// trend analysis depends on history never being rewritten.
type VisibilityCheck struct {
	BaseModel
	ShopID           uuid.UUID       `json:"shop_id" gorm:"type:uuid;not null;index:idx_visibility_checks_shop_checked"`
	RunID            uuid.UUID       `json:"run_id" gorm:"type:uuid;index"`
	Platform         PlatformType    `json:"platform" gorm:"type:varchar(20);not null;index"`
	Query            string          `json:"query" gorm:"type:text;not null"`
	IsMentioned      bool            `json:"is_mentioned"`
	MentionContext   *string         `json:"mention_context,omitempty" gorm:"type:text"`
	Position         *int            `json:"position,omitempty"`
	CompetitorsFound pq.StringArray  `json:"competitors_found" gorm:"type:text[]"`
	ResponseQuality  ResponseQuality `json:"response_quality" gorm:"type:varchar(20)"`
	ResponseTimeMs   int64           `json:"response_time_ms"`
	CheckedAt        time.Time       `json:"checked_at" gorm:"index:idx_visibility_checks_shop_checked"`
}

type Competitor struct {
	BaseModel
	ShopID uuid.UUID `json:"shop_id" gorm:"type:uuid;not null;index:idx_competitors_shop_name,unique"`
	Name   string    `json:"name" gorm:"size:255;not null;index:idx_competitors_shop_name,unique"`
	Domain string    `json:"domain" gorm:"size:255"`
}
