// internal/models/audit.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Issue is one typed finding produced by the scoring rules for a product.
// Code is stable across runs so issues can be compared between audits.
type Issue struct {
	Severity IssueSeverity `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
}

// IssueList is stored as a JSONB column, preserving rule order.
type IssueList []Issue

func (l IssueList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Issue{})
	}
	return json.Marshal(l)
}

func (l *IssueList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, l)
}

// ProductAudit is the scored snapshot of one catalog product. One row per
// (shop, product), overwritten on every audit run.
type ProductAudit struct {
	BaseModel
	ShopID            uuid.UUID `json:"shop_id" gorm:"type:uuid;not null;index:idx_product_audits_shop_product,unique"`
	ProductID         int64     `json:"product_id" gorm:"not null;index:idx_product_audits_shop_product,unique"`
	Title             string    `json:"title" gorm:"size:255"`
	Handle            string    `json:"handle" gorm:"size:255"`
	AIScore           int       `json:"ai_score" gorm:"not null"`
	Issues            IssueList `json:"issues" gorm:"type:jsonb"`
	HasImages         bool      `json:"has_images"`
	HasDescription    bool      `json:"has_description"`
	HasMetafields     bool      `json:"has_metafields"`
	DescriptionLength int       `json:"description_length"`
	LastAuditAt       time.Time `json:"last_audit_at"`
}

// AuditSummary is a cached shop-level aggregate, recomputed from the full
// ProductAudit set after every run. The rows are the source of truth; this
// row is overwritten, never patched incrementally.
type AuditSummary struct {
	BaseModel
	ShopID              uuid.UUID `json:"shop_id" gorm:"type:uuid;not null;uniqueIndex"`
	TotalProducts       int       `json:"total_products"`
	AuditedProducts     int       `json:"audited_products"`
	AverageScore        float64   `json:"average_score"`
	CriticalIssues      int       `json:"critical_issues"`
	WarningIssues       int       `json:"warning_issues"`
	InfoIssues          int       `json:"info_issues"`
	ProductsNotAnalyzed int       `json:"products_not_analyzed"`
	LastAuditAt         time.Time `json:"last_audit_at"`
}
