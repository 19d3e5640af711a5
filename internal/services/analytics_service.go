// internal/services/analytics_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/models"
)

// AnalyticsService computes read-side metrics over the append-only
// VisibilityCheck history. It never writes.
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

// TrendPoint is one day's mention rate. MentionRate is nil on days with no
// checks: "no data" is not the same as confirmed zero visibility.
type TrendPoint struct {
	Date        string   `json:"date"`
	Checks      int      `json:"checks"`
	Mentions    int      `json:"mentions"`
	MentionRate *float64 `json:"mention_rate"`
}

// ShareOfVoiceResult is brand mentions over brand-plus-competitor mentions.
// NoData distinguishes an empty window from a real zero share.
type ShareOfVoiceResult struct {
	Value              float64        `json:"value"`
	NoData             bool           `json:"no_data"`
	BrandMentions      int            `json:"brand_mentions"`
	CompetitorMentions int            `json:"competitor_mentions"`
	PerCompetitor      map[string]int `json:"per_competitor"`
}

// PositionPoint reports the average ranked position per day alongside how
// many mentions that day had no rank at all, so "always #1" and "mostly
// unranked" stay distinguishable.
type PositionPoint struct {
	Date             string   `json:"date"`
	AveragePosition  *float64 `json:"average_position"`
	RankedMentions   int      `json:"ranked_mentions"`
	UnrankedMentions int      `json:"unranked_mentions"`
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

func (s *AnalyticsService) loadWindow(shopID uuid.UUID, days int) ([]models.VisibilityCheck, time.Time, error) {
	if days <= 0 {
		days = 30
	}
	end := s.now().UTC()
	start := end.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	var checks []models.VisibilityCheck
	err := s.db.Where("shop_id = ? AND checked_at >= ?", shopID, start).
		Order("checked_at").Find(&checks).Error
	if err != nil {
		return nil, start, fmt.Errorf("failed to load visibility history: %w", err)
	}
	return checks, start, nil
}

// TrendData buckets checks by calendar day over the window.
func (s *AnalyticsService) TrendData(shopID uuid.UUID, days int) ([]TrendPoint, error) {
	if days <= 0 {
		days = 30
	}
	checks, start, err := s.loadWindow(shopID, days)
	if err != nil {
		return nil, err
	}

	type bucket struct{ checks, mentions int }
	byDay := make(map[string]*bucket)
	for _, check := range checks {
		day := check.CheckedAt.UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &bucket{}
			byDay[day] = b
		}
		b.checks++
		if check.IsMentioned {
			b.mentions++
		}
	}

	points := make([]TrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		point := TrendPoint{Date: day}
		if b, ok := byDay[day]; ok {
			point.Checks = b.checks
			point.Mentions = b.mentions
			rate := float64(b.mentions) / float64(b.checks)
			point.MentionRate = &rate
		}
		points = append(points, point)
	}
	return points, nil
}

// ShareOfVoice compares brand mentions against the named competitors over
// the window. A zero denominator yields {0, NoData: true}, never an error.
func (s *AnalyticsService) ShareOfVoice(shopID uuid.UUID, competitors []string, days int) (*ShareOfVoiceResult, error) {
	checks, _, err := s.loadWindow(shopID, days)
	if err != nil {
		return nil, err
	}

	result := &ShareOfVoiceResult{PerCompetitor: make(map[string]int)}
	for _, name := range competitors {
		result.PerCompetitor[name] = 0
	}

	for _, check := range checks {
		if check.IsMentioned {
			result.BrandMentions++
		}
		for _, found := range check.CompetitorsFound {
			if _, tracked := result.PerCompetitor[found]; tracked {
				result.PerCompetitor[found]++
				result.CompetitorMentions++
			}
		}
	}

	denominator := result.BrandMentions + result.CompetitorMentions
	if denominator == 0 {
		result.NoData = true
		return result, nil
	}
	result.Value = float64(result.BrandMentions) / float64(denominator)
	return result, nil
}

// PositionHistory averages ranked positions per day.
func (s *AnalyticsService) PositionHistory(shopID uuid.UUID, days int) ([]PositionPoint, error) {
	if days <= 0 {
		days = 30
	}
	checks, start, err := s.loadWindow(shopID, days)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		positionSum int
		ranked      int
		unranked    int
	}
	byDay := make(map[string]*bucket)
	for _, check := range checks {
		if !check.IsMentioned {
			continue
		}
		day := check.CheckedAt.UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &bucket{}
			byDay[day] = b
		}
		if check.Position != nil {
			b.positionSum += *check.Position
			b.ranked++
		} else {
			b.unranked++
		}
	}

	points := make([]PositionPoint, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		point := PositionPoint{Date: day}
		if b, ok := byDay[day]; ok {
			point.RankedMentions = b.ranked
			point.UnrankedMentions = b.unranked
			if b.ranked > 0 {
				avg := float64(b.positionSum) / float64(b.ranked)
				point.AveragePosition = &avg
			}
		}
		points = append(points, point)
	}
	return points, nil
}
