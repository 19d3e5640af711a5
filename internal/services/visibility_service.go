// internal/services/visibility_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/analysis"
	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/platform"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

const maxQueriesPerRun = 10

// VisibilityService fans a query set out to the enabled AI platforms, parses
// each response for brand mentions and appends one immutable check row per
// successful platform response.
type VisibilityService struct {
	db       *gorm.DB
	registry *platform.Registry
	quota    *QuotaService
	devMode  bool
	now      func() time.Time
}

// PlatformFailure reports one skipped platform call. Failures never abort the
// run; the other platforms' results are still persisted and returned.
type PlatformFailure struct {
	Platform models.PlatformType `json:"platform"`
	Query    string              `json:"query"`
	Message  string              `json:"message"`
}

type VisibilityRunResult struct {
	RunID    uuid.UUID                `json:"run_id"`
	Checks   []models.VisibilityCheck `json:"checks"`
	Failures []PlatformFailure        `json:"failures,omitempty"`
}

func NewVisibilityService(db *gorm.DB, registry *platform.Registry, quota *QuotaService, devMode bool) *VisibilityService {
	return &VisibilityService{
		db:       db,
		registry: registry,
		quota:    quota,
		devMode:  devMode,
		now:      time.Now,
	}
}

// defaultQueries is the fixed generic query set used when the caller supplies
// none. A caller-supplied list overrides it entirely.
func defaultQueries(industry string) []string {
	if strings.TrimSpace(industry) == "" {
		industry = "online stores"
	}
	return []string{
		fmt.Sprintf("What are the best %s brands to buy from right now?", industry),
		fmt.Sprintf("Which online shops would you recommend for %s?", industry),
		fmt.Sprintf("I'm looking for high quality %s. Where should I shop?", industry),
	}
}

// RunVisibilityCheck validates input, enforces the monthly quota before any
// platform work starts, then queries all enabled platforms concurrently.
func (s *VisibilityService) RunVisibilityCheck(ctx context.Context, shopID uuid.UUID, queries []string) (*VisibilityRunResult, error) {
	var shop models.Shop
	if err := s.db.First(&shop, "id = ?", shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "shop %s", shopID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if len(queries) > maxQueriesPerRun {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "at most %d queries per run", maxQueriesPerRun)
	}
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			return nil, apperrors.Wrap(apperrors.ErrValidation, "queries must not be empty")
		}
	}
	if len(queries) == 0 {
		queries = defaultQueries(shop.Industry)
	}

	limits := s.quota.Limits(shop.Plan)
	adapters := s.registry.Ordered(limits.PlatformsTracked)
	if len(adapters) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "no platforms enabled")
	}

	// Quota is checked once, before the expensive work. Dev shops bypass it.
	if !s.devMode {
		requested := len(adapters) * len(queries)
		if err := s.quota.EnsureVisibilityBudget(shop.ID, shop.Plan, requested); err != nil {
			return nil, err
		}
	}

	competitorNames, err := s.competitorNames(shop.ID)
	if err != nil {
		return nil, err
	}

	run := models.VisibilityRun{
		ShopID:         shop.ID,
		Status:         models.RunStatusPending,
		QueriesCount:   len(queries),
		PlatformsCount: len(adapters),
	}
	if err := s.db.Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to create visibility run: %w", err)
	}
	s.db.Model(&run).Update("status", models.RunStatusFannedOut)

	var (
		mu       sync.Mutex
		byPlat   = make(map[models.PlatformType][]models.VisibilityCheck)
		failures []PlatformFailure
	)

	// One goroutine per platform; queries within a platform run sequentially
	// so each adapter's client-side rate limit is respected. Each result is
	// persisted as soon as it resolves, so a slow platform cannot lose the
	// others' rows.
	g, gctx := errgroup.WithContext(ctx)
	for _, adapter := range adapters {
		adapter := adapter
		g.Go(func() error {
			for _, query := range queries {
				resp, err := adapter.ChatComplete(gctx, query)
				if err != nil {
					logrus.WithFields(logrus.Fields{
						"shop_id":  shop.ID,
						"platform": adapter.Name(),
					}).WithError(err).Warn("Platform call failed, skipping")
					mu.Lock()
					failures = append(failures, PlatformFailure{
						Platform: adapter.Name(),
						Query:    query,
						Message:  err.Error(),
					})
					mu.Unlock()
					continue
				}

				parsed := analysis.Analyze(resp.Text, shop.BrandName, shop.BrandDomain, competitorNames)
				check := models.VisibilityCheck{
					ShopID:           shop.ID,
					RunID:            run.ID,
					Platform:         adapter.Name(),
					Query:            query,
					IsMentioned:      parsed.IsMentioned,
					MentionContext:   parsed.MentionContext,
					Position:         parsed.Position,
					CompetitorsFound: parsed.CompetitorsFound,
					ResponseQuality:  parsed.ResponseQuality,
					ResponseTimeMs:   resp.DurationMs,
					CheckedAt:        s.now().UTC(),
				}
				if err := s.db.Create(&check).Error; err != nil {
					return fmt.Errorf("failed to persist visibility check: %w", err)
				}

				mu.Lock()
				byPlat[adapter.Name()] = append(byPlat[adapter.Name()], check)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.db.Model(&run).Update("status", models.RunStatusFailed)
		return nil, err
	}

	// Stable output order: configured platform order, then query order, not
	// completion order.
	var checks []models.VisibilityCheck
	for _, adapter := range adapters {
		checks = append(checks, byPlat[adapter.Name()]...)
	}

	completedAt := s.now().UTC()
	runUpdate := map[string]interface{}{
		"status":         models.RunStatusAggregated,
		"checks_written": len(checks),
		"completed_at":   completedAt,
	}
	if len(failures) > 0 {
		failed := make([]interface{}, 0, len(failures))
		for _, f := range failures {
			failed = append(failed, map[string]interface{}{
				"platform": f.Platform,
				"query":    f.Query,
				"message":  f.Message,
			})
		}
		runUpdate["errors"] = models.JSONB{"failures": failed}
	}
	if err := s.db.Model(&run).Updates(runUpdate).Error; err != nil {
		return nil, fmt.Errorf("failed to finalize visibility run: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"shop_id":   shop.ID,
		"run_id":    run.ID,
		"checks":    len(checks),
		"failures":  len(failures),
		"platforms": len(adapters),
	}).Info("Visibility run completed")

	return &VisibilityRunResult{
		RunID:    run.ID,
		Checks:   checks,
		Failures: failures,
	}, nil
}

func (s *VisibilityService) competitorNames(shopID uuid.UUID) ([]string, error) {
	var competitors []models.Competitor
	if err := s.db.Where("shop_id = ?", shopID).Order("name").Find(&competitors).Error; err != nil {
		return nil, fmt.Errorf("failed to load competitors: %w", err)
	}
	names := make([]string, 0, len(competitors))
	for _, c := range competitors {
		names = append(names, c.Name)
	}
	return names, nil
}

// GetVisibilityHistory returns past checks, newest first, filtered by
// platform when requested.
func (s *VisibilityService) GetVisibilityHistory(shopID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.VisibilityCheck{}).Where("shop_id = ?", shopID)

	if params.Platform != "" {
		if !models.IsValidPlatform(models.PlatformType(params.Platform)) {
			return nil, apperrors.Wrap(apperrors.ErrValidation, "unknown platform %q", params.Platform)
		}
		query = query.Where("platform = ?", params.Platform)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count checks: %w", err)
	}

	var checks []models.VisibilityCheck
	sorted := utils.ApplySort(query, params, []string{"checked_at", "platform", "created_at"})
	if err := utils.ApplyPagination(sorted, params).Find(&checks).Error; err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}

	result := utils.CreatePaginationResult(checks, total, params)
	return &result, nil
}
