// internal/services/helpers_test.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ranksight/ranksight-backend/internal/apperrors"
	"github.com/ranksight/ranksight-backend/internal/catalog"
	"github.com/ranksight/ranksight-backend/internal/models"
	"github.com/ranksight/ranksight-backend/internal/plans"
	"github.com/ranksight/ranksight-backend/internal/platform"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Single connection: sqlite's write lock and concurrent fan-out writers
	// do not mix.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	err = db.AutoMigrate(
		&models.Shop{},
		&models.ProductAudit{},
		&models.AuditSummary{},
		&models.VisibilityRun{},
		&models.VisibilityCheck{},
		&models.Competitor{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestShop(t *testing.T, db *gorm.DB, plan models.PlanID) *models.Shop {
	t.Helper()

	shop := &models.Shop{
		Domain:      fmt.Sprintf("%s.myshopify.com", uuid.NewString()[:8]),
		AccessToken: "shpat_test",
		BrandName:   "Acme Soaps",
		BrandDomain: "acmesoaps.com",
		Industry:    "handmade soaps",
		Plan:        plan,
		Status:      models.ShopStatusActive,
		InstalledAt: time.Now().UTC(),
	}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("failed to create test shop: %v", err)
	}
	return shop
}

func testPlanTable(t *testing.T) *plans.Table {
	t.Helper()

	table, err := plans.Load("")
	if err != nil {
		t.Fatalf("failed to load default plan table: %v", err)
	}
	return table
}

// fakeSource serves a fixed set of catalog pages through the cursor contract.
type fakeSource struct {
	pages   [][]catalog.Product
	pageErr error
	fetches int
}

func (f *fakeSource) FetchPage(_ context.Context, _, _, cursor string, _ int) (*catalog.Page, error) {
	f.fetches++
	if f.pageErr != nil {
		return nil, f.pageErr
	}

	idx := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("bad cursor %q", cursor)
		}
		idx = n
	}
	if idx >= len(f.pages) {
		return &catalog.Page{}, nil
	}

	page := &catalog.Page{Items: f.pages[idx]}
	if idx+1 < len(f.pages) {
		page.NextCursor = strconv.Itoa(idx + 1)
	}
	return page, nil
}

func (f *fakeSource) FetchProductByID(_ context.Context, _, _ string, id int64) (*catalog.Product, error) {
	for _, page := range f.pages {
		for i := range page {
			if page[i].ID == id {
				return &page[i], nil
			}
		}
	}
	return nil, nil
}

// completeProduct scores 100: long description, images with alt text, SEO
// fields, tags, vendor, type and metafields all present.
func completeProduct(id int64) catalog.Product {
	body := "<p>Cold process soap made from olive oil and shea butter. "
	for i := 0; i < 6; i++ {
		body += "Gentle on sensitive skin and scented with essential oils. "
	}
	body += "</p>"

	return catalog.Product{
		ID:             id,
		Title:          fmt.Sprintf("Lavender Soap %d", id),
		Handle:         fmt.Sprintf("lavender-soap-%d", id),
		BodyHTML:       body,
		Vendor:         "Acme Soaps",
		ProductType:    "Soap",
		Tags:           []string{"soap", "lavender"},
		SEOTitle:       "Lavender Soap | Acme",
		SEODescription: "Handmade lavender soap, cold process, essential oils.",
		Images: []catalog.ProductImage{
			{Src: "https://cdn.example.com/soap.jpg", Alt: "Bar of lavender soap"},
		},
		MetafieldCount: 2,
		Available:      true,
	}
}

// bareProduct has nothing but a title; every deduction except alt text fires.
func bareProduct(id int64) catalog.Product {
	return catalog.Product{
		ID:     id,
		Title:  fmt.Sprintf("Mystery Item %d", id),
		Handle: fmt.Sprintf("mystery-item-%d", id),
	}
}

func makeProducts(n int, from int64) []catalog.Product {
	out := make([]catalog.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, completeProduct(from+int64(i)))
	}
	return out
}

// fakeAdapter returns a canned response per query, or a typed failure.
type fakeAdapter struct {
	name      models.PlatformType
	responses map[string]string
	fallback  string
	fail      bool
	calls     int
}

func (f *fakeAdapter) Name() models.PlatformType { return f.name }

func (f *fakeAdapter) ChatComplete(_ context.Context, prompt string) (*platform.Response, error) {
	f.calls++
	if f.fail {
		return nil, apperrors.Wrap(apperrors.ErrPlatformUnavailable, "%s is down", f.name)
	}
	text, ok := f.responses[prompt]
	if !ok {
		text = f.fallback
	}
	return &platform.Response{Text: text, DurationMs: 12}, nil
}

func newTestRegistry(adapters ...platform.Adapter) *platform.Registry {
	r := platform.NewRegistry()
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}
