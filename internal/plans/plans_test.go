// internal/plans/plans_test.go
package plans

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ranksight/ranksight-backend/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	table, err := Load("")
	assert.NoError(t, err)

	free := table.Limits(models.PlanFree)
	assert.Equal(t, 25, free.ProductsAudited)
	assert.Equal(t, 10, free.VisibilityChecksPerMonth)
	assert.Equal(t, 1, free.PlatformsTracked)

	pro := table.Limits(models.PlanPro)
	assert.Equal(t, 2000, pro.ProductsAudited)
	assert.Equal(t, 4, pro.PlatformsTracked)
}

func TestLoadFileOverridesPerPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	content := []byte(`free:
  products_audited: 5
  visibility_checks_per_month: 2
  platforms_tracked: 1
  competitors_tracked: 1
  optimizations_per_month: 1
  history_days: 3
`)
	assert.NoError(t, os.WriteFile(path, content, 0o644))

	table, err := Load(path)
	assert.NoError(t, err)

	free := table.Limits(models.PlanFree)
	assert.Equal(t, 5, free.ProductsAudited)
	assert.Equal(t, 2, free.VisibilityChecksPerMonth)

	// Plans absent from the file keep their defaults.
	starter := table.Limits(models.PlanStarter)
	assert.Equal(t, 100, starter.ProductsAudited)
}

func TestUnknownPlanFallsBackToFree(t *testing.T) {
	table, err := Load("")
	assert.NoError(t, err)

	limits := table.Limits(models.PlanID("enterprise"))
	assert.Equal(t, table.Limits(models.PlanFree), limits)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
