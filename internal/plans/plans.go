// internal/plans/plans.go
package plans

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ranksight/ranksight-backend/internal/models"
)

// Limits is the per-plan quota table. It is supplied externally (plans.yaml)
// rather than owned by the engines; the built-in defaults keep development
// environments working without a config file.
type Limits struct {
	ProductsAudited          int `yaml:"products_audited" json:"products_audited"`
	VisibilityChecksPerMonth int `yaml:"visibility_checks_per_month" json:"visibility_checks_per_month"`
	PlatformsTracked         int `yaml:"platforms_tracked" json:"platforms_tracked"`
	CompetitorsTracked       int `yaml:"competitors_tracked" json:"competitors_tracked"`
	OptimizationsPerMonth    int `yaml:"optimizations_per_month" json:"optimizations_per_month"`
	HistoryDays              int `yaml:"history_days" json:"history_days"`
}

type Table struct {
	plans map[models.PlanID]Limits
}

func defaults() map[models.PlanID]Limits {
	return map[models.PlanID]Limits{
		models.PlanFree: {
			ProductsAudited:          25,
			VisibilityChecksPerMonth: 10,
			PlatformsTracked:         1,
			CompetitorsTracked:       1,
			OptimizationsPerMonth:    5,
			HistoryDays:              7,
		},
		models.PlanStarter: {
			ProductsAudited:          100,
			VisibilityChecksPerMonth: 50,
			PlatformsTracked:         2,
			CompetitorsTracked:       3,
			OptimizationsPerMonth:    20,
			HistoryDays:              30,
		},
		models.PlanGrowth: {
			ProductsAudited:          500,
			VisibilityChecksPerMonth: 200,
			PlatformsTracked:         3,
			CompetitorsTracked:       5,
			OptimizationsPerMonth:    100,
			HistoryDays:              90,
		},
		models.PlanPro: {
			ProductsAudited:          2000,
			VisibilityChecksPerMonth: 1000,
			PlatformsTracked:         4,
			CompetitorsTracked:       10,
			OptimizationsPerMonth:    500,
			HistoryDays:              365,
		},
	}
}

// Load reads the plan table from a YAML file. An empty path returns the
// built-in defaults; entries in the file override per plan.
func Load(path string) (*Table, error) {
	table := &Table{plans: defaults()}
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}

	var parsed map[models.PlanID]Limits
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse plans file: %w", err)
	}

	for plan, limits := range parsed {
		table.plans[plan] = limits
	}

	return table, nil
}

// Limits returns the limit row for a plan, falling back to the free tier for
// unknown plan IDs.
func (t *Table) Limits(plan models.PlanID) Limits {
	if limits, ok := t.plans[plan]; ok {
		return limits
	}
	return t.plans[models.PlanFree]
}
