package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/RodCut/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the optimization result and computed statistics
// for a single scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Result         model.OptimizeResult
	Found          bool
	Reward         float64
	TotalRemainder float64
	RodsUsed       int
	OffcutCount    int
	Err            error
}

// CompareScenarios runs the optimizer once per scenario, in scenario order.
// A failing scenario records its error and does not stop the others.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, rods []model.Rod, pieces []model.Piece, opts ...Option) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		opt := New(scenario.Settings, opts...)
		result, err := opt.Optimize(ctx, rods, pieces)

		cr := ComparisonResult{Scenario: scenario, Result: result, Err: err}
		if err == nil && result.Solution != nil {
			cr.Found = true
			cr.Reward = result.Solution.Reward
			cr.TotalRemainder = result.Solution.TotalRemainder()
			cr.RodsUsed = result.Solution.RodsUsed()
			cr.OffcutCount = len(model.DetectOffcuts(result, scenario.Settings.MinOffcutLength))
		}
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates what-if alternatives around the current
// settings: each input ordering, and kerf compensation toggled.
func BuildDefaultScenarios(baseSettings model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: baseSettings,
		},
	}

	orders := []struct {
		order model.SortOrder
		name  string
	}{
		{model.SortNone, "Input Order"},
		{model.SortAscending, "Shortest First"},
		{model.SortDescending, "Longest First"},
	}
	for _, o := range orders {
		if o.order == baseSettings.SortOrder || (o.order == model.SortNone && baseSettings.SortOrder == "") {
			continue
		}
		s := baseSettings
		s.SortOrder = o.order
		scenarios = append(scenarios, ComparisonScenario{Name: o.name, Settings: s})
	}

	if baseSettings.Kerf > 0 {
		s := baseSettings
		s.ApplyKerf = !baseSettings.ApplyKerf
		name := fmt.Sprintf("Kerf %.1fmm", s.Kerf)
		if !s.ApplyKerf {
			name = "No Kerf"
		}
		scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: s})
	}

	return scenarios
}
