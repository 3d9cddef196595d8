package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/piwi3910/RodCut/internal/engine"
	"github.com/piwi3910/RodCut/internal/model"
)

func printResult(w io.Writer, result model.OptimizeResult, settings model.Settings) {
	fmt.Fprintf(w, "Searched %d of %d assignments (%d feasible) in %dms\n",
		result.Evaluated, result.Combinations, result.Feasible, result.ElapsedMs)
	if result.Solution == nil {
		return
	}

	fmt.Fprintf(w, "%-4s %-16s %10s  %-40s %10s\n", "#", "Rod", "Length", "Cuts", "Remainder")
	fmt.Fprintf(w, "%-4s %-16s %10s  %-40s %10s\n", "----", "----------------", "----------",
		"----------------------------------------", "----------")
	for i, p := range result.Solution.Patterns {
		cuts := make([]string, len(p.Cuts))
		for k, c := range p.Cuts {
			label := ""
			if k < len(p.Pieces) {
				label = result.PieceLabel(p.Pieces[k])
			}
			cuts[k] = strings.TrimSpace(fmt.Sprintf("%s %.2f", label, c))
		}
		fmt.Fprintf(w, "%-4d %-16s %10.2f  %-40s %10.2f\n",
			i+1, result.RodLabel(i), p.OriginalLength, strings.Join(cuts, ", "), p.Remainder)
	}

	sol := result.Solution
	fmt.Fprintf(w, "Reward: %.2f | Total remainder: %.2f | Rods used: %d/%d | Efficiency: %.1f%%\n",
		sol.Reward, sol.TotalRemainder(), sol.RodsUsed(), len(sol.Patterns), sol.Efficiency())

	offcuts := model.DetectOffcuts(result, settings.MinOffcutLength)
	if len(offcuts) > 0 {
		fmt.Fprintf(w, "Usable offcuts (>= %.0f mm): %d, %.2f mm total\n",
			settings.MinOffcutLength, len(offcuts), model.TotalOffcutLength(offcuts))
		for _, o := range offcuts {
			fmt.Fprintf(w, "  %-16s %10.2f @ %.2f\n", o.RodLabel, o.Length, o.Offset)
		}
	}
}

func printComparison(w io.Writer, results []engine.ComparisonResult) {
	fmt.Fprintf(w, "%-20s %14s %12s %6s %8s\n", "Scenario", "Reward", "Remainder", "Rods", "Offcuts")
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%-20s error: %v\n", r.Scenario.Name, r.Err)
		case !r.Found:
			fmt.Fprintf(w, "%-20s no valid cutting pattern\n", r.Scenario.Name)
		default:
			fmt.Fprintf(w, "%-20s %14.2f %12.2f %6d %8d\n",
				r.Scenario.Name, r.Reward, r.TotalRemainder, r.RodsUsed, r.OffcutCount)
		}
	}
}

func printEstimate(w io.Writer, e model.PurchaseEstimate) {
	fmt.Fprintf(w, "Purchase estimate for %.0f mm rods: %d minimum, %d with %.0f%% waste (%.2f mm of pieces incl. kerf)\n",
		e.RodLength, e.RodsNeededMin, e.RodsWithWaste, e.WastePercent, e.TotalPieceLength)
}
