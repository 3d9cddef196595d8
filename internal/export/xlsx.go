package export

import (
	"fmt"

	"github.com/piwi3910/RodCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names used by ExportXLSX.
const (
	CutListSheet = "Cut List"
	SummarySheet = "Summary"
)

// ExportXLSX writes a workbook with one row per cut piece and per remainder
// on the "Cut List" sheet and the run statistics on the "Summary" sheet.
func ExportXLSX(path string, result model.OptimizeResult, settings model.Settings) error {
	if result.Solution == nil {
		return ErrNoSolution
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CutListSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	header := []interface{}{"Rod #", "Rod", "Rod Length", "Seq", "Piece", "Length", "Offset"}
	if err := writeRow(f, CutListSheet, 1, header); err != nil {
		return err
	}
	if err := f.SetCellStyle(CutListSheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 2
	layout := Layout(result, settings)
	for i, p := range result.Solution.Patterns {
		rod := rodTitle(result, i)
		for _, c := range layout[i] {
			values := []interface{}{i + 1, rod, p.OriginalLength, c.Sequence, c.Label, c.Length, model.Round2(c.Offset)}
			if err := writeRow(f, CutListSheet, row, values); err != nil {
				return err
			}
			row++
		}
		if p.Remainder > 0 {
			values := []interface{}{i + 1, rod, p.OriginalLength, "", "Remainder", model.Round2(p.Remainder), model.Round2(p.OriginalLength - p.Remainder)}
			if err := writeRow(f, CutListSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	sol := result.Solution
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Reward", sol.Reward},
		{"Rods", len(sol.Patterns)},
		{"Rods Used", sol.RodsUsed()},
		{"Pieces Cut", sol.CutCount()},
		{"Total Remainder", model.Round2(sol.TotalRemainder())},
		{"Efficiency %", model.Round2(sol.Efficiency())},
		{"Combinations", result.Combinations},
		{"Evaluated", result.Evaluated},
		{"Feasible", result.Feasible},
		{"Elapsed ms", result.ElapsedMs},
		{"Kerf Applied", settings.ApplyKerf},
		{"Kerf", settings.Kerf},
		{"Sort Order", string(settings.SortOrder)},
	}
	for i, values := range summary {
		if err := writeRow(f, SummarySheet, i+1, values); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	return f.SaveAs(path)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
