package export

import (
	"fmt"

	"github.com/piwi3910/RodCut/internal/model"
	"github.com/yofu/dxf"
)

// DXF layers written by ExportDXF. Rod lines sit on a layer the importer
// reads back as stock.
const (
	RodLayer  = "ROD"
	CutLayer  = "CUTS"
	TextLayer = "TEXT"
)

const (
	dxfRowSpacing = 100.0 // mm between rods
	dxfTickHeight = 20.0
	dxfTextHeight = 10.0
)

// ExportDXF draws every rod as a horizontal line at 1:1 scale, stacked
// downwards, with a vertical tick at each cut position and text labels for
// rods and pieces.
func ExportDXF(path string, result model.OptimizeResult, settings model.Settings) error {
	if result.Solution == nil {
		return ErrNoSolution
	}

	d := dxf.NewDrawing()
	for _, name := range []string{RodLayer, CutLayer, TextLayer} {
		if _, err := d.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("add layer %s: %w", name, err)
		}
	}

	layout := Layout(result, settings)
	for i, p := range result.Solution.Patterns {
		y := -float64(i) * dxfRowSpacing

		if err := d.ChangeLayer(RodLayer); err != nil {
			return err
		}
		if _, err := d.Line(0, y, 0, p.OriginalLength, y, 0); err != nil {
			return fmt.Errorf("rod %d: %w", i+1, err)
		}

		if err := d.ChangeLayer(CutLayer); err != nil {
			return err
		}
		for _, c := range layout[i] {
			end := c.Offset + c.Reserved
			if _, err := d.Line(end, y-dxfTickHeight/2, 0, end, y+dxfTickHeight/2, 0); err != nil {
				return fmt.Errorf("rod %d cut %d: %w", i+1, c.Sequence, err)
			}
		}

		if err := d.ChangeLayer(TextLayer); err != nil {
			return err
		}
		title := fmt.Sprintf("#%d %s %.2f (remainder %.2f)", i+1, rodTitle(result, i), p.OriginalLength, p.Remainder)
		if _, err := d.Text(title, 0, y+dxfTickHeight, 0, dxfTextHeight); err != nil {
			return fmt.Errorf("rod %d label: %w", i+1, err)
		}
		for _, c := range layout[i] {
			text := fmt.Sprintf("%s %.2f", c.Label, c.Length)
			if _, err := d.Text(text, c.Offset, y-dxfTickHeight, 0, dxfTextHeight/2); err != nil {
				return fmt.Errorf("rod %d cut %d label: %w", i+1, c.Sequence, err)
			}
		}
	}

	return d.SaveAs(path)
}
