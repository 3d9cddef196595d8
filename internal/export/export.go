// Package export writes optimizer results as PDF cut plans, QR labels,
// Excel cut lists and DXF drawings.
package export

import (
	"errors"

	"github.com/piwi3910/RodCut/internal/model"
)

// ErrNoSolution is returned when asked to export a result without a feasible solution.
var ErrNoSolution = errors.New("no feasible solution to export")

// PlacedCut is one piece positioned along its rod.
type PlacedCut struct {
	RodIndex   int
	PieceIndex int
	Label      string
	Offset     float64 // mm from the rod start
	Length     float64 // nominal piece length
	Reserved   float64 // length consumed including kerf
	Sequence   int     // 1-based position on the rod
}

// Layout positions the cuts of every pattern end to end from the rod start,
// advancing by the kerf-inflated length when kerf compensation was applied.
func Layout(result model.OptimizeResult, settings model.Settings) [][]PlacedCut {
	if result.Solution == nil {
		return nil
	}
	rows := make([][]PlacedCut, len(result.Solution.Patterns))
	for i, p := range result.Solution.Patterns {
		offset := 0.0
		for k, cut := range p.Cuts {
			idx := -1
			if k < len(p.Pieces) {
				idx = p.Pieces[k]
			}
			reserved := settings.EffectivePieceLength(cut)
			rows[i] = append(rows[i], PlacedCut{
				RodIndex:   i,
				PieceIndex: idx,
				Label:      result.PieceLabel(idx),
				Offset:     offset,
				Length:     cut,
				Reserved:   reserved,
				Sequence:   k + 1,
			})
			offset += reserved
		}
	}
	return rows
}

// rodTitle names a rod by its label when it has one.
func rodTitle(result model.OptimizeResult, idx int) string {
	if label := result.RodLabel(idx); label != "" {
		return label
	}
	return "Rod"
}
