package engine

import (
	"fmt"

	"github.com/piwi3910/RodCut/internal/model"
)

// Decode maps an assignment identifier to one cut pattern per rod. It reports
// ok=false as soon as any remainder drops below -tolerance or a digit does
// not name a rod. Remainders inside the tolerance band are clamped to zero.
// An identifier whose length differs from the piece count is an error.
func Decode(id []int, rods, pieces []float64, tolerance float64) ([]model.CutPattern, bool, error) {
	if len(id) != len(pieces) {
		return nil, false, fmt.Errorf("%w: identifier has %d digits for %d pieces", ErrInvalidInput, len(id), len(pieces))
	}
	patterns, ok := decode(id, rods, pieces, tolerance)
	return patterns, ok, nil
}

func decode(id []int, rods, pieces []float64, tolerance float64) ([]model.CutPattern, bool) {
	patterns := make([]model.CutPattern, len(rods))
	for i, length := range rods {
		patterns[i] = model.CutPattern{
			OriginalLength: length,
			Cuts:           []float64{},
			Pieces:         []int{},
			Remainder:      length,
		}
	}

	for j, rodIdx := range id {
		if rodIdx < 0 || rodIdx >= len(rods) {
			return nil, false
		}
		p := &patterns[rodIdx]
		p.Cuts = append(p.Cuts, pieces[j])
		p.Pieces = append(p.Pieces, j)
		p.Remainder -= pieces[j]
		if p.Remainder < -tolerance {
			return nil, false
		}
	}

	for i := range patterns {
		if patterns[i].Remainder < 0 {
			patterns[i].Remainder = 0
		}
	}
	return patterns, true
}

// Reward returns the sum over rods of the squared remainder.
func Reward(patterns []model.CutPattern) float64 {
	var total float64
	for _, p := range patterns {
		total += p.Remainder * p.Remainder
	}
	return total
}
