package model

import (
	"sort"

	"github.com/google/uuid"
)

// Offcut represents a usable remnant left on a rod after cutting.
type Offcut struct {
	ID       string  `json:"id"`
	RodLabel string  `json:"rod_label"` // Which rod it came from
	RodIndex int     `json:"rod_index"` // Index of the source rod in the result
	Offset   float64 `json:"offset"`    // Position on the rod (mm from the start)
	Length   float64 `json:"length"`    // Usable length (mm)
}

// ToRod converts an offcut into a rod for reuse in future projects.
func (o Offcut) ToRod() Rod {
	return NewRod("Offcut "+o.RodLabel, o.Length, 1)
}

// MinOffcutLength is the default minimum length (in mm) for a remainder
// to be kept as an offcut. Shorter remainders are waste.
const MinOffcutLength = 50.0

// DetectOffcuts returns the remainders of a result that are at least
// minLength long, longest first. Cuts are laid out from the start of each
// rod, so the offcut always sits at the end.
func DetectOffcuts(result OptimizeResult, minLength float64) []Offcut {
	if result.Solution == nil {
		return nil
	}
	var offcuts []Offcut
	for i, p := range result.Solution.Patterns {
		if p.Remainder <= 0 || p.Remainder < minLength {
			continue
		}
		offcuts = append(offcuts, Offcut{
			ID:       uuid.New().String()[:8],
			RodLabel: result.RodLabel(i),
			RodIndex: i,
			Offset:   p.OriginalLength - p.Remainder,
			Length:   p.Remainder,
		})
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Length > offcuts[j].Length
	})
	return offcuts
}

// TotalOffcutLength returns the summed length of all offcuts in mm.
func TotalOffcutLength(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Length
	}
	return total
}
