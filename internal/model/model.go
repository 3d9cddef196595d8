package model

import (
	"math"
	"slices"

	"github.com/google/uuid"
)

// Rod represents an available length of stock material to cut from.
type Rod struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Length   float64 `json:"length"` // mm
	Quantity int     `json:"quantity"`
}

func NewRod(label string, length float64, qty int) Rod {
	return Rod{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Length:   length,
		Quantity: qty,
	}
}

// Piece represents a required length to be cut from some rod.
type Piece struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Length   float64 `json:"length"` // mm
	Quantity int     `json:"quantity"`
}

func NewPiece(label string, length float64, qty int) Piece {
	return Piece{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Length:   length,
		Quantity: qty,
	}
}

// ExpandRods expands rods by quantity into individual rods, keeping input order.
func ExpandRods(rods []Rod) []Rod {
	var expanded []Rod
	for _, r := range rods {
		for i := 0; i < r.Quantity; i++ {
			cp := r
			cp.Quantity = 1
			expanded = append(expanded, cp)
		}
	}
	return expanded
}

// ExpandPieces expands pieces by quantity into individual pieces, keeping input order.
func ExpandPieces(pieces []Piece) []Piece {
	var expanded []Piece
	for _, p := range pieces {
		for i := 0; i < p.Quantity; i++ {
			cp := p
			cp.Quantity = 1
			expanded = append(expanded, cp)
		}
	}
	return expanded
}

// RodLengths returns the length of each rod.
func RodLengths(rods []Rod) []float64 {
	lengths := make([]float64, len(rods))
	for i, r := range rods {
		lengths[i] = r.Length
	}
	return lengths
}

// PieceLengths returns the length of each piece.
func PieceLengths(pieces []Piece) []float64 {
	lengths := make([]float64, len(pieces))
	for i, p := range pieces {
		lengths[i] = p.Length
	}
	return lengths
}

// CutPattern is the set of pieces cut from one rod plus its leftover.
type CutPattern struct {
	OriginalLength float64   `json:"original_length"`
	Cuts           []float64 `json:"cuts"`
	Pieces         []int     `json:"pieces"` // index of each cut in the piece sequence
	Remainder      float64   `json:"remainder"`
}

// Used returns the total length cut from the rod.
func (cp CutPattern) Used() float64 {
	var total float64
	for _, c := range cp.Cuts {
		total += c
	}
	return total
}

// Clone returns a deep copy of the pattern.
func (cp CutPattern) Clone() CutPattern {
	out := cp
	out.Cuts = slices.Clone(cp.Cuts)
	out.Pieces = slices.Clone(cp.Pieces)
	return out
}

// Solution is the best feasible assignment: one pattern per rod, in rod order.
type Solution struct {
	Patterns []CutPattern `json:"patterns"`
	Reward   float64      `json:"reward"`
}

// Clone returns a deep copy of the solution.
func (s Solution) Clone() Solution {
	out := Solution{Reward: s.Reward, Patterns: make([]CutPattern, len(s.Patterns))}
	for i, p := range s.Patterns {
		out.Patterns[i] = p.Clone()
	}
	return out
}

// TotalRemainder returns the summed leftover length of all rods.
func (s Solution) TotalRemainder() float64 {
	var total float64
	for _, p := range s.Patterns {
		total += p.Remainder
	}
	return total
}

// TotalCut returns the summed length of all cut pieces.
func (s Solution) TotalCut() float64 {
	var total float64
	for _, p := range s.Patterns {
		total += p.Used()
	}
	return total
}

// CutCount returns the number of pieces cut across all rods.
func (s Solution) CutCount() int {
	n := 0
	for _, p := range s.Patterns {
		n += len(p.Cuts)
	}
	return n
}

// RodsUsed returns how many rods have at least one cut.
func (s Solution) RodsUsed() int {
	n := 0
	for _, p := range s.Patterns {
		if len(p.Cuts) > 0 {
			n++
		}
	}
	return n
}

// Efficiency returns the usage percentage over all rods.
func (s Solution) Efficiency() float64 {
	var total float64
	for _, p := range s.Patterns {
		total += p.OriginalLength
	}
	if total == 0 {
		return 0
	}
	return (s.TotalCut() / total) * 100.0
}

// SortOrder controls how rods and pieces are ordered before the search.
// Ties between equally rewarded assignments resolve in favor of the first
// one enumerated, so the order changes which of them is returned.
type SortOrder string

const (
	SortNone       SortOrder = "none" // Keep input order
	SortAscending  SortOrder = "asc"  // Shortest first
	SortDescending SortOrder = "desc" // Longest first
)

// ParseSortOrder converts a user supplied name into a SortOrder.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case SortNone, "":
		return SortNone, true
	case SortAscending, "ascending":
		return SortAscending, true
	case SortDescending, "descending":
		return SortDescending, true
	default:
		return SortNone, false
	}
}

// Settings holds optimizer configuration.
type Settings struct {
	Tolerance       float64   `json:"tolerance"`        // Remainders down to -Tolerance count as zero
	MaxCombinations uint64    `json:"max_combinations"` // Refuse searches larger than this (0 = unlimited)
	ChunkSize       uint64    `json:"chunk_size"`       // Assignments evaluated between cancellation checks
	Kerf            float64   `json:"kerf"`             // Blade width in mm
	ApplyKerf       bool      `json:"apply_kerf"`       // Add Kerf to each piece before optimizing
	SortOrder       SortOrder `json:"sort_order"`       // Ordering applied before the search
	MinOffcutLength float64   `json:"min_offcut_length"`
}

// DefaultTolerance absorbs float64 rounding noise in remainder checks.
const DefaultTolerance = 1e-9

// DefaultMaxCombinations is the largest search space the optimizer accepts by default.
const DefaultMaxCombinations = 1_000_000_000

func DefaultSettings() Settings {
	return Settings{
		Tolerance:       DefaultTolerance,
		MaxCombinations: DefaultMaxCombinations,
		ChunkSize:       1 << 20,
		Kerf:            3.0,
		ApplyKerf:       false,
		SortOrder:       SortNone,
		MinOffcutLength: MinOffcutLength,
	}
}

// EffectivePieceLength returns the length the optimizer must reserve for a piece.
func (s Settings) EffectivePieceLength(length float64) float64 {
	if s.ApplyKerf && s.Kerf > 0 {
		return length + s.Kerf
	}
	return length
}

// OptimizeResult holds the full outcome of one optimizer run.
type OptimizeResult struct {
	Solution     *Solution `json:"solution,omitempty"` // nil when no feasible assignment exists
	Rods         []Rod     `json:"rods"`               // expanded rods, in search order
	Pieces       []Piece   `json:"pieces"`             // expanded pieces, in search order
	Combinations uint64    `json:"combinations"`
	Evaluated    uint64    `json:"evaluated"`
	Feasible     uint64    `json:"feasible"`
	ElapsedMs    int64     `json:"elapsed_ms"`
}

// Found reports whether a feasible solution exists.
func (r OptimizeResult) Found() bool {
	return r.Solution != nil
}

// PieceLabel returns the label of the piece at idx in the expanded sequence.
func (r OptimizeResult) PieceLabel(idx int) string {
	if idx < 0 || idx >= len(r.Pieces) {
		return ""
	}
	return r.Pieces[idx].Label
}

// RodLabel returns the label of the rod at idx in the expanded sequence.
func (r OptimizeResult) RodLabel(idx int) string {
	if idx < 0 || idx >= len(r.Rods) {
		return ""
	}
	return r.Rods[idx].Label
}

// Round2 rounds a length to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Project ties everything together for save/load.
type Project struct {
	Name     string          `json:"name"`
	Rods     []Rod           `json:"rods"`
	Pieces   []Piece         `json:"pieces"`
	Settings Settings        `json:"settings"`
	Result   *OptimizeResult `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		Name:     "Untitled",
		Rods:     []Rod{},
		Pieces:   []Piece{},
		Settings: DefaultSettings(),
	}
}
