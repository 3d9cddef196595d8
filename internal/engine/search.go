package engine

import (
	"fmt"
	"math"
	"slices"

	"github.com/piwi3910/RodCut/internal/model"
)

// Checkpoint is the resumable state of a search: the next identifier to
// evaluate plus the best solution found so far.
type Checkpoint struct {
	Rods      []float64       `json:"rods"`
	Pieces    []float64       `json:"pieces"`
	Tolerance float64         `json:"tolerance"`
	Digits    []int           `json:"digits"`
	Best      *model.Solution `json:"best,omitempty"`
	Evaluated uint64          `json:"evaluated"`
	Feasible  uint64          `json:"feasible"`
	Done      bool            `json:"done"`
}

// Search enumerates every assignment of pieces to rods in odometer order
// and keeps the one with the highest reward. It can be advanced in chunks
// and checkpointed between them; the outcome does not depend on chunking.
type Search struct {
	rods      []float64
	pieces    []float64
	tolerance float64

	counter    *Counter
	remainders []float64

	best       *model.Solution
	bestReward float64
	evaluated  uint64
	feasible   uint64
	done       bool

	// OnImprove, when set, is called each time a strictly better assignment
	// replaces the best so far.
	OnImprove func(evaluated uint64, reward float64)
}

// NewSearch validates the lengths and positions a search at the all-zero
// identifier. The slices are copied.
func NewSearch(rods, pieces []float64, tolerance float64) (*Search, error) {
	if err := validateProblem(rods, pieces, tolerance); err != nil {
		return nil, err
	}
	return &Search{
		rods:       slices.Clone(rods),
		pieces:     slices.Clone(pieces),
		tolerance:  tolerance,
		counter:    NewCounter(len(pieces), len(rods)),
		remainders: make([]float64, len(rods)),
		bestReward: math.Inf(-1),
	}, nil
}

// ResumeSearch rebuilds a search from a checkpoint.
func ResumeSearch(cp Checkpoint) (*Search, error) {
	s, err := NewSearch(cp.Rods, cp.Pieces, cp.Tolerance)
	if err != nil {
		return nil, err
	}
	if len(cp.Digits) != len(cp.Pieces) {
		return nil, fmt.Errorf("%w: checkpoint has %d digits for %d pieces", ErrInvalidInput, len(cp.Digits), len(cp.Pieces))
	}
	counter, err := RestoreCounter(cp.Digits, len(cp.Rods))
	if err != nil {
		return nil, err
	}
	s.counter = counter
	s.evaluated = cp.Evaluated
	s.feasible = cp.Feasible
	s.done = cp.Done
	if cp.Best != nil {
		if len(cp.Best.Patterns) != len(cp.Rods) {
			return nil, fmt.Errorf("%w: checkpoint best has %d patterns for %d rods", ErrInvalidInput, len(cp.Best.Patterns), len(cp.Rods))
		}
		best := cp.Best.Clone()
		s.best = &best
		s.bestReward = best.Reward
	}
	return s, nil
}

func validateProblem(rods, pieces []float64, tolerance float64) error {
	if math.IsNaN(tolerance) || math.IsInf(tolerance, 0) || tolerance < 0 {
		return fmt.Errorf("%w: tolerance %v", ErrInvalidInput, tolerance)
	}
	if err := validateLengths("rod", rods); err != nil {
		return err
	}
	return validateLengths("piece", pieces)
}

func validateLengths(kind string, lengths []float64) error {
	for i, l := range lengths {
		if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
			return fmt.Errorf("%w: %s %d has length %v", ErrInvalidInput, kind, i, l)
		}
	}
	return nil
}

// Step evaluates up to n identifiers and reports whether the enumeration is
// complete. n == 0 runs to the end.
func (s *Search) Step(n uint64) bool {
	for i := uint64(0); !s.done && (n == 0 || i < n); i++ {
		id := s.counter.Digits()
		if reward, ok := s.evaluate(id); ok {
			s.feasible++
			// Strictly greater: ties keep the earliest identifier.
			if reward > s.bestReward {
				s.improve(id)
			}
		}
		s.evaluated++
		if s.counter.Next() {
			s.done = true
		}
	}
	return s.done
}

// evaluate computes feasibility and reward on scratch remainders without
// building patterns. It mirrors decode exactly.
func (s *Search) evaluate(id []int) (float64, bool) {
	copy(s.remainders, s.rods)
	for j, rodIdx := range id {
		if rodIdx < 0 || rodIdx >= len(s.rods) {
			return 0, false
		}
		s.remainders[rodIdx] -= s.pieces[j]
		if s.remainders[rodIdx] < -s.tolerance {
			return 0, false
		}
	}
	var reward float64
	for _, r := range s.remainders {
		if r > 0 {
			reward += r * r
		}
	}
	return reward, true
}

func (s *Search) improve(id []int) {
	patterns, ok := decode(id, s.rods, s.pieces, s.tolerance)
	if !ok {
		return
	}
	reward := Reward(patterns)
	s.best = &model.Solution{Patterns: patterns, Reward: reward}
	s.bestReward = reward
	if s.OnImprove != nil {
		s.OnImprove(s.evaluated, reward)
	}
}

// Done reports whether every identifier has been evaluated.
func (s *Search) Done() bool {
	return s.done
}

// Best returns a copy of the best solution so far, or nil if no feasible
// assignment has been seen.
func (s *Search) Best() *model.Solution {
	if s.best == nil {
		return nil
	}
	best := s.best.Clone()
	return &best
}

// Evaluated returns the number of identifiers decoded so far.
func (s *Search) Evaluated() uint64 {
	return s.evaluated
}

// Feasible returns the number of feasible identifiers seen so far.
func (s *Search) Feasible() uint64 {
	return s.feasible
}

// Checkpoint captures the search state so it can be resumed later.
func (s *Search) Checkpoint() Checkpoint {
	return Checkpoint{
		Rods:      slices.Clone(s.rods),
		Pieces:    slices.Clone(s.pieces),
		Tolerance: s.tolerance,
		Digits:    s.counter.Snapshot(),
		Best:      s.Best(),
		Evaluated: s.evaluated,
		Feasible:  s.feasible,
		Done:      s.done,
	}
}

// SearchSpace returns rods^pieces, saturating at math.MaxUint64.
func SearchSpace(rods, pieces int) uint64 {
	if pieces <= 0 {
		return 1
	}
	if rods <= 0 {
		return 0
	}
	return searchSpace(uint64(rods), uint64(pieces))
}

func searchSpace(rods, pieces uint64) uint64 {
	switch {
	case pieces == 0:
		return 1
	case rods <= 1:
		return rods
	}
	total := uint64(1)
	for i := uint64(0); i < pieces; i++ {
		if total > math.MaxUint64/rods {
			return math.MaxUint64
		}
		total *= rods
	}
	return total
}
