package engine

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/piwi3910/RodCut/internal/logging"
	"github.com/piwi3910/RodCut/internal/metrics"
	"github.com/piwi3910/RodCut/internal/model"
)

// Optimize assigns every piece to a rod so that the sum of squared rod
// remainders is maximal. It returns nil (and no error) when no assignment
// fits. Input order is preserved and decides ties: among equally rewarded
// assignments the first one in odometer order wins.
func Optimize(rodLengths, pieceLengths []float64) (*model.Solution, error) {
	s, err := NewSearch(rodLengths, pieceLengths, model.DefaultTolerance)
	if err != nil {
		return nil, err
	}
	s.Step(0)
	return s.Best(), nil
}

// MaxExpandedItems bounds the number of rods plus pieces left after
// quantities are expanded into individual items.
const MaxExpandedItems = 1 << 20

// Optimizer runs the exhaustive search over labelled rods and pieces.
type Optimizer struct {
	Settings model.Settings
	Logger   logging.Logger
	Metrics  metrics.Collector
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger used for search progress.
func WithLogger(l logging.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetrics sets the collector that receives run statistics.
func WithMetrics(m metrics.Collector) Option {
	return func(o *Optimizer) {
		if m != nil {
			o.Metrics = m
		}
	}
}

func New(settings model.Settings, opts ...Option) *Optimizer {
	o := &Optimizer{
		Settings: settings,
		Logger:   logging.NewNop(),
		Metrics:  metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize expands quantities, applies the configured ordering and kerf, and
// searches the full assignment space. The context is checked between chunks
// of Settings.ChunkSize assignments.
func (o *Optimizer) Optimize(ctx context.Context, rods []model.Rod, pieces []model.Piece) (model.OptimizeResult, error) {
	result, _, err := o.Run(ctx, rods, pieces, nil)
	return result, err
}

// Run is Optimize with checkpoint support. When resume is non-nil the search
// continues from it; it must have been taken for the same rods, pieces and
// settings. The returned checkpoint reflects the state at return, including
// when the context was cancelled, in which case the error wraps ctx.Err().
func (o *Optimizer) Run(ctx context.Context, rods []model.Rod, pieces []model.Piece, resume *Checkpoint) (model.OptimizeResult, *Checkpoint, error) {
	if err := validateQuantities(rods, pieces); err != nil {
		return model.OptimizeResult{}, nil, err
	}
	var rodCount, pieceCount uint64
	for _, r := range rods {
		rodCount = addQuantity(rodCount, r.Quantity)
	}
	for _, p := range pieces {
		pieceCount = addQuantity(pieceCount, p.Quantity)
	}
	combinations, err := o.checkSize(rodCount, pieceCount)
	if err != nil {
		return model.OptimizeResult{}, nil, err
	}

	expRods, expPieces, err := o.prepare(rods, pieces)
	if err != nil {
		return model.OptimizeResult{}, nil, err
	}

	rodLengths := model.RodLengths(expRods)
	pieceLengths := make([]float64, len(expPieces))
	for i, p := range expPieces {
		pieceLengths[i] = o.Settings.EffectivePieceLength(p.Length)
	}

	var search *Search
	if resume != nil {
		if !slices.Equal(resume.Rods, rodLengths) || !slices.Equal(resume.Pieces, pieceLengths) || resume.Tolerance != o.Settings.Tolerance {
			return model.OptimizeResult{}, nil, fmt.Errorf("%w: checkpoint does not match rods, pieces or tolerance", ErrInvalidInput)
		}
		search, err = ResumeSearch(*resume)
	} else {
		search, err = NewSearch(rodLengths, pieceLengths, o.Settings.Tolerance)
	}
	if err != nil {
		return model.OptimizeResult{}, nil, err
	}
	search.OnImprove = func(evaluated uint64, reward float64) {
		o.Logger.Debug("improved assignment", "evaluated", evaluated, "reward", reward)
	}

	o.Logger.Info("search started",
		"rods", len(rodLengths),
		"pieces", len(pieceLengths),
		"combinations", combinations,
		"resumed", resume != nil)

	start := time.Now()
	chunk := o.Settings.ChunkSize
	for !search.Done() {
		if err := ctx.Err(); err != nil {
			cp := search.Checkpoint()
			o.Logger.Warn("search interrupted", "evaluated", search.Evaluated(), "error", err)
			return model.OptimizeResult{}, &cp, fmt.Errorf("search interrupted after %d assignments: %w", search.Evaluated(), err)
		}
		search.Step(chunk)
	}
	elapsed := time.Since(start)

	result := model.OptimizeResult{
		Solution:     search.Best(),
		Rods:         expRods,
		Pieces:       expPieces,
		Combinations: combinations,
		Evaluated:    search.Evaluated(),
		Feasible:     search.Feasible(),
		ElapsedMs:    elapsed.Milliseconds(),
	}
	if result.Solution != nil && o.Settings.ApplyKerf {
		restoreNominalCuts(result.Solution, expPieces)
	}

	o.Metrics.RecordSearch(result.Evaluated, result.Feasible, elapsed.Seconds())
	if result.Solution != nil {
		o.Metrics.RecordResult(true, result.Solution.Reward)
		o.Logger.Info("search finished",
			"evaluated", result.Evaluated,
			"feasible", result.Feasible,
			"reward", result.Solution.Reward,
			"elapsed", elapsed)
	} else {
		o.Metrics.RecordResult(false, 0)
		o.Logger.Info("search finished without feasible assignment",
			"evaluated", result.Evaluated,
			"elapsed", elapsed)
	}

	cp := search.Checkpoint()
	return result, &cp, nil
}

func validateQuantities(rods []model.Rod, pieces []model.Piece) error {
	for i, r := range rods {
		if r.Quantity <= 0 {
			return fmt.Errorf("%w: rod %d (%s) has quantity %d", ErrInvalidInput, i, r.Label, r.Quantity)
		}
	}
	for i, p := range pieces {
		if p.Quantity <= 0 {
			return fmt.Errorf("%w: piece %d (%s) has quantity %d", ErrInvalidInput, i, p.Label, p.Quantity)
		}
	}
	return nil
}

// addQuantity adds a positive quantity to total, saturating at math.MaxUint64.
func addQuantity(total uint64, qty int) uint64 {
	q := uint64(qty)
	if total > math.MaxUint64-q {
		return math.MaxUint64
	}
	return total + q
}

// checkSize refuses searches whose item count or assignment space exceeds
// the limits, before anything is expanded. It returns the search space.
func (o *Optimizer) checkSize(rods, pieces uint64) (uint64, error) {
	if rods > MaxExpandedItems || pieces > MaxExpandedItems-rods {
		return 0, fmt.Errorf("%w: %d rods and %d pieces exceed the limit of %d items",
			ErrSearchTooLarge, rods, pieces, MaxExpandedItems)
	}
	combinations := searchSpace(rods, pieces)
	limit := o.Settings.MaxCombinations
	if limit == 0 || combinations <= limit {
		return combinations, nil
	}
	if combinations == math.MaxUint64 {
		return 0, fmt.Errorf("%w: %d rods and %d pieces give more than %d combinations",
			ErrSearchTooLarge, rods, pieces, limit)
	}
	return 0, fmt.Errorf("%w: %d rods and %d pieces give %d combinations, limit %d",
		ErrSearchTooLarge, rods, pieces, combinations, limit)
}

// prepare expands quantities and applies the sort order.
func (o *Optimizer) prepare(rods []model.Rod, pieces []model.Piece) ([]model.Rod, []model.Piece, error) {
	expRods := model.ExpandRods(rods)
	expPieces := model.ExpandPieces(pieces)

	switch o.Settings.SortOrder {
	case model.SortAscending:
		sort.SliceStable(expRods, func(i, j int) bool { return expRods[i].Length < expRods[j].Length })
		sort.SliceStable(expPieces, func(i, j int) bool { return expPieces[i].Length < expPieces[j].Length })
	case model.SortDescending:
		sort.SliceStable(expRods, func(i, j int) bool { return expRods[i].Length > expRods[j].Length })
		sort.SliceStable(expPieces, func(i, j int) bool { return expPieces[i].Length > expPieces[j].Length })
	case model.SortNone, "":
	default:
		return nil, nil, fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, o.Settings.SortOrder)
	}
	return expRods, expPieces, nil
}

// restoreNominalCuts replaces kerf-inflated cut lengths with the piece
// lengths the user asked for. Remainders keep the kerf as consumed material.
func restoreNominalCuts(s *model.Solution, pieces []model.Piece) {
	for i := range s.Patterns {
		for k, idx := range s.Patterns[i].Pieces {
			s.Patterns[i].Cuts[k] = pieces[idx].Length
		}
	}
}
