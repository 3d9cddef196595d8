package engine

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"testing"

	"github.com/piwi3910/RodCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTestSettings() model.Settings {
	s := model.DefaultSettings()
	s.Kerf = 0
	s.ChunkSize = 16
	return s
}

// oracleBest computes the maximal reward by recursive enumeration,
// independently of Counter, Search and Decode.
func oracleBest(rods, pieces []float64, tolerance float64) (float64, bool) {
	remainders := append([]float64(nil), rods...)
	best := math.Inf(-1)
	found := false

	var walk func(j int)
	walk = func(j int) {
		if j == len(pieces) {
			var reward float64
			for _, r := range remainders {
				if r > 0 {
					reward += r * r
				}
			}
			if reward > best {
				best = reward
			}
			found = true
			return
		}
		for i := range remainders {
			saved := remainders[i]
			remainders[i] -= pieces[j]
			if remainders[i] >= -tolerance {
				walk(j + 1)
			}
			remainders[i] = saved
		}
	}
	walk(0)
	return best, found
}

// assertValidSolution checks that every piece is cut exactly once and that
// remainders match the cuts.
func assertValidSolution(t *testing.T, sol *model.Solution, rods, pieces []float64) {
	t.Helper()
	require.Len(t, sol.Patterns, len(rods))

	seen := make([]int, len(pieces))
	for i, p := range sol.Patterns {
		assert.Equal(t, rods[i], p.OriginalLength)
		require.Len(t, p.Pieces, len(p.Cuts))
		for k, idx := range p.Pieces {
			seen[idx]++
			assert.Equal(t, pieces[idx], p.Cuts[k])
		}
		assert.GreaterOrEqual(t, p.Remainder, 0.0)
		assert.InDelta(t, p.OriginalLength-p.Used(), p.Remainder, 1e-6)
	}
	for idx, n := range seen {
		assert.Equal(t, 1, n, "piece %d cut %d times", idx, n)
	}
	assert.InDelta(t, Reward(sol.Patterns), sol.Reward, 1e-9)
}

func TestOptimize_ExactFitOnSingleRod(t *testing.T) {
	sol, err := Optimize([]float64{5}, []float64{2, 3})
	require.NoError(t, err)
	require.NotNil(t, sol)

	require.Len(t, sol.Patterns, 1)
	assert.Equal(t, []float64{2, 3}, sol.Patterns[0].Cuts)
	assert.Equal(t, 0.0, sol.Patterns[0].Remainder)
	assert.Equal(t, 0.0, sol.Reward)
}

func TestOptimize_PieceLongerThanOnlyRod(t *testing.T) {
	sol, err := Optimize([]float64{3}, []float64{5})
	require.NoError(t, err)
	assert.Nil(t, sol)
}

func TestOptimize_TotalExceedsCapacity(t *testing.T) {
	sol, err := Optimize([]float64{4, 4}, []float64{3, 3, 3})
	require.NoError(t, err)
	assert.Nil(t, sol)
}

func TestOptimize_QuadraticRewardFavorsConsolidation(t *testing.T) {
	sol, err := Optimize([]float64{10, 10}, []float64{4, 4})
	require.NoError(t, err)
	require.NotNil(t, sol)

	// Both pieces on one rod: 2^2 + 10^2 = 104, versus 6^2 + 6^2 = 72 spread.
	assert.Equal(t, 104.0, sol.Reward)
	// [0,0] and [1,1] tie; the first enumerated wins.
	assert.Equal(t, []float64{4, 4}, sol.Patterns[0].Cuts)
	assert.Empty(t, sol.Patterns[1].Cuts)
	assert.Equal(t, 10.0, sol.Patterns[1].Remainder)
}

func TestOptimize_TieKeepsFirstInEnumerationOrder(t *testing.T) {
	sol, err := Optimize([]float64{5, 5}, []float64{5})
	require.NoError(t, err)
	require.NotNil(t, sol)
	assert.Equal(t, []float64{5}, sol.Patterns[0].Cuts)
	assert.Empty(t, sol.Patterns[1].Cuts)
}

func TestOptimize_ZeroPieces(t *testing.T) {
	sol, err := Optimize([]float64{3, 4}, nil)
	require.NoError(t, err)
	require.NotNil(t, sol)

	assert.Equal(t, 25.0, sol.Reward)
	for i, p := range sol.Patterns {
		assert.Empty(t, p.Cuts)
		assert.Equal(t, []float64{3, 4}[i], p.Remainder)
	}
}

func TestOptimize_ZeroRodsZeroPieces(t *testing.T) {
	sol, err := Optimize(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, sol)
	assert.Empty(t, sol.Patterns)
	assert.Equal(t, 0.0, sol.Reward)
}

func TestOptimize_ZeroRodsWithPieces(t *testing.T) {
	sol, err := Optimize(nil, []float64{1, 2})
	require.NoError(t, err)
	assert.Nil(t, sol)
}

func TestOptimize_ZeroLengthPieceAndRod(t *testing.T) {
	sol, err := Optimize([]float64{0, 2}, []float64{0, 2})
	require.NoError(t, err)
	require.NotNil(t, sol)
	assert.Equal(t, 0.0, sol.Reward)
	assertValidSolution(t, sol, []float64{0, 2}, []float64{0, 2})
}

func TestOptimize_InvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		rods   []float64
		pieces []float64
	}{
		{"negative rod", []float64{-1}, []float64{1}},
		{"negative piece", []float64{5}, []float64{-2}},
		{"NaN rod", []float64{math.NaN()}, nil},
		{"infinite piece", []float64{5}, []float64{math.Inf(1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sol, err := Optimize(tc.rods, tc.pieces)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, sol)
		})
	}
}

func TestOptimize_Deterministic(t *testing.T) {
	rods := []float64{12.5, 9, 7.25}
	pieces := []float64{3, 4.5, 2, 6, 1.25}

	first, err := Optimize(rods, pieces)
	require.NoError(t, err)
	second, err := Optimize(rods, pieces)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptimize_DoesNotReorderInput(t *testing.T) {
	rods := []float64{9, 3, 6}
	pieces := []float64{2, 5}

	sol, err := Optimize(rods, pieces)
	require.NoError(t, err)
	require.NotNil(t, sol)
	for i, p := range sol.Patterns {
		assert.Equal(t, rods[i], p.OriginalLength)
	}
	assert.Equal(t, []float64{9, 3, 6}, rods)
}

func TestOptimize_MatchesOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 60; trial++ {
		nRods := rng.Intn(4)
		nPieces := rng.Intn(6)
		rods := make([]float64, nRods)
		for i := range rods {
			rods[i] = float64(rng.Intn(20)) + rng.Float64()
		}
		pieces := make([]float64, nPieces)
		for i := range pieces {
			pieces[i] = float64(rng.Intn(8)) + float64(rng.Intn(4))*0.25
		}

		sol, err := Optimize(rods, pieces)
		require.NoError(t, err)

		want, found := oracleBest(rods, pieces, model.DefaultTolerance)
		if !found {
			assert.Nil(t, sol, "trial %d: rods=%v pieces=%v", trial, rods, pieces)
			continue
		}
		require.NotNil(t, sol, "trial %d: rods=%v pieces=%v", trial, rods, pieces)
		assert.InDelta(t, want, sol.Reward, 1e-6, "trial %d: rods=%v pieces=%v", trial, rods, pieces)
		assertValidSolution(t, sol, rods, pieces)
	}
}

func TestOptimize_WorkshopExample(t *testing.T) {
	if testing.Short() {
		t.Skip("4^11 assignments")
	}
	rods := []float64{311.5, 364.5, 391.5, 453.5}
	pieces := []float64{227, 90.5, 45, 88, 48, 48, 48, 48, 137, 74, 91.5}
	sort.Float64s(rods)
	sort.Float64s(pieces)

	sol, err := Optimize(rods, pieces)
	require.NoError(t, err)
	require.NotNil(t, sol)
	assertValidSolution(t, sol, rods, pieces)

	var totalRods, totalPieces float64
	for _, r := range rods {
		totalRods += r
	}
	for _, p := range pieces {
		totalPieces += p
	}
	assert.InDelta(t, totalRods-totalPieces, sol.TotalRemainder(), 1e-6)
}

type recordingMetrics struct {
	searches  int
	evaluated uint64
	feasible  uint64
	found     []bool
	rewards   []float64
}

func (r *recordingMetrics) RecordSearch(evaluated, feasible uint64, _ float64) {
	r.searches++
	r.evaluated += evaluated
	r.feasible += feasible
}

func (r *recordingMetrics) RecordResult(found bool, reward float64) {
	r.found = append(r.found, found)
	r.rewards = append(r.rewards, reward)
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) { l.messages = append(l.messages, "DEBUG "+msg) }
func (l *recordingLogger) Info(msg string, _ ...any)  { l.messages = append(l.messages, "INFO "+msg) }
func (l *recordingLogger) Warn(msg string, _ ...any)  { l.messages = append(l.messages, "WARN "+msg) }
func (l *recordingLogger) Error(msg string, _ ...any) { l.messages = append(l.messages, "ERROR "+msg) }

func TestOptimizer_ExpandsQuantitiesAndKeepsLabels(t *testing.T) {
	opt := New(defaultTestSettings())
	rods := []model.Rod{model.NewRod("Bar", 10, 2)}
	pieces := []model.Piece{model.NewPiece("Leg", 4, 2), model.NewPiece("Rail", 1, 1)}

	result, err := opt.Optimize(context.Background(), rods, pieces)
	require.NoError(t, err)
	require.True(t, result.Found())

	assert.Len(t, result.Rods, 2)
	assert.Len(t, result.Pieces, 3)
	assert.Equal(t, uint64(8), result.Combinations)
	assert.Equal(t, uint64(8), result.Evaluated)
	assert.Equal(t, "Leg", result.PieceLabel(0))
	assert.Equal(t, "Rail", result.PieceLabel(2))

	// All three pieces fit on the first bar: 1^2 + 10^2.
	assert.Equal(t, 101.0, result.Solution.Reward)
	assert.Equal(t, []int{0, 1, 2}, result.Solution.Patterns[0].Pieces)
}

func TestOptimizer_SortOrder(t *testing.T) {
	s := defaultTestSettings()
	s.SortOrder = model.SortAscending
	opt := New(s)

	rods := []model.Rod{model.NewRod("Long", 10, 1), model.NewRod("Short", 5, 1)}
	pieces := []model.Piece{model.NewPiece("B", 3, 1), model.NewPiece("A", 1, 1)}

	result, err := opt.Optimize(context.Background(), rods, pieces)
	require.NoError(t, err)
	assert.Equal(t, "Short", result.RodLabel(0))
	assert.Equal(t, "A", result.PieceLabel(0))
	assert.Equal(t, 5.0, result.Solution.Patterns[0].OriginalLength)
}

func TestOptimizer_UnknownSortOrder(t *testing.T) {
	s := defaultTestSettings()
	s.SortOrder = "random"
	_, err := New(s).Optimize(context.Background(), []model.Rod{model.NewRod("R", 5, 1)}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOptimizer_RejectsNonPositiveQuantity(t *testing.T) {
	opt := New(defaultTestSettings())

	_, err := opt.Optimize(context.Background(), []model.Rod{model.NewRod("R", 5, 0)}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = opt.Optimize(context.Background(), []model.Rod{model.NewRod("R", 5, 1)}, []model.Piece{model.NewPiece("P", 1, -1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOptimizer_SearchTooLarge(t *testing.T) {
	s := defaultTestSettings()
	s.MaxCombinations = 100
	opt := New(s)

	_, err := opt.Optimize(context.Background(),
		[]model.Rod{model.NewRod("R", 100, 3)},
		[]model.Piece{model.NewPiece("P", 1, 5)}) // 3^5 = 243
	assert.ErrorIs(t, err, ErrSearchTooLarge)
}

func TestOptimizer_SearchTooLargeBeforeExpanding(t *testing.T) {
	s := defaultTestSettings()
	opt := New(s)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := opt.Optimize(context.Background(),
		[]model.Rod{model.NewRod("R", 10, 5_000_000)},
		[]model.Piece{model.NewPiece("P", 1, 3)})
	runtime.ReadMemStats(&after)

	require.ErrorIs(t, err, ErrSearchTooLarge)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestOptimizer_ItemLimitWithSingleRod(t *testing.T) {
	s := defaultTestSettings()
	s.MaxCombinations = 0
	opt := New(s)

	_, err := opt.Optimize(context.Background(),
		[]model.Rod{model.NewRod("R", 10, 1)},
		[]model.Piece{model.NewPiece("P", 0, math.MaxInt), model.NewPiece("Q", 0, math.MaxInt)})
	require.ErrorIs(t, err, ErrSearchTooLarge)
	assert.Contains(t, err.Error(), "items")
}

func TestOptimizer_SaturatedSearchSpaceMessage(t *testing.T) {
	opt := New(defaultTestSettings())

	_, err := opt.Optimize(context.Background(),
		[]model.Rod{model.NewRod("R", 10, 1000)},
		[]model.Piece{model.NewPiece("P", 1, 100)})
	require.ErrorIs(t, err, ErrSearchTooLarge)
	assert.Contains(t, err.Error(), "more than 1000000000 combinations")
	assert.NotContains(t, err.Error(), "18446744073709551615")
}

func TestOptimizer_NoFeasibleSolution(t *testing.T) {
	metrics := &recordingMetrics{}
	opt := New(defaultTestSettings(), WithMetrics(metrics))

	result, err := opt.Optimize(context.Background(),
		[]model.Rod{model.NewRod("R", 3, 1)},
		[]model.Piece{model.NewPiece("P", 5, 1)})
	require.NoError(t, err)
	assert.False(t, result.Found())
	assert.Equal(t, uint64(1), result.Evaluated)
	assert.Equal(t, []bool{false}, metrics.found)
}

func TestOptimizer_ApplyKerf(t *testing.T) {
	s := defaultTestSettings()
	s.Kerf = 1
	s.ApplyKerf = true
	opt := New(s)

	result, err := opt.Optimize(context.Background(),
		[]model.Rod{model.NewRod("R", 10, 1)},
		[]model.Piece{model.NewPiece("P", 4, 2)})
	require.NoError(t, err)
	require.True(t, result.Found())

	p := result.Solution.Patterns[0]
	assert.Equal(t, []float64{4, 4}, p.Cuts, "cuts report nominal lengths")
	assert.Equal(t, 0.0, p.Remainder, "kerf consumes the rest of the rod")

	// 2 x 4.5 fits a 10 mm rod, but not once each cut costs 1 mm of kerf.
	result, err = opt.Optimize(context.Background(),
		[]model.Rod{model.NewRod("R", 10, 1)},
		[]model.Piece{model.NewPiece("P", 4.5, 2)})
	require.NoError(t, err)
	assert.False(t, result.Found())
}

func TestOptimizer_RecordsMetricsAndLogs(t *testing.T) {
	metrics := &recordingMetrics{}
	logger := &recordingLogger{}
	opt := New(defaultTestSettings(), WithMetrics(metrics), WithLogger(logger))

	_, err := opt.Optimize(context.Background(),
		[]model.Rod{model.NewRod("R", 10, 2)},
		[]model.Piece{model.NewPiece("P", 4, 2)})
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.searches)
	assert.Equal(t, uint64(4), metrics.evaluated)
	assert.Equal(t, uint64(4), metrics.feasible)
	assert.Equal(t, []float64{104}, metrics.rewards)

	assert.Contains(t, logger.messages, "INFO search started")
	assert.Contains(t, logger.messages, "DEBUG improved assignment")
	assert.Contains(t, logger.messages, "INFO search finished")
}

func TestOptimizer_CancelledContextReturnsCheckpoint(t *testing.T) {
	rods := []model.Rod{model.NewRod("A", 20, 1), model.NewRod("B", 15, 1), model.NewRod("C", 9, 1)}
	pieces := []model.Piece{
		model.NewPiece("p1", 4, 1), model.NewPiece("p2", 6, 1), model.NewPiece("p3", 2, 1),
		model.NewPiece("p4", 5, 1), model.NewPiece("p5", 3, 1),
	}
	opt := New(defaultTestSettings())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, cp, err := opt.Run(ctx, rods, pieces, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, cp)
	assert.False(t, cp.Done)

	// Advance a partial search by hand, then let the optimizer finish it.
	search, err := ResumeSearch(*cp)
	require.NoError(t, err)
	search.Step(100)
	partial := search.Checkpoint()

	resumed, final, err := opt.Run(context.Background(), rods, pieces, &partial)
	require.NoError(t, err)
	assert.True(t, final.Done)

	full, err := opt.Optimize(context.Background(), rods, pieces)
	require.NoError(t, err)
	assert.Equal(t, full.Solution, resumed.Solution)
	assert.Equal(t, full.Evaluated, resumed.Evaluated)
	assert.Equal(t, uint64(243), resumed.Evaluated)
}

func TestOptimizer_ResumeRejectsForeignCheckpoint(t *testing.T) {
	opt := New(defaultTestSettings())
	search, err := NewSearch([]float64{1, 2}, []float64{1}, model.DefaultTolerance)
	require.NoError(t, err)
	cp := search.Checkpoint()

	_, _, err = opt.Run(context.Background(),
		[]model.Rod{model.NewRod("R", 5, 1)},
		[]model.Piece{model.NewPiece("P", 1, 1)}, &cp)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
