package engine

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/piwi3910/RodCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	searchRods   = []float64{14, 9.5, 11}
	searchPieces = []float64{3, 4.25, 2, 6, 1.5}
)

func TestSearch_ChunkingDoesNotChangeResult(t *testing.T) {
	whole, err := NewSearch(searchRods, searchPieces, model.DefaultTolerance)
	require.NoError(t, err)
	assert.True(t, whole.Step(0))

	chunked, err := NewSearch(searchRods, searchPieces, model.DefaultTolerance)
	require.NoError(t, err)
	steps := 0
	for !chunked.Step(1) {
		steps++
	}

	assert.Equal(t, 242, steps)
	assert.Equal(t, whole.Best(), chunked.Best())
	assert.Equal(t, uint64(243), chunked.Evaluated())
	assert.Equal(t, whole.Feasible(), chunked.Feasible())
}

func TestSearch_StepAfterDoneIsNoop(t *testing.T) {
	s, err := NewSearch([]float64{5}, []float64{1}, 0)
	require.NoError(t, err)
	assert.True(t, s.Step(10))
	assert.Equal(t, uint64(1), s.Evaluated())
	assert.True(t, s.Step(10))
	assert.Equal(t, uint64(1), s.Evaluated())
}

func TestSearch_CheckpointRoundTripResumes(t *testing.T) {
	full, err := NewSearch(searchRods, searchPieces, model.DefaultTolerance)
	require.NoError(t, err)
	full.Step(0)

	partial, err := NewSearch(searchRods, searchPieces, model.DefaultTolerance)
	require.NoError(t, err)
	assert.False(t, partial.Step(100))

	data, err := json.Marshal(partial.Checkpoint())
	require.NoError(t, err)

	var cp Checkpoint
	require.NoError(t, json.Unmarshal(data, &cp))
	assert.Equal(t, uint64(100), cp.Evaluated)

	resumed, err := ResumeSearch(cp)
	require.NoError(t, err)
	assert.True(t, resumed.Step(0))

	assert.Equal(t, full.Best(), resumed.Best())
	assert.Equal(t, full.Evaluated(), resumed.Evaluated())
	assert.Equal(t, full.Feasible(), resumed.Feasible())
}

func TestSearch_OnImproveSeesStrictlyIncreasingRewards(t *testing.T) {
	s, err := NewSearch(searchRods, searchPieces, model.DefaultTolerance)
	require.NoError(t, err)

	var rewards []float64
	s.OnImprove = func(_ uint64, reward float64) {
		rewards = append(rewards, reward)
	}
	s.Step(0)

	require.NotEmpty(t, rewards)
	for i := 1; i < len(rewards); i++ {
		assert.Greater(t, rewards[i], rewards[i-1])
	}
	assert.Equal(t, rewards[len(rewards)-1], s.Best().Reward)
}

func TestSearch_BestIsACopy(t *testing.T) {
	s, err := NewSearch([]float64{10}, []float64{4}, 0)
	require.NoError(t, err)
	s.Step(0)

	best := s.Best()
	best.Patterns[0].Cuts[0] = 99
	assert.Equal(t, 4.0, s.Best().Patterns[0].Cuts[0])
}

func TestNewSearch_RejectsBadTolerance(t *testing.T) {
	_, err := NewSearch([]float64{1}, nil, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = NewSearch([]float64{1}, nil, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResumeSearch_RejectsMalformedCheckpoint(t *testing.T) {
	base := Checkpoint{Rods: []float64{5, 5}, Pieces: []float64{1, 2}, Digits: []int{0, 0}}

	bad := base
	bad.Digits = []int{0}
	_, err := ResumeSearch(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = base
	bad.Digits = []int{0, 2}
	_, err = ResumeSearch(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = base
	bad.Best = &model.Solution{Patterns: []model.CutPattern{{OriginalLength: 5}}}
	_, err = ResumeSearch(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = base
	bad.Rods = []float64{-5, 5}
	_, err = ResumeSearch(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSearchSpace(t *testing.T) {
	assert.Equal(t, uint64(1), SearchSpace(0, 0))
	assert.Equal(t, uint64(1), SearchSpace(5, 0))
	assert.Equal(t, uint64(0), SearchSpace(0, 3))
	assert.Equal(t, uint64(1), SearchSpace(1, 40))
	assert.Equal(t, uint64(243), SearchSpace(3, 5))
	assert.Equal(t, uint64(4194304), SearchSpace(4, 11))
	assert.Equal(t, uint64(math.MaxUint64), SearchSpace(10, 40))
}
