package localsearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/events"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/rng"
)

type recorder struct{ values []float64 }

func (r *recorder) Publish(e events.Event) { r.values = append(r.values, e.Value) }

func newGrid(t *testing.T, capacity float64, houses ...model.House) *model.Grid {
	t.Helper()
	g, err := model.NewGrid(
		[]model.Battery{
			{ID: 0, Location: model.Point{X: 0, Y: 0}, Capacity: capacity, Cost: 5000},
			{ID: 1, Location: model.Point{X: 10, Y: 0}, Capacity: capacity, Cost: 5000},
		},
		houses,
		model.DefaultGridOptions(),
	)
	require.NoError(t, err)
	return g
}

func randomInstance(t *testing.T, seed int64) (*model.Grid, model.Assignment) {
	t.Helper()
	r := rng.New(seed)
	var houses []model.House
	for i := 0; i < 30; i++ {
		houses = append(houses, model.House{
			ID:       i,
			Location: model.Point{X: r.Intn(11), Y: r.Intn(11)},
			Output:   float64(1 + r.Intn(5)),
		})
	}
	g := newGrid(t, 80, houses...)
	// Alternating keeps each battery at 15 houses of output at most 5.
	a := g.EmptyAssignment()
	for i := range houses {
		a.Add(i%2, i)
	}
	require.True(t, g.Valid(a))
	return g, a
}

func assertMonotone(t *testing.T, start float64, values []float64) {
	t.Helper()
	prev := start
	for _, v := range values {
		assert.Less(t, v, prev)
		prev = v
	}
}

func TestGroupSwapFixesCrossedAssignment(t *testing.T) {
	g := newGrid(t, 10,
		model.House{ID: 0, Location: model.Point{X: 1, Y: 0}, Output: 5},
		model.House{ID: 1, Location: model.Point{X: 9, Y: 0}, Output: 5},
	)
	start := model.Assignment{0: {1}, 1: {0}}
	opt := Optimizer{Strategy: GroupSwap{Sizes: []int{2}, Trials: 5}, Rand: rng.New(1)}

	a, stats, err := opt.Run(context.Background(), g, start, budget.Budget{})
	require.NoError(t, err)
	assert.Equal(t, 10018.0, g.TotalCost(a))
	assert.Equal(t, 1, stats.Improvements)
	assert.Equal(t, 5, stats.Iterations)
	assert.Equal(t, model.Assignment{0: {1}, 1: {0}}, start)
}

func TestGroupSwapKeepsBestWhenReinsertFails(t *testing.T) {
	g, err := model.NewGrid(
		[]model.Battery{{ID: 0, Location: model.Point{X: 0, Y: 0}, Capacity: 10, Cost: 5000}},
		[]model.House{
			{ID: 0, Location: model.Point{X: 1, Y: 0}, Output: 6},
			{ID: 1, Location: model.Point{X: 2, Y: 0}, Output: 6},
		},
		model.DefaultGridOptions(),
	)
	require.NoError(t, err)
	// Only one of the two houses fits, so every trial leaves one unplaced.
	start := model.Assignment{0: {0}}
	rec := &recorder{}
	opt := Optimizer{Strategy: GroupSwap{Sizes: []int{1}, Trials: 20}, Rand: rng.New(3), Events: rec}

	a, stats, err := opt.Run(context.Background(), g, start, budget.Budget{})
	require.NoError(t, err)
	assert.Equal(t, start, a)
	assert.Equal(t, []int{1}, g.UnconnectedHouses(a))
	assert.Equal(t, 0, stats.Improvements)
	assert.Equal(t, 20, stats.Iterations)
	assert.Empty(t, rec.values)
}

func TestGroupSwapMovesNeverIncreaseCost(t *testing.T) {
	g, start := randomInstance(t, 17)
	rec := &recorder{}
	opt := Optimizer{Strategy: GroupSwap{Sizes: []int{10, 4}, Trials: 50}, Rand: rng.New(3), Events: rec}

	a, _, err := opt.Run(context.Background(), g, start, budget.Budget{})
	require.NoError(t, err)
	assert.True(t, g.Valid(a))
	assert.LessOrEqual(t, g.TotalCost(a), g.TotalCost(start))
	assertMonotone(t, g.TotalCost(start), rec.values)
}

func TestGroupSwapRespectsBudget(t *testing.T) {
	g, start := randomInstance(t, 5)
	opt := Optimizer{Strategy: GroupSwap{}}
	_, stats, err := opt.Run(context.Background(), g, start, budget.Budget{Iterations: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Iterations)
	assert.Equal(t, budget.StopIterations, stats.Stop)
}

func TestSimpleSwapPicksBestPartner(t *testing.T) {
	g := newGrid(t, 100,
		model.House{ID: 0, Location: model.Point{X: 10, Y: 2}, Output: 1},
		model.House{ID: 1, Location: model.Point{X: 3, Y: 0}, Output: 1},
		model.House{ID: 2, Location: model.Point{X: 0, Y: 1}, Output: 1},
	)
	start := model.Assignment{0: {0}, 1: {1, 2}}
	a, stats, err := Optimizer{Strategy: SimpleSwap{}}.Run(context.Background(), g, start, budget.Budget{})
	require.NoError(t, err)
	assert.Equal(t, model.Assignment{0: {2}, 1: {1, 0}}, a)
	assert.Equal(t, 1, stats.Improvements)
	assert.Equal(t, budget.StopExhausted, stats.Stop)
}

func TestSimpleSwapCapacityBlocksSwap(t *testing.T) {
	g := newGrid(t, 10,
		model.House{ID: 0, Location: model.Point{X: 1, Y: 0}, Output: 4},
		model.House{ID: 1, Location: model.Point{X: 9, Y: 0}, Output: 8},
		model.House{ID: 2, Location: model.Point{X: 10, Y: 1}, Output: 5},
	)
	start := model.Assignment{0: {1}, 1: {0, 2}}
	a, stats, err := Optimizer{Strategy: SimpleSwap{}}.Run(context.Background(), g, start, budget.Budget{})
	require.NoError(t, err)
	assert.Equal(t, start, a)
	assert.Zero(t, stats.Improvements)
}

func TestSimpleSwapMovesNeverIncreaseCost(t *testing.T) {
	g, start := randomInstance(t, 23)
	rec := &recorder{}
	a, _, err := Optimizer{Strategy: SimpleSwap{}, Events: rec}.Run(context.Background(), g, start, budget.Budget{})
	require.NoError(t, err)
	assert.True(t, g.Valid(a))
	assertMonotone(t, g.TotalCost(start), rec.values)
	for _, b := range g.Batteries() {
		assert.LessOrEqual(t, g.Usage(a, b.ID), b.Capacity)
	}
}

func TestOptimizerRejectsUnknownHouse(t *testing.T) {
	g := newGrid(t, 10, model.House{ID: 0, Location: model.Point{X: 1, Y: 0}, Output: 1})
	_, _, err := Optimizer{Strategy: SimpleSwap{}}.Run(context.Background(), g, model.Assignment{0: {9}}, budget.Budget{})
	assert.ErrorIs(t, err, model.ErrUnknownHouse)
}
