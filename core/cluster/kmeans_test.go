package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartgrid/core/model"
)

func newGrid(t *testing.T, batteries []model.Point, houses []model.Point) *model.Grid {
	t.Helper()
	bs := make([]model.Battery, len(batteries))
	for i, p := range batteries {
		bs[i] = model.Battery{ID: i, Location: p, Capacity: 100, Cost: 5000}
	}
	hs := make([]model.House, len(houses))
	for i, p := range houses {
		hs[i] = model.House{ID: i, Location: p, Output: 1}
	}
	g, err := model.NewGrid(bs, hs, model.DefaultGridOptions())
	require.NoError(t, err)
	return g
}

func TestKMeansCoincidentHousesConvergeInOneIteration(t *testing.T) {
	batteries := []model.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 0}}
	g := newGrid(t, batteries, batteries)

	res := KMeans(g, DefaultOptions())
	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Converged)
	for i, c := range res.Clusters {
		assert.Equal(t, i, c.BatteryID)
		assert.Equal(t, []int{i}, c.Houses)
		assert.Equal(t, Centroid{X: float64(batteries[i].X), Y: float64(batteries[i].Y)}, c.Centroid)
	}
}

func TestKMeansMovesCentroids(t *testing.T) {
	g := newGrid(t,
		[]model.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		[]model.Point{{X: 1, Y: 0}, {X: 3, Y: 0}, {X: 8, Y: 0}, {X: 9, Y: 2}},
	)
	res := KMeans(g, DefaultOptions())
	require.True(t, res.Converged)

	left, ok := res.ByBattery(0)
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, left.Houses)
	assert.Equal(t, Centroid{X: 2, Y: 0}, left.Centroid)

	right, _ := res.ByBattery(1)
	assert.Equal(t, []int{2, 3}, right.Houses)
	assert.Equal(t, Centroid{X: 8.5, Y: 1}, right.Centroid)
	assert.Equal(t, 2, res.Iterations)

	a := res.Assignment()
	assert.Equal(t, []int{0, 1}, a[0])
}

func TestKMeansTieGoesToFirstBattery(t *testing.T) {
	g := newGrid(t, []model.Point{{X: 0, Y: 0}, {X: 4, Y: 0}}, []model.Point{{X: 2, Y: 0}})
	res := KMeans(g, Options{MaxIterations: 1})
	assert.Equal(t, []int{0}, res.Clusters[0].Houses)
	assert.Empty(t, res.Clusters[1].Houses)
	assert.Equal(t, Centroid{X: 4, Y: 0}, res.Clusters[1].Centroid)
}

func TestBorderSort(t *testing.T) {
	g := newGrid(t,
		[]model.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		[]model.Point{{X: 0, Y: 1}, {X: 4, Y: 0}, {X: 1, Y: 0}, {X: 7, Y: 0}},
	)
	res := KMeans(g, DefaultOptions())
	a := BorderSort(g, res)

	// House 1 at (4,0) is 3 away from house 3, the only house of the other cluster.
	assert.Equal(t, []int{1, 2, 0}, a[0])
	assert.Equal(t, []int{3}, a[1])
}
