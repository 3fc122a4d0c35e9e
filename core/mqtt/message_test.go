package mqtt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/pipeline"
)

func TestNewResultMessage(t *testing.T) {
	g, err := model.NewGrid(
		[]model.Battery{
			{ID: 0, Location: model.Point{X: 0, Y: 0}, Capacity: 10, Cost: 5000},
			{ID: 1, Location: model.Point{X: 5, Y: 5}, Capacity: 10, Cost: 5000},
		},
		[]model.House{
			{ID: 0, Location: model.Point{X: 1, Y: 0}, Output: 4},
			{ID: 1, Location: model.Point{X: 2, Y: 0}, Output: 3},
			{ID: 2, Location: model.Point{X: 9, Y: 9}, Output: 2},
		},
		model.DefaultGridOptions(),
	)
	require.NoError(t, err)
	res := pipeline.Result{
		RunID:       "run-1",
		District:    3,
		Router:      "shared",
		Assignment:  model.Assignment{0: {0, 1}, 1: {}},
		Costs:       model.Costs{Batteries: 10000, Cables: 27, Total: 10027},
		Unconnected: []int{2},
		Stages:      []pipeline.StageResult{{Name: "kmeans"}, {Name: "depth-first"}},
	}

	msg := NewResultMessage(g, res)
	_, err = uuid.Parse(msg.MessageID)
	require.NoError(t, err)
	assert.Equal(t, "run-1", msg.RunID)
	assert.Equal(t, []string{"kmeans", "depth-first"}, msg.Stages)
	assert.Equal(t, 10027.0, msg.TotalCost)
	assert.Equal(t, []int{2}, msg.Unconnected)
	require.Len(t, msg.Batteries, 2)
	assert.Equal(t, BatteryLoad{ID: 0, Location: "0,0", Capacity: 10, Usage: 7, Houses: []int{0, 1}}, msg.Batteries[0])
	assert.Equal(t, 0.0, msg.Batteries[1].Usage)
	assert.Empty(t, msg.Batteries[1].Houses)
}
