package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/events"
	"github.com/kilianp07/smartgrid/core/factory"
	"github.com/kilianp07/smartgrid/core/metrics"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/runlog"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type sinkRecorder struct{ runs []metrics.RunRecord }

func (s *sinkRecorder) RecordRun(rec metrics.RunRecord) error {
	s.runs = append(s.runs, rec)
	return nil
}

func testGrid(t *testing.T) *model.Grid {
	t.Helper()
	g, err := model.NewGrid(
		[]model.Battery{
			{ID: 0, Location: model.Point{X: 0, Y: 0}, Capacity: 10, Cost: 5000},
			{ID: 1, Location: model.Point{X: 10, Y: 0}, Capacity: 10, Cost: 5000},
		},
		[]model.House{
			{ID: 0, Location: model.Point{X: 1, Y: 0}, Output: 5},
			{ID: 1, Location: model.Point{X: 0, Y: 2}, Output: 5},
			{ID: 2, Location: model.Point{X: 9, Y: 0}, Output: 5},
			{ID: 3, Location: model.Point{X: 10, Y: 3}, Output: 5},
		},
		model.DefaultGridOptions(),
	)
	require.NoError(t, err)
	return g
}

func TestRegistryNames(t *testing.T) {
	assert.Subset(t, Algorithms(), []string{
		"randomize", "nearest-free", "nearest", "furthest", "kmeans",
		"depth-first", "config-finder", "group-swap", "simple-swap",
	})
	assert.Equal(t, []string{"random-shared", "shared", "unique"}, Routers())
}

func TestRunFullPipeline(t *testing.T) {
	g := testGrid(t)
	pub := &recorder{}
	sink := &sinkRecorder{}
	store, err := runlog.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	require.NoError(t, err)

	runner := Runner{Events: pub, Metrics: sink, Store: store}
	res, err := runner.Run(context.Background(), g, Config{
		District: 1,
		Dataset:  "district-1",
		Seed:     7,
		Initial:  factory.ModuleConfig{Type: "kmeans"},
		Optimizers: []factory.ModuleConfig{
			{Type: "depth-first", Conf: map[string]any{"objective": "cost", "pruning_width": 2}},
			{Type: "simple-swap"},
		},
		Router: factory.ModuleConfig{Type: "shared"},
		Budget: budget.Budget{Iterations: 10000},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Unconnected)
	assert.Equal(t, []string{"kmeans", "depth-first", "simple-swap"}, res.StageNames())
	assert.ElementsMatch(t, []int{0, 1}, res.Houses(0))
	assert.ElementsMatch(t, []int{2, 3}, res.Houses(1))
	assert.Equal(t, 7, res.Network.TotalLength())
	assert.Equal(t, 10063.0, res.TotalCost())
	assert.Len(t, res.CablesPerHouse(), 4)

	require.NotEmpty(t, pub.events)
	kinds := map[events.Kind]int{}
	for _, e := range pub.events {
		assert.Equal(t, res.RunID, e.RunID)
		kinds[e.Kind]++
	}
	assert.Equal(t, 3, kinds[events.KindStageStarted])
	assert.Equal(t, 3, kinds[events.KindStageFinished])

	require.Len(t, sink.runs, 1)
	assert.Equal(t, "shared", sink.runs[0].Router)
	assert.Len(t, sink.runs[0].Stages, 3)
	assert.Equal(t, 10063.0, sink.runs[0].TotalCost)

	recs, err := store.Query(context.Background(), runlog.Query{RunID: res.RunID})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Valid)
}

func TestRunIsDeterministicPerSeed(t *testing.T) {
	g := testGrid(t)
	cfg := Config{
		Seed:       3,
		Initial:    factory.ModuleConfig{Type: "randomize"},
		Optimizers: []factory.ModuleConfig{{Type: "group-swap", Conf: map[string]any{"sizes": []int{2}, "trials": 20}}},
		Router:     factory.ModuleConfig{Type: "random-shared", Conf: map[string]any{"trials": 5}},
	}
	a, err := Runner{}.Run(context.Background(), g, cfg)
	require.NoError(t, err)
	b, err := Runner{}.Run(context.Background(), g, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Assignment, b.Assignment)
	assert.Equal(t, a.Network, b.Network)
	assert.Equal(t, a.TotalCost(), b.TotalCost())
}

func TestRunDefaultsToUniqueRouter(t *testing.T) {
	g := testGrid(t)
	res, err := Runner{}.Run(context.Background(), g, Config{Initial: factory.ModuleConfig{Type: "nearest"}})
	require.NoError(t, err)
	assert.Equal(t, "unique", res.Router)
	assert.False(t, res.Network.Shared)
	assert.Equal(t, 10063.0, res.TotalCost())
}

func TestRunConfigurationErrors(t *testing.T) {
	g := testGrid(t)
	cases := []struct {
		name string
		cfg  Config
	}{
		{"no initial", Config{}},
		{"unknown initial", Config{Initial: factory.ModuleConfig{Type: "simulated-annealing"}}},
		{"unknown optimizer", Config{
			Initial:    factory.ModuleConfig{Type: "nearest"},
			Optimizers: []factory.ModuleConfig{{Type: "tabu"}},
		}},
		{"bad objective", Config{
			Initial:    factory.ModuleConfig{Type: "nearest"},
			Optimizers: []factory.ModuleConfig{{Type: "depth-first", Conf: map[string]any{"objective": "speed"}}},
		}},
		{"bad group size", Config{
			Initial:    factory.ModuleConfig{Type: "nearest"},
			Optimizers: []factory.ModuleConfig{{Type: "group-swap", Conf: map[string]any{"sizes": []int{0}}}},
		}},
		{"unknown router", Config{
			Initial: factory.ModuleConfig{Type: "nearest"},
			Router:  factory.ModuleConfig{Type: "steiner"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &recorder{}
			_, err := Runner{Events: pub}.Run(context.Background(), g, tc.cfg)
			require.Error(t, err)
			assert.Empty(t, pub.events, "no stage may start on a bad configuration")
		})
	}
	_, err := Runner{}.Run(context.Background(), g, Config{})
	assert.ErrorIs(t, err, ErrNoInitial)
}

func TestRunCancelled(t *testing.T) {
	g := testGrid(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Runner{}.Run(ctx, g, Config{Initial: factory.ModuleConfig{Type: "kmeans"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunFromStartAssignment(t *testing.T) {
	g := testGrid(t)
	start := model.Assignment{0: {0, 2}, 1: {1, 3}}
	res, err := Runner{}.Run(context.Background(), g, Config{
		Start:      start,
		Optimizers: []factory.ModuleConfig{{Type: "simple-swap"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"simple-swap"}, res.StageNames())
	assert.Equal(t, model.Assignment{0: {0, 2}, 1: {1, 3}}, start, "start must not be modified")
	assert.Less(t, res.TotalCost(), 10000.0+9*float64(g.CableDistance(start)))
	assert.True(t, res.Valid)

	_, err = Runner{}.Run(context.Background(), g, Config{Start: model.Assignment{9: {0}}})
	assert.ErrorIs(t, err, model.ErrUnknownBattery)
}
