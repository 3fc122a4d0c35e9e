package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/cluster"
	"github.com/kilianp07/smartgrid/core/events"
	"github.com/kilianp07/smartgrid/core/factory"
	"github.com/kilianp07/smartgrid/core/logger"
	"github.com/kilianp07/smartgrid/core/metrics"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/rng"
	"github.com/kilianp07/smartgrid/core/routing"
	"github.com/kilianp07/smartgrid/core/runlog"
)

// ErrNoInitial is returned when a run has neither an initial constructor
// nor a start assignment.
var ErrNoInitial = errors.New("pipeline: no initial algorithm")

// Config describes one run.
type Config struct {
	District int
	Dataset  string
	Seed     int64
	// Initial builds the start assignment; its start argument is empty.
	Initial factory.ModuleConfig
	// Start replaces the initial stage when Initial is unset, for instance
	// with a saved connection list.
	Start      model.Assignment
	Optimizers []factory.ModuleConfig
	Router     factory.ModuleConfig
	// Budget bounds every stage separately.
	Budget     budget.Budget
	Clustering cluster.Options
}

// Runner executes pipeline runs and reports them to the configured sinks.
// The zero value runs silently.
type Runner struct {
	Log     logger.Logger
	Events  events.Publisher
	Metrics metrics.MetricsSink
	Store   runlog.Store
	Now     func() time.Time
}

type stage struct {
	name  string
	build Builder
}

// runPublisher stamps every event with the run id.
type runPublisher struct {
	id   string
	next events.Publisher
}

func (p runPublisher) Publish(e events.Event) {
	e.RunID = p.id
	p.next.Publish(e)
}

func (r Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run builds every stage first, so configuration errors surface before any
// work is done, then threads the assignment through the stages and routes
// the result. Sink and store failures are logged and do not fail the run.
func (r Runner) Run(ctx context.Context, g *model.Grid, cfg Config) (Result, error) {
	log := logger.OrNop(r.Log)
	modules := cfg.Optimizers
	switch {
	case cfg.Initial.Type != "":
		modules = append([]factory.ModuleConfig{cfg.Initial}, modules...)
	case cfg.Start != nil:
		if err := g.ValidateAssignment(cfg.Start); err != nil {
			return Result{}, fmt.Errorf("start assignment: %w", err)
		}
	default:
		return Result{}, ErrNoInitial
	}
	stages := make([]stage, 0, len(modules))
	for _, mc := range modules {
		b, err := NewAlgorithm(mc)
		if err != nil {
			return Result{}, fmt.Errorf("algorithm %s: %w", mc.Type, err)
		}
		stages = append(stages, stage{name: mc.Type, build: b})
	}
	routerCfg := cfg.Router
	if routerCfg.Type == "" {
		routerCfg.Type = "unique"
	}
	router, err := NewRouter(routerCfg)
	if err != nil {
		return Result{}, fmt.Errorf("router %s: %w", routerCfg.Type, err)
	}

	res := Result{
		RunID:    uuid.NewString(),
		District: cfg.District,
		Dataset:  cfg.Dataset,
		Seed:     cfg.Seed,
		Router:   routerCfg.Type,
		Started:  r.now(),
	}
	var pub events.Publisher
	if r.Events != nil {
		pub = runPublisher{id: res.RunID, next: r.Events}
	}
	base := rng.New(cfg.Seed)
	clusterOpts := cfg.Clustering
	if clusterOpts.MaxIterations <= 0 {
		clusterOpts = cluster.DefaultOptions()
	}
	clusters := cluster.KMeans(g, clusterOpts)
	log.Infof("run %s: %d stages, router %s, seed %d", res.RunID, len(stages), routerCfg.Type, cfg.Seed)

	a := g.EmptyAssignment()
	if cfg.Initial.Type == "" {
		a = cfg.Start.Clone()
	}
	for i, st := range stages {
		env := Env{Rand: rng.Derive(base, uint64(i)), Clusters: &clusters, Log: r.Log, Events: pub}
		events.Emit(pub, events.Event{Kind: events.KindStageStarted, Algorithm: st.name})
		next, stats, err := st.build(env).Run(ctx, g, a, cfg.Budget)
		if err != nil {
			return Result{}, fmt.Errorf("stage %s: %w", st.name, err)
		}
		a = next
		sr := StageResult{
			Name:        st.name,
			Stats:       stats,
			Cost:        g.TotalCost(a),
			Unconnected: len(g.UnconnectedHouses(a)),
			Valid:       g.Valid(a),
		}
		res.Stages = append(res.Stages, sr)
		events.Emit(pub, events.Event{
			Kind: events.KindStageFinished, Algorithm: st.name,
			Iteration: stats.Iterations, Value: sr.Cost, Valid: sr.Valid,
		})
		log.Infof("stage %s: cost %.0f, %d unconnected, %d iterations (%s)",
			st.name, sr.Cost, sr.Unconnected, stats.Iterations, stats.Stop)
	}

	network, err := router.Route(ctx, g, a, rng.Derive(base, uint64(len(stages))))
	if err != nil {
		return Result{}, fmt.Errorf("router %s: %w", routerCfg.Type, err)
	}
	res.Assignment = a
	res.Network = network
	res.Costs = networkCosts(g, network)
	res.Unconnected = g.UnconnectedHouses(a)
	res.Valid = g.Valid(a)
	res.Duration = r.now().Sub(res.Started)
	if !res.Valid {
		log.Warnf("run %s finished without a valid assignment: %d unconnected, overloaded batteries %v",
			res.RunID, len(res.Unconnected), g.Overloaded(a))
	}
	r.report(ctx, res)
	return res, nil
}

func networkCosts(g *model.Grid, n routing.Network) model.Costs {
	var c model.Costs
	for _, b := range g.Batteries() {
		c.Batteries += b.Cost
	}
	c.Cables = n.Cost(g.CablePrice())
	c.Total = c.Batteries + c.Cables
	return c
}

func (r Runner) report(ctx context.Context, res Result) {
	log := logger.OrNop(r.Log)
	if r.Metrics != nil {
		if err := r.Metrics.RecordRun(RunRecord(res)); err != nil {
			log.Warnf("record run %s: %v", res.RunID, err)
		}
	}
	if r.Store != nil {
		rec := runlog.Record{
			Timestamp:   res.Started,
			RunID:       res.RunID,
			Dataset:     res.Dataset,
			Stages:      res.StageNames(),
			Router:      res.Router,
			Seed:        res.Seed,
			Costs:       res.Costs,
			CableLength: res.Network.TotalLength(),
			Valid:       res.Valid,
			Assignment:  res.Assignment,
		}
		if err := r.Store.Append(ctx, rec); err != nil {
			log.Warnf("append run %s: %v", res.RunID, err)
		}
	}
}

// RunRecord converts a result into its metrics summary.
func RunRecord(res Result) metrics.RunRecord {
	rec := metrics.RunRecord{
		RunID:       res.RunID,
		Dataset:     res.Dataset,
		Router:      res.Router,
		BatteryCost: res.Costs.Batteries,
		CableCost:   res.Costs.Cables,
		TotalCost:   res.Costs.Total,
		CableLength: res.Network.TotalLength(),
		Unconnected: len(res.Unconnected),
		Valid:       res.Valid,
		Duration:    res.Duration,
		Time:        res.Started,
	}
	for _, s := range res.Stages {
		rec.Stages = append(rec.Stages, metrics.StageRecord{
			Algorithm:    s.Name,
			Iterations:   s.Stats.Iterations,
			Improvements: s.Stats.Improvements,
			Stop:         string(s.Stats.Stop),
			Duration:     s.Stats.Duration,
			Cost:         s.Cost,
		})
	}
	return rec
}
