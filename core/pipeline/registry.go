package pipeline

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/cluster"
	"github.com/kilianp07/smartgrid/core/construct"
	"github.com/kilianp07/smartgrid/core/events"
	"github.com/kilianp07/smartgrid/core/factory"
	"github.com/kilianp07/smartgrid/core/localsearch"
	"github.com/kilianp07/smartgrid/core/logger"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/routing"
	"github.com/kilianp07/smartgrid/core/search"
)

// Algorithm is the uniform entry point of every constructor, search and
// local search. Implementations never modify start.
type Algorithm interface {
	Run(ctx context.Context, g *model.Grid, start model.Assignment, b budget.Budget) (model.Assignment, budget.Stats, error)
}

// Env carries the run-scoped collaborators handed to a stage.
type Env struct {
	Rand     *rand.Rand
	Clusters *cluster.Result
	Log      logger.Logger
	Events   events.Publisher
}

// Builder binds a configured algorithm to the environment of one stage.
type Builder func(Env) Algorithm

var (
	algorithms = factory.NewRegistry[Builder]()
	routers    = factory.NewRegistry[routing.Router]()
)

// RegisterAlgorithm adds an algorithm factory identified by name.
func RegisterAlgorithm(name string, f factory.Factory[Builder]) error {
	return algorithms.Register(name, f)
}

// RegisterRouter adds a router factory identified by name.
func RegisterRouter(name string, f factory.Factory[routing.Router]) error {
	return routers.Register(name, f)
}

// Algorithms lists the registered algorithm names.
func Algorithms() []string { return algorithms.Names() }

// Routers lists the registered router names.
func Routers() []string { return routers.Names() }

// NewAlgorithm creates the builder described by cfg.
func NewAlgorithm(cfg factory.ModuleConfig) (Builder, error) {
	return algorithms.Create(cfg)
}

// NewRouter creates the router described by cfg.
func NewRouter(cfg factory.ModuleConfig) (routing.Router, error) {
	return routers.Create(cfg)
}

// AlgorithmFunc adapts a function to Algorithm.
type AlgorithmFunc func(ctx context.Context, g *model.Grid, start model.Assignment, b budget.Budget) (model.Assignment, budget.Stats, error)

func (f AlgorithmFunc) Run(ctx context.Context, g *model.Grid, start model.Assignment, b budget.Budget) (model.Assignment, budget.Stats, error) {
	return f(ctx, g, start, b)
}

// borderSort starts from the k-means clusters, houses ordered so that the
// ones closest to a neighbouring cluster come first.
func borderSort(clusters *cluster.Result) Algorithm {
	return AlgorithmFunc(func(ctx context.Context, g *model.Grid, _ model.Assignment, _ budget.Budget) (model.Assignment, budget.Stats, error) {
		if clusters == nil {
			return nil, budget.Stats{}, search.ErrMissingClusters
		}
		if err := ctx.Err(); err != nil {
			return nil, budget.Stats{}, err
		}
		stop := budget.StopExhausted
		if !clusters.Converged {
			stop = budget.StopIterations
		}
		return cluster.BorderSort(g, *clusters), budget.Stats{Iterations: clusters.Iterations, Stop: stop}, nil
	})
}

func normalizeObjective(out *search.Objective) error {
	obj, err := search.ParseObjective(string(*out))
	if err != nil {
		return err
	}
	*out = obj
	return nil
}

func init() {
	algorithms.MustRegister("randomize", func(conf map[string]any) (Builder, error) {
		var c construct.Randomize
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(env Env) Algorithm {
			a := c
			a.Rand, a.Log, a.Events = env.Rand, env.Log, env.Events
			return a
		}, nil
	})
	algorithms.MustRegister("nearest-free", func(conf map[string]any) (Builder, error) {
		var c construct.NearestFree
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return func(env Env) Algorithm {
			a := c
			a.Rand, a.Log, a.Events = env.Rand, env.Log, env.Events
			return a
		}, nil
	})
	algorithms.MustRegister("nearest", func(map[string]any) (Builder, error) {
		return func(Env) Algorithm { return construct.Nearest{} }, nil
	})
	algorithms.MustRegister("furthest", func(map[string]any) (Builder, error) {
		return func(Env) Algorithm { return construct.Furthest{} }, nil
	})
	algorithms.MustRegister("kmeans", func(map[string]any) (Builder, error) {
		return func(env Env) Algorithm { return borderSort(env.Clusters) }, nil
	})
	algorithms.MustRegister("depth-first", func(conf map[string]any) (Builder, error) {
		var c search.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if err := normalizeObjective(&c.Objective); err != nil {
			return nil, err
		}
		return func(env Env) Algorithm {
			return search.BranchAndBound{Config: c, Clusters: env.Clusters, Log: env.Log, Events: env.Events}
		}, nil
	})
	algorithms.MustRegister("config-finder", func(conf map[string]any) (Builder, error) {
		var c search.ConfigFinder
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if err := normalizeObjective(&c.Objective); err != nil {
			return nil, err
		}
		return func(env Env) Algorithm {
			a := c
			a.Clusters, a.Rand, a.Log, a.Events = env.Clusters, env.Rand, env.Log, env.Events
			return a
		}, nil
	})
	algorithms.MustRegister("group-swap", func(conf map[string]any) (Builder, error) {
		var s localsearch.GroupSwap
		if err := factory.Decode(conf, &s); err != nil {
			return nil, err
		}
		for _, size := range s.Sizes {
			if size <= 0 {
				return nil, fmt.Errorf("group-swap: group size %d must be positive", size)
			}
		}
		return func(env Env) Algorithm {
			return localsearch.Optimizer{Strategy: s, Rand: env.Rand, Log: env.Log, Events: env.Events}
		}, nil
	})
	algorithms.MustRegister("simple-swap", func(map[string]any) (Builder, error) {
		return func(env Env) Algorithm {
			return localsearch.Optimizer{Strategy: localsearch.SimpleSwap{}, Rand: env.Rand, Log: env.Log, Events: env.Events}
		}, nil
	})

	routers.MustRegister("unique", func(map[string]any) (routing.Router, error) {
		return routing.UniqueRouter{}, nil
	})
	routers.MustRegister("shared", func(map[string]any) (routing.Router, error) {
		return routing.SharedRouter{}, nil
	})
	routers.MustRegister("random-shared", func(conf map[string]any) (routing.Router, error) {
		var r routing.RandomSharedRouter
		if err := factory.Decode(conf, &r); err != nil {
			return nil, err
		}
		return r, nil
	})
}
