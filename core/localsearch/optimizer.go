// Package localsearch refines an assignment with capacity respecting moves.
// Every adopted move lowers the total cost, so an optimizer never returns an
// assignment more expensive than a valid start.
package localsearch

import (
	"context"
	"math/rand"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/events"
	"github.com/kilianp07/smartgrid/core/logger"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/rng"
)

// Strategy is a move generator. Improve works on a, which it owns, spends one
// tracker iteration per attempted move and calls improved each time it adopts
// a better assignment.
type Strategy interface {
	Name() string
	Improve(g *model.Grid, a model.Assignment, r *rand.Rand, tr *budget.Tracker, improved func(model.Assignment)) model.Assignment
}

// Optimizer runs a Strategy on a private copy of the start assignment.
type Optimizer struct {
	Strategy Strategy
	Rand     *rand.Rand
	Log      logger.Logger
	Events   events.Publisher
}

// Run implements the uniform algorithm entry point.
func (o Optimizer) Run(ctx context.Context, g *model.Grid, start model.Assignment, b budget.Budget) (model.Assignment, budget.Stats, error) {
	if err := g.ValidateAssignment(start); err != nil {
		return nil, budget.Stats{}, err
	}
	r := o.Rand
	if r == nil {
		r = rng.New(0)
	}
	log := logger.OrNop(o.Log)
	name := o.Strategy.Name()
	startCost := g.TotalCost(start)

	tr := b.Start(ctx)
	improved := func(a model.Assignment) {
		tr.Improved()
		cost := g.TotalCost(a)
		log.Debugw(name+" improved", map[string]any{"iteration": tr.Iterations(), "cost": cost})
		events.Emit(o.Events, events.Improvement(name, tr.Iterations(), cost, g.Valid(a)))
	}
	out := o.Strategy.Improve(g, start.Clone(), r, tr, improved)
	stats := tr.Finish()
	log.Infof("%s finished after %d iterations (%s): cost %.0f -> %.0f",
		name, stats.Iterations, stats.Stop, startCost, g.TotalCost(out))
	return out, stats, nil
}
