// Package construct builds initial assignments from scratch. Nearest and
// Furthest ignore capacity and bound the cable cost from below and above;
// Randomize and NearestFree retry shuffled greedy passes until one is valid.
package construct

import (
	"context"
	"math"
	"math/rand"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/events"
	"github.com/kilianp07/smartgrid/core/logger"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/rng"
)

// DefaultAttempts caps the retrying constructors when the budget is
// unlimited.
const DefaultAttempts = 10000

// penalty measures how far a is from valid: the overload of every battery
// plus the output of every unconnected house.
func penalty(g *model.Grid, a model.Assignment) float64 {
	p := 0.0
	for _, b := range g.Batteries() {
		p += math.Max(0, g.Usage(a, b.ID)-b.Capacity)
	}
	for _, id := range g.UnconnectedHouses(a) {
		h, _ := g.House(id)
		p += h.Output
	}
	return p
}

func houseIDs(g *model.Grid) []int {
	ids := make([]int, 0, len(g.Houses()))
	for _, h := range g.Houses() {
		ids = append(ids, h.ID)
	}
	return ids
}

// retry runs pass on shuffled house orders until it yields a valid
// assignment or the attempts run out, and keeps the attempt closest to valid.
func retry(ctx context.Context, name string, g *model.Grid, b budget.Budget, attempts int, r *rand.Rand,
	log logger.Logger, pub events.Publisher, pass func(order []int) model.Assignment) (model.Assignment, budget.Stats) {
	if attempts <= 0 && b.Iterations <= 0 {
		attempts = DefaultAttempts
	}
	if r == nil {
		r = rng.New(0)
	}
	log = logger.OrNop(log)

	order := houseIDs(g)
	best := g.EmptyAssignment()
	bestPenalty, bestCost := penalty(g, best), math.Inf(1)
	tr := b.Start(ctx)
	for (attempts <= 0 || tr.Iterations() < attempts) && tr.Next() {
		rng.ShuffleInts(order, r)
		a := pass(order)
		p, c := penalty(g, a), g.TotalCost(a)
		if p < bestPenalty || (p == bestPenalty && c < bestCost) {
			best, bestPenalty, bestCost = a, p, c
			tr.Improved()
			events.Emit(pub, events.Improvement(name, tr.Iterations(), c, p == 0))
		}
		if p == 0 {
			break
		}
	}
	stats := tr.Finish()
	if bestPenalty == 0 {
		log.Infof("%s found a valid assignment after %d attempts", name, stats.Iterations)
	} else {
		log.Warnf("%s gave up after %d attempts, penalty %.1f", name, stats.Iterations, bestPenalty)
	}
	return best, stats
}

// Randomize connects houses in random order, each to the battery with the
// lowest usage at that moment, and retries until no battery is overloaded.
type Randomize struct {
	Attempts int `json:"attempts"`
	Rand     *rand.Rand
	Log      logger.Logger
	Events   events.Publisher
}

// Run ignores start.
func (c Randomize) Run(ctx context.Context, g *model.Grid, _ model.Assignment, b budget.Budget) (model.Assignment, budget.Stats, error) {
	a, stats := retry(ctx, "randomize", g, b, c.Attempts, c.Rand, c.Log, c.Events, func(order []int) model.Assignment {
		a := g.EmptyAssignment()
		usage := make(map[int]float64, len(g.Batteries()))
		for _, hID := range order {
			h, _ := g.House(hID)
			least := g.Batteries()[0].ID
			for _, bat := range g.Batteries() {
				if usage[bat.ID] < usage[least] {
					least = bat.ID
				}
			}
			a.Add(least, hID)
			usage[least] += h.Output
		}
		return a
	})
	return a, stats, nil
}

// NearestFree connects houses in random order, each to the nearest battery
// that still has room. Houses no battery can take stay unconnected and the
// pass is retried.
type NearestFree struct {
	Attempts int `json:"attempts"`
	Rand     *rand.Rand
	Log      logger.Logger
	Events   events.Publisher
}

// Run ignores start.
func (c NearestFree) Run(ctx context.Context, g *model.Grid, _ model.Assignment, b budget.Budget) (model.Assignment, budget.Stats, error) {
	a, stats := retry(ctx, "nearest-free", g, b, c.Attempts, c.Rand, c.Log, c.Events, func(order []int) model.Assignment {
		a := g.EmptyAssignment()
		for _, hID := range order {
			if bID, ok := g.NearestFeasible(a, hID); ok {
				a.Add(bID, hID)
			}
		}
		return a
	})
	return a, stats, nil
}

// Nearest connects every house to its closest battery regardless of
// capacity. Its cable cost is a lower bound for any assignment.
type Nearest struct{}

// Run ignores start and budget.
func (Nearest) Run(ctx context.Context, g *model.Grid, _ model.Assignment, _ budget.Budget) (model.Assignment, budget.Stats, error) {
	return extreme(ctx, g, func(d, best int) bool { return d < best })
}

// Furthest connects every house to its most distant battery regardless of
// capacity, an upper bound for the cable cost.
type Furthest struct{}

// Run ignores start and budget.
func (Furthest) Run(ctx context.Context, g *model.Grid, _ model.Assignment, _ budget.Budget) (model.Assignment, budget.Stats, error) {
	return extreme(ctx, g, func(d, best int) bool { return d > best })
}

func extreme(ctx context.Context, g *model.Grid, better func(d, best int) bool) (model.Assignment, budget.Stats, error) {
	tr := budget.Budget{}.Start(ctx)
	tr.Next()
	a := g.EmptyAssignment()
	for _, h := range g.Houses() {
		pick, pickDist := g.Batteries()[0].ID, model.Manhattan(h.Location, g.Batteries()[0].Location)
		for _, bat := range g.Batteries()[1:] {
			if d := model.Manhattan(h.Location, bat.Location); better(d, pickDist) {
				pick, pickDist = bat.ID, d
			}
		}
		a.Add(pick, h.ID)
	}
	return a, tr.Finish(), nil
}
