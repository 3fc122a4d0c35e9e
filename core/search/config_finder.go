package search

import (
	"context"
	"math/rand"
	"sort"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/cluster"
	"github.com/kilianp07/smartgrid/core/events"
	"github.com/kilianp07/smartgrid/core/logger"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/rng"
)

// DefaultFinderTrials bounds ConfigFinder when neither Trials nor the budget
// sets a limit.
const DefaultFinderTrials = 10000

// ConfigFinder evicts the same houses as BranchAndBound, then reinserts them
// in a random order, each into the feasible battery whose cluster centroid is
// closest. The best of Trials restarts is kept.
type ConfigFinder struct {
	Objective      Objective `json:"objective"`
	CapacityOffset float64   `json:"capacity_offset"`
	Trials         int       `json:"trials"`

	Clusters *cluster.Result
	Rand     *rand.Rand
	Log      logger.Logger
	Events   events.Publisher
}

// Run implements the restart loop. start is never modified.
func (f ConfigFinder) Run(ctx context.Context, g *model.Grid, start model.Assignment, b budget.Budget) (model.Assignment, budget.Stats, error) {
	ev, err := newEvaluator(g, f.Objective, f.Clusters)
	if err != nil {
		return nil, budget.Stats{}, err
	}
	base, pending, err := prepare(g, start, f.CapacityOffset)
	if err != nil {
		return nil, budget.Stats{}, err
	}
	trials := f.Trials
	if trials <= 0 && b.Iterations <= 0 {
		trials = DefaultFinderTrials
	}
	r := f.Rand
	if r == nil {
		r = rng.New(0)
	}
	log := logger.OrNop(f.Log)

	best, bestScore := base, ev.score(base)
	order := append([]int{}, pending...)
	tr := b.Start(ctx)
	for (trials <= 0 || tr.Iterations() < trials) && tr.Next() {
		a := base.Clone()
		rng.ShuffleInts(order, r)
		for _, h := range order {
			if bID, ok := f.closestFeasible(g, ev, a, h); ok {
				a.Add(bID, h)
			}
		}
		if sc := ev.score(a); sc.less(bestScore) {
			best, bestScore = a, sc
			tr.Improved()
			events.Emit(f.Events, events.Improvement("config-finder", tr.Iterations(), sc.value(), sc.unconnected == 0))
		}
	}
	stats := tr.Finish()
	log.Infof("config-finder finished after %d trials (%s), best %.1f with %d unconnected",
		stats.Iterations, stats.Stop, bestScore.value(), bestScore.unconnected)
	return best, stats, nil
}

func (f ConfigFinder) closestFeasible(g *model.Grid, ev *evaluator, a model.Assignment, house int) (int, bool) {
	h, _ := g.House(house)
	ids := make([]int, 0, len(g.Batteries()))
	for _, b := range g.Batteries() {
		ids = append(ids, b.ID)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return ev.reference(ids[i]).Distance(h.Location) < ev.reference(ids[j]).Distance(h.Location)
	})
	for _, id := range ids {
		if g.IsFeasible(a, id, house) {
			return id, true
		}
	}
	return 0, false
}
