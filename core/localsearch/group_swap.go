package localsearch

import (
	"math/rand"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/rng"
)

// Defaults of GroupSwap.
var DefaultGroupSizes = []int{50, 20}

const DefaultGroupTrials = 1000

// GroupSwap is a destroy and repair neighborhood. A trial disconnects the
// Size longest connections of the best assignment, shuffles them and
// reconnects each to its nearest battery with room. The trial is adopted
// when every house found a battery and the cost dropped. Trials run per size
// in order, each size continuing from the best so far.
type GroupSwap struct {
	Sizes  []int `json:"sizes"`
	Trials int   `json:"trials"`
}

func (GroupSwap) Name() string { return "group-swap" }

func (s GroupSwap) Improve(g *model.Grid, a model.Assignment, r *rand.Rand, tr *budget.Tracker, improved func(model.Assignment)) model.Assignment {
	sizes := s.Sizes
	if len(sizes) == 0 {
		sizes = DefaultGroupSizes
	}
	trials := s.Trials
	if trials <= 0 {
		trials = DefaultGroupTrials
	}

	best := a
	bestValid, bestCost := g.Valid(best), g.TotalCost(best)
	for _, size := range sizes {
		for i := 0; i < trials; i++ {
			if !tr.Next() {
				return best
			}
			cand, ok := s.trial(g, best, size, r)
			if !ok || !g.Valid(cand) {
				continue
			}
			if cost := g.TotalCost(cand); !bestValid || cost < bestCost {
				best, bestValid, bestCost = cand, true, cost
				improved(best)
			}
		}
	}
	return best
}

func (GroupSwap) trial(g *model.Grid, from model.Assignment, size int, r *rand.Rand) (model.Assignment, bool) {
	cand := from.Clone()
	free := g.UnconnectedHouses(from)
	conns := g.Connections(cand)
	if size < len(conns) {
		conns = conns[:size]
	}
	for _, c := range conns {
		cand.Remove(c.BatteryID, c.HouseID)
		free = append(free, c.HouseID)
	}
	rng.ShuffleInts(free, r)
	for _, h := range free {
		b, ok := g.NearestFeasible(cand, h)
		if !ok {
			return nil, false
		}
		cand.Add(b, h)
	}
	return cand, true
}
