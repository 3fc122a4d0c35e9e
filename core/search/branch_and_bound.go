package search

import (
	"context"
	"sort"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/cluster"
	"github.com/kilianp07/smartgrid/core/events"
	"github.com/kilianp07/smartgrid/core/logger"
	"github.com/kilianp07/smartgrid/core/model"
)

// DefaultPruningWidth is the number of children kept per expansion.
const DefaultPruningWidth = 2

// Config parameterizes BranchAndBound.
type Config struct {
	Objective Objective `json:"objective"`
	// PruningWidth is the number of best children pushed per expansion.
	PruningWidth int `json:"pruning_width"`
	// CapacityOffset frees room before the search starts: list heads are
	// evicted from every battery whose usage exceeds capacity minus offset.
	// With 0 only overloaded batteries are touched.
	CapacityOffset float64 `json:"capacity_offset"`
}

func (c Config) withDefaults() Config {
	if c.PruningWidth <= 0 {
		c.PruningWidth = DefaultPruningWidth
	}
	if c.Objective == "" {
		c.Objective = ObjectiveCost
	}
	return c
}

// BranchAndBound reassigns the pending houses of a start assignment with a
// depth-first search. Each expansion places the next pending house on every
// battery with room for it and keeps only the PruningWidth best children, so
// the frontier never holds more than PruningWidth times the pending count.
//
// A house no battery can take is left unconnected and the branch goes on.
// Leaves are ranked by unconnected count first, then by the objective.
type BranchAndBound struct {
	Config
	// Clusters are required by ObjectiveLength.
	Clusters *cluster.Result
	Log      logger.Logger
	Events   events.Publisher
}

type node struct {
	a     model.Assignment
	depth int
}

type child struct {
	battery int
	key     float64
}

// Run searches from start within b. start is never modified. When the budget
// runs out the best leaf found so far is returned, or the prepared start if
// no leaf beat it.
func (s BranchAndBound) Run(ctx context.Context, g *model.Grid, start model.Assignment, b budget.Budget) (model.Assignment, budget.Stats, error) {
	cfg := s.Config.withDefaults()
	ev, err := newEvaluator(g, cfg.Objective, s.Clusters)
	if err != nil {
		return nil, budget.Stats{}, err
	}
	root, pending, err := prepare(g, start, cfg.CapacityOffset)
	if err != nil {
		return nil, budget.Stats{}, err
	}
	log := logger.OrNop(s.Log)
	log.Debugf("depth-first: %d pending houses, objective %s, width %d", len(pending), cfg.Objective, cfg.PruningWidth)

	best, bestScore := root, ev.score(root)
	stack := []node{{a: root}}
	tr := b.Start(ctx)
	for len(stack) > 0 && tr.Next() {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.depth == len(pending) {
			if sc := ev.score(n.a); sc.less(bestScore) {
				best, bestScore = n.a, sc
				tr.Improved()
				log.Debugw("depth-first improved", map[string]any{
					"iteration":   tr.Iterations(),
					"value":       sc.value(),
					"unconnected": sc.unconnected,
				})
				events.Emit(s.Events, events.Improvement("depth-first", tr.Iterations(), sc.value(), sc.unconnected == 0))
			}
			continue
		}

		house := pending[n.depth]
		cands := g.CandidateBatteries(n.a, house)
		if len(cands) == 0 {
			stack = append(stack, node{a: n.a, depth: n.depth + 1})
			continue
		}
		base := 0.0
		if ev.objective == ObjectiveCost {
			base = g.TotalCost(n.a)
		}
		children := make([]child, 0, len(cands))
		for _, bID := range cands {
			children = append(children, child{battery: bID, key: ev.childKey(base, bID, house)})
		}
		sort.SliceStable(children, func(i, j int) bool { return children[i].key < children[j].key })
		if len(children) > cfg.PruningWidth {
			children = children[:cfg.PruningWidth]
		}
		// Reverse push so the best child is expanded first.
		for i := len(children) - 1; i >= 0; i-- {
			next := n.a.Clone()
			next.Add(children[i].battery, house)
			stack = append(stack, node{a: next, depth: n.depth + 1})
		}
	}
	stats := tr.Finish()
	log.Infof("depth-first finished after %d iterations (%s), best %.0f with %d unconnected",
		stats.Iterations, stats.Stop, bestScore.value(), bestScore.unconnected)
	return best, stats, nil
}
