// Package search finds capacity feasible assignments with a pruned
// depth-first branch-and-bound and with randomized evict-and-reinsert
// restarts. Both share the objective handling in this file.
package search

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kilianp07/smartgrid/core/cluster"
	"github.com/kilianp07/smartgrid/core/model"
)

// Objective selects what the search minimizes.
type Objective string

const (
	// ObjectiveCost minimizes the total monetary cost.
	ObjectiveCost Objective = "cost"
	// ObjectiveLength minimizes the worst distance of a house to the centroid
	// of its battery's cluster, with total cost breaking ties.
	ObjectiveLength Objective = "length"
)

var (
	ErrUnknownObjective = errors.New("search: unknown objective")
	ErrMissingClusters  = errors.New("search: length objective requires clusters")
)

// ParseObjective parses an objective name. An empty name means ObjectiveCost.
func ParseObjective(s string) (Objective, error) {
	switch Objective(strings.ToLower(strings.TrimSpace(s))) {
	case "", ObjectiveCost:
		return ObjectiveCost, nil
	case ObjectiveLength:
		return ObjectiveLength, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownObjective, s)
}

// score orders candidate solutions lexicographically: fewer unconnected
// houses first, then the objective's primary and secondary values.
type score struct {
	unconnected int
	primary     float64
	secondary   float64
}

var worstScore = score{unconnected: math.MaxInt, primary: math.Inf(1), secondary: math.Inf(1)}

func (s score) less(o score) bool {
	if s.unconnected != o.unconnected {
		return s.unconnected < o.unconnected
	}
	if s.primary != o.primary {
		return s.primary < o.primary
	}
	return s.secondary < o.secondary
}

// evaluator prices assignments for one objective.
type evaluator struct {
	grid      *model.Grid
	objective Objective
	centroids map[int]cluster.Centroid
}

func newEvaluator(g *model.Grid, obj Objective, clusters *cluster.Result) (*evaluator, error) {
	obj, err := ParseObjective(string(obj))
	if err != nil {
		return nil, err
	}
	e := &evaluator{grid: g, objective: obj}
	if clusters != nil {
		e.centroids = make(map[int]cluster.Centroid, len(clusters.Clusters))
		for _, c := range clusters.Clusters {
			e.centroids[c.BatteryID] = c.Centroid
		}
	}
	if obj == ObjectiveLength && e.centroids == nil {
		return nil, ErrMissingClusters
	}
	return e, nil
}

// reference returns the point a house attached to battery is measured
// against: the cluster centroid when known, the battery otherwise.
func (e *evaluator) reference(battery int) cluster.Centroid {
	if c, ok := e.centroids[battery]; ok {
		return c
	}
	b, _ := e.grid.Battery(battery)
	return cluster.Centroid{X: float64(b.Location.X), Y: float64(b.Location.Y)}
}

// childKey ranks adding house to battery on top of a state costing base.
func (e *evaluator) childKey(base float64, battery, house int) float64 {
	if e.objective == ObjectiveLength {
		h, _ := e.grid.House(house)
		return e.reference(battery).Distance(h.Location)
	}
	return base + e.grid.CablePrice()*float64(e.grid.Distance(house, battery))
}

// score evaluates a, which must not overload any battery.
func (e *evaluator) score(a model.Assignment) score {
	s := score{unconnected: len(e.grid.UnconnectedHouses(a))}
	cost := e.grid.TotalCost(a)
	if e.objective == ObjectiveLength {
		s.primary = e.longestToReference(a)
		s.secondary = cost
		return s
	}
	s.primary = cost
	return s
}

func (e *evaluator) longestToReference(a model.Assignment) float64 {
	longest := 0.0
	for bID, hs := range a {
		ref := e.reference(bID)
		for _, hID := range hs {
			h, _ := e.grid.House(hID)
			if d := ref.Distance(h.Location); d > longest {
				longest = d
			}
		}
	}
	return longest
}

// value is the number reported in progress events.
func (s score) value() float64 { return s.primary }

// prepare clones start, makes sure every battery has a list and evicts list
// heads from batteries whose usage exceeds capacity minus offset. It returns
// the working copy and the pending houses: evicted ones first, then houses
// that were unconnected already.
func prepare(g *model.Grid, start model.Assignment, offset float64) (model.Assignment, []int, error) {
	if err := g.ValidateAssignment(start); err != nil {
		return nil, nil, err
	}
	a := start.Clone()
	for _, b := range g.Batteries() {
		if _, ok := a[b.ID]; !ok {
			a[b.ID] = []int{}
		}
	}
	var pending []int
	evicted := make(map[int]bool)
	for _, b := range g.Batteries() {
		for len(a[b.ID]) > 0 && g.Usage(a, b.ID) > b.Capacity-offset {
			h := a[b.ID][0]
			a[b.ID] = a[b.ID][1:]
			pending = append(pending, h)
			evicted[h] = true
		}
	}
	for _, h := range g.UnconnectedHouses(a) {
		if !evicted[h] {
			pending = append(pending, h)
		}
	}
	return a, pending, nil
}
