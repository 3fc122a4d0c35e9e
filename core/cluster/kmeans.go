// Package cluster partitions houses around the batteries with k-means. The
// clusters seed the assignment search and give the length objective its
// reference points.
package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/smartgrid/core/model"
)

// DefaultMaxIterations caps the k-means loop. Integer inputs converge long
// before this.
const DefaultMaxIterations = 100

// Centroid is the mean location of a cluster's houses.
type Centroid struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Manhattan distance from c to p.
func (c Centroid) Distance(p model.Point) float64 {
	return math.Abs(c.X-float64(p.X)) + math.Abs(c.Y-float64(p.Y))
}

// Cluster groups the houses closest to one battery's centroid.
type Cluster struct {
	BatteryID int      `json:"battery_id"`
	Centroid  Centroid `json:"centroid"`
	Houses    []int    `json:"houses"`
}

// Options tunes KMeans.
type Options struct {
	MaxIterations int `json:"max_iterations"`
}

// DefaultOptions returns the default k-means options.
func DefaultOptions() Options {
	return Options{MaxIterations: DefaultMaxIterations}
}

// Result is the outcome of KMeans. Clusters are ordered like the grid's
// batteries.
type Result struct {
	Clusters   []Cluster `json:"clusters"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

// ByBattery returns the cluster seeded at battery id.
func (r Result) ByBattery(id int) (Cluster, bool) {
	for _, c := range r.Clusters {
		if c.BatteryID == id {
			return c, true
		}
	}
	return Cluster{}, false
}

// Assignment connects every house to its cluster's battery, ignoring
// capacity.
func (r Result) Assignment() model.Assignment {
	a := make(model.Assignment, len(r.Clusters))
	for _, c := range r.Clusters {
		a[c.BatteryID] = append([]int{}, c.Houses...)
	}
	return a
}

// KMeans seeds one centroid per battery at its location, then alternates
// between assigning houses to the nearest centroid and moving each centroid
// to the mean of its houses until no centroid moves. Ties go to the battery
// with the lowest id. A cluster that loses all its houses keeps its centroid.
func KMeans(g *model.Grid, opts Options) Result {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	batteries := g.Batteries()
	clusters := make([]Cluster, len(batteries))
	for i, b := range batteries {
		clusters[i] = Cluster{
			BatteryID: b.ID,
			Centroid:  Centroid{X: float64(b.Location.X), Y: float64(b.Location.Y)},
		}
	}

	res := Result{}
	for res.Iterations < opts.MaxIterations {
		res.Iterations++
		for i := range clusters {
			clusters[i].Houses = clusters[i].Houses[:0]
		}
		for _, h := range g.Houses() {
			i := nearest(clusters, h.Location)
			clusters[i].Houses = append(clusters[i].Houses, h.ID)
		}

		changed := false
		for i := range clusters {
			if len(clusters[i].Houses) == 0 {
				continue
			}
			c := mean(g, clusters[i].Houses)
			if c != clusters[i].Centroid {
				clusters[i].Centroid = c
				changed = true
			}
		}
		if !changed {
			res.Converged = true
			break
		}
	}
	res.Clusters = clusters
	return res
}

func nearest(clusters []Cluster, p model.Point) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range clusters {
		if d := c.Centroid.Distance(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func mean(g *model.Grid, houses []int) Centroid {
	xs := make([]float64, 0, len(houses))
	ys := make([]float64, 0, len(houses))
	for _, id := range houses {
		h, _ := g.House(id)
		xs = append(xs, float64(h.Location.X))
		ys = append(ys, float64(h.Location.Y))
	}
	return Centroid{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

// BorderSort orders each cluster's houses by their distance to the closest
// house of any other cluster, nearest first, and returns the result as an
// assignment. Houses on a cluster border therefore head their battery's list,
// which is where the assignment search evicts from.
func BorderSort(g *model.Grid, r Result) model.Assignment {
	owner := make(map[int]int)
	for i, c := range r.Clusters {
		for _, h := range c.Houses {
			owner[h] = i
		}
	}
	a := make(model.Assignment, len(r.Clusters))
	for i, c := range r.Clusters {
		border := make(map[int]float64, len(c.Houses))
		for _, id := range c.Houses {
			border[id] = borderDistance(g, id, i, owner)
		}
		sorted := append([]int{}, c.Houses...)
		sort.SliceStable(sorted, func(x, y int) bool { return border[sorted[x]] < border[sorted[y]] })
		a[c.BatteryID] = sorted
	}
	return a
}

func borderDistance(g *model.Grid, house, cluster int, owner map[int]int) float64 {
	h, _ := g.House(house)
	best := math.Inf(1)
	for _, other := range g.Houses() {
		if c, ok := owner[other.ID]; !ok || c == cluster {
			continue
		}
		if d := float64(model.Manhattan(h.Location, other.Location)); d < best {
			best = d
		}
	}
	return best
}
