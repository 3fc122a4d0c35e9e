package routing

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/rng"
)

// SharedRouter grows one cable tree per battery. Houses are connected closest
// first, each to the nearest point already on the tree, and every point of
// the new cable becomes attachable for the houses that follow.
type SharedRouter struct{}

// Route implements Router.
func (SharedRouter) Route(ctx context.Context, g *model.Grid, a model.Assignment, r *rand.Rand) (Network, error) {
	if err := g.ValidateAssignment(a); err != nil {
		return Network{}, err
	}
	return routeShared(ctx, g, a, r)
}

func routeShared(ctx context.Context, g *model.Grid, a model.Assignment, r *rand.Rand) (Network, error) {
	n := Network{Shared: true, ConnectPoints: make(map[int][]model.Point, len(a))}
	for _, bID := range a.BatteryIDs() {
		if err := ctx.Err(); err != nil {
			return Network{}, err
		}
		b, _ := g.Battery(bID)
		tree := newConnectPoints(b.Location)

		houses := append([]int{}, a[bID]...)
		sort.SliceStable(houses, func(i, j int) bool {
			di, dj := g.Distance(houses[i], bID), g.Distance(houses[j], bID)
			if di != dj {
				return di < dj
			}
			return houses[i] < houses[j]
		})

		for _, hID := range houses {
			h, _ := g.House(hID)
			target := tree.nearest(h.Location)
			path := BuildPath(h.Location, target, r)
			if err := CheckPath(path, h.Location, target); err != nil {
				return Network{}, fmt.Errorf("house %d: %w", hID, err)
			}
			n.Cables = append(n.Cables, model.Cable{HouseID: hID, BatteryID: bID, Path: path})
			tree.add(path...)
		}
		n.ConnectPoints[bID] = tree.points
	}
	return n, nil
}

// connectPoints is an insertion ordered set of tree locations.
type connectPoints struct {
	points []model.Point
	seen   map[model.Point]struct{}
}

func newConnectPoints(root model.Point) *connectPoints {
	cp := &connectPoints{seen: make(map[model.Point]struct{})}
	cp.add(root)
	return cp
}

func (cp *connectPoints) add(ps ...model.Point) {
	for _, p := range ps {
		if _, ok := cp.seen[p]; ok {
			continue
		}
		cp.seen[p] = struct{}{}
		cp.points = append(cp.points, p)
	}
}

// nearest returns the closest point; the earliest added wins ties.
func (cp *connectPoints) nearest(p model.Point) model.Point {
	best, bestDist := cp.points[0], math.MaxInt
	for _, c := range cp.points {
		if d := model.Manhattan(c, p); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// DefaultRandomTrials is the number of trees RandomSharedRouter grows.
const DefaultRandomTrials = 3000

// RandomSharedRouter repeats SharedRouter with independent random streams
// and keeps the shortest network. Different streams bend the cables
// differently, which changes where later houses can attach.
type RandomSharedRouter struct {
	Trials int `json:"trials"`
}

// Route implements Router. Cancellation stops the restarts and returns the
// best network found so far.
func (rs RandomSharedRouter) Route(ctx context.Context, g *model.Grid, a model.Assignment, r *rand.Rand) (Network, error) {
	if err := g.ValidateAssignment(a); err != nil {
		return Network{}, err
	}
	trials := rs.Trials
	if trials <= 0 {
		trials = DefaultRandomTrials
	}
	if r == nil {
		r = rng.New(0)
	}

	best, err := routeShared(ctx, g, a, rng.Derive(r, 0))
	if err != nil {
		return Network{}, err
	}
	if trials == 1 {
		return best, nil
	}
	tr := budget.Budget{Iterations: trials - 1}.Start(ctx)
	for tr.Next() {
		n, err := routeShared(ctx, g, a, rng.Derive(r, uint64(tr.Iterations())))
		if err != nil {
			break
		}
		if n.TotalLength() < best.TotalLength() {
			best = n
		}
	}
	return best, nil
}
