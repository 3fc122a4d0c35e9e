package routing

import (
	"context"
	"math/rand"
	"sort"

	"github.com/kilianp07/smartgrid/core/model"
)

// Network is the set of cables laid for an assignment. ConnectPoints is only
// filled by the shared routers.
type Network struct {
	Shared        bool                  `json:"shared"`
	Cables        []model.Cable         `json:"cables"`
	ConnectPoints map[int][]model.Point `json:"connect_points,omitempty"`
}

// Router lays cables for a finalized assignment.
type Router interface {
	Route(ctx context.Context, g *model.Grid, a model.Assignment, r *rand.Rand) (Network, error)
}

// TotalLength sums the length of every cable.
func (n Network) TotalLength() int {
	total := 0
	for _, c := range n.Cables {
		total += c.Length()
	}
	return total
}

// Cost prices the network at price per unit of cable.
func (n Network) Cost(price float64) float64 {
	return price * float64(n.TotalLength())
}

// CablesPerHouse indexes the cables by house id.
func (n Network) CablesPerHouse() map[int]model.Cable {
	out := make(map[int]model.Cable, len(n.Cables))
	for _, c := range n.Cables {
		out[c.HouseID] = c
	}
	return out
}

// ByBattery returns the cables feeding battery in laying order.
func (n Network) ByBattery(battery int) []model.Cable {
	var out []model.Cable
	for _, c := range n.Cables {
		if c.BatteryID == battery {
			out = append(out, c)
		}
	}
	return out
}

// Attachable flattens ConnectPoints in battery id order.
func (n Network) Attachable() []model.ConnectPoint {
	ids := make([]int, 0, len(n.ConnectPoints))
	for id := range n.ConnectPoints {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var out []model.ConnectPoint
	for _, id := range ids {
		for _, p := range n.ConnectPoints[id] {
			out = append(out, model.ConnectPoint{Location: p, BatteryID: id})
		}
	}
	return out
}
