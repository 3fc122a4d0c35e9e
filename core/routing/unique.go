package routing

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/kilianp07/smartgrid/core/model"
)

// UniqueRouter gives every house its own cable straight to its battery.
// The network length therefore equals the assignment's cable distance.
type UniqueRouter struct{}

// Route implements Router.
func (UniqueRouter) Route(ctx context.Context, g *model.Grid, a model.Assignment, r *rand.Rand) (Network, error) {
	if err := g.ValidateAssignment(a); err != nil {
		return Network{}, err
	}
	var n Network
	for _, bID := range a.BatteryIDs() {
		if err := ctx.Err(); err != nil {
			return Network{}, err
		}
		b, _ := g.Battery(bID)
		for _, hID := range a[bID] {
			h, _ := g.House(hID)
			path := BuildPath(h.Location, b.Location, r)
			if err := CheckPath(path, h.Location, b.Location); err != nil {
				return Network{}, fmt.Errorf("house %d: %w", hID, err)
			}
			n.Cables = append(n.Cables, model.Cable{HouseID: hID, BatteryID: bID, Path: path})
		}
	}
	return n, nil
}
