package localsearch

import (
	"math/rand"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/model"
)

// SimpleSwap exchanges the batteries of two houses. Connections are scanned
// longest first; for the current one the partner giving the largest drop in
// summed length is chosen among partners that leave both batteries within
// capacity after the exchange. After a swap the scan restarts from the
// longest connection. It stops when no connection has an improving partner.
type SimpleSwap struct{}

func (SimpleSwap) Name() string { return "simple-swap" }

type swap struct {
	house, partner    int
	battery, pBattery int
}

func (s SimpleSwap) Improve(g *model.Grid, a model.Assignment, _ *rand.Rand, tr *budget.Tracker, improved func(model.Assignment)) model.Assignment {
	conns := g.Connections(a)
	for i := 0; i < len(conns); {
		if !tr.Next() {
			break
		}
		mv, ok := s.bestPartner(g, a, conns[i])
		if !ok {
			i++
			continue
		}
		a.Remove(mv.battery, mv.house)
		a.Remove(mv.pBattery, mv.partner)
		a.Add(mv.battery, mv.partner)
		a.Add(mv.pBattery, mv.house)
		improved(a)
		conns = g.Connections(a)
		i = 0
	}
	return a
}

func (SimpleSwap) bestPartner(g *model.Grid, a model.Assignment, c model.Connection) (swap, bool) {
	h, _ := g.House(c.HouseID)
	cb, _ := g.Battery(c.BatteryID)
	cUsage := g.Usage(a, c.BatteryID)

	var best swap
	bestGain := 0
	owners := a.Owners()
	for _, p := range g.Houses() {
		pbID, ok := owners[p.ID]
		if !ok || pbID == c.BatteryID {
			continue
		}
		pb, _ := g.Battery(pbID)
		if cUsage-h.Output+p.Output > cb.Capacity {
			continue
		}
		if g.Usage(a, pbID)-p.Output+h.Output > pb.Capacity {
			continue
		}
		before := c.Length + model.Manhattan(p.Location, pb.Location)
		after := model.Manhattan(h.Location, pb.Location) + model.Manhattan(p.Location, cb.Location)
		if gain := before - after; gain > bestGain {
			best = swap{house: h.ID, partner: p.ID, battery: cb.ID, pBattery: pbID}
			bestGain = gain
		}
	}
	return best, bestGain > 0
}
