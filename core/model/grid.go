package model

import (
	"fmt"
	"math"
	"sort"
)

// Default prices of the district.
const (
	DefaultCablePrice  = 9.0
	DefaultBatteryCost = 5000.0
)

// GridOptions tunes how a Grid prices assignments.
type GridOptions struct {
	// CablePrice is the price of one unit of cable.
	CablePrice float64
}

// DefaultGridOptions returns the district defaults.
func DefaultGridOptions() GridOptions {
	return GridOptions{CablePrice: DefaultCablePrice}
}

// Grid holds the immutable houses and batteries of a district and answers
// cost, capacity and feasibility queries about assignments over them.
//
// A Grid is safe for concurrent reads. Assignments are passed in explicitly;
// the grid never stores one.
type Grid struct {
	batteries []Battery
	houses    []House
	bIndex    map[int]int
	hIndex    map[int]int
	opts      GridOptions
}

// NewGrid validates the input collections and builds a Grid. Batteries and
// houses are kept sorted by id.
func NewGrid(batteries []Battery, houses []House, opts GridOptions) (*Grid, error) {
	if len(batteries) == 0 {
		return nil, ErrNoBatteries
	}
	if len(houses) == 0 {
		return nil, ErrNoHouses
	}
	if opts.CablePrice < 0 || math.IsNaN(opts.CablePrice) {
		return nil, fmt.Errorf("cable price: %w", ErrNegativeCost)
	}
	g := &Grid{
		batteries: append([]Battery(nil), batteries...),
		houses:    append([]House(nil), houses...),
		bIndex:    make(map[int]int, len(batteries)),
		hIndex:    make(map[int]int, len(houses)),
		opts:      opts,
	}
	sort.SliceStable(g.batteries, func(i, j int) bool { return g.batteries[i].ID < g.batteries[j].ID })
	sort.SliceStable(g.houses, func(i, j int) bool { return g.houses[i].ID < g.houses[j].ID })
	for i, b := range g.batteries {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, dup := g.bIndex[b.ID]; dup {
			return nil, fmt.Errorf("battery %d: %w", b.ID, ErrDuplicateID)
		}
		g.bIndex[b.ID] = i
	}
	for i, h := range g.houses {
		if err := h.Validate(); err != nil {
			return nil, err
		}
		if _, dup := g.hIndex[h.ID]; dup {
			return nil, fmt.Errorf("house %d: %w", h.ID, ErrDuplicateID)
		}
		g.hIndex[h.ID] = i
	}
	return g, nil
}

// Batteries returns the batteries sorted by id. The slice must not be modified.
func (g *Grid) Batteries() []Battery { return g.batteries }

// Houses returns the houses sorted by id. The slice must not be modified.
func (g *Grid) Houses() []House { return g.houses }

// CablePrice returns the price of one unit of cable.
func (g *Grid) CablePrice() float64 { return g.opts.CablePrice }

// Battery looks up a battery by id.
func (g *Grid) Battery(id int) (Battery, bool) {
	i, ok := g.bIndex[id]
	if !ok {
		return Battery{}, false
	}
	return g.batteries[i], true
}

// House looks up a house by id.
func (g *Grid) House(id int) (House, bool) {
	i, ok := g.hIndex[id]
	if !ok {
		return House{}, false
	}
	return g.houses[i], true
}

// EmptyAssignment returns an assignment with an empty list per battery.
func (g *Grid) EmptyAssignment() Assignment {
	a := make(Assignment, len(g.batteries))
	for _, b := range g.batteries {
		a[b.ID] = []int{}
	}
	return a
}

// ValidateAssignment reports references to unknown ids and houses connected
// to more than one battery.
func (g *Grid) ValidateAssignment(a Assignment) error {
	seen := make(map[int]int)
	for _, bID := range a.BatteryIDs() {
		if _, ok := g.bIndex[bID]; !ok {
			return fmt.Errorf("battery %d: %w", bID, ErrUnknownBattery)
		}
		for _, hID := range a[bID] {
			if _, ok := g.hIndex[hID]; !ok {
				return fmt.Errorf("house %d: %w", hID, ErrUnknownHouse)
			}
			if prev, dup := seen[hID]; dup {
				return fmt.Errorf("house %d on batteries %d and %d: %w", hID, prev, bID, ErrHouseAssignedTwice)
			}
			seen[hID] = bID
		}
	}
	return nil
}

// Distance returns the Manhattan distance between a house and a battery.
// Unknown ids yield 0.
func (g *Grid) Distance(house, battery int) int {
	h, ok := g.House(house)
	if !ok {
		return 0
	}
	b, ok := g.Battery(battery)
	if !ok {
		return 0
	}
	return Manhattan(h.Location, b.Location)
}

// Usage returns the summed output of the houses assigned to battery.
func (g *Grid) Usage(a Assignment, battery int) float64 {
	var sum float64
	for _, hID := range a[battery] {
		if h, ok := g.House(hID); ok {
			sum += h.Output
		}
	}
	return sum
}

// Remaining returns the spare capacity of battery. It is negative when the
// battery is overloaded.
func (g *Grid) Remaining(a Assignment, battery int) float64 {
	b, ok := g.Battery(battery)
	if !ok {
		return 0
	}
	return b.Capacity - g.Usage(a, battery)
}

// IsFeasible reports whether adding house to battery keeps the battery's
// usage within capacity.
func (g *Grid) IsFeasible(a Assignment, battery, house int) bool {
	b, ok := g.Battery(battery)
	if !ok {
		return false
	}
	h, ok := g.House(house)
	if !ok {
		return false
	}
	return g.Usage(a, battery)+h.Output <= b.Capacity
}

// CandidateBatteries returns the ids of every battery that can take house
// without exceeding its capacity, in ascending id order.
func (g *Grid) CandidateBatteries(a Assignment, house int) []int {
	h, ok := g.House(house)
	if !ok {
		return nil
	}
	var out []int
	for _, b := range g.batteries {
		if g.Usage(a, b.ID)+h.Output <= b.Capacity {
			out = append(out, b.ID)
		}
	}
	return out
}

// NearestFeasible returns the closest battery that can take house. Ties are
// broken by battery id.
func (g *Grid) NearestFeasible(a Assignment, house int) (int, bool) {
	h, ok := g.House(house)
	if !ok {
		return 0, false
	}
	best, bestDist := 0, math.MaxInt
	for _, b := range g.batteries {
		if g.Usage(a, b.ID)+h.Output > b.Capacity {
			continue
		}
		if d := Manhattan(h.Location, b.Location); d < bestDist {
			best, bestDist = b.ID, d
		}
	}
	return best, bestDist != math.MaxInt
}

// CableDistance sums the Manhattan distance of every assigned house to its
// battery.
func (g *Grid) CableDistance(a Assignment) int {
	total := 0
	for bID, hs := range a {
		for _, hID := range hs {
			total += g.Distance(hID, bID)
		}
	}
	return total
}

// TotalCost returns the fixed cost of all batteries plus the cable price
// times the summed house-battery distance.
func (g *Grid) TotalCost(a Assignment) float64 {
	return g.CostBreakdown(a).Total
}

// CostBreakdown splits TotalCost into its battery and cable shares.
func (g *Grid) CostBreakdown(a Assignment) Costs {
	var c Costs
	for _, b := range g.batteries {
		c.Batteries += b.Cost
	}
	c.Cables = g.opts.CablePrice * float64(g.CableDistance(a))
	c.Total = c.Batteries + c.Cables
	return c
}

// UnconnectedHouses returns, in ascending id order, the houses not present in
// any battery list.
func (g *Grid) UnconnectedHouses(a Assignment) []int {
	owners := a.Owners()
	var out []int
	for _, h := range g.houses {
		if _, ok := owners[h.ID]; !ok {
			out = append(out, h.ID)
		}
	}
	return out
}

// Overloaded returns the ids of batteries whose usage exceeds capacity.
func (g *Grid) Overloaded(a Assignment) []int {
	var out []int
	for _, b := range g.batteries {
		if g.Usage(a, b.ID) > b.Capacity {
			out = append(out, b.ID)
		}
	}
	return out
}

// Feasible reports whether no battery is overloaded.
func (g *Grid) Feasible(a Assignment) bool {
	return len(g.Overloaded(a)) == 0
}

// Valid reports whether every house is connected and no battery is
// overloaded.
func (g *Grid) Valid(a Assignment) bool {
	return g.Feasible(a) && len(g.UnconnectedHouses(a)) == 0
}

// Connections lists every assigned pair sorted by length descending. Equal
// lengths are ordered by battery id then house list position.
func (g *Grid) Connections(a Assignment) []Connection {
	var out []Connection
	for _, bID := range a.BatteryIDs() {
		for _, hID := range a[bID] {
			out = append(out, Connection{BatteryID: bID, HouseID: hID, Length: g.Distance(hID, bID)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Length > out[j].Length })
	return out
}

// LongestConnection returns the longest house-battery distance, or 0 for an
// empty assignment.
func (g *Grid) LongestConnection(a Assignment) int {
	longest := 0
	for bID, hs := range a {
		for _, hID := range hs {
			if d := g.Distance(hID, bID); d > longest {
				longest = d
			}
		}
	}
	return longest
}
