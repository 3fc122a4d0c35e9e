package model

import (
	"fmt"
	"math"
)

// House is a household with a fixed power output that must be connected to
// exactly one battery.
type House struct {
	ID       int     `json:"id"`
	Location Point   `json:"location"`
	Output   float64 `json:"output"`
}

// Validate checks that the house output is a positive finite number.
func (h House) Validate() error {
	if h.Output <= 0 || math.IsNaN(h.Output) || math.IsInf(h.Output, 0) {
		return fmt.Errorf("house %d: %w", h.ID, ErrNonPositiveOutput)
	}
	return nil
}

// Battery is a distribution hub. Capacity bounds the summed output of the
// houses connected to it and Cost is its fixed installation price.
type Battery struct {
	ID       int     `json:"id"`
	Location Point   `json:"location"`
	Capacity float64 `json:"capacity"`
	Cost     float64 `json:"cost"`
}

// Validate checks capacity and cost.
func (b Battery) Validate() error {
	if b.Capacity <= 0 || math.IsNaN(b.Capacity) || math.IsInf(b.Capacity, 0) {
		return fmt.Errorf("battery %d: %w", b.ID, ErrNonPositiveCapacity)
	}
	if b.Cost < 0 || math.IsNaN(b.Cost) {
		return fmt.Errorf("battery %d: %w", b.ID, ErrNegativeCost)
	}
	return nil
}

// Cable is an ordered run of adjacent grid cells from a house to its battery
// or to a connect point on the battery's shared tree.
type Cable struct {
	HouseID   int     `json:"house_id"`
	BatteryID int     `json:"battery_id"`
	Path      []Point `json:"path"`
}

// Length returns the number of unit steps of the cable.
func (c Cable) Length() int {
	if len(c.Path) == 0 {
		return 0
	}
	return len(c.Path) - 1
}

// ConnectPoint is a location on a battery's shared cable tree that later
// houses may attach to.
type ConnectPoint struct {
	Location  Point `json:"location"`
	BatteryID int   `json:"battery_id"`
}

// Connection is a single house-battery pair of an assignment together with
// its Manhattan length.
type Connection struct {
	BatteryID int
	HouseID   int
	Length    int
}

// Costs splits the price of an assignment into its components.
type Costs struct {
	Batteries float64 `json:"batteries"`
	Cables    float64 `json:"cables"`
	Total     float64 `json:"total"`
}
