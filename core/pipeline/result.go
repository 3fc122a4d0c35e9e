package pipeline

import (
	"time"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/routing"
)

// StageResult describes one executed algorithm.
type StageResult struct {
	Name        string       `json:"name"`
	Stats       budget.Stats `json:"stats"`
	Cost        float64      `json:"cost"`
	Unconnected int          `json:"unconnected"`
	Valid       bool         `json:"valid"`
}

// Result is the outcome of a run: the final assignment, its cable network
// and the cost of both.
type Result struct {
	RunID      string           `json:"run_id"`
	District   int              `json:"district"`
	Dataset    string           `json:"dataset"`
	Seed       int64            `json:"seed"`
	Router     string           `json:"router"`
	Assignment model.Assignment `json:"assignment"`
	Network    routing.Network  `json:"network"`
	// Costs prices the routed network, so shared cables are paid once.
	Costs       model.Costs   `json:"costs"`
	Stages      []StageResult `json:"stages"`
	Unconnected []int         `json:"unconnected"`
	Valid       bool          `json:"valid"`
	Started     time.Time     `json:"started"`
	Duration    time.Duration `json:"duration"`
}

// TotalCost returns the battery cost plus the cost of the routed cables.
func (r Result) TotalCost() float64 { return r.Costs.Total }

// CablesPerHouse indexes the routed cables by house id.
func (r Result) CablesPerHouse() map[int]model.Cable { return r.Network.CablesPerHouse() }

// Houses returns the houses connected to battery.
func (r Result) Houses(battery int) []int { return r.Assignment.Houses(battery) }

// StageNames lists the executed stages in order.
func (r Result) StageNames() []string {
	out := make([]string, len(r.Stages))
	for i, s := range r.Stages {
		out[i] = s.Name
	}
	return out
}
