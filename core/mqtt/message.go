package mqtt

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/smartgrid/core/model"
	"github.com/kilianp07/smartgrid/core/pipeline"
)

// BatteryLoad is the per battery part of a ResultMessage.
type BatteryLoad struct {
	ID       int     `json:"id"`
	Location string  `json:"location"`
	Capacity float64 `json:"capacity"`
	Usage    float64 `json:"usage"`
	Houses   []int   `json:"houses"`
}

// ResultMessage is the payload published once a run finishes.
type ResultMessage struct {
	MessageID   string        `json:"message_id"`
	RunID       string        `json:"run_id"`
	District    int           `json:"district"`
	Router      string        `json:"router"`
	Stages      []string      `json:"stages"`
	TotalCost   float64       `json:"total_cost"`
	BatteryCost float64       `json:"battery_cost"`
	CableCost   float64       `json:"cable_cost"`
	CableLength int           `json:"cable_length"`
	Unconnected []int         `json:"unconnected"`
	Valid       bool          `json:"valid"`
	Batteries   []BatteryLoad `json:"batteries"`
	Timestamp   int64         `json:"timestamp"`
}

// NewResultMessage summarizes res for publishing.
func NewResultMessage(g *model.Grid, res pipeline.Result) ResultMessage {
	msg := ResultMessage{
		MessageID:   uuid.NewString(),
		RunID:       res.RunID,
		District:    res.District,
		Router:      res.Router,
		Stages:      res.StageNames(),
		TotalCost:   res.Costs.Total,
		BatteryCost: res.Costs.Batteries,
		CableCost:   res.Costs.Cables,
		CableLength: res.Network.TotalLength(),
		Unconnected: append([]int{}, res.Unconnected...),
		Valid:       res.Valid,
		Timestamp:   time.Now().UnixMilli(),
	}
	for _, b := range g.Batteries() {
		msg.Batteries = append(msg.Batteries, BatteryLoad{
			ID:       b.ID,
			Location: b.Location.String(),
			Capacity: b.Capacity,
			Usage:    g.Usage(res.Assignment, b.ID),
			Houses:   append([]int{}, res.Houses(b.ID)...),
		})
	}
	return msg
}
