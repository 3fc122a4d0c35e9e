package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/kilianp07/smartgrid/core/budget"
	"github.com/kilianp07/smartgrid/core/factory"
	"github.com/kilianp07/smartgrid/core/pipeline"
)

// DefaultTimeoutSeconds bounds every stage when neither iterations nor a
// timeout is configured.
const DefaultTimeoutSeconds = 60

// PipelineConfig selects the algorithms of a run. Each stage is a module
// config: a registered name and its parameters.
type PipelineConfig struct {
	Seed       int64                  `json:"seed"`
	Initial    factory.ModuleConfig   `json:"initial"`
	Optimizers []factory.ModuleConfig `json:"optimizers"`
	Router     factory.ModuleConfig   `json:"router"`
	// Iterations and TimeoutSeconds bound every stage; 0 leaves that limit
	// off. When both are 0 the timeout defaults to DefaultTimeoutSeconds.
	Iterations       int `json:"iterations"`
	TimeoutSeconds   int `json:"timeout_seconds"`
	KMeansIterations int `json:"kmeans_iterations"`
}

// SetDefaults fills a k-means start refined by the depth-first search and
// simple swaps, routed with shared cables.
func (c *PipelineConfig) SetDefaults() {
	if c.Initial.Type == "" {
		c.Initial.Type = "kmeans"
	}
	if c.Optimizers == nil {
		c.Optimizers = []factory.ModuleConfig{{Type: "depth-first"}, {Type: "simple-swap"}}
	}
	if c.Router.Type == "" {
		c.Router.Type = "shared"
	}
	if c.Iterations == 0 && c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
}

// Validate checks the stage names against the registries.
func (c PipelineConfig) Validate() error {
	algs := pipeline.Algorithms()
	if !slices.Contains(algs, c.Initial.Type) {
		return fmt.Errorf("unknown initial algorithm %q", c.Initial.Type)
	}
	for _, o := range c.Optimizers {
		if !slices.Contains(algs, o.Type) {
			return fmt.Errorf("unknown optimizer %q", o.Type)
		}
	}
	if !slices.Contains(pipeline.Routers(), c.Router.Type) {
		return fmt.Errorf("unknown router %q", c.Router.Type)
	}
	if c.Iterations < 0 || c.TimeoutSeconds < 0 || c.KMeansIterations < 0 {
		return fmt.Errorf("iterations, timeout_seconds and kmeans_iterations must not be negative")
	}
	return nil
}

// Budget returns the per stage budget.
func (c PipelineConfig) Budget() budget.Budget {
	return budget.Budget{
		Iterations: c.Iterations,
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
	}
}
