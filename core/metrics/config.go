package metrics

import "github.com/kilianp07/smartgrid/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr, when set, exposes /metrics on this address while a
	// run is in progress.
	PrometheusAddr string `json:"prometheus_addr"`
}
