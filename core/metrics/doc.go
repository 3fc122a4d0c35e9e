// Package metrics defines the sinks a pipeline run reports to. Concrete
// Prometheus and InfluxDB sinks live in infra/metrics and register
// themselves with the factory on import.
package metrics
