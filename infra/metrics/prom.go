package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/smartgrid/core/metrics"
)

// PromSink records pipeline runs in Prometheus metrics.
type PromSink struct {
	runs         *prometheus.CounterVec
	cost         *prometheus.GaugeVec
	stage        *prometheus.HistogramVec
	improvements *prometheus.CounterVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smartgrid_runs_total",
		Help: "Total number of pipeline runs",
	}, []string{"router", "valid"})
	cost := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "smartgrid_total_cost",
		Help: "Total cost of the last run per dataset",
	}, []string{"dataset"})
	stage := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartgrid_stage_duration_seconds",
		Help:    "Wall time spent per algorithm stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"algorithm"})
	improvements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smartgrid_improvements_total",
		Help: "Incumbent improvements found per algorithm",
	}, []string{"algorithm"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if cost, err = register(reg, cost); err != nil {
		return nil, err
	}
	if stage, err = register(reg, stage); err != nil {
		return nil, err
	}
	if improvements, err = register(reg, improvements); err != nil {
		return nil, err
	}
	return &PromSink{runs: runs, cost: cost, stage: stage, improvements: improvements}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counter, the cost gauge and the stage histogram.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.WithLabelValues(rec.Router, strconv.FormatBool(rec.Valid)).Inc()
	s.cost.WithLabelValues(rec.Dataset).Set(rec.TotalCost)
	for _, st := range rec.Stages {
		s.stage.WithLabelValues(st.Algorithm).Observe(st.Duration.Seconds())
	}
	return nil
}

// RecordImprovement counts an incumbent improvement.
func (s *PromSink) RecordImprovement(rec coremetrics.ImprovementRecord) error {
	s.improvements.WithLabelValues(rec.Algorithm).Inc()
	return nil
}
