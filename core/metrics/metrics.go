package metrics

import "time"

// StageRecord summarizes one algorithm stage of a run.
type StageRecord struct {
	Algorithm    string        `json:"algorithm"`
	Iterations   int           `json:"iterations"`
	Improvements int           `json:"improvements"`
	Stop         string        `json:"stop"`
	Duration     time.Duration `json:"duration"`
	Cost         float64       `json:"cost"`
}

// RunRecord summarizes a finished pipeline run.
type RunRecord struct {
	RunID       string        `json:"run_id"`
	Dataset     string        `json:"dataset"`
	Router      string        `json:"router"`
	Stages      []StageRecord `json:"stages"`
	BatteryCost float64       `json:"battery_cost"`
	CableCost   float64       `json:"cable_cost"`
	TotalCost   float64       `json:"total_cost"`
	CableLength int           `json:"cable_length"`
	Unconnected int           `json:"unconnected"`
	Valid       bool          `json:"valid"`
	Duration    time.Duration `json:"duration"`
	Time        time.Time     `json:"time"`
}

// MetricsSink records pipeline runs for observability purposes.
type MetricsSink interface {
	RecordRun(rec RunRecord) error
}

// ImprovementRecord is a single incumbent improvement inside a stage.
type ImprovementRecord struct {
	RunID     string    `json:"run_id"`
	Algorithm string    `json:"algorithm"`
	Iteration int       `json:"iteration"`
	Value     float64   `json:"value"`
	Valid     bool      `json:"valid"`
	Time      time.Time `json:"time"`
}

// ImprovementRecorder is implemented by sinks able to record improvements.
type ImprovementRecorder interface {
	RecordImprovement(rec ImprovementRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error                 { return nil }
func (NopSink) RecordImprovement(ImprovementRecord) error { return nil }

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(rec RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordImprovement forwards improvements to the sinks supporting them.
func (m *MultiSink) RecordImprovement(rec ImprovementRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ImprovementRecorder); ok {
			if err := r.RecordImprovement(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
