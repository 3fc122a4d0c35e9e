package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/smartgrid/core/metrics"
	"github.com/kilianp07/smartgrid/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket runs are written to.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes run summaries and improvements to InfluxDB using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordRun writes one pipeline_run point and one pipeline_stage point per
// stage.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	p := write.NewPointWithMeasurement("pipeline_run").
		AddTag("run_id", rec.RunID).
		AddTag("dataset", rec.Dataset).
		AddTag("router", rec.Router).
		AddTag("valid", strconv.FormatBool(rec.Valid)).
		AddField("total_cost", round3(rec.TotalCost)).
		AddField("battery_cost", round3(rec.BatteryCost)).
		AddField("cable_cost", round3(rec.CableCost)).
		AddField("cable_length", rec.CableLength).
		AddField("unconnected", rec.Unconnected).
		AddField("duration_ms", rec.Duration.Milliseconds()).
		SetTime(ts)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for i, st := range rec.Stages {
		sp := write.NewPointWithMeasurement("pipeline_stage").
			AddTag("run_id", rec.RunID).
			AddTag("algorithm", st.Algorithm).
			AddTag("stop", st.Stop).
			AddField("position", i).
			AddField("iterations", st.Iterations).
			AddField("improvements", st.Improvements).
			AddField("cost", round3(st.Cost)).
			AddField("duration_ms", st.Duration.Milliseconds()).
			SetTime(ts)
		if err := s.writeAPI.WritePoint(ctx, sp); err != nil {
			return err
		}
	}
	return nil
}

// RecordImprovement writes an improvement point.
func (s *InfluxSink) RecordImprovement(rec coremetrics.ImprovementRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("improvement").
		AddTag("run_id", rec.RunID).
		AddTag("algorithm", rec.Algorithm).
		AddField("iteration", rec.Iteration).
		AddField("value", round3(rec.Value)).
		AddField("valid", rec.Valid).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
