package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/smartgrid/core/metrics"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func TestInfluxSink_RecordRun(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Unix(1700000000, 0)
	run := coremetrics.RunRecord{
		RunID:       "run-1",
		Dataset:     "district1",
		Router:      "shared",
		BatteryCost: 25000,
		CableCost:   6402,
		TotalCost:   31402,
		CableLength: 711,
		Valid:       true,
		Duration:    1500 * time.Millisecond,
		Time:        now,
		Stages:      []coremetrics.StageRecord{{Algorithm: "kmeans", Iterations: 4, Stop: "exhausted", Cost: 33000}},
	}
	require.NoError(t, sink.RecordRun(run))

	p := write.NewPointWithMeasurement("pipeline_run").
		AddTag("run_id", "run-1").
		AddTag("dataset", "district1").
		AddTag("router", "shared").
		AddTag("valid", "true").
		AddField("total_cost", 31402.0).
		AddField("battery_cost", 25000.0).
		AddField("cable_cost", 6402.0).
		AddField("cable_length", 711).
		AddField("unconnected", 0).
		AddField("duration_ms", int64(1500)).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))

	require.Len(t, rec.bodies, 2)
	assert.Equal(t, expected, rec.bodies[0])
	assert.True(t, strings.HasPrefix(rec.bodies[1], "pipeline_stage,"))
	assert.Contains(t, rec.bodies[1], "algorithm=kmeans")
	assert.Contains(t, rec.bodies[1], "iterations=4i")
}

func TestInfluxSink_RecordImprovement(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	require.NoError(t, sink.RecordImprovement(coremetrics.ImprovementRecord{
		RunID: "r", Algorithm: "simple-swap", Iteration: 3, Value: 100.12345, Valid: true, Time: time.Unix(0, 1),
	}))
	require.Len(t, rec.bodies, 1)
	assert.True(t, strings.HasPrefix(rec.bodies[0], "improvement,"))
	assert.Contains(t, rec.bodies[0], "algorithm=simple-swap")
	assert.Contains(t, rec.bodies[0], "value=100.123")
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	_, isInflux := sink.(*InfluxSink)
	assert.False(t, isInflux, "expected NopSink on failing health check")
	assert.True(t, called)
}
